package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const itemIDLength = 16

// ItemID derives the content address of an announcement. Any change to the
// product id, title or link yields a different id.
func ItemID(productID, title, link string) string {
	content := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%s:%s:%s", productID, title, link)))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:itemIDLength]
}
