package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

const (
	SummaryMaxLength = 300
	ellipsis         = "..."
)

var (
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}\v\x{85}]+`)
	controlPattern    = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
)

// CleanText collapses whitespace runs, trims, and drops control characters.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = controlPattern.ReplaceAllString(norm.NFC.String(text), "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// Truncate shortens text to at most maxLength runes, cutting back to the
// last word boundary and appending "...".
func Truncate(text string, maxLength int) string {
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := string(runes[:maxLength])
	if i := strings.LastIndex(cut, " "); i >= 0 {
		cut = cut[:i]
	}
	return cut + ellipsis
}

// TruncateSummary applies the default summary length.
func TruncateSummary(text string) string {
	return Truncate(text, SummaryMaxLength)
}

// HeadRunes returns the first n runes of s.
func HeadRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// StripHTML reduces an HTML fragment to cleaned plain text. Input without
// markup is only cleaned.
func StripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return CleanText(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}

// ParseDate parses free-form date text. The zero time is returned when the
// text cannot be understood.
func ParseDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return t
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatISO renders t as ISO-8601 in UTC.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseISO parses a stored item date. ok is false when the value is not a
// recognizable ISO-8601 timestamp.
func ParseISO(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
