package feed

import "slices"

// MaxSeenPerProduct bounds the remembered ids per product; the oldest are
// evicted first.
const MaxSeenPerProduct = 200

// SeenState maps team id -> product id -> ids already reported as new,
// oldest first.
type SeenState map[string]map[string][]string

func NewSeenState() SeenState {
	return make(SeenState)
}

func (s SeenState) IsNew(teamID, productID, itemID string) bool {
	return !slices.Contains(s[teamID][productID], itemID)
}

// MarkSeen records itemID and reports whether it was new.
func (s SeenState) MarkSeen(teamID, productID, itemID string) bool {
	if !s.IsNew(teamID, productID, itemID) {
		return false
	}

	products := s.team(teamID)

	ids := append(products[productID], itemID)
	if len(ids) > MaxSeenPerProduct {
		ids = slices.Clone(ids[len(ids)-MaxSeenPerProduct:])
	}
	products[productID] = ids

	return true
}

// Ensure creates empty entries so a checked product shows up in the
// persisted state even when it yielded nothing.
func (s SeenState) Ensure(teamID, productID string) {
	products := s.team(teamID)
	if _, ok := products[productID]; !ok {
		products[productID] = []string{}
	}
}

func (s SeenState) team(teamID string) map[string][]string {
	products := s[teamID]
	if products == nil {
		products = make(map[string][]string)
		s[teamID] = products
	}
	return products
}

func (s SeenState) Count(teamID, productID string) int {
	return len(s[teamID][productID])
}

// Trim enforces the per-product bound on state loaded from storage and
// replaces null team entries with empty ones.
func (s SeenState) Trim() {
	for teamID, products := range s {
		if products == nil {
			s[teamID] = make(map[string][]string)
			continue
		}
		for productID, ids := range products {
			if len(ids) > MaxSeenPerProduct {
				products[productID] = slices.Clone(ids[len(ids)-MaxSeenPerProduct:])
			}
		}
	}
}
