package feed

import (
	"sort"
	"time"
)

// Merge prepends fresh items to history, keeps the first occurrence of each
// id and truncates the result to maxItems.
func Merge(fresh, history []Item, maxItems int) []Item {
	seenIDs := make(map[string]bool, len(fresh)+len(history))
	merged := make([]Item, 0, len(fresh)+len(history))

	for _, group := range [][]Item{fresh, history} {
		for _, item := range group {
			if seenIDs[item.ID] {
				continue
			}
			seenIDs[item.ID] = true
			merged = append(merged, item)
		}
	}

	if maxItems > 0 && len(merged) > maxItems {
		merged = merged[:maxItems]
	}

	return merged
}

// SortNewestFirst returns a copy of items ordered by date, newest first.
// Items with unparseable dates sort last; ties keep their input order.
func SortNewestFirst(items []Item) []Item {
	type dated struct {
		item Item
		at   time.Time
	}

	entries := make([]dated, len(items))
	for i, item := range items {
		at, _ := ParseISO(item.Date)
		entries[i] = dated{item: item, at: at}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].at.After(entries[b].at)
	})

	sorted := make([]Item, len(entries))
	for i, entry := range entries {
		sorted[i] = entry.item
	}
	return sorted
}

// IndexByID maps item ids to the first item carrying them.
func IndexByID(items []Item) map[string]Item {
	index := make(map[string]Item, len(items))
	for _, item := range items {
		if _, ok := index[item.ID]; !ok {
			index[item.ID] = item
		}
	}
	return index
}
