package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops items that fail the include/exclude keyword rules. Matching is
// case-insensitive over title and summary; order is preserved.
func (f *Filterer) Run(items []RawItem, filter *Filter) []RawItem {
	if filter == nil || (len(filter.Include) == 0 && len(filter.Exclude) == 0) {
		return items
	}

	kept := make([]RawItem, 0, len(items))
	for _, item := range items {
		isFiltered, filterReason := f.applyFilter(item, filter)
		if isFiltered {
			slog.Debug("Item filtered", "title", HeadRunes(item.Title, 60), "reason", filterReason)
			continue
		}
		kept = append(kept, item)
	}

	if len(kept) != len(items) {
		slog.Debug("Keyword filter applied", "before", len(items), "after", len(kept))
	}

	return kept
}

func (f *Filterer) applyFilter(item RawItem, filter *Filter) (bool, string) {
	value := item.Title + " " + item.Summary

	if len(filter.Include) > 0 {
		matched := false
		for _, include := range filter.Include {
			if f.matchesFilter(value, include) {
				matched = true
				break
			}
		}
		if !matched {
			return true, fmt.Sprintf("does not contain any of %v", filter.Include)
		}
	}

	for _, exclude := range filter.Exclude {
		if f.matchesFilter(value, exclude) {
			return true, fmt.Sprintf("contains '%s'", exclude)
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}
