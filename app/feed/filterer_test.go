package feed

import (
	"testing"
)

func TestFilterer_NoFilter(t *testing.T) {
	filterer := NewFilterer()

	items := []RawItem{
		{Title: "Test Item 1", Summary: "Test description"},
		{Title: "Test Item 2", Summary: "Another description"},
	}

	result := filterer.Run(items, nil)
	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}

	result = filterer.Run(items, &Filter{})
	if len(result) != 2 {
		t.Errorf("Expected 2 items with empty filter, got %d", len(result))
	}
}

func TestFilterer_IncludeMatchesTitleOrSummary(t *testing.T) {
	filterer := NewFilterer()

	items := []RawItem{
		{Title: "Security advisory", Summary: "Patch now"},
		{Title: "New dashboard", Summary: "Improved SECURITY settings"},
		{Title: "Dark mode", Summary: "Looks nice"},
	}

	result := filterer.Run(items, &Filter{Include: []string{"security"}})

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if result[0].Title != "Security advisory" {
		t.Errorf("Expected first item 'Security advisory', got '%s'", result[0].Title)
	}
	if result[1].Title != "New dashboard" {
		t.Errorf("Expected second item 'New dashboard', got '%s'", result[1].Title)
	}
}

func TestFilterer_ExcludeWinsOverInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []RawItem{
		{Title: "Security fix", Summary: "Generally available"},
		{Title: "Security preview", Summary: "Now in Beta"},
		{Title: "Beta program", Summary: ""},
	}

	result := filterer.Run(items, &Filter{
		Include: []string{"security"},
		Exclude: []string{"beta"},
	})

	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0].Title != "Security fix" {
		t.Errorf("Expected 'Security fix', got '%s'", result[0].Title)
	}
}

func TestFilterer_ExcludeOnly(t *testing.T) {
	filterer := NewFilterer()

	items := []RawItem{
		{Title: "v2.0 released"},
		{Title: "v2.1-beta released"},
		{Title: "v2.2 released"},
	}

	result := filterer.Run(items, &Filter{Exclude: []string{"BETA"}})

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if result[0].Title != "v2.0 released" || result[1].Title != "v2.2 released" {
		t.Errorf("Expected order to be preserved, got %v", result)
	}
}
