package tasks

import (
	"maps"
	"slices"
	"time"
)

type RunReport struct {
	ID              string         `json:"id"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	Teams           []TeamReport   `json:"teams"`
	ProductsChecked int            `json:"products_checked"`
	ProductFailures int            `json:"product_failures"`
	NewItems        int            `json:"new_items"`
	Diagnostics     map[string]int `json:"diagnostics"`
	Error           string         `json:"error,omitempty"`
}

type TeamReport struct {
	TeamID    string   `json:"team_id"`
	NewItems  int      `json:"new_items"`
	FeedItems int      `json:"feed_items"`
	NewTitles []string `json:"new_titles,omitempty"`
}

func newRunReport(id string, startedAt time.Time) *RunReport {
	return &RunReport{
		ID:          id,
		StartedAt:   startedAt,
		Teams:       []TeamReport{},
		Diagnostics: make(map[string]int),
	}
}

func (r *RunReport) clone() *RunReport {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Diagnostics = maps.Clone(r.Diagnostics)
	copied.Teams = make([]TeamReport, len(r.Teams))
	for i, team := range r.Teams {
		copied.Teams[i] = team
		copied.Teams[i].NewTitles = slices.Clone(team.NewTitles)
	}
	return &copied
}
