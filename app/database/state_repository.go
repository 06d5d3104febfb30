package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
)

const seenKey = "seen"

func HistoryKey(teamID string) string {
	return "history/" + teamID
}

// StateRepository stores SeenState and per-team FeedHistory as JSON blobs.
type StateRepository struct {
	store BlobStore
}

func NewStateRepository(store BlobStore) *StateRepository {
	return &StateRepository{store: store}
}

func (r *StateRepository) LoadSeen(ctx context.Context) (feed.SeenState, error) {
	data, err := r.store.Get(ctx, seenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen state: %w", err)
	}

	seen := feed.NewSeenState()
	if len(data) == 0 {
		return seen, nil
	}

	if err := json.Unmarshal(data, &seen); err != nil {
		return nil, fmt.Errorf("failed to decode seen state: %w", err)
	}
	if seen == nil {
		seen = feed.NewSeenState()
	}
	seen.Trim()

	return seen, nil
}

func (r *StateRepository) LoadHistory(ctx context.Context, teamID string) ([]feed.Item, error) {
	data, err := r.store.Get(ctx, HistoryKey(teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to load history for team %s: %w", teamID, err)
	}
	if len(data) == 0 {
		return []feed.Item{}, nil
	}

	var items []feed.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode history for team %s: %w", teamID, err)
	}
	if items == nil {
		items = []feed.Item{}
	}

	return items, nil
}

// Save commits every team history and then the seen state, so an
// interrupted save never marks items seen that are missing from history.
func (r *StateRepository) Save(ctx context.Context, seen feed.SeenState, histories map[string][]feed.Item) error {
	teamIDs := make([]string, 0, len(histories))
	for teamID := range histories {
		teamIDs = append(teamIDs, teamID)
	}
	sort.Strings(teamIDs)

	blobs := make([]Blob, 0, len(histories)+1)
	for _, teamID := range teamIDs {
		items := histories[teamID]
		if items == nil {
			items = []feed.Item{}
		}
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history for team %s: %w", teamID, err)
		}
		blobs = append(blobs, Blob{Key: HistoryKey(teamID), Data: data})
	}

	data, err := json.MarshalIndent(seen, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode seen state: %w", err)
	}
	blobs = append(blobs, Blob{Key: seenKey, Data: data})

	if err := r.store.Commit(ctx, blobs); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
