package tasks

import (
	"context"

	"github.com/DavidsonCollege/release-notes-monitor/app/feed"
	"github.com/DavidsonCollege/release-notes-monitor/app/sources"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to queue runs.
// Example usage:
//
//	scheduler := NewScheduler(monitor, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewCheckReleasesTask(monitor, TriggerAPI))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// TeamProvider supplies the expanded team configuration for a run.
type TeamProvider interface {
	GetTeams() []feed.Team
}

type ProductChecker interface {
	Run(ctx context.Context, product feed.Product) sources.Result
}

// StateStore loads and saves the durable run state.
type StateStore interface {
	LoadSeen(ctx context.Context) (feed.SeenState, error)
	LoadHistory(ctx context.Context, teamID string) ([]feed.Item, error)
	Save(ctx context.Context, seen feed.SeenState, histories map[string][]feed.Item) error
}

type PageFetcher interface {
	GetHTML(ctx context.Context, url string) ([]byte, error)
}

type SummaryExtractor interface {
	Run(data []byte) (string, error)
}
