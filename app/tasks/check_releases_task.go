package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Runner is the part of the Monitor the tasks drive.
type Runner interface {
	Run(ctx context.Context) (*RunReport, error)
	Render(ctx context.Context) error
}

type CheckReleasesTask struct {
	Task
	runner Runner
}

func NewCheckReleasesTask(runner Runner, trigger Trigger) *CheckReleasesTask {
	return &CheckReleasesTask{
		Task:   NewTask(TaskTypeCheckReleases, trigger),
		runner: runner,
	}
}

func (t *CheckReleasesTask) Execute(ctx context.Context) error {
	slog.Debug("Checking releases", "task_id", t.ID, "trigger", string(t.Trigger))

	report, err := t.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("release check failed: %w", err)
	}

	if report != nil && report.NewItems > 0 {
		slog.Info("New release notes found", "task_id", t.ID, "new_items", report.NewItems)
	}
	return nil
}
