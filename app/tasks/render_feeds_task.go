package tasks

import (
	"context"
	"fmt"
)

// RenderFeedsTask rewrites the output documents from persisted history.
type RenderFeedsTask struct {
	Task
	runner Runner
}

func NewRenderFeedsTask(runner Runner, trigger Trigger) *RenderFeedsTask {
	return &RenderFeedsTask{
		Task:   NewTask(TaskTypeRenderFeeds, trigger),
		runner: runner,
	}
}

func (t *RenderFeedsTask) Execute(ctx context.Context) error {
	if err := t.runner.Render(ctx); err != nil {
		return fmt.Errorf("feed render failed: %w", err)
	}
	return nil
}
