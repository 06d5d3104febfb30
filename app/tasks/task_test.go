package tasks

import "testing"

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeCheckReleases, TriggerSchedule)

	if task.GetID() == "" {
		t.Error("Expected generated task id")
	}
	if task.GetType() != TaskTypeCheckReleases {
		t.Errorf("Expected type %s, got %s", TaskTypeCheckReleases, task.GetType())
	}
	if task.GetTrigger() != TriggerSchedule {
		t.Errorf("Expected trigger %s, got %s", TriggerSchedule, task.GetTrigger())
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}
	if other := NewTask(TaskTypeCheckReleases, TriggerSchedule); other.GetID() == task.GetID() {
		t.Error("Expected unique task ids")
	}
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeRenderFeeds, TriggerAPI)

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
	if task.GetRetryCount() != DefaultMaxRetries {
		t.Errorf("Expected retry count %d, got %d", DefaultMaxRetries, task.GetRetryCount())
	}
}
