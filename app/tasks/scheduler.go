package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	DefaultTaskTimeout = 30 * time.Minute
	maxRetryDelay      = 30 * time.Second
	taskQueueSize      = 16
)

// Scheduler runs a release check at startup and on every interval tick.
// Tasks execute one at a time on a single worker and failed tasks are
// retried with exponential backoff.
type Scheduler struct {
	runner      Runner
	interval    time.Duration
	taskTimeout time.Duration
	retryDelay  func(retryCount int) time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:      runner,
		interval:    interval,
		taskTimeout: DefaultTaskTimeout,
		retryDelay:  backoff,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueCheck(TriggerStartup)

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueCheck(TriggerSchedule)
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueCheck(trigger Trigger) {
	task := NewCheckReleasesTask(s.runner, trigger)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue CheckReleasesTask", "trigger", string(trigger), "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		slog.Debug("Task completed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration().String())
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := s.retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "trigger", string(task.GetTrigger()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}

func backoff(retryCount int) time.Duration {
	delay := time.Duration(1<<uint(retryCount-1)) * time.Second
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
