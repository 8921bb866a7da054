package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepFunc runs one sweep and returns its report. The daemon supplies a
// closure that builds a fresh run (new run id, new recorder) on every
// invocation.
type SweepFunc func(ctx context.Context) (*Report, error)

// Scheduler triggers recurring sweeps from a cron expression. Ticks that
// arrive while a sweep is still running are skipped, never queued: running
// two sweeps over the same store at once would have them racing to copy
// and delete the same files.
type Scheduler struct {
	schedule string
	sweep    SweepFunc
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool

	sweeping     atomic.Bool
	skippedTicks atomic.Int64
	onSkip       func()
}

// NewScheduler creates a scheduler that runs sweep per the cron schedule.
// onSkip, if non-nil, is called once for every skipped tick (the daemon
// hooks a counter metric there).
func NewScheduler(schedule string, sweep SweepFunc, onSkip func()) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		sweep:    sweep,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "lifecycle.scheduler"),
		onSkip:   onSkip,
	}
}

// Start begins scheduled sweeping.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 */6 * * *"  - Every 6 hours
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
//
// If the schedule is empty, the scheduler does nothing; sweeps then only
// happen when triggered explicitly.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweeps: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("sweep scheduler started", "schedule", s.schedule)

	// Stop with the surrounding daemon.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunNow executes one sweep immediately unless one is already in flight,
// in which case the tick is dropped and counted.
func (s *Scheduler) RunNow(ctx context.Context) {
	if !s.sweeping.CompareAndSwap(false, true) {
		skipped := s.skippedTicks.Add(1)
		s.logger.Warn("previous sweep still running, skipping this tick",
			"skipped_total", skipped)
		if s.onSkip != nil {
			s.onSkip()
		}
		return
	}
	defer s.sweeping.Store(false)

	s.logger.Info("starting scheduled sweep")

	report, err := s.sweep(ctx)
	if err != nil {
		s.logger.Error("scheduled sweep failed", "error", err)
		return
	}

	if report.Noop() {
		s.logger.Debug("scheduled sweep completed, nothing eligible")
		return
	}
	s.logger.Info("scheduled sweep completed",
		"files_deleted", report.FilesDeleted,
		"files_held", report.FilesHeld,
		"errors", len(report.Errors),
	)
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // wait for an in-flight sweep
		s.running = false
		s.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// SkippedTicks returns how many scheduled ticks were dropped because a
// sweep was still in flight.
func (s *Scheduler) SkippedTicks() int64 {
	return s.skippedTicks.Load()
}

// NextRun returns the next scheduled sweep time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
