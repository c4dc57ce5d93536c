package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Promoter is the slice of the task service the scheduler drives.
type Promoter interface {
	PromoteWaiting(ctx context.Context) error
}

// Scheduler runs the waiting-task promotion sweep on a fixed interval. Runs
// never overlap; a pass still in flight causes the next tick to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	promoter Promoter
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that promotes waiting tasks every
// interval.
func NewScheduler(promoter Promoter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if promoter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("promoter cannot be nil")
	}
	if interval <= 0 {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		promoter: promoter,
		interval: interval,
		logger:   logger.With(slog.String("component", "task_scheduler")),
	}
}

// Start registers the sweep job and begins ticking. The returned error only
// reflects schedule registration; job failures are logged per pass.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule promotion sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("promotion scheduler started",
		slog.Duration("interval", s.interval))
	return nil
}

// Stop halts the ticker and waits for an in-flight pass to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("promotion scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for promotion sweep to finish: %w", ctx.Err())
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	start := time.Now()
	if err := s.promoter.PromoteWaiting(ctx); err != nil {
		s.logger.Error("promotion sweep failed",
			slog.String("error", err.Error()))
		return
	}

	s.logger.Debug("promotion sweep completed",
		slog.Duration("elapsed", time.Since(start)))
}
