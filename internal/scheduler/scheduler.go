package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Cleaner removes expired export jobs and files.
type Cleaner interface {
	CleanupExpired(ctx context.Context)
}

// Scheduler runs periodic maintenance tasks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cleaner   Cleaner
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a scheduler that runs the export cleanup every interval.
func New(cleaner Cleaner, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cleaner:   cleaner,
		interval:  interval,
		logger:    logger,
	}
}

// Start registers the jobs and runs the scheduler without blocking.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.logger.Debug("running export cleanup")
		s.cleaner.CleanupExpired(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule export cleanup: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("cleanup_interval", s.interval))
	return nil
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
