// Package jobs runs the periodic PIX expiry sweep inside the HTTP server
// process.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Expirer cancels pending PIX transactions older than maxAge.
type Expirer interface {
	ExpirePending(ctx context.Context, maxAge time.Duration) (int, error)
}

// Config controls the sweep schedule.
type Config struct {
	Schedule   string
	MaxAge     time.Duration
	RunTimeout time.Duration
}

// Scheduler owns the cron runner. A run is skipped while the previous one
// is still in flight.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	cfg     Config
	logger  *slog.Logger
}

func NewScheduler(expirer Expirer, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "jobs")

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		expirer: expirer,
		cfg:     cfg,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(cfg.Schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("failed to schedule pix expiry %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// RunOnce performs one sweep bounded by the configured run timeout.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	n, err := s.expirer.ExpirePending(ctx, s.cfg.MaxAge)
	if err != nil {
		s.logger.ErrorContext(ctx, "pix expiry sweep failed", "expired", n, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "pix expiry sweep finished", "expired", n, "duration", time.Since(started).String())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("pix expiry scheduler started", "schedule", s.cfg.Schedule)
}

// Stop halts the schedule and waits for an in-flight sweep to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("pix expiry scheduler stopped")
}
