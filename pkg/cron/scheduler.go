// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/service"
)

// InboxSweeper processes the quote inbox once.
type InboxSweeper interface {
	Sweep(ctx context.Context) ([]service.InboxFile, service.InboxStats, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	sweeper InboxSweeper
	spec    string
	timeout time.Duration
	logger  *slog.Logger

	// running guards against overlapping sweeps when one outlasts the interval
	running sync.Mutex
}

// NewScheduler creates a new job scheduler. spec is a standard 5-field cron
// expression.
func NewScheduler(sweeper InboxSweeper, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		sweeper: sweeper,
		spec:    spec,
		timeout: 30 * time.Minute,
		logger:  logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweepInbox); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("inbox_sweep", s.spec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers an inbox sweep outside the schedule.
func (s *Scheduler) RunNow() {
	go s.sweepInbox()
}

func (s *Scheduler) sweepInbox() {
	if !s.running.TryLock() {
		s.logger.Warn("inbox sweep still running, skipping")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	results, stats, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("inbox sweep failed", slog.Any("error", err))
		return
	}

	for _, r := range results {
		if !r.Success {
			s.logger.Warn("inbox file failed",
				slog.String("path", r.Path),
				slog.String("error", r.Err),
			)
		}
	}

	s.logger.Info("inbox sweep finished",
		slog.Int("matched", stats.Matched),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
