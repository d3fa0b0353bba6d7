// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/invoice-converter/pkg/observability"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	archive   storage.Storage
	retention time.Duration
	schedule  string
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler creates a scheduler that prunes archived uploads older than
// retention on the given cron schedule.
func NewScheduler(archive storage.Storage, schedule string, retention time.Duration, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		archive:   archive,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

// WithMetrics counts pruned files.
func (s *Scheduler) WithMetrics(m *observability.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.pruneArchive); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("prune_schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow runs the archive pruning synchronously and returns how many files
// were removed.
func (s *Scheduler) RunNow(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.archive.Prune(ctx, cutoff)
	s.metrics.ObservePruned(removed)
	return removed, err
}

// pruneArchive deletes uploads past their retention.
func (s *Scheduler) pruneArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting archive pruning", slog.Duration("retention", s.retention))

	removed, err := s.RunNow(ctx)
	if err != nil {
		s.logger.Error("failed to prune archive",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return
	}

	s.logger.Info("archive pruning completed", slog.Int("removed", removed))
}
