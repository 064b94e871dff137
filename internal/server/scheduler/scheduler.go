// Package scheduler runs periodic housekeeping on top of robfig/cron.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/businessinrwanda/marketplace/internal/logging"
)

// SessionPurger removes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron   *cron.Cron
	purger SessionPurger
	spec   string // e.g. "@every 1h"
	logger logging.Logger
}

func New(purger SessionPurger, spec string, l logging.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		purger: purger,
		spec:   spec,
		logger: l.With("module", "scheduler"),
	}
}

// Run registers the jobs, purges once right away and blocks until ctx is
// done. Running jobs are waited for before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.purge(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info(ctx, "Scheduler started", "spec", s.spec)

	s.purge(ctx)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info(ctx, "Scheduler stopped")
	return nil
}

func (s *Scheduler) purge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.purger.PurgeExpired(ctx); err != nil {
		s.logger.Error(ctx, "session purge failed", "error", err)
	}
}
