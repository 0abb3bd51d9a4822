// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package cleanup prunes token rows that are past their retention window.
// It runs beside the request-handling services without coordination: a row
// eligible for deletion can never also satisfy the consumption predicate,
// so the two never race over the same effect.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/accountkit/internal/config"
	"codeberg.org/oliverandrich/accountkit/internal/repository"
)

// Cleaner periodically deletes stale token rows.
type Cleaner struct {
	repo      *repository.Repository
	clock     Clock
	interval  time.Duration
	retention time.Duration
}

// NewCleaner creates a Cleaner. A nil clock falls back to the system clock.
func NewCleaner(repo *repository.Repository, cfg *config.CleanupConfig, clock Clock) *Cleaner {
	if clock == nil {
		clock = SystemClock()
	}
	return &Cleaner{
		repo:      repo,
		clock:     clock,
		interval:  cfg.Interval,
		retention: cfg.Retention,
	}
}

// Run sweeps on every tick until ctx is cancelled. Each sweep is
// self-contained; an interrupted or failed sweep leaves nothing
// inconsistent behind, the next tick finishes the job.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	slog.Info("cleanup_started", "interval", c.interval, "retention", c.retention)
	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup_stopped")
			return
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil {
				slog.Error("cleanup_sweep_failed", "error", err)
			}
		}
	}
}

// Sweep deletes every token row whose used or expired moment lies more than
// the retention window in the past, judged by the injected clock. Rows still
// valid or inside their grace window are never touched. Sweep is safe to
// call directly; tests drive it with a deterministic clock.
func (c *Cleaner) Sweep(ctx context.Context) (int64, error) {
	deleted, err := c.repo.DeleteStaleTokens(ctx, c.clock.Now(), c.retention)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		slog.Debug("cleanup_swept", "deleted", deleted)
	}
	return deleted, nil
}
