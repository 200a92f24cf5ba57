// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
)

// RetryLoop periodically re-applies pending entries whose backoff has
// elapsed. It implements suture.Service.
type RetryLoop struct {
	wal     *BadgerWAL
	applier Applier
	now     func() time.Time
}

// NewRetryLoop creates a retry loop over w.
func NewRetryLoop(w *BadgerWAL, applier Applier) *RetryLoop {
	return &RetryLoop{wal: w, applier: applier, now: time.Now}
}

// Serve runs until ctx is canceled.
func (r *RetryLoop) Serve(ctx context.Context) error {
	cfg := r.wal.Config()
	ticker := time.NewTicker(cfg.RetryInterval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", cfg.RetryInterval).
		Int("max_retries", cfg.MaxRetries).
		Msg("WAL retry loop started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("WAL retry loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (r *RetryLoop) String() string {
	return "wal-retry"
}

// RunOnce processes every pending entry that is due and returns the tally.
func (r *RetryLoop) RunOnce(ctx context.Context) RecoveryResult {
	var result RecoveryResult

	entries, err := r.wal.GetPending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("WAL retry: failed to list pending entries")
		return result
	}
	result.Pending = len(entries)

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !r.due(entry) {
			result.Skipped++
			continue
		}
		result.count(r.wal.replay(ctx, entry, r.applier))
	}

	if result.Applied+result.Failed+result.Dropped > 0 {
		logging.Info().
			Int("applied", result.Applied).
			Int("failed", result.Failed).
			Int("dropped", result.Dropped).
			Msg("WAL retry pass complete")
	}
	return result
}

func (r *RetryLoop) due(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		// Fresh entries belong to an in-flight write for one interval.
		return r.now().Sub(entry.CreatedAt) >= r.wal.Config().RetryInterval
	}
	return r.now().Sub(entry.LastAttemptAt) >= Backoff(r.wal.Config().RetryBackoff, entry.Attempts)
}

// Backoff returns base * 2^attempts, capped at MaxBackoff.
func Backoff(base time.Duration, attempts int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= MaxBackoff || d <= 0 {
			return MaxBackoff
		}
	}
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}
