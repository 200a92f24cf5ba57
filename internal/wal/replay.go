// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Applier applies a logged payload to its destination. Apply must be
// idempotent: an entry may be applied more than once.
type Applier interface {
	Apply(ctx context.Context, entry *Entry) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, entry *Entry) error

// Apply implements Applier.
func (f ApplierFunc) Apply(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the entry is dropped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

type outcome int

const (
	outcomeApplied outcome = iota
	outcomeFailed
	outcomeDropped
	outcomeSkipped
)

// replay applies one pending entry and records the result in the log.
func (w *BadgerWAL) replay(ctx context.Context, entry *Entry, applier Applier) outcome {
	if !w.TryClaim(entry.ID) {
		return outcomeSkipped
	}
	defer w.Release(entry.ID)

	log := logging.Ctx(ctx).With().Str("entry_id", entry.ID).Int("attempts", entry.Attempts).Logger()

	if entry.Attempts >= w.cfg.MaxRetries {
		log.Error().Str("last_error", entry.LastError).Msg("WAL entry exceeded max retries, dropping")
		w.drop(ctx, entry.ID)
		metrics.WALRetries.WithLabelValues("dropped").Inc()
		return outcomeDropped
	}

	err := applier.Apply(ctx, entry)
	switch {
	case err == nil:
		if cerr := w.Confirm(ctx, entry.ID); cerr != nil && !errors.Is(cerr, ErrEntryNotFound) {
			log.Error().Err(cerr).Msg("WAL failed to confirm replayed entry")
			metrics.WALRetries.WithLabelValues("failed").Inc()
			return outcomeFailed
		}
		metrics.WALRetries.WithLabelValues("applied").Inc()
		return outcomeApplied

	case IsPermanent(err):
		log.Warn().Err(err).Msg("WAL entry cannot be applied, dropping")
		w.drop(ctx, entry.ID)
		metrics.WALRetries.WithLabelValues("dropped").Inc()
		return outcomeDropped

	default:
		log.Warn().Err(err).Msg("WAL replay failed")
		if rerr := w.RecordAttempt(ctx, entry.ID, err.Error()); rerr != nil && !errors.Is(rerr, ErrEntryNotFound) {
			log.Error().Err(rerr).Msg("WAL failed to record attempt")
		}
		metrics.WALRetries.WithLabelValues("failed").Inc()
		return outcomeFailed
	}
}

func (w *BadgerWAL) drop(ctx context.Context, id string) {
	if err := w.Delete(ctx, id); err != nil && !errors.Is(err, ErrEntryNotFound) {
		logging.Ctx(ctx).Error().Err(err).Str("entry_id", id).Msg("WAL failed to delete entry")
	}
}

// RecoveryResult summarises a RecoverPending run.
type RecoveryResult struct {
	Pending  int
	Applied  int
	Failed   int
	Dropped  int
	Skipped  int
	Duration time.Duration
}

// RecoverPending applies every pending entry once, ignoring backoff. It is
// run at startup before the service accepts traffic.
func (w *BadgerWAL) RecoverPending(ctx context.Context, applier Applier) (*RecoveryResult, error) {
	start := time.Now()
	entries, err := w.GetPending(ctx)
	if err != nil {
		return nil, err
	}

	result := &RecoveryResult{Pending: len(entries)}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		result.count(w.replay(ctx, entry, applier))
	}
	result.Duration = time.Since(start)

	if result.Pending > 0 {
		logging.Info().
			Int("pending", result.Pending).
			Int("applied", result.Applied).
			Int("failed", result.Failed).
			Int("dropped", result.Dropped).
			Dur("duration", result.Duration).
			Msg("WAL recovery complete")
	}
	return result, nil
}

func (r *RecoveryResult) count(o outcome) {
	switch o {
	case outcomeApplied:
		r.Applied++
	case outcomeFailed:
		r.Failed++
	case outcomeDropped:
		r.Dropped++
	case outcomeSkipped:
		r.Skipped++
	}
}
