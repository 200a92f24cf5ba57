// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/wal"
)

// Record runs a reading through the ingestion pipeline and returns the
// history row it produced. The returned record is also valid alongside
// ErrDeferred.
func (s *Service) Record(ctx context.Context, source string, reading *models.LocationReading) (rec *models.LocationRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordLocationIngest(source, time.Since(start), err) }()

	if err := s.normalize(reading); err != nil {
		return nil, err
	}
	rec = reading.Record()
	log := logging.Ctx(ctx).With().Str("device", reading.DeviceRecordID).Str("source", source).Logger()

	var entryID string
	if s.log != nil {
		entryID, err = s.log.Write(ctx, reading)
		if err != nil {
			return nil, fmt.Errorf("write-ahead log: %w", err)
		}
		defer s.log.Release(entryID)
	}

	inserted, err := s.store.RecordLocation(ctx, rec)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// The device was deleted after the ownership check.
			if entryID != "" {
				if derr := s.log.Delete(ctx, entryID); derr != nil {
					log.Warn().Err(derr).Msg("Failed to discard WAL entry for missing device")
				}
			}
			return nil, ErrDeviceNotFound
		}
		if entryID == "" {
			return nil, err
		}
		if aerr := s.log.RecordAttempt(ctx, entryID, err.Error()); aerr != nil {
			log.Warn().Err(aerr).Msg("Failed to record WAL attempt")
		}
		log.Warn().Err(err).Str("entry_id", entryID).Msg("Location write deferred to WAL retry")
		return rec, fmt.Errorf("%w: %v", ErrDeferred, err)
	}

	if entryID != "" {
		if cerr := s.log.Confirm(ctx, entryID); cerr != nil {
			// The row is committed; a later replay is a no-op.
			log.Warn().Err(cerr).Str("entry_id", entryID).Msg("Failed to confirm WAL entry")
		}
	}

	s.committed(ctx, reading, inserted)
	return rec, nil
}

// committed runs the post-commit steps of the pipeline.
func (s *Service) committed(ctx context.Context, reading *models.LocationReading, inserted bool) {
	s.invalidate(reading.DeviceRecordID)
	if !inserted || s.publisher == nil {
		return
	}

	rec := reading.Record()
	event := &models.LocationUpdatedEvent{
		DeviceRecordID: reading.DeviceRecordID,
		UserID:         reading.UserID,
		LastLocation:   rec.LastLocation(),
		OccurredAt:     reading.ReceivedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("device", reading.DeviceRecordID).Msg("Failed to publish location event")
	}
}

// Applier replays WAL entries into the database. A reading for a device
// that no longer exists is dropped.
func (s *Service) Applier() wal.Applier {
	return wal.ApplierFunc(func(ctx context.Context, entry *wal.Entry) (err error) {
		start := time.Now()
		defer func() { metrics.RecordLocationIngest(SourceWAL, time.Since(start), err) }()

		var reading models.LocationReading
		if err := entry.Decode(&reading); err != nil {
			return wal.Permanent(fmt.Errorf("decode reading: %w", err))
		}

		inserted, err := s.store.RecordLocation(ctx, reading.Record())
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return wal.Permanent(err)
			}
			return err
		}
		s.committed(ctx, &reading, inserted)
		return nil
	})
}

// Recover replays readings left pending by a previous run. It is a no-op
// without a write-ahead log.
func (s *Service) Recover(ctx context.Context) (*wal.RecoveryResult, error) {
	if s.log == nil {
		return &wal.RecoveryResult{}, nil
	}
	return s.log.RecoverPending(ctx, s.Applier())
}
