// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// DefaultHistoryLimit applies when a filter leaves Limit unset.
const DefaultHistoryLimit = 1000

// RecordLocation stores a history row and advances the device's last
// location in one transaction. It returns false without error when a row
// with the same ID already exists, so WAL replays are idempotent. The last
// location is only replaced by a reading dated at or after the current one.
func (db *DB) RecordLocation(ctx context.Context, rec *models.LocationRecord) (inserted bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("INSERT", "location_history", time.Now(), &err)

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	err = withConflictRetry(ctx, func() error {
		var txErr error
		inserted, txErr = db.recordLocationTx(ctx, rec)
		return txErr
	})
	return inserted, err
}

func (db *DB) recordLocationTx(ctx context.Context, rec *models.LocationRecord) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM devices WHERE id = ?`, rec.DeviceRecordID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("device %s: %w", rec.DeviceRecordID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up device: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO location_history (id, device_record_id, latitude, longitude, date, time, battery_voltage, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.DeviceRecordID, rec.Latitude, rec.Longitude, rec.Date.UTC(), rec.Time, rec.BatteryVoltage, rec.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE devices
		SET last_latitude = ?, last_longitude = ?, last_date = ?, last_time = ?, last_battery_voltage = ?, updated_at = ?
		WHERE id = ? AND (last_date IS NULL OR last_date <= ?)`,
		rec.Latitude, rec.Longitude, rec.Date.UTC(), rec.Time, rec.BatteryVoltage, time.Now().UTC(),
		rec.DeviceRecordID, rec.Date.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to update last location: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit location: %w", err)
	}
	return true, nil
}

// ListLocationHistory returns a device's history sorted by date ascending.
// Ownership is checked by the caller.
func (db *DB) ListLocationHistory(ctx context.Context, deviceRecordID string, filter models.HistoryFilter) (records []models.LocationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "location_history", time.Now(), &err)

	var sb strings.Builder
	sb.WriteString(`SELECT id, device_record_id, latitude, longitude, date, time, battery_voltage, created_at
		FROM location_history WHERE device_record_id = ?`)
	args := []interface{}{deviceRecordID}

	if !filter.From.IsZero() {
		sb.WriteString(` AND date >= ?`)
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		sb.WriteString(` AND date <= ?`)
		args = append(args, filter.To.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	sb.WriteString(` ORDER BY date ASC, created_at ASC, id ASC LIMIT ?`)
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query location history: %w", err)
	}
	defer rows.Close()

	records = make([]models.LocationRecord, 0)
	for rows.Next() {
		var r models.LocationRecord
		if err := rows.Scan(&r.ID, &r.DeviceRecordID, &r.Latitude, &r.Longitude,
			&r.Date, &r.Time, &r.BatteryVoltage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
