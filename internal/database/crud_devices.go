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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/models"
)

const deviceColumns = `id, device_id, device_name, activation_key, user_id,
	last_latitude, last_longitude, last_date, last_time, last_battery_voltage,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var (
		d                 models.Device
		lat, lon, battery sql.NullFloat64
		lastDate          sql.NullTime
		lastTime          sql.NullString
	)
	if err := row.Scan(&d.ID, &d.DeviceID, &d.DeviceName, &d.ActivationKey, &d.UserID,
		&lat, &lon, &lastDate, &lastTime, &battery,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid && lastDate.Valid {
		d.LastLocation = &models.LastLocation{
			Latitude:       lat.Float64,
			Longitude:      lon.Float64,
			Date:           lastDate.Time,
			Time:           lastTime.String,
			BatteryVoltage: battery.Float64,
		}
	}
	return &d, nil
}

// CreateDevice inserts a device. Returns ErrDuplicate when the hardware
// device ID is already registered.
func (db *DB) CreateDevice(ctx context.Context, device *models.Device) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("INSERT", "devices", time.Now(), &err)

	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now
	device.LastLocation = nil

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO devices (id, device_id, device_name, activation_key, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.DeviceID, device.DeviceName, device.ActivationKey, device.UserID, now, now)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("device %s: %w", device.DeviceID, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

// GetDevice returns a device by record ID regardless of owner. It serves the
// activation-key path of socket ingestion and the WAL replay.
func (db *DB) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	return db.getDevice(ctx, `id = ?`, id)
}

// GetDeviceForUser returns a device by record ID when userID owns it.
func (db *DB) GetDeviceForUser(ctx context.Context, id, userID string) (*models.Device, error) {
	return db.getDevice(ctx, `id = ? AND user_id = ?`, id, userID)
}

// GetDeviceByHardwareID returns a device by its hardware identifier.
func (db *DB) GetDeviceByHardwareID(ctx context.Context, deviceID string) (*models.Device, error) {
	return db.getDevice(ctx, `device_id = ?`, deviceID)
}

func (db *DB) getDevice(ctx context.Context, where string, args ...interface{}) (device *models.Device, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "devices", time.Now(), &err)

	device, err = scanDevice(db.conn.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return device, nil
}

// ListDevices returns the devices owned by userID, newest first.
func (db *DB) ListDevices(ctx context.Context, userID string) (devices []models.Device, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "devices", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices = make([]models.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// UpdateDeviceKey rotates an owned device's activation key. An empty name
// leaves the current name in place.
func (db *DB) UpdateDeviceKey(ctx context.Context, id, userID, activationKey, name string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("UPDATE", "devices", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE devices
		SET activation_key = ?,
			device_name = CASE WHEN ? = '' THEN device_name ELSE ? END,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		activationKey, name, name, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	return requireAffected(res, "device")
}

// DeleteDevice removes an owned device together with its history.
func (db *DB) DeleteDevice(ctx context.Context, id, userID string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("DELETE", "devices", time.Now(), &err)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	res, err := tx.ExecContext(ctx, `DELETE FROM devices WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if err := requireAffected(res, "device"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM location_history WHERE device_record_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete device history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit device delete: %w", err)
	}
	return nil
}
