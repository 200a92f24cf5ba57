// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Foreign keys are omitted: DuckDB rejects updates to referenced rows, and
// devices.last_* is updated on every reading. DeleteDevice removes history
// in the same transaction instead.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		device_id TEXT NOT NULL UNIQUE,
		device_name TEXT NOT NULL DEFAULT '',
		activation_key TEXT NOT NULL,
		user_id TEXT NOT NULL,
		last_latitude DOUBLE,
		last_longitude DOUBLE,
		last_date TIMESTAMP,
		last_time TEXT,
		last_battery_voltage DOUBLE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS location_history (
		id TEXT PRIMARY KEY,
		device_record_id TEXT NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		date TIMESTAMP NOT NULL,
		time TEXT NOT NULL,
		battery_voltage DOUBLE NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_devices_user ON devices(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_device_date ON location_history(device_record_id, date)`,
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates secondary indexes after migrations have run.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
