// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/waypoint/internal/logging"
)

// migration is a versioned data fix applied once, after the tables exist.
type migration struct {
	version int
	name    string
	sql     string
}

// Append only. Released entries are never edited.
var migrations = []migration{
	{1, "lowercase_emails", `UPDATE users SET email = lower(trim(email)) WHERE email <> lower(trim(email))`},
	{2, "unknown_roles_to_user", `UPDATE users SET role = 'user' WHERE role NOT IN ('user', 'admin')`},
	{3, "trim_device_names", `UPDATE devices SET device_name = trim(device_name) WHERE device_name <> trim(device_name)`},
}

// runVersionedMigrations applies every migration newer than the recorded
// schema version. Each runs in its own transaction with its bookkeeping row.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		applied++
	}
	if applied > 0 {
		logging.Info().Int("count", applied).Int("version", migrations[len(migrations)-1].version).
			Msg("Applied database migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration v%d: begin: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("migration v%d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		return fmt.Errorf("migration v%d: record: %w", m.version, err)
	}
	return tx.Commit()
}

// GetCurrentSchemaVersion returns the highest applied migration version.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
