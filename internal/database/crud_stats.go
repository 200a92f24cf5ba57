// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// GetStats counts stored users, devices and history rows. The WebSocket
// client count is filled in by the caller.
func (db *DB) GetStats(ctx context.Context) (stats *models.AdminStats, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "stats", time.Now(), &err)

	stats = &models.AdminStats{}
	err = db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM devices),
		(SELECT COUNT(*) FROM location_history)`).Scan(&stats.Users, &stats.Devices, &stats.LocationRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}
