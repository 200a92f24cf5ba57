// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package database provides DuckDB-backed storage for Waypoint.
//
// # Overview
//
// Three tables hold the application state:
//
//   - users: accounts, unique by e-mail and by username
//   - devices: tracked devices, unique by hardware device_id, with the
//     last location cached in nullable last_* columns
//   - location_history: append-only readings, one row per report
//
// Ownership is enforced at this layer: every device and history accessor
// that serves a request takes the caller's user ID, and a device owned by
// someone else is indistinguishable from a missing one (ErrNotFound).
//
// # Writes
//
// RecordLocation inserts the history row and advances the device's last
// location in a single transaction. The insert is keyed by the record ID
// assigned before the write-ahead log entry, so replaying the same reading
// twice is a no-op. The last location only moves forward in time; a
// backfilled older reading is stored in history without regressing it.
//
// DuckDB reports optimistic-concurrency failures as transaction conflicts;
// writes that can race on the same device row are retried with a short
// exponential backoff.
//
// # Errors
//
// Accessors return ErrNotFound and ErrDuplicate wrapped with %w; callers
// test them with errors.Is.
//
// # Context
//
// Every method takes a context. When the caller's context has no deadline a
// 30-second timeout is applied (ensureContext).
package database
