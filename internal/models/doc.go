// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package models defines the data structures shared across Waypoint.

It is the single source of truth for the shapes stored in DuckDB, carried
through the write-ahead log and event bus, and returned by the HTTP and
WebSocket surfaces.

Key Components:

  - User: account with bcrypt password hash and role
  - Device: tracked device with its cached LastLocation
  - LocationRecord: one row of append-only location history
  - LocationReading: an ingest request as it travels through the WAL
  - LocationUpdatedEvent: the event published after a reading is stored
  - APIResponse: standardized HTTP envelope

JSON names follow the single-page app's camelCase convention; secrets
(password hashes, activation keys) are tagged json:"-" and never serialize.
*/
package models
