// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package metrics registers the Prometheus collectors exported at /metrics.
//
// Collectors are package-level variables created with promauto, so they
// register with the default registry at init. Helpers such as RecordDBQuery
// and RecordLocationIngest keep label sets consistent across callers.
//
// Families:
//   - duckdb_*: query durations and errors by operation and table
//   - api_*: request counts, durations, in-flight and rate-limit rejections
//   - websocket_*: connections and message counts
//   - circuit_breaker_*: breaker state for remote event publishing and SMTP
//   - location_ingest_*, wal_*: the location write pipeline
//   - events_*, auth_*, mail_*, cache_*: supporting subsystems
package metrics
