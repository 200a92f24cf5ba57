// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package tracking implements device management and location ingestion. The
REST handlers and the WebSocket hub both go through Service, so ownership
rules and the ingestion pipeline are enforced in one place.

Ingestion (Service.Record):

 1. Validate coordinates.
 2. Append the reading to the write-ahead log, when one is configured.
 3. Insert the history row and advance the device's last location in one
    DuckDB transaction.
 4. Confirm the WAL entry.
 5. Invalidate the cached last location.
 6. Publish a LocationUpdated event for the owner's connections.

A reading whose database write fails after it reached the WAL is reported
with ErrDeferred; the WAL retry loop applies it later through Applier. Each
reading carries a record ID assigned before the WAL write, which makes every
replay idempotent.
*/
package tracking
