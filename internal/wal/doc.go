// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package wal provides a durable write-ahead log for location readings backed
by BadgerDB.

A reading is written to the WAL (fsync when SyncWrites is set) before it is
committed to DuckDB, and confirmed once the commit succeeds. Entries that
were never confirmed, because the process crashed or the database write
failed, are replayed by RecoverPending on startup and by the RetryLoop while
running. Replay is safe to repeat: the applier is expected to be idempotent
by record ID.

Keys are namespaced by state:

	pending:<id>    written, not yet applied
	confirmed:<id>  applied, awaiting compaction

The Compactor deletes confirmed entries and runs Badger's value-log GC.

Usage:

	w, err := wal.Open(wal.FromConfig(&cfg.WAL))
	id, err := w.Write(ctx, reading)
	defer w.Release(id)
	// ... commit to the database ...
	err = w.Confirm(ctx, id)
*/
package wal
