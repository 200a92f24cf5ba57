// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/wal"
)

// WALComponents holds the write-ahead log and its background services.
type WALComponents struct {
	wal       *wal.BadgerWAL
	retryLoop *wal.RetryLoop
	compactor *wal.Compactor
}

// InitWAL opens the write-ahead log when enabled. A nil result with a nil
// error means ingest writes straight to the database.
func InitWAL(cfg *config.WALConfig) (*WALComponents, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("WAL disabled (WAL_ENABLED=false). Readings may be lost if the database write fails.")
		return nil, nil
	}

	w, err := wal.Open(wal.FromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &WALComponents{wal: w}, nil
}

// Attach creates the retry loop and compactor around applier and adds them
// to the data layer. The services start with the tree.
func (c *WALComponents) Attach(tree *supervisor.SupervisorTree, applier wal.Applier) {
	if c == nil {
		return
	}
	c.retryLoop = wal.NewRetryLoop(c.wal, applier)
	c.compactor = wal.NewCompactor(c.wal)
	tree.AddDataService(c.retryLoop)
	tree.AddDataService(c.compactor)
	logging.Info().Msg("WAL retry loop and compactor added to data layer")
}

// Log returns the WAL, or nil when disabled.
func (c *WALComponents) Log() *wal.BadgerWAL {
	if c == nil {
		return nil
	}
	return c.wal
}

// Stats returns current WAL statistics.
func (c *WALComponents) Stats() wal.Stats {
	if c == nil || c.wal == nil {
		return wal.Stats{}
	}
	return c.wal.Stats()
}

// Shutdown closes the WAL. The supervisor has already stopped the retry
// loop and compactor by the time this runs.
func (c *WALComponents) Shutdown() {
	if c == nil || c.wal == nil {
		return
	}
	if err := c.wal.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing WAL")
		return
	}
	logging.Info().Msg("WAL closed")
}
