// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"errors"
	"time"

	"github.com/tomtom215/waypoint/internal/config"
)

// Config holds WAL settings.
type Config struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// RetryInterval is the period of the retry loop.
	RetryInterval time.Duration

	// RetryBackoff is the base delay between attempts on one entry,
	// doubled per attempt and capped at MaxBackoff.
	RetryBackoff time.Duration

	// MaxRetries is the number of failed attempts after which an entry is
	// dropped.
	MaxRetries int

	// CompactInterval is the period of the compactor.
	CompactInterval time.Duration

	// GCRatio is the value-log discard ratio passed to RunValueLogGC.
	GCRatio float64
}

// MaxBackoff caps the per-entry retry delay.
const MaxBackoff = 5 * time.Minute

// FromConfig converts the application WAL section.
func FromConfig(c *config.WALConfig) Config {
	return Config{
		Path:            c.Path,
		SyncWrites:      c.SyncWrites,
		RetryInterval:   c.RetryInterval,
		RetryBackoff:    time.Second,
		MaxRetries:      c.MaxRetries,
		CompactInterval: c.CompactInterval,
		GCRatio:         0.5,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("WAL path is required")
	}
	if c.RetryInterval <= 0 {
		return errors.New("WAL retry interval must be positive")
	}
	if c.MaxRetries < 1 {
		return errors.New("WAL max retries must be at least 1")
	}
	if c.CompactInterval <= 0 {
		return errors.New("WAL compact interval must be positive")
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return errors.New("WAL GC ratio must be between 0 and 1")
	}
	return nil
}
