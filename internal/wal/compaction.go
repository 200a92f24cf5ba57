// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

// Compactor deletes confirmed entries and reclaims value-log space. It
// implements suture.Service.
type Compactor struct {
	wal *BadgerWAL
}

// NewCompactor creates a compactor for w.
func NewCompactor(w *BadgerWAL) *Compactor {
	return &Compactor{wal: w}
}

// Serve compacts every CompactInterval until ctx is canceled.
func (c *Compactor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.wal.Config().CompactInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := c.RunNow(); err != nil {
				logging.Error().Err(err).Msg("WAL compaction failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (c *Compactor) String() string {
	return "wal-compactor"
}

// RunNow compacts immediately and returns the number of entries removed.
func (c *Compactor) RunNow() (int64, error) {
	if err := c.wal.checkOpen(); err != nil {
		return 0, err
	}
	start := time.Now()

	deleted, err := c.deleteConfirmed()
	if err != nil {
		return deleted, err
	}

	if err := c.runGC(); err != nil {
		logging.Warn().Err(err).Msg("WAL value-log GC failed")
	}

	c.wal.mu.Lock()
	c.wal.lastCompact = time.Now()
	c.wal.mu.Unlock()
	metrics.WALCompactions.Inc()

	if deleted > 0 {
		logging.Info().Int64("deleted", deleted).Dur("duration", time.Since(start)).Msg("WAL compaction removed confirmed entries")
	}
	return deleted, nil
}

func (c *Compactor) deleteConfirmed() (int64, error) {
	var keys [][]byte
	err := c.wal.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	batch := c.wal.db.NewWriteBatch()
	defer batch.Cancel()
	for _, key := range keys {
		if err := batch.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := batch.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (c *Compactor) runGC() error {
	for {
		err := c.wal.db.RunValueLogGC(c.wal.Config().GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
