// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
)

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("WAL is closed")

	// ErrNilPayload is returned when Write is given nil.
	ErrNilPayload = errors.New("WAL payload cannot be nil")

	// ErrEntryNotFound is returned for an unknown or already confirmed entry.
	ErrEntryNotFound = errors.New("WAL entry not found")
)

const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// Entry is one logged payload.
type Entry struct {
	ID            string          `json:"id"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	LastError     string          `json:"last_error,omitempty"`
}

// Decode unmarshals the payload into v.
func (e *Entry) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats is a point-in-time view of the log.
type Stats struct {
	Pending     int64
	Confirmed   int64
	SizeBytes   int64
	LastCompact time.Time
}

// BadgerWAL is a write-ahead log stored in BadgerDB.
type BadgerWAL struct {
	db  *badger.DB
	cfg Config

	mu          sync.RWMutex
	closed      bool
	lastCompact time.Time

	// In-flight entries; the retry loop skips these.
	claims sync.Map
}

// Open opens (or creates) the log.
func Open(cfg Config) (*BadgerWAL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid WAL config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	w := &BadgerWAL{db: db, cfg: cfg, lastCompact: time.Now()}
	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("WAL opened")
	return w, nil
}

// Config returns the settings the log was opened with.
func (w *BadgerWAL) Config() Config {
	return w.cfg
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	return nil
}

// Write persists payload as a pending entry and returns its ID. The entry
// is claimed for the caller, who must call Release when done with it.
func (w *BadgerWAL) Write(_ context.Context, payload interface{}) (string, error) {
	if err := w.checkOpen(); err != nil {
		return "", err
	}
	if payload == nil {
		return "", ErrNilPayload
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	entry := Entry{
		ID:        uuid.New().String(),
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	w.claims.Store(entry.ID, struct{}{})
	err = w.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPending+entry.ID), data)
	})
	if err != nil {
		w.claims.Delete(entry.ID)
		metrics.WALWrites.WithLabelValues("error").Inc()
		return "", fmt.Errorf("write to BadgerDB: %w", err)
	}

	metrics.WALWrites.WithLabelValues("success").Inc()
	metrics.WALPendingEntries.Inc()
	return entry.ID, nil
}

// TryClaim marks id as in flight. It returns false if it already was.
func (w *BadgerWAL) TryClaim(id string) bool {
	_, loaded := w.claims.LoadOrStore(id, struct{}{})
	return !loaded
}

// Release drops the in-flight mark on id.
func (w *BadgerWAL) Release(id string) {
	w.claims.Delete(id)
}

// Confirm moves a pending entry to the confirmed namespace.
func (w *BadgerWAL) Confirm(_ context.Context, id string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	pendingKey := []byte(prefixPending + id)
	err := w.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pendingKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get pending entry: %w", err)
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read pending entry: %w", err)
		}
		if err := txn.Set([]byte(prefixConfirmed+id), data); err != nil {
			return fmt.Errorf("set confirmed entry: %w", err)
		}
		return txn.Delete(pendingKey)
	})
	if err != nil {
		return err
	}

	metrics.WALPendingEntries.Dec()
	return nil
}

// GetPending returns every unconfirmed entry, oldest key first.
func (w *BadgerWAL) GetPending(ctx context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("WAL skipping unreadable entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// RecordAttempt increments an entry's attempt count and stores lastErr.
func (w *BadgerWAL) RecordAttempt(_ context.Context, id, lastErr string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + id)
	return w.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}

		var entry Entry
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &entry) }); err != nil {
			return fmt.Errorf("unmarshal entry: %w", err)
		}
		entry.Attempts++
		entry.LastAttemptAt = time.Now().UTC()
		entry.LastError = lastErr

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Delete removes a pending entry without applying it.
func (w *BadgerWAL) Delete(_ context.Context, id string) error {
	if err := w.checkOpen(); err != nil {
		return err
	}

	key := []byte(prefixPending + id)
	err := w.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	metrics.WALPendingEntries.Dec()
	return nil
}

// Stats counts entries per namespace and refreshes the pending gauge.
func (w *BadgerWAL) Stats() Stats {
	w.mu.RLock()
	closed, lastCompact := w.closed, w.lastCompact
	w.mu.RUnlock()
	if closed {
		return Stats{}
	}

	var stats Stats
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefixPending)); it.ValidForPrefix([]byte(prefixPending)); it.Next() {
			stats.Pending++
		}
		for it.Seek([]byte(prefixConfirmed)); it.ValidForPrefix([]byte(prefixConfirmed)); it.Next() {
			stats.Confirmed++
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("WAL stats failed to count entries")
	}

	lsm, vlog := w.db.Size()
	stats.SizeBytes = lsm + vlog
	stats.LastCompact = lastCompact
	metrics.WALPendingEntries.Set(float64(stats.Pending))
	return stats
}

// DB exposes the underlying Badger handle. Callers must not close it.
func (w *BadgerWAL) DB() *badger.DB {
	return w.db
}

// Close closes the database. Subsequent calls return nil.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("WAL closed")
	return nil
}
