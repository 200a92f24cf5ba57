// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// RevocationStore records revoked token IDs until the tokens expire.
type RevocationStore interface {
	// Revoke marks jti as revoked until expiresAt. Revoking an already
	// expired token is a no-op.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationStore is an in-memory RevocationStore. Entries are lost
// on restart.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke implements RevocationStore.
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(s.now()) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
	return nil
}

// IsRevoked implements RevocationStore.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.entries[jti]
	s.mu.RUnlock()
	return ok && s.now().Before(expiresAt), nil
}

// CleanupExpired drops entries whose tokens have expired and returns the
// number removed.
func (s *MemoryRevocationStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for jti, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

const revokedKeyPrefix = "revoked:"

// BadgerRevocationStore persists revocations in BadgerDB. Badger's TTL
// drops each key once the token would have expired.
type BadgerRevocationStore struct {
	db *badger.DB
}

// NewBadgerRevocationStore wraps an open Badger database.
func NewBadgerRevocationStore(db *badger.DB) *BadgerRevocationStore {
	return &BadgerRevocationStore{db: db}
}

// Revoke implements RevocationStore.
func (s *BadgerRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(revokedKeyPrefix+jti), []byte{1}).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// IsRevoked implements RevocationStore.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	revoked := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(revokedKeyPrefix + jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		revoked = true
		return nil
	})
	return revoked, err
}
