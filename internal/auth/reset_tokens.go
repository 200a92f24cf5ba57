// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// resetTokenBytes is the entropy of a reset token before hex encoding.
const resetTokenBytes = 32

// ResetTokenStore issues and consumes single-use password reset tokens.
// Only the SHA-256 digest of a token is stored.
type ResetTokenStore interface {
	// Issue creates a token for userID valid for ttl, replacing any
	// outstanding token for the same user.
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)

	// Consume validates token for userID and deletes it. It returns
	// ErrInvalidResetToken for unknown, expired or already used tokens.
	Consume(ctx context.Context, userID, token string) error
}

func newResetToken() (token string, digest []byte, err error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, digestToken(token), nil
}

func digestToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

type memoryResetEntry struct {
	digest    []byte
	expiresAt time.Time
}

// MemoryResetTokenStore is an in-memory ResetTokenStore.
type MemoryResetTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryResetEntry
	now     func() time.Time
}

// NewMemoryResetTokenStore creates an empty in-memory store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{
		entries: make(map[string]memoryResetEntry),
		now:     time.Now,
	}
}

// Issue implements ResetTokenStore.
func (s *MemoryResetTokenStore) Issue(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token, digest, err := newResetToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.entries[userID] = memoryResetEntry{digest: digest, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}

// Consume implements ResetTokenStore.
func (s *MemoryResetTokenStore) Consume(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return ErrInvalidResetToken
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, userID)
		return ErrInvalidResetToken
	}
	if subtle.ConstantTimeCompare(entry.digest, digestToken(token)) != 1 {
		return ErrInvalidResetToken
	}
	delete(s.entries, userID)
	return nil
}

const resetKeyPrefix = "reset:"

// BadgerResetTokenStore persists reset token digests in BadgerDB with TTL.
type BadgerResetTokenStore struct {
	db *badger.DB
}

// NewBadgerResetTokenStore wraps an open Badger database.
func NewBadgerResetTokenStore(db *badger.DB) *BadgerResetTokenStore {
	return &BadgerResetTokenStore{db: db}
}

// Issue implements ResetTokenStore.
func (s *BadgerResetTokenStore) Issue(_ context.Context, userID string, ttl time.Duration) (string, error) {
	token, digest, err := newResetToken()
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(resetKeyPrefix+userID), digest).WithTTL(ttl))
	})
	if err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}
	return token, nil
}

// Consume implements ResetTokenStore. The read and delete run in one
// transaction so a token cannot be used twice concurrently.
func (s *BadgerResetTokenStore) Consume(_ context.Context, userID, token string) error {
	key := []byte(resetKeyPrefix + userID)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrInvalidResetToken
		}
		if err != nil {
			return fmt.Errorf("failed to read reset token: %w", err)
		}
		stored, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("failed to read reset token: %w", err)
		}
		if subtle.ConstantTimeCompare(stored, digestToken(token)) != 1 {
			return ErrInvalidResetToken
		}
		return txn.Delete(key)
	})
}
