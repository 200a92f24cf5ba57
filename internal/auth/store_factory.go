// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// StoreFactory owns the Badger database behind the revocation and reset
// token stores. An empty path selects in-memory stores.
type StoreFactory struct {
	db *badger.DB
}

// NewStoreFactory opens a Badger database at path, or returns a factory
// for in-memory stores when path is empty.
func NewStoreFactory(path string) (*StoreFactory, error) {
	if path == "" {
		return &StoreFactory{}, nil
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	return openStoreFactory(opts)
}

// NewInMemoryStoreFactory opens a Badger database held entirely in memory.
func NewInMemoryStoreFactory() (*StoreFactory, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openStoreFactory(opts)
}

func openStoreFactory(opts badger.Options) (*StoreFactory, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for auth: %w", err)
	}
	return &StoreFactory{db: db}, nil
}

// RevocationStore returns the store for revoked token IDs.
func (f *StoreFactory) RevocationStore() RevocationStore {
	if f.db != nil {
		return NewBadgerRevocationStore(f.db)
	}
	return NewMemoryRevocationStore()
}

// ResetTokenStore returns the store for password reset tokens.
func (f *StoreFactory) ResetTokenStore() ResetTokenStore {
	if f.db != nil {
		return NewBadgerResetTokenStore(f.db)
	}
	return NewMemoryResetTokenStore()
}

// Close closes the underlying BadgerDB if one was opened.
func (f *StoreFactory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
