// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"testing"
	"time"
)

func newTestStoreFactory(t *testing.T) *StoreFactory {
	t.Helper()
	f, err := NewInMemoryStoreFactory()
	if err != nil {
		t.Fatalf("NewInMemoryStoreFactory() error = %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func revocationStores(t *testing.T) map[string]RevocationStore {
	return map[string]RevocationStore{
		"memory": NewMemoryRevocationStore(),
		"badger": newTestStoreFactory(t).RevocationStore(),
	}
}

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	for name, store := range revocationStores(t) {
		t.Run(name, func(t *testing.T) {
			revoked, err := store.IsRevoked(ctx, "jti-1")
			if err != nil {
				t.Fatalf("IsRevoked() error = %v", err)
			}
			if revoked {
				t.Fatal("fresh jti reported revoked")
			}

			if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}
			revoked, err = store.IsRevoked(ctx, "jti-1")
			if err != nil {
				t.Fatalf("IsRevoked() error = %v", err)
			}
			if !revoked {
				t.Error("revoked jti not reported")
			}

			revoked, _ = store.IsRevoked(ctx, "jti-2")
			if revoked {
				t.Error("unrelated jti reported revoked")
			}
		})
	}
}

func TestRevocationStore_ExpiredTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, store := range revocationStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Revoke(ctx, "old", time.Now().Add(-time.Minute)); err != nil {
				t.Fatalf("Revoke() error = %v", err)
			}
			revoked, err := store.IsRevoked(ctx, "old")
			if err != nil {
				t.Fatal(err)
			}
			if revoked {
				t.Error("already expired token stored as revoked")
			}
		})
	}
}

func TestMemoryRevocationStore_CleanupExpired(t *testing.T) {
	store := NewMemoryRevocationStore()
	base := time.Now()
	store.now = func() time.Time { return base }

	ctx := context.Background()
	_ = store.Revoke(ctx, "short", base.Add(time.Minute))
	_ = store.Revoke(ctx, "long", base.Add(time.Hour))
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	store.now = func() time.Time { return base.Add(10 * time.Minute) }
	if removed := store.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if revoked, _ := store.IsRevoked(ctx, "long"); !revoked {
		t.Error("long-lived revocation was dropped")
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}
