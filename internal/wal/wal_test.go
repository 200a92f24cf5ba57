// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type testReading struct {
	RecordID string  `json:"record_id"`
	Lat      float64 `json:"lat"`
}

func testConfig() Config {
	return Config{
		InMemory:        true,
		RetryInterval:   time.Hour,
		RetryBackoff:    time.Millisecond,
		MaxRetries:      3,
		CompactInterval: time.Hour,
		GCRatio:         0.5,
	}
}

func openTestWAL(t *testing.T) *BadgerWAL {
	t.Helper()
	w, err := Open(testConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// recordingApplier collects applied record IDs and fails on demand.
type recordingApplier struct {
	mu      sync.Mutex
	applied []string
	err     error
}

func (a *recordingApplier) Apply(_ context.Context, e *Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	var r testReading
	if err := e.Decode(&r); err != nil {
		return err
	}
	a.applied = append(a.applied, r.RecordID)
	return nil
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no path on disk", func(c *Config) { c.InMemory = false }, true},
		{"zero interval", func(c *Config) { c.RetryInterval = 0 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"zero compact", func(c *Config) { c.CompactInterval = 0 }, true},
		{"bad gc ratio", func(c *Config) { c.GCRatio = 1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteConfirm(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testReading{RecordID: "r1", Lat: 1.5})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w.Release(id)

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("GetPending() = %+v, want one entry %s", pending, id)
	}
	var got testReading
	if err := pending[0].Decode(&got); err != nil || got.RecordID != "r1" || got.Lat != 1.5 {
		t.Errorf("Decode() = %+v, %v", got, err)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm() error = %v, want ErrEntryNotFound", err)
	}

	stats := w.Stats()
	if stats.Pending != 0 || stats.Confirmed != 1 {
		t.Errorf("Stats() = %+v, want 0 pending 1 confirmed", stats)
	}
}

func TestWriteNil(t *testing.T) {
	w := openTestWAL(t)
	if _, err := w.Write(context.Background(), nil); !errors.Is(err, ErrNilPayload) {
		t.Errorf("Write(nil) error = %v, want ErrNilPayload", err)
	}
}

func TestClosed(t *testing.T) {
	w, err := Open(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := w.Write(context.Background(), testReading{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v", err)
	}
	if _, err := w.GetPending(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("GetPending() after Close error = %v", err)
	}
	if s := w.Stats(); s != (Stats{}) {
		t.Errorf("Stats() after Close = %+v", s)
	}
}

func TestClaims(t *testing.T) {
	w := openTestWAL(t)
	id, err := w.Write(context.Background(), testReading{RecordID: "r1"})
	if err != nil {
		t.Fatal(err)
	}
	if w.TryClaim(id) {
		t.Error("TryClaim() succeeded on an entry held by its writer")
	}
	w.Release(id)
	if !w.TryClaim(id) {
		t.Error("TryClaim() failed after Release")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	cfg := testConfig()
	cfg.InMemory = false
	cfg.Path = filepath.Join(t.TempDir(), "wal")

	w, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(context.Background(), testReading{RecordID: "durable"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	a := &recordingApplier{}
	result, err := w.RecoverPending(context.Background(), a)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Applied != 1 || len(a.applied) != 1 || a.applied[0] != "durable" {
		t.Errorf("RecoverPending() = %+v, applied %v", result, a.applied)
	}
}
