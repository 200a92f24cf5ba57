// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package wal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func writeReleased(t *testing.T, w *BadgerWAL, recordID string) string {
	t.Helper()
	id, err := w.Write(context.Background(), testReading{RecordID: recordID})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w.Release(id)
	return id
}

func TestRecoverPending(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()
	writeReleased(t, w, "a")
	writeReleased(t, w, "b")

	a := &recordingApplier{}
	result, err := w.RecoverPending(ctx, a)
	if err != nil {
		t.Fatalf("RecoverPending() error = %v", err)
	}
	if result.Pending != 2 || result.Applied != 2 {
		t.Errorf("result = %+v, want 2 applied", result)
	}
	if len(a.applied) != 2 {
		t.Errorf("applied = %v", a.applied)
	}

	// A second run finds nothing.
	result, err = w.RecoverPending(ctx, a)
	if err != nil || result.Pending != 0 {
		t.Errorf("second RecoverPending() = %+v, %v", result, err)
	}
}

func TestRecoverPending_SkipsClaimed(t *testing.T) {
	w := openTestWAL(t)
	id, err := w.Write(context.Background(), testReading{RecordID: "inflight"})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Release(id)

	a := &recordingApplier{}
	result, err := w.RecoverPending(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 1 || len(a.applied) != 0 {
		t.Errorf("result = %+v, applied %v; want claimed entry skipped", result, a.applied)
	}
}

func TestReplay_TransientFailureThenDrop(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()
	writeReleased(t, w, "flaky")

	a := &recordingApplier{err: errors.New("database is locked")}
	for i := 0; i < 3; i++ {
		result, err := w.RecoverPending(ctx, a)
		if err != nil {
			t.Fatal(err)
		}
		if result.Failed != 1 {
			t.Fatalf("attempt %d result = %+v, want failed", i, result)
		}
	}

	pending, _ := w.GetPending(ctx)
	if len(pending) != 1 || pending[0].Attempts != 3 || pending[0].LastError != "database is locked" {
		t.Fatalf("pending = %+v", pending)
	}

	result, err := w.RecoverPending(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if result.Dropped != 1 {
		t.Errorf("result = %+v, want dropped after max retries", result)
	}
	if pending, _ := w.GetPending(ctx); len(pending) != 0 {
		t.Errorf("entry still pending after drop: %+v", pending)
	}
}

func TestReplay_PermanentFailureDrops(t *testing.T) {
	w := openTestWAL(t)
	writeReleased(t, w, "orphan")

	a := &recordingApplier{err: Permanent(errors.New("device deleted"))}
	result, err := w.RecoverPending(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if result.Dropped != 1 {
		t.Errorf("result = %+v, want dropped", result)
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("boom")
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
	p := Permanent(base)
	if !IsPermanent(p) || !errors.Is(p, base) {
		t.Error("Permanent() does not wrap")
	}
	if IsPermanent(base) {
		t.Error("IsPermanent(plain) = true")
	}
}

func TestRetryLoop_RunOnceHonoursBackoff(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()
	writeReleased(t, w, "late")

	a := &recordingApplier{}
	loop := NewRetryLoop(w, a)

	// Fresh entries are left to their writer for one retry interval.
	if result := loop.RunOnce(ctx); result.Skipped != 1 || result.Applied != 0 {
		t.Fatalf("RunOnce() on fresh entry = %+v", result)
	}

	loop.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if result := loop.RunOnce(ctx); result.Applied != 1 {
		t.Fatalf("RunOnce() after interval = %+v", result)
	}
	if len(a.applied) != 1 || a.applied[0] != "late" {
		t.Errorf("applied = %v", a.applied)
	}
}

func TestRetryLoop_ServeStopsOnCancel(t *testing.T) {
	w := openTestWAL(t)
	loop := NewRetryLoop(w, &recordingApplier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if loop.String() != "wal-retry" {
		t.Errorf("String() = %q", loop.String())
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{20, MaxBackoff},
		{1000, MaxBackoff},
	}
	for _, tt := range tests {
		if got := Backoff(time.Second, tt.attempts); got != tt.want {
			t.Errorf("Backoff(1s, %d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
	if Backoff(0, 5) != 0 {
		t.Error("Backoff with zero base should be zero")
	}
}

func TestCompactor_RunNow(t *testing.T) {
	w := openTestWAL(t)
	ctx := context.Background()

	confirmed := writeReleased(t, w, "done")
	writeReleased(t, w, "pending")
	if err := w.Confirm(ctx, confirmed); err != nil {
		t.Fatal(err)
	}

	c := NewCompactor(w)
	deleted, err := c.RunNow()
	if err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("RunNow() deleted %d, want 1", deleted)
	}

	stats := w.Stats()
	if stats.Confirmed != 0 || stats.Pending != 1 {
		t.Errorf("Stats() = %+v, want 1 pending only", stats)
	}
	if stats.LastCompact.IsZero() {
		t.Error("LastCompact not recorded")
	}
}
