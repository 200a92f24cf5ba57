// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/waypoint/internal/metrics"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterFailureRatio(t *testing.T) {
	b := New("test-open", DefaultSettings())

	for i := 0; i < 10; i++ {
		if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d error = %v, want errBoom", i, err)
		}
	}

	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	called := false
	err := b.Execute(func() error { called = true; return nil })
	if !IsOpen(err) {
		t.Errorf("Execute() on open breaker error = %v, want open-state error", err)
	}
	if called {
		t.Error("open breaker ran the function")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestBreaker_StaysClosedBelowMinimum(t *testing.T) {
	b := New("test-min", DefaultSettings())
	for i := 0; i < 9; i++ {
		_ = b.Execute(func() error { return errBoom })
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q after 9 failures, want closed", b.State())
	}
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	s := DefaultSettings()
	s.MinRequests = 1
	s.Timeout = 10 * time.Millisecond
	b := New("test-recover", s)

	_ = b.Execute(func() error { return errBoom })
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	time.Sleep(20 * time.Millisecond)
	if b.State() != "half-open" {
		t.Fatalf("State() = %q, want half-open", b.State())
	}
	for i := uint32(0); i < s.MaxRequests; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d error = %v", i, err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q after successful probes, want closed", b.State())
	}
}

func TestIsOpen(t *testing.T) {
	if IsOpen(errBoom) {
		t.Error("IsOpen(errBoom) = true")
	}
	if IsOpen(nil) {
		t.Error("IsOpen(nil) = true")
	}
}
