// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, or fails its first failures runs.
type mockService struct {
	name       string
	failures   int32
	startCount atomic.Int32
	stopCount  atomic.Int32
	started    chan struct{}
}

func newMockService(name string) *mockService {
	return &mockService{name: name, started: make(chan struct{}, 16)}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.startCount.Add(1)
	defer m.stopCount.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}

	if n <= m.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
