// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitStarted(t *testing.T, m *mockService) {
	t.Helper()
	select {
	case <-m.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not start", m.name)
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	tree, _ = NewSupervisorTree(nil, TreeConfig{FailureBackoff: time.Second})
	if tree.config.FailureBackoff != time.Second || tree.config.FailureThreshold != 5 {
		t.Errorf("partial config = %+v", tree.config)
	}
}

func TestTreeRunsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newMockService("wal-retry-loop")
	messaging := newMockService("websocket-hub")
	api := newMockService("http-server")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	got := tree.Services()
	if len(got[LayerData]) != 1 || got[LayerData][0] != "wal-retry-loop" {
		t.Errorf("data layer = %v", got[LayerData])
	}
	if got[LayerAPI][0] != "http-server" {
		t.Errorf("api layer = %v", got[LayerAPI])
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tree.Serve(ctx) }()

	for _, m := range []*mockService{data, messaging, api} {
		waitStarted(t, m)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	for _, m := range []*mockService{data, messaging, api} {
		if m.stopCount.Load() != m.startCount.Load() {
			t.Errorf("%s: started %d, stopped %d", m.name, m.startCount.Load(), m.stopCount.Load())
		}
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newMockService("event-consumer")
	flaky.failures = 2
	steady := newMockService("http-server")
	tree.AddMessagingService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitStarted(t, steady)
	deadline := time.Now().Add(3 * time.Second)
	for flaky.startCount.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("flaky service started %d times, want 3", flaky.startCount.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if steady.startCount.Load() != 1 {
		t.Errorf("a messaging failure restarted the API layer: %d starts", steady.startCount.Load())
	}

	cancel()
	<-errCh
}

func TestTreeAddAndRemove(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	if _, err := tree.Add(Layer("bogus"), newMockService("x")); err == nil {
		t.Error("Add() to an unknown layer succeeded")
	}

	svc := newMockService("cache-cleanup:last-location")
	token, err := tree.Add(LayerData, svc)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)
	waitStarted(t, svc)

	if err := tree.Remove(token); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for svc.stopCount.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("removed service did not stop")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-errCh
}
