// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

func testEvent(userID string) *models.LocationUpdatedEvent {
	return &models.LocationUpdatedEvent{
		DeviceRecordID: "dev-1",
		UserID:         userID,
		OccurredAt:     time.Now().UTC(),
	}
}

func startConsumer(t *testing.T, bus *Bus, h Handler) {
	t.Helper()
	c, err := NewConsumer(bus, h, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-c.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not start")
	}
}

func TestChannelBusRoundTrip(t *testing.T) {
	bus, err := NewBus(Options{Logger: watermill.NopLogger{}})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	if bus.Transport() != "gochannel" {
		t.Errorf("Transport() = %q, want gochannel", bus.Transport())
	}
	if bus.Topic() != DefaultTopic {
		t.Errorf("Topic() = %q, want %q", bus.Topic(), DefaultTopic)
	}

	got := make(chan *models.LocationUpdatedEvent, 1)
	startConsumer(t, bus, func(_ context.Context, e *models.LocationUpdatedEvent) error {
		got <- e
		return nil
	})

	event := testEvent("user-1")
	if err := bus.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if event.EventID == "" {
		t.Error("Publish did not assign an event ID")
	}

	select {
	case e := <-got:
		if e.UserID != "user-1" || e.EventID != event.EventID {
			t.Errorf("received %+v, want user-1/%s", e, event.EventID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestConsumerDropsFailingEvents(t *testing.T) {
	bus, err := NewBus(Options{Logger: watermill.NopLogger{}})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	var calls atomic.Int32
	delivered := make(chan string, 4)
	startConsumer(t, bus, func(_ context.Context, e *models.LocationUpdatedEvent) error {
		calls.Add(1)
		if e.UserID == "bad" {
			return errors.New("handler failed")
		}
		delivered <- e.UserID
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent("bad")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := bus.Publish(context.Background(), testEvent("good")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case id := <-delivered:
		if id != "good" {
			t.Errorf("delivered %q, want good", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event after a failing one was not delivered")
	}

	// One initial attempt plus two retries for "bad", then it is dropped.
	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < 4 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 4 {
		t.Errorf("handler calls = %d, want 4", n)
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus, err := NewBus(Options{Logger: watermill.NopLogger{}})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := bus.Publish(context.Background(), testEvent("u")); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish after Close = %v, want ErrBusClosed", err)
	}
}

func TestEmbeddedNATSRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("embedded NATS test skipped in short mode")
	}

	srv, err := StartEmbeddedServer("127.0.0.1", -1)
	if err != nil {
		t.Fatalf("StartEmbeddedServer: %v", err)
	}
	defer srv.Shutdown()
	if !srv.IsRunning() {
		t.Fatal("embedded server not running")
	}

	bus, err := NewBus(Options{NATSURL: srv.ClientURL(), Topic: "test.location", Logger: watermill.NopLogger{}})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()
	if bus.Transport() != "nats" {
		t.Errorf("Transport() = %q, want nats", bus.Transport())
	}

	got := make(chan *models.LocationUpdatedEvent, 16)
	startConsumer(t, bus, func(_ context.Context, e *models.LocationUpdatedEvent) error {
		got <- e
		return nil
	})

	// Core NATS drops messages published before the subscription reaches
	// the server, so publish until one arrives.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := bus.Publish(context.Background(), testEvent("nats-user")); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		select {
		case e := <-got:
			if e.UserID != "nats-user" {
				t.Errorf("UserID = %q, want nats-user", e.UserID)
			}
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("event not delivered over NATS")
		}
	}
}

func TestEmbeddedServerServeStopsOnCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("embedded NATS test skipped in short mode")
	}
	srv, err := StartEmbeddedServer("127.0.0.1", -1)
	if err != nil {
		t.Fatalf("StartEmbeddedServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if srv.IsRunning() {
		t.Error("server still running after Serve returned")
	}
}

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWatermillLoggerFrom(logging.NewTestLogger(&buf))

	l.With(watermill.LogFields{"handler": "fanout"}).Error("boom", errors.New("bad"), watermill.LogFields{"attempt": 2})
	out := buf.String()
	for _, want := range []string{"boom", "bad", "fanout", "\"attempt\":2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
