// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("expected 8 characters, got %d (%q)", len(id), id)
	}
	if id == GenerateCorrelationID() {
		t.Error("expected unique correlation IDs")
	}
}

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	if id := GenerateRequestID(); len(id) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(id))
	}
}

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || UserIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithUserID(ctx, "user-1")

	if got := CorrelationIDFromContext(ctx); got != "corr1234" {
		t.Errorf("correlation ID = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("request ID = %q", got)
	}
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Errorf("user ID = %q", got)
	}

	if CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background())) == "" {
		t.Error("ContextWithNewCorrelationID should set an ID")
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	ctx := ContextWithRequestID(context.Background(), "req-42")
	ctx = ContextWithCorrelationID(ctx, "abcd1234")
	ctx = ContextWithUserID(ctx, "u-7")

	Ctx(ctx).Info().Msg("handled")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"correlation_id":"abcd1234"`, `"user_id":"u-7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestCtx_NoValues(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	Ctx(context.Background()).Info().Msg("plain")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id in %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	l := WithComponent("websocket")
	l.Info().Msg("hub started")

	if !strings.Contains(buf.String(), `"component":"websocket"`) {
		t.Errorf("missing component field: %s", buf.String())
	}
}
