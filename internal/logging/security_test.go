// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                     "",
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "***@example.com",
		"not-an-email":         "***",
		"@example.com":         "***",
	}
	for in, want := range tests {
		if got := SanitizeEmail(in); got != want {
			t.Errorf("SanitizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	if got := SanitizeToken("short"); got != "***" {
		t.Errorf("short token = %q", got)
	}
	if got := SanitizeToken("eyJhbGciOiJIUzI1NiJ9.payload"); got != "eyJh...load" {
		t.Errorf("long token = %q", got)
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("dev\n1\r"); got != "dev1" {
		t.Errorf("control characters not stripped: %q", got)
	}
	long := strings.Repeat("x", 250)
	if got := SanitizeValue(long); len(got) != 203 {
		t.Errorf("expected truncation to 200 chars plus ellipsis, got %d", len(got))
	}
}

func TestSecurityLogger_MasksEmail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(NewTestLogger(&buf))
	l.LogLoginFailure("alice@example.com", "10.0.0.1", "bad password")

	out := buf.String()
	if strings.Contains(out, "alice@example.com") {
		t.Errorf("raw e-mail leaked: %s", out)
	}
	for _, want := range []string{`"event":"login_failure"`, `"component":"auth"`, `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}
