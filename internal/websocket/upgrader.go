// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/logging"
)

// NewUpgrader returns an upgrader that accepts browser origins listed in
// allowedOrigins ("*" allows any). Requests without an Origin header come
// from non-browser clients such as device firmware and are accepted; the
// endpoint is authenticated either way.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      originChecker(allowedOrigins),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, o := range allowed {
		if o == "*" {
			wildcard = true
		}
		set[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		logging.Warn().Str("origin", logging.SanitizeValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
		return false
	}
}
