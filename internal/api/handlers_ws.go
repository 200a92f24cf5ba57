// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/websocket"
)

// WebSocket upgrades an authenticated request to a realtime connection.
// Device firmware that cannot set headers may pass the JWT as ?token=.
//
// @Summary Realtime location socket
// @Description Upgrades to a WebSocket. Messages are {"type":"...","data":{...}}; see the websocket package for the protocol.
// @Tags Realtime
// @Param token query string false "JWT for clients that cannot send cookies or headers"
// @Success 101 "Switching protocols"
// @Failure 401 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse "Server shutting down"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	claims, _, err := h.authMW.AuthenticateRequest(r, true)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket authentication failed")
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Unauthorized", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, h.tracking, claims.UserID)
	if !client.Start() {
		logging.Ctx(r.Context()).Debug().Msg("WebSocket rejected: hub stopped")
		return
	}
	logging.Ctx(r.Context()).Debug().
		Uint64("client", client.ID()).
		Str("user_id", claims.UserID).
		Msg("WebSocket client connected")
}
