// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// AdminStats returns row counts and connected socket clients.
//
// @Summary Operator statistics
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {object} models.APIResponse{data=models.AdminStats}
// @Failure 403 {object} models.APIResponse
// @Router /admin/stats [get]
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to get statistics", err)
		return
	}
	stats.WebSocketClients = h.wsClients()
	respondSuccess(w, http.StatusOK, stats, start)
}
