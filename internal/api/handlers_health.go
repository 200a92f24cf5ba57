// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

const healthPingTimeout = 2 * time.Second

func (h *Handler) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}

func (h *Handler) wsClients() int {
	if h.hub == nil {
		return 0
	}
	return h.hub.ClientCount()
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, version, uptime and the number of connected WebSocket clients
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Healthy"
// @Failure 503 {object} models.APIResponse{data=models.HealthStatus} "Database unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:           "healthy",
		Database:         "connected",
		Version:          h.version,
		UptimeSeconds:    time.Since(h.startTime).Seconds(),
		WebSocketClients: h.wsClients(),
	}

	status := http.StatusOK
	if err := h.pingDB(r.Context()); err != nil {
		health.Status = "degraded"
		health.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	respondSuccess(w, status, health, time.Time{})
}

// HealthLive reports that the process is serving.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Time{})
}

// HealthReady reports whether the database is reachable.
//
// @Summary Readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDB(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Database unavailable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, time.Time{})
}
