// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/tracking"
)

// parseHistoryFilter reads from, to and limit. On failure the error
// response has already been written.
func parseHistoryFilter(w http.ResponseWriter, r *http.Request) (models.HistoryFilter, bool) {
	var filter models.HistoryFilter
	var err error

	if filter.From, err = getTimeParam(r, "from"); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "from must be an RFC3339 timestamp", nil)
		return filter, false
	}
	if filter.To, err = getTimeParam(r, "to"); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "to must be an RFC3339 timestamp", nil)
		return filter, false
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "to must not be before from", nil)
		return filter, false
	}

	filter.Limit, err = getIntParam(r, "limit", database.DefaultHistoryLimit)
	if err != nil || filter.Limit < 1 || filter.Limit > tracking.MaxHistoryLimit {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"limit must be between 1 and "+strconv.Itoa(tracking.MaxHistoryLimit), nil)
		return filter, false
	}
	return filter, true
}

// LocationHistory returns an owned device's history sorted by date.
//
// @Summary Location history
// @Tags Locations
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Param from query string false "Start (RFC3339)" example("2026-01-01T00:00:00Z")
// @Param to query string false "End (RFC3339)"
// @Param limit query int false "Maximum records (1-10000)" default(1000) minimum(1) maximum(10000)
// @Success 200 {object} models.APIResponse{data=[]models.LocationRecord}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /location/history/{id} [get]
func (h *Handler) LocationHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	filter, ok := parseHistoryFilter(w, r)
	if !ok {
		return
	}

	records, err := h.tracking.History(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), filter)
	if err != nil {
		respondTrackingError(w, r, err, "Failed to get location history")
		return
	}
	if records == nil {
		records = []models.LocationRecord{}
	}
	respondSuccess(w, http.StatusOK, records, start)
}

// AddLocation appends a reading for an owned device.
//
// @Summary Add a location
// @Description Records a reading stamped with the current UTC time and updates the device's last location. Returns 202 when the write was queued for retry.
// @Tags Locations
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Param request body models.AddLocationRequest true "Reading"
// @Success 201 {object} models.APIResponse{data=models.LocationRecord}
// @Success 202 {object} models.APIResponse{data=models.LocationRecord}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /location/history/{id} [post]
func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req models.AddLocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.tracking.AddLocation(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if errors.Is(err, tracking.ErrDeferred) {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Location write deferred to WAL")
		respondSuccess(w, http.StatusAccepted, rec, time.Time{})
		return
	}
	if err != nil {
		respondTrackingError(w, r, err, "Failed to add location")
		return
	}
	respondSuccess(w, http.StatusCreated, rec, time.Time{})
}

// LocationClusters groups an owned device's history into grid cells.
//
// @Summary Location clusters
// @Tags Locations
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Param cell_km query number false "Grid cell size in km (0.1-500)" default(1)
// @Param from query string false "Start (RFC3339)"
// @Param to query string false "End (RFC3339)"
// @Success 200 {object} models.APIResponse{data=[]models.LocationCluster}
// @Failure 400 {object} models.APIResponse "Invalid cell size or too many readings in range"
// @Failure 404 {object} models.APIResponse
// @Router /location/history/{id}/clusters [get]
func (h *Handler) LocationClusters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := models.ClusterQuery{CellKM: cache.DefaultCellKM}
	if v := r.URL.Query().Get("cell_km"); v != "" {
		cellKM, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "cell_km must be a number", nil)
			return
		}
		query.CellKM = cellKM
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	filter, ok := parseHistoryFilter(w, r)
	if !ok {
		return
	}

	clusters, err := h.tracking.Clusters(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), query.CellKM, filter)
	if err != nil {
		respondTrackingError(w, r, err, "Failed to cluster location history")
		return
	}
	respondSuccess(w, http.StatusOK, clusters, start)
}
