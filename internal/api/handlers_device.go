// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/tracking"
)

// respondTrackingError maps tracking sentinels onto the envelope.
func respondTrackingError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, tracking.ErrDeviceNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Device not found", nil)
	case errors.Is(err, tracking.ErrNoLocation):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "No location data available for this device", nil)
	case errors.Is(err, tracking.ErrDeviceExists):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, "Device already exists with the same activation key", nil)
	case errors.Is(err, tracking.ErrDeviceTaken):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "Device is registered to another user", nil)
	case errors.Is(err, tracking.ErrInvalidReading):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, tracking.ErrTooManyPoints):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, err.Error(), nil)
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, fallback, err)
	}
}

// ListDevices returns the caller's devices.
//
// @Summary List devices
// @Tags Devices
// @Produce json
// @Security CookieAuth
// @Success 200 {object} models.APIResponse{data=[]models.Device}
// @Router /device [get]
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	devices, err := h.tracking.ListDevices(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondTrackingError(w, r, err, "Failed to list devices")
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	respondSuccess(w, http.StatusOK, devices, start)
}

// AddDevice registers a device, or rotates the activation key of one the
// caller already owns.
//
// @Summary Add a device
// @Description Creates the device (201) or, when the caller already owns the hardware ID with a different key, updates the key (200).
// @Tags Devices
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body models.AddDeviceRequest true "Device"
// @Success 201 {object} models.APIResponse{data=models.DeviceResponse}
// @Success 200 {object} models.APIResponse{data=models.DeviceResponse}
// @Failure 400 {object} models.APIResponse "Same activation key"
// @Failure 409 {object} models.APIResponse "Owned by another user"
// @Router /device/add [post]
func (h *Handler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var req models.AddDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	device, created, err := h.tracking.AddDevice(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		respondTrackingError(w, r, err, "Failed to add device")
		return
	}

	if created {
		respondSuccess(w, http.StatusCreated, models.DeviceResponse{Device: device}, time.Time{})
		return
	}
	respondSuccess(w, http.StatusOK, models.DeviceResponse{Device: device, Message: "Activation key updated"}, time.Time{})
}

// GetDevice returns one owned device.
//
// @Summary Get a device
// @Tags Devices
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Success 200 {object} models.APIResponse{data=models.Device}
// @Failure 404 {object} models.APIResponse
// @Router /device/{id} [get]
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.tracking.GetDevice(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondTrackingError(w, r, err, "Failed to get device")
		return
	}
	respondSuccess(w, http.StatusOK, device, time.Time{})
}

// DeleteDevice removes an owned device and its history.
//
// @Summary Delete a device
// @Tags Devices
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Success 200 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 404 {object} models.APIResponse
// @Router /device/{id} [delete]
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.tracking.DeleteDevice(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondTrackingError(w, r, err, "Failed to delete device")
		return
	}
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: "Device deleted"}, time.Time{})
}

// DeviceLocation returns the last location of an owned device.
//
// @Summary Last location
// @Tags Devices
// @Produce json
// @Security CookieAuth
// @Param id path string true "Device record ID"
// @Success 200 {object} models.APIResponse{data=models.DeviceLocationResponse}
// @Failure 404 {object} models.APIResponse "Device not found, or no location data"
// @Router /device/location/{id} [get]
func (h *Handler) DeviceLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	loc, err := h.tracking.LastLocation(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		respondTrackingError(w, r, err, "Failed to get device location")
		return
	}
	respondSuccess(w, http.StatusOK, models.DeviceLocationResponse{DeviceRecordID: id, LastLocation: loc}, time.Time{})
}
