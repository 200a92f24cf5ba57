// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"device": {"id": "5c1f...", "deviceId": "TRK-001"}},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "Device not found"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error body.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used in APIError.Code.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UserResponse is returned by check-auth.
type UserResponse struct {
	User *User `json:"user"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ForgotPasswordResponse is returned by forgot-password. ResetToken is only
// populated outside production so the flow can be exercised without SMTP.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// DeviceResponse wraps a single device.
type DeviceResponse struct {
	Device  *Device `json:"device"`
	Message string  `json:"message,omitempty"`
}

// DeviceLocationResponse is the payload of the last-location lookup.
type DeviceLocationResponse struct {
	DeviceRecordID string        `json:"deviceId"`
	LastLocation   *LastLocation `json:"lastLocation"`
}

// AdminStats summarizes stored data for operators.
type AdminStats struct {
	Users            int64 `json:"users"`
	Devices          int64 `json:"devices"`
	LocationRecords  int64 `json:"location_records"`
	WebSocketClients int   `json:"websocket_clients"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status           string  `json:"status"`
	Database         string  `json:"database"`
	Version          string  `json:"version"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebSocketClients int     `json:"websocket_clients"`
}
