// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "strings"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupRequest registers a new account.
type SignupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
}

// Normalize trims the username and canonicalizes the e-mail before validation.
func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = normalizeEmail(r.Email)
}

// LoginRequest authenticates by e-mail and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// Normalize canonicalizes the e-mail.
func (r *LoginRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

// ForgotPasswordRequest starts the reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (r *ForgotPasswordRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

// ResetPasswordRequest completes the reset flow with the issued token.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Token       string `json:"token" validate:"required,hexadecimal,len=64"`
	NewPassword string `json:"newPassword" validate:"required,password"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.Token = strings.TrimSpace(r.Token)
}

// AddDeviceRequest registers a device or rotates its activation key.
type AddDeviceRequest struct {
	DeviceID      string `json:"deviceId" validate:"required,max=128"`
	ActivationKey string `json:"activationKey" validate:"required,min=4,max=128"`
	DeviceName    string `json:"deviceName" validate:"omitempty,max=100"`
}

// AddLocationRequest appends a reading through the REST surface. The
// coordinates are pointers so that 0 is accepted while absence is not.
type AddLocationRequest struct {
	Latitude       *float64 `json:"latitude" validate:"required,latitude"`
	Longitude      *float64 `json:"longitude" validate:"required,longitude"`
	BatteryVoltage float64  `json:"batteryVoltage" validate:"gte=0"`
}

// ClusterQuery bounds the grid cell size for history clustering.
type ClusterQuery struct {
	CellKM float64 `json:"cell_km" validate:"gte=0.1,lte=500"`
}
