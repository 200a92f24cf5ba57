// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "time"

// Device is a tracked device owned by one user.
//
// ID is the server-assigned record identifier used in URLs and socket
// payloads. DeviceID is the hardware identifier supplied by the owner and
// is unique across all users.
type Device struct {
	ID            string        `json:"id"`
	DeviceID      string        `json:"deviceId"`
	DeviceName    string        `json:"deviceName,omitempty"`
	ActivationKey string        `json:"-"`
	UserID        string        `json:"userId"`
	LastLocation  *LastLocation `json:"lastLocation,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// LastLocation is the most recent reading cached on the device record.
// Time is the wall-clock string (HH:MM:SS) reported alongside Date.
type LastLocation struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Date           time.Time `json:"date"`
	Time           string    `json:"time"`
	BatteryVoltage float64   `json:"batteryVoltage"`
}

// OwnedBy reports whether userID owns the device.
func (d *Device) OwnedBy(userID string) bool {
	return d != nil && userID != "" && d.UserID == userID
}
