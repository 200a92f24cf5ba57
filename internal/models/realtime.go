// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

// UpdateLocationData is the payload of an updateLocation socket message.
// DeviceID is the device record ID. ActivationKey lets device firmware
// report for a device it is not logged in as the owner of.
type UpdateLocationData struct {
	DeviceID       string   `json:"deviceId" validate:"required,max=64"`
	Latitude       *float64 `json:"latitude" validate:"required,latitude"`
	Longitude      *float64 `json:"longitude" validate:"required,longitude"`
	Date           string   `json:"date,omitempty"`
	Time           string   `json:"time,omitempty"`
	BatteryVoltage float64  `json:"batteryVoltage" validate:"gte=0"`
	ActivationKey  string   `json:"activationKey,omitempty"`
}

// DeviceLocationQuery is the payload of a getDeviceLocation socket message.
type DeviceLocationQuery struct {
	DeviceID string `json:"deviceId"`
}

// DeviceLocationReply answers a getDeviceLocation message. Exactly one of
// LastLocation and Error is set.
type DeviceLocationReply struct {
	DeviceID     string        `json:"deviceId"`
	LastLocation *LastLocation `json:"lastLocation,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// LocationUpdatedData is pushed to the owner's connections after a reading
// is committed.
type LocationUpdatedData struct {
	DeviceID     string       `json:"deviceId"`
	LastLocation LastLocation `json:"lastLocation"`
}
