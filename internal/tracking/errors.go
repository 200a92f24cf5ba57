// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracking

import "errors"

var (
	// ErrDeviceNotFound covers both missing devices and devices the caller
	// may not access.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrNoLocation is returned for a device with no recorded reading.
	ErrNoLocation = errors.New("no location data available for this device")

	// ErrDeviceExists is returned when re-adding an owned device with the
	// same activation key.
	ErrDeviceExists = errors.New("device already exists with the same activation key")

	// ErrDeviceTaken is returned when another user owns the hardware ID.
	ErrDeviceTaken = errors.New("device is registered to another user")

	// ErrInvalidReading is returned for out-of-range or malformed readings.
	ErrInvalidReading = errors.New("invalid location reading")

	// ErrTooManyPoints is returned when a clustering range exceeds the
	// configured reading cap.
	ErrTooManyPoints = errors.New("too many readings to cluster")

	// ErrDeferred means the reading is durable in the write-ahead log but
	// not yet in the database.
	ErrDeferred = errors.New("location stored for retry")
)
