// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package services adapts components with a blocking start and a separate
// stop call, such as *http.Server, to suture.Service.
package services
