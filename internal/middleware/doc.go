// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package middleware provides the chi-compatible HTTP middleware shared by all
routes: request IDs, Prometheus instrumentation, access logging, security
headers and gzip compression.

The router applies them in this order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors)

and adds SecurityHeaders and Compression to the /api subtree. WebSocket
upgrades bypass compression.
*/
package middleware
