// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package api exposes Waypoint's HTTP surface.

The router is built on chi with go-chi/cors and go-chi/httprate. Every
response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"..."}}
	{"status":"error","error":{"code":"NOT_FOUND","message":"Device not found"},...}

Route groups:

	/api/auth/*               signup, login, logout, check-auth, password reset
	/api/device/*             device registry and last location (authenticated)
	/api/location/history/*   history, clusters and REST ingest (authenticated)
	/api/admin/*              operator statistics (authenticated + casbin)
	/api/health[/live|/ready] liveness and readiness
	/ws                       realtime socket (cookie, Bearer or ?token=)
	/metrics                  Prometheus
	/swagger/*                OpenAPI UI

Handlers hold no request state; all dependencies are injected through
Dependencies at construction.
*/
package api
