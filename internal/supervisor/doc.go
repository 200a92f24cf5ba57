// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package supervisor runs Waypoint's long-lived components under a suture
supervisor tree.

	waypoint (root)
	├── data-layer        WAL retry loop, WAL compactor, embedded NATS, cache cleanup
	├── messaging-layer   WebSocket hub, event consumer
	└── api-layer         HTTP server

Each layer is its own suture.Supervisor, so a crash-looping consumer backs
off without restarting the HTTP server. Supervisor events are logged through
sutureslog, bridged to zerolog by logging.SlogHandler.

Any value with Serve(ctx) error and String() string can be added; most
Waypoint components implement suture.Service directly. The services
subpackage adapts components that do not, such as *http.Server.
*/
package supervisor
