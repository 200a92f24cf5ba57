// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package websocket serves the real-time channel used by the map UI and by
device firmware.

A single Hub goroutine owns the set of connected clients, indexed by user ID.
Client lifecycle events are handled before deliveries so the client set is
always current when a message is routed. SendToUser queues a message for
every connection of one user; delivery order per client is the order in
which messages were queued. A client whose send buffer is full is dropped.

Each Client runs a read pump and a write pump. The read pump decodes
{"type": ..., "data": ...} frames and dispatches them:

  - updateLocation: records a reading through the LocationService.
  - getDeviceLocation: replies with the device's last location.
  - ping: replies with pong.

Inbound messages are limited per client with golang.org/x/time/rate;
excess messages receive an error reply instead of being processed.

When the hub's context is canceled every client receives a close frame.
*/
package websocket
