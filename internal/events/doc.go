// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package events carries LocationUpdated events from the ingestion path to the
WebSocket hub over Watermill.

Transports:

  - In-process (default): watermill gochannel pub/sub.
  - NATS: watermill-nats publisher and subscriber over core NATS, with
    JetStream disabled. Publishing is guarded by a circuit breaker.
  - Embedded NATS: an in-process nats-server started by EmbeddedServer; the
    bus connects to it like any remote server.

Every instance subscribes without a queue group so each one can deliver to
the WebSocket clients it holds. Consumer runs a Watermill router whose
handler decodes the event and passes it to a Handler.
*/
package events
