// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/supervisor"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// EventComponents holds the location event bus and, when configured, the
// embedded NATS server behind it.
type EventComponents struct {
	embedded *events.EmbeddedServer
	bus      *events.Bus
}

// InitEvents starts the embedded NATS server if requested and opens the
// bus. An empty NATS URL without the embedded server selects the in-process
// gochannel transport.
func InitEvents(cfg *config.EventsConfig, host string) (*EventComponents, error) {
	c := &EventComponents{}
	natsURL := cfg.NATSURL

	if cfg.Embedded {
		srv, err := events.StartEmbeddedServer(host, cfg.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		c.embedded = srv
		natsURL = srv.ClientURL()
	}

	bus, err := events.NewBus(events.Options{
		NATSURL: natsURL,
		Topic:   cfg.Topic,
		Logger:  events.NewWatermillLogger(),
	})
	if err != nil {
		if c.embedded != nil {
			c.embedded.Shutdown()
		}
		return nil, err
	}
	c.bus = bus

	logging.Info().
		Str("transport", bus.Transport()).
		Str("topic", bus.Topic()).
		Bool("embedded", c.embedded != nil).
		Msg("Event bus ready")
	return c, nil
}

// Bus returns the event bus.
func (c *EventComponents) Bus() *events.Bus {
	return c.bus
}

// Attach registers the embedded server with the data layer and the hub
// fan-out consumer with the messaging layer.
func (c *EventComponents) Attach(tree *supervisor.SupervisorTree, hub *ws.Hub) error {
	if c.embedded != nil {
		tree.AddDataService(c.embedded)
	}
	consumer, err := events.NewConsumer(c.bus, hub.HandleLocationUpdated, events.NewWatermillLogger())
	if err != nil {
		return err
	}
	tree.AddMessagingService(consumer)
	return nil
}

// Shutdown closes the bus. The embedded server, if any, is stopped by the
// supervisor.
func (c *EventComponents) Shutdown() {
	if c == nil || c.bus == nil {
		return
	}
	if err := c.bus.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event bus")
		return
	}
	logging.Info().Msg("Event bus closed")
}
