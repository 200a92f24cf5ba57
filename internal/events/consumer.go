// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// Handler receives decoded location events.
type Handler func(ctx context.Context, event *models.LocationUpdatedEvent) error

// Consumer routes bus messages to a Handler. It implements suture.Service.
type Consumer struct {
	router *message.Router
	topic  string
	logger watermill.LoggerAdapter
}

// NewConsumer builds a router subscribed to bus's topic. Handler errors are
// retried briefly and then dropped: live location fan-out is best effort
// and a redelivered stale position is worse than a missed one.
func NewConsumer(bus *Bus, handler Handler, logger watermill.LoggerAdapter) (*Consumer, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	topic := bus.Topic()
	router.AddMiddleware(
		dropAfterRetries(topic, logger),
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      2,
			InitialInterval: 50 * time.Millisecond,
			MaxInterval:     500 * time.Millisecond,
			Multiplier:      2,
			Logger:          logger,
		}.Middleware,
	)

	router.AddConsumerHandler("location-fanout", topic, bus.Subscriber(), func(msg *message.Message) error {
		var event models.LocationUpdatedEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			// Undecodable payloads cannot succeed on retry.
			logger.Error("Dropping malformed location event", err, watermill.LogFields{"message_uuid": msg.UUID})
			metrics.RecordEventConsumed(topic, err)
			return nil
		}
		return handler(msg.Context(), &event)
	})

	return &Consumer{router: router, topic: topic, logger: logger}, nil
}

func dropAfterRetries(topic string, logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			out, err := h(msg)
			metrics.RecordEventConsumed(topic, err)
			if err != nil {
				logger.Error("Dropping location event after retries", err, watermill.LogFields{"message_uuid": msg.UUID})
				return nil, nil
			}
			return out, nil
		}
	}
}

// Running is closed once the handler is subscribed.
func (c *Consumer) Running() <-chan struct{} {
	return c.router.Running()
}

// Serve runs the router until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	if err := c.router.Run(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (c *Consumer) String() string {
	return "event-consumer"
}
