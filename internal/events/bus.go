// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/waypoint/internal/breaker"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "location.updated"

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Options configures a Bus.
type Options struct {
	// NATSURL selects the NATS transport; empty uses gochannel.
	NATSURL string
	Topic   string
	Logger  watermill.LoggerAdapter
}

// Bus publishes and subscribes to location events.
type Bus struct {
	topic      string
	transport  string
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *breaker.Breaker
	closers    []func() error

	mu     sync.RWMutex
	closed bool
}

// NewBus creates the bus for opts.
func NewBus(opts Options) (*Bus, error) {
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	if opts.Logger == nil {
		opts.Logger = NewWatermillLogger()
	}
	if opts.NATSURL == "" {
		return newChannelBus(opts), nil
	}
	return newNATSBus(opts)
}

func newChannelBus(opts Options) *Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, opts.Logger)
	return &Bus{
		topic:      opts.Topic,
		transport:  "gochannel",
		publisher:  ch,
		subscriber: ch,
		closers:    []func() error{ch.Close},
	}
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("waypoint"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATSBus(opts Options) (*Bus, error) {
	marshaler := &wmnats.NATSMarshaler{}
	jetStream := wmnats.JetStreamConfig{Disabled: true}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         opts.NATSURL,
		NatsOptions: natsOptions(opts.Logger),
		Marshaler:   marshaler,
		JetStream:   jetStream,
	}, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:              opts.NATSURL,
		SubscribersCount: 1,
		CloseTimeout:     10 * time.Second,
		AckWaitTimeout:   30 * time.Second,
		SubscribeTimeout: 30 * time.Second,
		NatsOptions:      natsOptions(opts.Logger),
		Unmarshaler:      marshaler,
		JetStream:        jetStream,
	}, opts.Logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &Bus{
		topic:      opts.Topic,
		transport:  "nats",
		publisher:  pub,
		subscriber: sub,
		breaker:    breaker.New("nats-publish", breaker.DefaultSettings()),
		closers:    []func() error{pub.Close, sub.Close},
	}, nil
}

// Topic returns the topic events are published on.
func (b *Bus) Topic() string {
	return b.topic
}

// Transport returns gochannel or nats.
func (b *Bus) Transport() string {
	return b.transport
}

// Subscriber exposes the subscriber for the consumer router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

// Publish sends event to every subscribed instance.
func (b *Bus) Publish(ctx context.Context, event *models.LocationUpdatedEvent) (err error) {
	defer func() { metrics.RecordEventPublished(b.topic, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	if event.EventID == "" {
		event.EventID = watermill.NewUUID()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("device_id", event.DeviceRecordID)
	msg.SetContext(ctx)

	if b.breaker == nil {
		return b.publisher.Publish(b.topic, msg)
	}
	return b.breaker.Execute(func() error {
		return b.publisher.Publish(b.topic, msg)
	})
}

// Close shuts the transport down.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
