// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

const deliveryBuffer = 1024

type delivery struct {
	userID string
	msg    Message
}

// Hub tracks connected clients and routes messages to them by user.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery

	// Owned by the Run goroutine.
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}

	count   atomic.Int64
	stopped chan struct{}
	once    sync.Once
}

// NewHub creates a hub. Call Run (or Serve) to start it.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		deliveries: make(chan delivery, deliveryBuffer),
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		stopped:    make(chan struct{}),
	}
}

// Register adds a client. It returns false if the hub has stopped or the
// client has no user, since such a client could never be addressed.
func (h *Hub) Register(c *Client) bool {
	if c.userID == "" {
		return false
	}
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister removes a client. Safe to call after the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// SendToUser queues msg for every connection of userID. It never blocks;
// the message is dropped if the hub is backed up.
func (h *Hub) SendToUser(userID string, msg Message) bool {
	select {
	case h.deliveries <- delivery{userID: userID, msg: msg}:
		return true
	default:
		logging.Warn().Str("type", msg.Type).Msg("WebSocket delivery queue full, dropping message")
		metrics.WSErrors.WithLabelValues("queue_full").Inc()
		return false
	}
}

// HandleLocationUpdated delivers a committed reading to the device owner.
// It has the events.Handler signature.
func (h *Hub) HandleLocationUpdated(_ context.Context, e *models.LocationUpdatedEvent) error {
	h.SendToUser(e.UserID, Message{
		Type: TypeLocationUpdated,
		Data: models.LocationUpdatedData{DeviceID: e.DeviceRecordID, LastLocation: e.LastLocation},
	})
	return nil
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.Run(ctx)
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Run processes registrations and deliveries until ctx is canceled, then
// closes every client. A hub cannot be restarted after Run returns.
func (h *Hub) Run(ctx context.Context) error {
	defer h.once.Do(func() { close(h.stopped) })

	for {
		// Shutdown first, then lifecycle events, then deliveries.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.clients[c] = struct{}{}
	set, ok := h.byUser[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.byUser[c.userID] = set
	}
	set[c] = struct{}{}
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
	logging.Debug().Uint64("client", c.id).Int("total_clients", len(h.clients)).Msg("WebSocket client connected")
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	if set := h.byUser[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
	c.close()
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
	logging.Debug().Uint64("client", c.id).Int("total_clients", len(h.clients)).Msg("WebSocket client disconnected")
}

// deliver sends to the user's clients in connection order. Clients whose
// buffer is full are dropped.
func (h *Hub) deliver(d delivery) {
	set := h.byUser[d.userID]
	if len(set) == 0 {
		return
	}

	targets := sortedClients(set)
	for _, c := range targets {
		if c.enqueue(d.msg) {
			continue
		}
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
		logging.Warn().Uint64("client", c.id).Msg("WebSocket client too slow, disconnecting")
		h.remove(c)
	}
}

func sortedClients(set map[*Client]struct{}) []*Client {
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (h *Hub) shutdown(ctx context.Context) {
	n := len(h.clients)
	for _, c := range sortedClients(h.clients) {
		c.close()
	}
	h.clients = make(map[*Client]struct{})
	h.byUser = make(map[string]map[*Client]struct{})
	h.count.Store(0)
	metrics.WSConnections.Set(0)

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("WebSocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
