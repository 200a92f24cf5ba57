// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/tracking"
	"github.com/tomtom215/waypoint/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
	handlerTimeout = 10 * time.Second

	// MessageRate and MessageBurst limit inbound messages per client.
	MessageRate  = 10
	MessageBurst = 20
)

// LocationService is what clients need from the tracking service.
type LocationService interface {
	IngestSocket(ctx context.Context, userID string, data models.UpdateLocationData) (*models.LocationRecord, error)
	LastLocation(ctx context.Context, userID, id string) (*models.LastLocation, error)
}

var clientIDCounter atomic.Uint64

// Client is one WebSocket connection. userID is the authenticated account
// that opened it; updateLocation may still name a device that account does
// not own when the message carries the device's activation key.
type Client struct {
	id      uint64
	userID  string
	hub     *Hub
	conn    *websocket.Conn
	service LocationService
	limiter *rate.Limiter
	ctx     context.Context

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps conn for userID.
func NewClient(hub *Hub, conn *websocket.Conn, service LocationService, userID string) *Client {
	id := clientIDCounter.Add(1)
	ctx := logging.ContextWithUserID(context.Background(), userID)
	return &Client{
		id:      id,
		userID:  userID,
		hub:     hub,
		conn:    conn,
		service: service,
		limiter: rate.NewLimiter(rate.Limit(MessageRate), MessageBurst),
		ctx:     ctx,
		send:    make(chan Message, sendBuffer),
		done:    make(chan struct{}),
	}
}

// ID returns the client's connection sequence number.
func (c *Client) ID() uint64 {
	return c.id
}

// UserID returns the authenticated user, if any.
func (c *Client) UserID() string {
	return c.userID
}

// enqueue queues msg without blocking. It returns false when the buffer is
// full. Messages for a closed client are discarded.
func (c *Client) enqueue(msg Message) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close signals the write pump to send a close frame and exit.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Start registers the client and runs its pumps. It returns false if the
// hub has already stopped.
func (c *Client) Start() bool {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Uint64("client", c.id).Msg("Unexpected WebSocket close")
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.WSErrors.WithLabelValues("rate_limited").Inc()
			c.reply(errorMessage("rate limit exceeded"))
			continue
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			metrics.WSErrors.WithLabelValues("malformed").Inc()
			c.reply(errorMessage("invalid message"))
			continue
		}
		metrics.WSMessagesReceived.WithLabelValues(msg.Type).Inc()
		c.handle(msg)
	}
}

func (c *Client) handle(msg inbound) {
	switch msg.Type {
	case TypePing:
		c.reply(Message{Type: TypePong})
	case TypeUpdateLocation:
		c.handleUpdateLocation(msg.Data)
	case TypeGetDeviceLocation:
		c.handleGetDeviceLocation(msg.Data)
	default:
		c.reply(errorMessage("unknown message type"))
	}
}

func (c *Client) handleUpdateLocation(raw json.RawMessage) {
	var data models.UpdateLocationData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.reply(errorMessage("invalid message data"))
		return
	}
	if verr := validation.ValidateStruct(&data); verr != nil {
		c.reply(errorMessage(verr.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, handlerTimeout)
	defer cancel()

	_, err := c.service.IngestSocket(ctx, c.userID, data)
	switch {
	case err == nil, errors.Is(err, tracking.ErrDeferred):
	case errors.Is(err, tracking.ErrDeviceNotFound):
		c.reply(errorMessage("Device not found"))
	case errors.Is(err, tracking.ErrInvalidReading):
		c.reply(errorMessage(err.Error()))
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("WebSocket location update failed")
		c.reply(errorMessage("Failed to update location"))
	}
}

func (c *Client) handleGetDeviceLocation(raw json.RawMessage) {
	var q models.DeviceLocationQuery
	if err := json.Unmarshal(raw, &q); err != nil || q.DeviceID == "" {
		c.reply(errorMessage("deviceId is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, handlerTimeout)
	defer cancel()

	reply := models.DeviceLocationReply{DeviceID: q.DeviceID}
	loc, err := c.service.LastLocation(ctx, c.userID, q.DeviceID)
	switch {
	case err == nil:
		reply.LastLocation = loc
	case errors.Is(err, tracking.ErrDeviceNotFound):
		reply.Error = "Device not found"
	case errors.Is(err, tracking.ErrNoLocation):
		reply.Error = "No location data available for this device"
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("WebSocket location lookup failed")
		reply.Error = "Failed to get device location"
	}
	c.reply(Message{Type: TypeGetDeviceLocation, Data: reply})
}

func (c *Client) reply(msg Message) {
	if !c.enqueue(msg) {
		metrics.WSErrors.WithLabelValues("reply_dropped").Inc()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing connection"))
			return

		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logging.Debug().Err(err).Uint64("client", c.id).Msg("WebSocket write failed")
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
