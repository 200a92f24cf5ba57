// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package websocket

import (
	"github.com/goccy/go-json"
)

// Message types.
const (
	TypeUpdateLocation    = "updateLocation"
	TypeGetDeviceLocation = "getDeviceLocation"
	TypeLocationUpdated   = "locationUpdated"
	TypePing              = "ping"
	TypePong              = "pong"
	TypeError             = "error"
)

// Message is an outbound frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inbound is a frame read from a client. Data is decoded per type.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Message string `json:"message"`
}

func errorMessage(msg string) Message {
	return Message{Type: TypeError, Data: ErrorData{Message: msg}}
}
