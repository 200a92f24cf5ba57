// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/waypoint/internal/logging"
)

// EmbeddedServer is an in-process NATS server.
type EmbeddedServer struct {
	server *server.Server
}

// StartEmbeddedServer starts a NATS server on host:port and waits until it
// accepts connections. Port -1 picks a random free port.
func StartEmbeddedServer(host string, port int) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "waypoint-events",
		Host:       host,
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	logging.Info().Str("url", ns.ClientURL()).Msg("Embedded NATS server started")
	return &EmbeddedServer{server: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string {
	return s.server.ClientURL()
}

// IsRunning reports whether the server is accepting connections.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}

// Serve keeps the server up until ctx is canceled, then shuts it down. It
// lets the supervisor own the server's lifetime.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	<-ctx.Done()
	s.Shutdown()
	logging.Info().Msg("Embedded NATS server stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *EmbeddedServer) String() string {
	return "embedded-nats"
}
