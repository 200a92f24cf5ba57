// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/waypoint/internal/logging"
)

// Layer names a child supervisor of the tree.
type Layer string

const (
	LayerData      Layer = "data-layer"
	LayerMessaging Layer = "messaging-layer"
	LayerAPI       Layer = "api-layer"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time each service gets to stop.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// SupervisorTree is the root supervisor with one child per Layer.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig

	mu       sync.Mutex
	services map[Layer][]string
}

// NewSupervisorTree creates a new supervisor tree with the given configuration.
// A nil logger routes supervisor events to the global zerolog logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	config = config.withDefaults()
	if logger == nil {
		logger = logging.NewSlogLogger()
	}

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}

	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	// Children inherit the root's EventHook when added.
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	t := &SupervisorTree{
		root:     suture.New("waypoint", rootSpec),
		layers:   make(map[Layer]*suture.Supervisor, 3),
		config:   config,
		services: make(map[Layer][]string, 3),
	}
	for _, layer := range []Layer{LayerData, LayerMessaging, LayerAPI} {
		child := suture.New(string(layer), childSpec)
		t.layers[layer] = child
		t.root.Add(child)
	}
	return t, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add starts svc under layer once the tree is serving.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	t.mu.Lock()
	t.services[layer] = append(t.services[layer], serviceName(svc))
	t.mu.Unlock()
	return sup.Add(svc), nil
}

// AddDataService adds a storage-side service: WAL loops, embedded NATS,
// cache cleanup.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerData, svc)
	return token
}

// AddMessagingService adds the WebSocket hub or the event consumer.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerMessaging, svc)
	return token
}

// AddAPIService adds the HTTP server.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	token, _ := t.Add(LayerAPI, svc)
	return token
}

// Services returns the names added to each layer, in order.
func (t *SupervisorTree) Services() map[Layer][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Layer][]string, len(t.services))
	for layer, names := range t.services {
		out[layer] = append([]string(nil), names...)
	}
	return out
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}

// Serve starts the tree and blocks until ctx is canceled. Services that
// did not stop within the shutdown timeout are logged.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	for layer, names := range t.Services() {
		logging.Info().Str("layer", string(layer)).Strs("services", names).Msg("Starting supervisor layer")
	}
	err := t.root.Serve(ctx)
	t.logUnstopped()
	return err
}

// ServeBackground starts the tree in a goroutine. The channel receives the
// result when the tree stops.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// Remove stops and removes a service added with Add.
func (t *SupervisorTree) Remove(token suture.ServiceToken) error {
	for _, sup := range t.layers {
		err := sup.Remove(token)
		if !errors.Is(err, suture.ErrWrongSupervisor) {
			return err
		}
	}
	return suture.ErrWrongSupervisor
}

// UnstoppedServiceReport lists services that missed the shutdown timeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

func (t *SupervisorTree) logUnstopped() {
	report, err := t.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not build unstopped service report")
		return
	}
	for _, u := range report {
		logging.Warn().Str("service", u.Name).Msg("Service did not stop within the shutdown timeout")
	}
}
