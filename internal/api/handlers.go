// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"context"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/tracking"
	"github.com/tomtom215/waypoint/internal/websocket"
)

// Database is the storage surface the operational endpoints need.
type Database interface {
	Ping(ctx context.Context) error
	GetStats(ctx context.Context) (*models.AdminStats, error)
}

// Dependencies are the services a Handler is built from.
type Dependencies struct {
	Config   *config.Config
	DB       Database
	Auth     *auth.Service
	AuthMW   *auth.Middleware
	Cookies  *auth.CookieManager
	Tracking *tracking.Service
	Hub      *websocket.Hub
	Version  string
}

// Handler handles all HTTP API requests
type Handler struct {
	config    *config.Config
	db        Database
	auth      *auth.Service
	authMW    *auth.Middleware
	cookies   *auth.CookieManager
	tracking  *tracking.Service
	hub       *websocket.Hub
	upgrader  *gorillaws.Upgrader
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(deps Dependencies) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		config:    deps.Config,
		db:        deps.DB,
		auth:      deps.Auth,
		authMW:    deps.AuthMW,
		cookies:   deps.Cookies,
		tracking:  deps.Tracking,
		hub:       deps.Hub,
		upgrader:  websocket.NewUpgrader(deps.Config.Security.CORSOrigins),
		version:   version,
		startTime: time.Now(),
	}
}
