// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/waypoint/docs" // registers the swagger document
	"github.com/tomtom215/waypoint/internal/api"
	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/supervisor"
	"github.com/tomtom215/waypoint/internal/supervisor/services"
	"github.com/tomtom215/waypoint/internal/tracking"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	lastLocationCapacity = 10000
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Waypoint with supervisor tree")
	metrics.SetAppInfo(version)
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Strs("cors_origins", cfg.Security.CORSOrigins).Msg("CORS allows any origin")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	authComponents, err := InitAuth(cfg, db)
	if err != nil {
		return err
	}
	defer authComponents.Shutdown()

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return err
	}

	walComponents, err := InitWAL(&cfg.WAL)
	if err != nil {
		return err
	}
	defer walComponents.Shutdown()

	eventComponents, err := InitEvents(&cfg.Events, cfg.Server.Host)
	if err != nil {
		return err
	}
	defer eventComponents.Shutdown()

	lastLocations := cache.New("last-location", cfg.Cache.LastLocationTTL, lastLocationCapacity)
	opts := []tracking.Option{
		tracking.WithPublisher(eventComponents.Bus()),
		tracking.WithCache(lastLocations),
	}
	if w := walComponents.Log(); w != nil {
		opts = append(opts, tracking.WithWAL(w))
	}
	trackingService := tracking.NewService(db, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if walComponents != nil {
		result, err := trackingService.Recover(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("WAL recovery error")
		} else if result.Pending > 0 {
			logging.Info().
				Int("pending", result.Pending).
				Int("applied", result.Applied).
				Int("failed", result.Failed).
				Int("dropped", result.Dropped).
				Dur("duration", result.Duration).
				Msg("WAL recovery completed")
		}
		logging.Info().Int64("pending", walComponents.Stats().Pending).Msg("WAL ready")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	// Data layer
	walComponents.Attach(tree, trackingService.Applier())
	tree.AddDataService(lastLocations)
	if sweeper := authComponents.Sweeper(); sweeper != nil {
		tree.AddDataService(sweeper)
	}

	// Messaging layer
	hub := ws.NewHub()
	tree.AddMessagingService(hub)
	if err := eventComponents.Attach(tree, hub); err != nil {
		return err
	}

	// API layer
	handler := api.NewHandler(api.Dependencies{
		Config:   cfg,
		DB:       db,
		Auth:     authComponents.service,
		AuthMW:   authComponents.middleware,
		Cookies:  authComponents.cookies,
		Tracking: trackingService,
		Hub:      hub,
		Version:  version,
	})
	router := api.NewRouter(handler, authz.NewMiddleware(enforcer))
	server := services.NewHTTPServer(&cfg.Server, router.SetupChi())
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))

	logging.Info().
		Str("addr", server.Addr).
		Interface("services", tree.Services()).
		Msg("Supervisor tree configured")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return serveErr
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, u := range unstopped {
			logging.Warn().Str("service", u.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Waypoint stopped gracefully")
	return nil
}
