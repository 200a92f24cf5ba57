// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/middleware"
	"github.com/tomtom215/waypoint/internal/models"
)

// Router builds the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authorizer    *authz.Middleware
}

// NewRouter creates a router for handler. authorizer guards /api/admin.
func NewRouter(handler *Handler, authorizer *authz.Middleware) *Router {
	cfg := DefaultChiMiddlewareConfig(handler.config.Security.CORSOrigins)
	cfg.RateLimitDisabled = handler.config.Security.RateLimitDisabled
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
		authorizer:    authorizer,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	mw := router.chiMiddleware
	authenticate := h.authMW.Authenticate

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS()) // global so OPTIONS preflight reaches it
	r.Use(mw.RateLimitByIP(GlobalRateLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.Compression)

		// ========================
		// Health Endpoints
		// ========================
		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		// ========================
		// Authentication Endpoints
		// ========================
		r.Route("/auth", func(r chi.Router) {
			r.Use(mw.RateLimitByIP(AuthRateLimit))
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Get("/logout", h.Logout)
			r.Post("/logout", h.Logout)
			r.With(authenticate).Get("/check-auth", h.CheckAuth)

			r.Group(func(r chi.Router) {
				r.Use(mw.RateLimitByIP(ResetRateLimit))
				r.Post("/forgot-password", h.ForgotPassword)
				r.Post("/reset-password", h.ResetPassword)
			})
		})

		// ========================
		// Devices and Locations
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(router.authorizer.Authorize)
			r.Use(mw.RateLimitWrites(WriteRateLimit))

			r.Route("/device", func(r chi.Router) {
				r.Get("/", h.ListDevices)
				r.Post("/add", h.AddDevice)
				r.Get("/location/{id}", h.DeviceLocation)
				r.Get("/{id}", h.GetDevice)
				r.Delete("/{id}", h.DeleteDevice)
			})

			r.Route("/location/history/{id}", func(r chi.Router) {
				r.Get("/", h.LocationHistory)
				r.Post("/", h.AddLocation)
				r.Get("/clusters", h.LocationClusters)
			})
		})

		// ========================
		// Admin
		// ========================
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(router.authorizer.Authorize)
			r.Get("/stats", h.AdminStats)
		})
	})

	// ========================
	// Realtime
	// ========================
	r.Get("/ws", h.WebSocket)

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
