// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

// Middleware enforces the policy for the request path and method using the
// role from the authenticated claims. It must run after auth.Middleware.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates an authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize rejects requests the caller's role may not perform.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetClaims(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Unauthorized")
			return
		}

		allowed, err := m.enforcer.Enforce(claims.Role, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			writeError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error")
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization denied")
			writeError(w, http.StatusForbidden, models.ErrCodeForbidden, "Forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}
