// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

// Middleware authenticates requests by JWT and rejects revoked tokens.
type Middleware struct {
	jwtManager  *JWTManager
	revocations RevocationStore
	cookieName  string
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwtManager *JWTManager, revocations RevocationStore, cookieName string) *Middleware {
	return &Middleware{
		jwtManager:  jwtManager,
		revocations: revocations,
		cookieName:  cookieName,
	}
}

// Authenticate rejects requests without a valid, unrevoked token and stores
// the claims on the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _, err := m.AuthenticateRequest(r, false)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Authentication failed")
			writeUnauthorized(w, "Unauthorized")
			return
		}

		ctx := ContextWithClaims(r.Context(), claims)
		ctx = logging.ContextWithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateRequest validates the request's token and returns its claims
// and raw value. allowQuery additionally accepts a "token" query parameter.
func (m *Middleware) AuthenticateRequest(r *http.Request, allowQuery bool) (*Claims, string, error) {
	token, err := m.ExtractToken(r, allowQuery)
	if err != nil {
		return nil, "", err
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, "", err
	}

	revoked, err := m.revocations.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, "", ErrTokenRevoked
	}
	return claims, token, nil
}

// ExtractToken reads the token from the Authorization header, then the auth
// cookie, then (when allowed) the token query parameter.
func (m *Middleware) ExtractToken(r *http.Request, allowQuery bool) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", fmt.Errorf("invalid authorization header")
		}
		return parts[1], nil
	}

	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	if allowQuery {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
	}
	return "", ErrMissingToken
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    models.ErrCodeUnauthorized,
			Message: message,
		},
	})
}
