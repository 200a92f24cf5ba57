// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/waypoint/internal/auth"
)

func TestMiddleware_Authorize(t *testing.T) {
	m := NewMiddleware(newTestEnforcer(t))

	tests := []struct {
		name       string
		claims     *auth.Claims
		method     string
		path       string
		wantStatus int
	}{
		{"admin stats", &auth.Claims{UserID: "a", Role: "admin"}, http.MethodGet, "/api/admin/stats", http.StatusOK},
		{"user stats", &auth.Claims{UserID: "u", Role: "user"}, http.MethodGet, "/api/admin/stats", http.StatusForbidden},
		{"user devices", &auth.Claims{UserID: "u", Role: "user"}, http.MethodGet, "/api/device", http.StatusOK},
		{"no claims", nil, http.MethodGet, "/api/admin/stats", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := m.Authorize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.claims != nil {
				req = req.WithContext(auth.ContextWithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("next called = %v", called)
			}
		})
	}
}
