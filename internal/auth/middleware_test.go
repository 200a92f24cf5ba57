// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/models"
)

func newTestMiddleware(t *testing.T) (*Middleware, *JWTManager, *MemoryRevocationStore) {
	t.Helper()
	m := newTestJWTManager(t)
	store := NewMemoryRevocationStore()
	return NewMiddleware(m, store, "waypoint_token"), m, store
}

func TestMiddleware_Authenticate(t *testing.T) {
	mw, jwtManager, store := newTestMiddleware(t)
	token, claims, err := jwtManager.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	revokedToken, revokedClaims, err := jwtManager.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Revoke(context.Background(), revokedClaims.ID, revokedClaims.ExpiresAt.Time)

	var gotUserID string
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "waypoint_token", Value: token}) }, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", token) }, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+revokedToken) }, http.StatusUnauthorized},
		{"query ignored", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", token)
			r.URL.RawQuery = q.Encode()
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != claims.UserID {
				t.Errorf("user ID in context = %q, want %q", gotUserID, claims.UserID)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var resp models.APIResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if resp.Status != "error" || resp.Error == nil || resp.Error.Code != models.ErrCodeUnauthorized {
					t.Errorf("unexpected body %s", rec.Body.String())
				}
			}
		})
	}
}

func TestMiddleware_ExtractTokenPrecedence(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	req.AddCookie(&http.Cookie{Name: "waypoint_token", Value: "from-cookie"})

	got, err := mw.ExtractToken(req, true)
	if err != nil || got != "from-header" {
		t.Errorf("ExtractToken() = %q, %v; want header token", got, err)
	}

	req.Header.Del("Authorization")
	got, _ = mw.ExtractToken(req, true)
	if got != "from-cookie" {
		t.Errorf("ExtractToken() = %q, want cookie token", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	got, _ = mw.ExtractToken(req, true)
	if got != "from-query" {
		t.Errorf("ExtractToken() = %q, want query token", got)
	}
	if _, err := mw.ExtractToken(req, false); err != ErrMissingToken {
		t.Errorf("ExtractToken(allowQuery=false) error = %v, want ErrMissingToken", err)
	}
}

func TestCookieManager(t *testing.T) {
	cm := NewCookieManager(&config.SecurityConfig{
		CookieName:     "waypoint_token",
		CookieSecure:   true,
		CookieSameSite: "strict",
		SessionTimeout: time.Hour,
	})

	rec := httptest.NewRecorder()
	cm.Set(rec, "tok")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "waypoint_token" || c.Value != "tok" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie flags HttpOnly=%v Secure=%v SameSite=%v", c.HttpOnly, c.Secure, c.SameSite)
	}
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", c.MaxAge)
	}

	rec = httptest.NewRecorder()
	cm.Clear(rec)
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Clear() did not expire the cookie: %+v", cleared)
	}
}

func TestParseSameSite(t *testing.T) {
	tests := map[string]http.SameSite{
		"strict": http.SameSiteStrictMode,
		"none":   http.SameSiteNoneMode,
		"lax":    http.SameSiteLaxMode,
		"":       http.SameSiteLaxMode,
	}
	for in, want := range tests {
		if got := parseSameSite(in); got != want {
			t.Errorf("parseSameSite(%q) = %v, want %v", in, got, want)
		}
	}
}
