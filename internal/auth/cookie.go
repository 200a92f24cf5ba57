// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/config"
)

// CookieManager writes and clears the HttpOnly auth cookie.
type CookieManager struct {
	name     string
	secure   bool
	sameSite http.SameSite
	maxAge   time.Duration
}

// NewCookieManager builds a CookieManager from security settings.
func NewCookieManager(cfg *config.SecurityConfig) *CookieManager {
	return &CookieManager{
		name:     cfg.CookieName,
		secure:   cfg.CookieSecure,
		sameSite: parseSameSite(cfg.CookieSameSite),
		maxAge:   cfg.SessionTimeout,
	}
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Name returns the cookie name.
func (c *CookieManager) Name() string {
	return c.name
}

// Set writes the auth cookie carrying token.
func (c *CookieManager) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		Expires:  time.Now().Add(c.maxAge),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

// Clear expires the auth cookie.
func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
