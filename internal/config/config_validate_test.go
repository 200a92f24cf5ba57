// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with secret", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"unknown environment", func(c *Config) { c.Server.Environment = "prod" }, "ENVIRONMENT"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "at least 32"},
		{"zero session timeout", func(c *Config) { c.Security.SessionTimeout = 0 }, "SESSION_TIMEOUT"},
		{"reset ttl too long", func(c *Config) { c.Security.ResetTokenTTL = 48 * time.Hour }, "RESET_TOKEN_TTL"},
		{"bad same site", func(c *Config) { c.Security.CookieSameSite = "loose" }, "COOKIE_SAME_SITE"},
		{"same site none without secure", func(c *Config) { c.Security.CookieSameSite = "none" }, "COOKIE_SECURE"},
		{"same site none with secure", func(c *Config) {
			c.Security.CookieSameSite = "none"
			c.Security.CookieSecure = true
		}, ""},
		{"wildcard cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"*"}
		}, "CORS_ORIGINS"},
		{"wildcard cors in development", func(c *Config) { c.Security.CORSOrigins = []string{"*"} }, ""},
		{"mail without host", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.From = "noreply@example.com"
		}, "SMTP_HOST"},
		{"mail without from", func(c *Config) {
			c.Mail.Enabled = true
			c.Mail.Host = "smtp.example.com"
		}, "SMTP_FROM"},
		{"wal retry too fast", func(c *Config) { c.WAL.RetryInterval = time.Millisecond }, "WAL_RETRY_INTERVAL"},
		{"wal disabled ignores retry", func(c *Config) {
			c.WAL.Enabled = false
			c.WAL.RetryInterval = 0
		}, ""},
		{"bad nats url", func(c *Config) { c.Events.NATSURL = "http://broker" }, "NATS_URL"},
		{"empty topic", func(c *Config) { c.Events.Topic = "" }, "EVENTS_TOPIC"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("default environment should be development")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected production")
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("no warning expected for explicit origins")
	}
	cfg.Security.CORSOrigins = append(cfg.Security.CORSOrigins, "*")
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("expected warning for wildcard origin")
	}
}
