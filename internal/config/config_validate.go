// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"strings"
	"time"
)

// minJWTSecretLength matches the HS256 key size.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateWAL(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Security.ResetTokenTTL <= 0 || c.Security.ResetTokenTTL > 24*time.Hour {
		return fmt.Errorf("RESET_TOKEN_TTL must be between 1ns and 24h")
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME must not be empty")
	}
	if c.Security.BcryptCost != 0 && (c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31) {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if err := c.validateCookieSameSite(); err != nil {
		return err
	}
	return c.validateCORS()
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func (c *Config) validateCookieSameSite() error {
	switch c.Security.CookieSameSite {
	case "lax", "strict":
		return nil
	case "none":
		// Browsers discard SameSite=None cookies without Secure.
		if !c.Security.CookieSecure {
			return fmt.Errorf("COOKIE_SAME_SITE=none requires COOKIE_SECURE=true")
		}
		return nil
	default:
		return fmt.Errorf("COOKIE_SAME_SITE must be one of: lax, strict, none")
	}
}

// validateCORS rejects a wildcard origin in production, because the auth
// cookie is sent with credentials.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed when ENVIRONMENT=production; list the SPA origins explicitly")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard origin outside production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

func (c *Config) validateMail() error {
	if !c.Mail.Enabled {
		return nil
	}
	if c.Mail.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when SMTP_ENABLED=true")
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if c.Mail.From == "" || !strings.Contains(c.Mail.From, "@") {
		return fmt.Errorf("SMTP_FROM must be a valid address when SMTP_ENABLED=true")
	}
	return nil
}

func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	if c.WAL.RetryInterval < time.Second {
		return fmt.Errorf("WAL_RETRY_INTERVAL must be at least 1s")
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be at least 1")
	}
	if c.WAL.CompactInterval < time.Minute {
		return fmt.Errorf("WAL_COMPACT_INTERVAL must be at least 1m")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC must not be empty")
	}
	if c.Events.Embedded && (c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535) {
		return fmt.Errorf("NATS_PORT must be between 1 and 65535")
	}
	if c.Events.NATSURL != "" && !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
		return fmt.Errorf("NATS_URL must start with nats:// or tls://")
	}
	return nil
}

var (
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction reports ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports ENVIRONMENT=development.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *SecurityConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}
