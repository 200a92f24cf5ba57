// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Mail     MailConfig     `koanf:"mail"`
	WAL      WALConfig      `koanf:"wal"`
	Events   EventsConfig   `koanf:"events"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU
}

// SecurityConfig configures authentication, cookies, CORS and rate limits.
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// Cookie carrying the JWT. SameSite is one of lax, strict, none.
	CookieName     string `koanf:"cookie_name"`
	CookieSecure   bool   `koanf:"cookie_secure"`
	CookieSameSite string `koanf:"cookie_same_site"`

	CORSOrigins       []string `koanf:"cors_origins"`
	TrustedProxies    []string `koanf:"trusted_proxies"`
	RateLimitDisabled bool     `koanf:"rate_limit_disabled"`

	// AdminEmails receive the admin role at signup.
	AdminEmails []string `koanf:"admin_emails"`

	ResetTokenTTL time.Duration `koanf:"reset_token_ttl"`

	// StorePath is the Badger directory for revoked tokens and reset tokens.
	// Empty keeps both in memory.
	StorePath string `koanf:"store_path"`

	// BcryptCost defaults to 12.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// MailConfig configures password-reset e-mail delivery.
type MailConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	FromName string        `koanf:"from_name"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

// WALConfig configures the Badger write-ahead log for location ingest.
type WALConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Path            string        `koanf:"path"`
	SyncWrites      bool          `koanf:"sync_writes"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	MaxRetries      int           `koanf:"max_retries"`
	CompactInterval time.Duration `koanf:"compact_interval"`
}

// EventsConfig configures the location event bus.
type EventsConfig struct {
	// NATSURL selects the NATS transport. Empty uses an in-process channel.
	NATSURL      string `koanf:"nats_url"`
	Embedded     bool   `koanf:"embedded"`
	EmbeddedPort int    `koanf:"embedded_port"`
	Topic        string `koanf:"topic"`
}

// CacheConfig configures in-memory read caches.
type CacheConfig struct {
	LastLocationTTL time.Duration `koanf:"last_location_ttl"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller adds file:line to every entry.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
