// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
	"/etc/waypoint/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/waypoint.duckdb",
			MaxMemory: "1GB",
		},
		Security: SecurityConfig{
			SessionTimeout: 30 * 24 * time.Hour,
			CookieName:     "jwt",
			CookieSameSite: "lax",
			CORSOrigins:    []string{"http://localhost:5173"},
			ResetTokenTTL:  time.Hour,
			StorePath:      "/data/auth",
			BcryptCost:     12,
		},
		Mail: MailConfig{
			Port:     587,
			FromName: "Waypoint",
			UseTLS:   true,
			Timeout:  30 * time.Second,
		},
		WAL: WALConfig{
			Enabled:         true,
			Path:            "/data/wal",
			SyncWrites:      true,
			RetryInterval:   30 * time.Second,
			MaxRetries:      100,
			CompactInterval: time.Hour,
		},
		Events: EventsConfig{
			EmbeddedPort: 4222,
			Topic:        "location.updated",
		},
		Cache: CacheConfig{
			LastLocationTTL: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers struct defaults, the optional YAML file and mapped
// environment variables, in increasing priority.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are accepted as comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"security.admin_emails",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Server
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Security
	"jwt_secret":         "security.jwt_secret",
	"session_timeout":    "security.session_timeout",
	"cookie_name":        "security.cookie_name",
	"cookie_secure":      "security.cookie_secure",
	"cookie_same_site":   "security.cookie_same_site",
	"cors_origins":       "security.cors_origins",
	"trusted_proxies":    "security.trusted_proxies",
	"disable_rate_limit": "security.rate_limit_disabled",
	"admin_emails":       "security.admin_emails",
	"reset_token_ttl":    "security.reset_token_ttl",
	"auth_store_path":    "security.store_path",
	"bcrypt_cost":        "security.bcrypt_cost",

	// Mail
	"smtp_enabled":   "mail.enabled",
	"smtp_host":      "mail.host",
	"smtp_port":      "mail.port",
	"smtp_username":  "mail.username",
	"smtp_password":  "mail.password",
	"smtp_from":      "mail.from",
	"smtp_from_name": "mail.from_name",
	"smtp_use_tls":   "mail.use_tls",
	"smtp_timeout":   "mail.timeout",

	// WAL
	"wal_enabled":          "wal.enabled",
	"wal_path":             "wal.path",
	"wal_sync_writes":      "wal.sync_writes",
	"wal_retry_interval":   "wal.retry_interval",
	"wal_max_retries":      "wal.max_retries",
	"wal_compact_interval": "wal.compact_interval",

	// Events
	"nats_url":      "events.nats_url",
	"nats_embedded": "events.embedded",
	"nats_port":     "events.embedded_port",
	"events_topic":  "events.topic",

	// Cache
	"cache_ttl": "cache.last_location_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps known environment variables to koanf paths.
// Unmapped variables return "" and are skipped so that unrelated process
// environment cannot leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// normalize lower-cases enum-like values so validation and consumers can
// compare directly.
func normalize(cfg *Config) {
	cfg.Server.Environment = strings.ToLower(strings.TrimSpace(cfg.Server.Environment))
	cfg.Security.CookieSameSite = strings.ToLower(strings.TrimSpace(cfg.Security.CookieSameSite))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	for i, e := range cfg.Security.AdminEmails {
		cfg.Security.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
}
