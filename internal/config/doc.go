// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package config loads Waypoint configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Built-in defaults (defaultConfig)
//  2. A YAML file: $CONFIG_PATH, ./config.yaml or /etc/waypoint/config.yaml
//  3. Environment variables listed in envMappings
//
// Example config.yaml:
//
//	server:
//	  port: 5000
//	  environment: production
//	security:
//	  jwt_secret: "replace-with-at-least-32-characters"
//	  cookie_secure: true
//	  cookie_same_site: none
//	  cors_origins: ["https://app.example.com"]
//	events:
//	  nats_url: nats://nats:4222
//
// Environment variables win over the file, so secrets such as JWT_SECRET
// and SMTP_PASSWORD are normally supplied that way.
package config
