// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package main is the entry point for the Waypoint server.

Waypoint records GPS readings from tracker devices, keeps a per-device
location history in DuckDB, and pushes every accepted reading to the
owner's open WebSocket connections.

# Application Architecture

Components run under a Suture v4 supervisor tree:

	RootSupervisor ("waypoint")
	├── DataSupervisor ("data-layer")
	│   ├── WAL retry loop and compactor (WAL_ENABLED=true)
	│   ├── Embedded NATS server (NATS_EMBEDDED=true)
	│   ├── Last-location cache cleanup
	│   └── Revocation sweeper (in-memory auth stores only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── Location event consumer (watermill)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Initialization order:

 1. Configuration (Koanf v2: defaults, config.yaml, environment)
 2. Logging (zerolog)
 3. DuckDB
 4. Authentication (JWT, bcrypt, Badger token stores, SMTP)
 5. Casbin authorization
 6. Write-ahead log and recovery of pending readings
 7. Event bus (gochannel, external NATS or embedded NATS)
 8. Supervisor tree and HTTP server

# Configuration

Common environment variables:

	JWT_SECRET        32+ character signing secret (required)
	HTTP_PORT         listen port (default 5000)
	DUCKDB_PATH       database file
	CORS_ORIGINS      comma-separated allowed origins
	ADMIN_EMAILS      comma-separated addresses granted the admin role
	WAL_ENABLED       route ingest through the Badger write-ahead log
	NATS_URL          external NATS server for location events
	NATS_EMBEDDED     run an in-process NATS server
	SMTP_ENABLED      deliver password reset e-mails

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests for up to 10 seconds, WebSocket clients receive a close
frame, and the WAL, event bus, token stores and database are closed in
reverse order of creation.

# API Documentation

Swagger UI is served at /swagger/index.html.

	@title						Waypoint API
	@version					1.0
	@description				Device location tracking with live WebSocket updates.
	@license.name				AGPL-3.0-or-later
	@license.url				https://www.gnu.org/licenses/agpl-3.0.html
	@BasePath					/api
	@securityDefinitions.apikey	CookieAuth
	@in							cookie
	@name						jwt
	@securityDefinitions.apikey	BearerAuth
	@in							header
	@name						Authorization
*/
package main
