// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package auth provides account authentication for Waypoint.
//
// # Tokens
//
// Sessions are HS256 JWTs (golang-jwt/jwt/v5) carrying the user ID,
// username and role plus a unique jti. Tokens are accepted from the auth
// cookie or an "Authorization: Bearer" header; the WebSocket endpoint also
// accepts a token query parameter for device firmware that cannot set
// headers.
//
// Logout revokes the presented jti until the token would have expired
// anyway. The revocation list is a RevocationStore: in memory for tests and
// development, or BadgerDB with native TTL so revocations survive restarts.
//
// # Password reset
//
// ForgotPassword issues a random 32-byte token (hex encoded) and stores
// only its SHA-256 digest with a TTL. ResetPassword consumes the token; a
// token is single-use and a newer one replaces any outstanding token.
//
// # Passwords
//
// Passwords are hashed with bcrypt. Login for an unknown e-mail still runs
// a bcrypt comparison so response time does not reveal registration.
package auth
