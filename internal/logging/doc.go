// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package logging provides the process-wide zerolog logger for Waypoint.
//
// Call Init once from main with values from config.LoggingConfig. Until then
// a JSON logger at info level writing to stderr is active.
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Device lookup failed")
//
// Ctx attaches request_id, correlation_id and user_id from the request
// context. SlogHandler bridges to log/slog for sutureslog, and
// SecurityLogger masks e-mails and tokens for authentication events.
//
// Always terminate chains with Msg or Send; an unterminated event is
// silently dropped.
package logging
