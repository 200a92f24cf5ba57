// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package mail delivers password reset e-mails.
//
// SMTPSender talks to the configured relay with net/smtp, upgrading with
// STARTTLS when enabled, and runs every delivery through a circuit breaker
// so a dead relay fails fast. LogSender is used when SMTP is disabled: it
// records that a reset was requested and never logs the token.
package mail
