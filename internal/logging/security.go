// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger records authentication events with sensitive values masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on top of the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: With().Str("component", "auth").Logger()}
}

// NewSecurityLoggerWithLogger creates a security logger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogSignup records a new account.
func (l *SecurityLogger) LogSignup(userID, email, ip string) {
	l.logger.Info().
		Str("event", "signup").
		Str("user_id", userID).
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Msg("Account created")
}

// LogLoginSuccess records a successful login.
func (l *SecurityLogger) LogLoginSuccess(userID, email, ip string) {
	l.logger.Info().
		Str("event", "login_success").
		Str("user_id", userID).
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Msg("Login succeeded")
}

// LogLoginFailure records a failed login attempt.
func (l *SecurityLogger) LogLoginFailure(email, ip, reason string) {
	l.logger.Warn().
		Str("event", "login_failure").
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Login failed")
}

// LogLogout records a logout and the token that was revoked.
func (l *SecurityLogger) LogLogout(userID, tokenID, ip string) {
	l.logger.Info().
		Str("event", "logout").
		Str("user_id", userID).
		Str("jti", SanitizeToken(tokenID)).
		Str("ip", ip).
		Msg("Logout")
}

// LogPasswordResetRequested records a reset token being issued.
func (l *SecurityLogger) LogPasswordResetRequested(email, ip string) {
	l.logger.Info().
		Str("event", "password_reset_requested").
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Msg("Password reset requested")
}

// LogPasswordReset records the outcome of a reset attempt.
func (l *SecurityLogger) LogPasswordReset(email, ip string, success bool) {
	ev := l.logger.Info()
	if !success {
		ev = l.logger.Warn()
	}
	ev.Str("event", "password_reset").
		Str("email", SanitizeEmail(email)).
		Str("ip", ip).
		Bool("success", success).
		Msg("Password reset")
}

// SanitizeToken masks a token, keeping the first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEmail masks the local part of an e-mail address.
//
//	SanitizeEmail("john.doe@example.com") // "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// SanitizeValue strips control characters and truncates user-supplied
// strings before they are written to logs.
func SanitizeValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
