// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import "errors"

var (
	// ErrUserExists is returned by Signup when the e-mail or username is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned by Login for any mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned by the password reset flow.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidResetToken is returned for unknown, expired or used tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrTokenRevoked is returned for a token whose jti was revoked.
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrMissingToken is returned when a request carries no token.
	ErrMissingToken = errors.New("missing token")

	// ErrStoreClosed is returned by stores after Close.
	ErrStoreClosed = errors.New("store is closed")
)
