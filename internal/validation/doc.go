// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata and is safe for concurrent use. Field names in messages are the
// JSON names of the request fields.
//
// # Custom tags
//
//   - username: 3-32 characters from [A-Za-z0-9_]
//   - password: 8-72 bytes (the bcrypt input limit)
//
// # Usage
//
//	type SignupRequest struct {
//	    Username string `json:"username" validate:"required,username"`
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"password" validate:"required,password"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code is always VALIDATION_ERROR
//	    ...
//	}
//
// Error details never include the rejected value.
package validation
