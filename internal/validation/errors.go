// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode is the envelope code for every validation failure.
const ErrorCode = "VALIDATION_ERROR"

// FieldError describes one rejected field. The rejected value is not kept.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

// Errors is the set of field failures for one request.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// APIError mirrors models.APIError; models cannot be imported here.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError builds the envelope error. A single failure is reported inline;
// several are listed under details.fields.
func (e Errors) ToAPIError() *APIError {
	switch len(e) {
	case 0:
		return &APIError{Code: ErrorCode, Message: "Validation failed"}
	case 1:
		return &APIError{
			Code:    ErrorCode,
			Message: e[0].Message,
			Details: map[string]any{"field": e[0].Field, "tag": e[0].Tag},
		}
	}

	fields := make([]map[string]any, len(e))
	for i, fe := range e {
		fields[i] = map[string]any{"field": fe.Field, "tag": fe.Tag, "message": fe.Message}
	}
	return &APIError{
		Code:    ErrorCode,
		Message: e.Error(),
		Details: map[string]any{"fields": fields},
	}
}

func describe(fe validator.FieldError) string {
	f, p := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email address"
	case "uuid":
		return f + " must be a valid identifier"
	case "latitude":
		return f + " must be a valid latitude (-90 to 90)"
	case "longitude":
		return f + " must be a valid longitude (-180 to 180)"
	case "username":
		return f + " must be 3-32 characters of letters, digits or underscore"
	case "password":
		return fmt.Sprintf("%s must be between %d and %d bytes", f, minPasswordBytes, maxPasswordBytes)
	case "oneof":
		return f + " must be one of: " + p
	case "gte":
		return f + " must be greater than or equal to " + p
	case "lte":
		return f + " must be less than or equal to " + p
	case "gt":
		return f + " must be greater than " + p
	case "lt":
		return f + " must be less than " + p
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", f, bound, p)
		}
		return fmt.Sprintf("%s must be %s %s", f, bound, p)
	default:
		return fmt.Sprintf("%s failed %s validation", f, fe.Tag())
	}
}
