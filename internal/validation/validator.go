// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
)

// Bcrypt ignores input past 72 bytes, so longer passwords are rejected
// rather than silently truncated.
const (
	minPasswordBytes = 8
	maxPasswordBytes = 72
)

// GetValidator returns the shared validator, building it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		for tag, fn := range map[string]validator.Func{
			"username": func(fl validator.FieldLevel) bool {
				return usernamePattern.MatchString(fl.Field().String())
			},
			"password": func(fl validator.FieldLevel) bool {
				n := len(fl.Field().String())
				return n >= minPasswordBytes && n <= maxPasswordBytes
			},
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic("validation: register " + tag + ": " + err.Error())
			}
		}
		validate = v
	})
	return validate
}

// jsonFieldName reports fields by the name the client sent.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// ValidateStruct checks s against its validate tags. It returns nil when s
// is valid.
func ValidateStruct(s any) Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "request", Tag: "invalid", Message: err.Error()}}
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		})
	}
	return out
}
