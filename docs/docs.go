// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package docs registers Waypoint's OpenAPI document with swag. The
// template mirrors the @-annotations on the handlers in internal/api.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "CookieAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "paths": {
        "/health": {"get": {"tags": ["Core"], "summary": "Get system health status", "produces": ["application/json"],
            "responses": {"200": {"description": "Healthy"}, "503": {"description": "Database unreachable"}}}},
        "/health/live": {"get": {"tags": ["Core"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["Core"], "summary": "Readiness probe",
            "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}},
        "/auth/signup": {"post": {"tags": ["Auth"], "summary": "Register a new account", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.SignupRequest"}}],
            "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "User already exists"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Sign in", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid email or password"}}}},
        "/auth/logout": {
            "get": {"tags": ["Auth"], "summary": "Sign out", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Auth"], "summary": "Sign out", "responses": {"200": {"description": "OK"}}}},
        "/auth/check-auth": {"get": {"tags": ["Auth"], "summary": "Current user", "security": [{"CookieAuth": []}],
            "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/forgot-password": {"post": {"tags": ["Auth"], "summary": "Request a password reset", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ForgotPasswordRequest"}}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}}},
        "/auth/reset-password": {"post": {"tags": ["Auth"], "summary": "Reset password", "consumes": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ResetPasswordRequest"}}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid or expired reset token"}, "404": {"description": "User not found"}}}},
        "/device": {"get": {"tags": ["Devices"], "summary": "List devices", "security": [{"CookieAuth": []}],
            "responses": {"200": {"description": "OK"}}}},
        "/device/add": {"post": {"tags": ["Devices"], "summary": "Add a device", "security": [{"CookieAuth": []}],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AddDeviceRequest"}}],
            "responses": {"200": {"description": "Activation key updated"}, "201": {"description": "Created"},
                "400": {"description": "Same activation key"}, "409": {"description": "Owned by another user"}}}},
        "/device/location/{id}": {"get": {"tags": ["Devices"], "summary": "Last location", "security": [{"CookieAuth": []}],
            "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Device not found, or no location data"}}}},
        "/device/{id}": {
            "get": {"tags": ["Devices"], "summary": "Get a device", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Device not found"}}},
            "delete": {"tags": ["Devices"], "summary": "Delete a device", "security": [{"CookieAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Device not found"}}}},
        "/location/history/{id}": {
            "get": {"tags": ["Locations"], "summary": "Location history", "security": [{"CookieAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "from", "type": "string", "format": "date-time"},
                    {"in": "query", "name": "to", "type": "string", "format": "date-time"},
                    {"in": "query", "name": "limit", "type": "integer", "default": 1000, "minimum": 1, "maximum": 10000}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}, "404": {"description": "Device not found"}}},
            "post": {"tags": ["Locations"], "summary": "Add a location", "security": [{"CookieAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AddLocationRequest"}}],
                "responses": {"201": {"description": "Created"}, "202": {"description": "Queued for retry"},
                    "400": {"description": "Bad request"}, "404": {"description": "Device not found"}}}},
        "/location/history/{id}/clusters": {"get": {"tags": ["Locations"], "summary": "Location clusters", "security": [{"CookieAuth": []}],
            "parameters": [
                {"in": "path", "name": "id", "required": true, "type": "string"},
                {"in": "query", "name": "cell_km", "type": "number", "default": 1, "minimum": 0.1, "maximum": 500}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad request"}, "404": {"description": "Device not found"}}}},
        "/admin/stats": {"get": {"tags": ["Admin"], "summary": "Operator statistics", "security": [{"CookieAuth": []}],
            "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}}
    },
    "definitions": {
        "models.SignupRequest": {"type": "object", "required": ["username", "email", "password"],
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "models.LoginRequest": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "models.ForgotPasswordRequest": {"type": "object", "required": ["email"],
            "properties": {"email": {"type": "string"}}},
        "models.ResetPasswordRequest": {"type": "object", "required": ["email", "token", "newPassword"],
            "properties": {"email": {"type": "string"}, "token": {"type": "string"}, "newPassword": {"type": "string"}}},
        "models.AddDeviceRequest": {"type": "object", "required": ["deviceId", "activationKey"],
            "properties": {"deviceId": {"type": "string"}, "activationKey": {"type": "string"}, "deviceName": {"type": "string"}}},
        "models.AddLocationRequest": {"type": "object", "required": ["latitude", "longitude"],
            "properties": {"latitude": {"type": "number"}, "longitude": {"type": "number"}, "batteryVoltage": {"type": "number"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Waypoint API",
	Description:      "Device location tracking: accounts, devices, location history and realtime updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
