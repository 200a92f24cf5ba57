// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func testUser() *models.User {
	return &models.User{
		ID:       "0b7f6a3e-7c1d-4a53-9b8e-0d9d9f7f1a11",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
	}
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{"valid", &config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour}, false},
		{"empty secret", &config.SecurityConfig{SessionTimeout: time.Hour}, true},
		{"zero timeout", &config.SecurityConfig{JWTSecret: testSecret}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJWTManager(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewJWTManager() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestJWTManager(t)
	user := testUser()

	token, issued, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if issued.ID == "" {
		t.Error("GenerateToken() did not set a jti")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != user.ID || claims.Username != user.Username || claims.Role != user.Role {
		t.Errorf("claims = %+v, want user %+v", claims, user)
	}
	if claims.ID != issued.ID {
		t.Errorf("jti = %q, want %q", claims.ID, issued.ID)
	}
	if claims.Issuer != Issuer {
		t.Errorf("issuer = %q, want %q", claims.Issuer, Issuer)
	}
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	m := newTestJWTManager(t)
	_, a, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	_, b, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("two tokens share a jti")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	m := newTestJWTManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	m.now = time.Now
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted an expired token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m := newTestJWTManager(t)
	token, _, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      strings.Repeat("x", 40),
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with another secret")
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestJWTManager(t)
	now := time.Now()
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	tests := []struct {
		name   string
		method jwt.SigningMethod
		key    interface{}
	}{
		{"HS512", jwt.SigningMethodHS512, []byte(testSecret)},
		{"none", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(tt.method, claims).SignedString(tt.key)
			if err != nil {
				t.Fatalf("SignedString() error = %v", err)
			}
			if _, err := m.ValidateToken(token); err == nil {
				t.Errorf("ValidateToken() accepted %s token", tt.name)
			}
		})
	}
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	m := newTestJWTManager(t)
	claims := &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a foreign issuer")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	m := newTestJWTManager(t)
	for _, token := range []string{"", "abc", "a.b.c"} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("ValidateToken(%q) succeeded", token)
		}
	}
}
