// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"min cost", bcrypt.MinCost, false},
		{"below min", bcrypt.MinCost - 1, true},
		{"above max", bcrypt.MaxCost + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPasswordHasher(tt.cost)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPasswordHasher(%d) error = %v, wantErr %v", tt.cost, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordHasher_HashAndCompare(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	hash, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("Hash() returned the plaintext")
	}
	if !h.Compare(hash, "correct horse battery") {
		t.Error("Compare() rejected the right password")
	}
	if h.Compare(hash, "wrong password") {
		t.Error("Compare() accepted a wrong password")
	}
	if h.Compare("not-a-hash", "correct horse battery") {
		t.Error("Compare() accepted a malformed hash")
	}

	h.CompareDummy("anything")
}
