// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/models"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

// CreateUser inserts a user, assigning ID and timestamps when unset.
// Returns ErrDuplicate when the e-mail or username is taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("INSERT", "users", time.Now(), &err)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UserExists reports whether the e-mail or the username is already registered.
func (db *DB) UserExists(ctx context.Context, email, username string) (exists bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "users", time.Now(), &err)

	var n int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? OR username = ?`, email, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return n > 0, nil
}

// GetUserByEmail returns the user with the given e-mail.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, `email = ?`, email)
}

// GetUserByID returns the user with the given ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, `id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, where string, arg interface{}) (user *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("SELECT", "users", time.Now(), &err)

	var u models.User
	err = db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// UpdatePassword replaces a user's password hash.
func (db *DB) UpdatePassword(ctx context.Context, userID, passwordHash string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("UPDATE", "users", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireAffected(res, "user")
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
