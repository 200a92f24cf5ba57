// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// ErrResetDeliveryFailed is returned when the reset e-mail could not be sent.
var ErrResetDeliveryFailed = errors.New("password reset delivery failed")

// UserStore is the persistence the account flows need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserExists(ctx context.Context, email, username string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// ResetMailer delivers password reset tokens.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, username, token string, ttl time.Duration) error
}

// Service implements signup, login, logout and password reset.
type Service struct {
	users       UserStore
	jwt         *JWTManager
	hasher      *PasswordHasher
	revocations RevocationStore
	resets      ResetTokenStore
	mailer      ResetMailer
	security    *config.SecurityConfig
	secLog      *logging.SecurityLogger
}

// NewService wires the account flows.
func NewService(users UserStore, jwt *JWTManager, hasher *PasswordHasher, revocations RevocationStore,
	resets ResetTokenStore, mailer ResetMailer, security *config.SecurityConfig) *Service {
	return &Service{
		users:       users,
		jwt:         jwt,
		hasher:      hasher,
		revocations: revocations,
		resets:      resets,
		mailer:      mailer,
		security:    security,
		secLog:      logging.NewSecurityLogger(),
	}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and returns it with a fresh token. E-mails in
// the configured admin list receive the admin role.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest, ip string) (*models.User, string, error) {
	email := NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	exists, err := s.users.UserExists(ctx, email, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		metrics.RecordAuthAttempt("signup", false)
		return nil, "", ErrUserExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", err
	}

	role := models.RoleUser
	if s.security.IsAdminEmail(email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			metrics.RecordAuthAttempt("signup", false)
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, _, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.secLog.LogSignup(user.ID, email, ip)
	metrics.RecordAuthAttempt("signup", true)
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, ip string) (*models.User, string, error) {
	email := NormalizeEmail(req.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		s.hasher.CompareDummy(req.Password)
		s.secLog.LogLoginFailure(email, ip, "unknown_email")
		metrics.RecordAuthAttempt("login", false)
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		s.secLog.LogLoginFailure(email, ip, "bad_password")
		metrics.RecordAuthAttempt("login", false)
		return nil, "", ErrInvalidCredentials
	}

	token, _, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.secLog.LogLoginSuccess(user.ID, email, ip)
	metrics.RecordAuthAttempt("login", true)
	return user, token, nil
}

// Logout revokes the token described by claims until it expires.
func (s *Service) Logout(ctx context.Context, claims *Claims, ip string) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revocations.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.secLog.LogLogout(claims.UserID, claims.ID, ip)
	metrics.RecordAuthAttempt("logout", true)
	return nil
}

// CurrentUser loads the account behind claims.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ForgotPassword issues a reset token for email and mails it. The token is
// returned so development deployments can surface it without SMTP.
func (s *Service) ForgotPassword(ctx context.Context, email, ip string) (string, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	token, err := s.resets.Issue(ctx, user.ID, s.security.ResetTokenTTL)
	if err != nil {
		return "", err
	}

	s.secLog.LogPasswordResetRequested(email, ip)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, token, s.security.ResetTokenTTL); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("email", logging.SanitizeEmail(email)).Msg("Failed to send password reset e-mail")
		return token, fmt.Errorf("%w: %v", ErrResetDeliveryFailed, err)
	}
	return token, nil
}

// ResetPassword consumes token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest, ip string) error {
	email := NormalizeEmail(req.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if err := s.resets.Consume(ctx, user.ID, req.Token); err != nil {
		s.secLog.LogPasswordReset(email, ip, false)
		metrics.RecordAuthAttempt("reset_password", false)
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.secLog.LogPasswordReset(email, ip, true)
	metrics.RecordAuthAttempt("reset_password", true)
	return nil
}
