// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/models"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return database.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeUserStore) UserExists(_ context.Context, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return database.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, _, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to+" "+token)
	return nil
}

type serviceFixture struct {
	svc     *Service
	store   *fakeUserStore
	mailer  *fakeMailer
	jwt     *JWTManager
	revoked *MemoryRevocationStore
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	security := &config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
		AdminEmails:    []string{"root@example.com"},
		ResetTokenTTL:  time.Hour,
	}
	jwtManager, err := NewJWTManager(security)
	if err != nil {
		t.Fatal(err)
	}
	hasher, err := NewPasswordHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	f := &serviceFixture{
		store:   newFakeUserStore(),
		mailer:  &fakeMailer{},
		jwt:     jwtManager,
		revoked: NewMemoryRevocationStore(),
	}
	f.svc = NewService(f.store, jwtManager, hasher, f.revoked, NewMemoryResetTokenStore(), f.mailer, security)
	return f
}

func signup(t *testing.T, f *serviceFixture, username, email string) *models.User {
	t.Helper()
	user, _, err := f.svc.Signup(context.Background(), models.SignupRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	return user
}

func TestService_Signup(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, token, err := f.svc.Signup(ctx, models.SignupRequest{
		Username: "alice",
		Email:    "  Alice@Example.com ",
		Password: "password123",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("password was not hashed")
	}
	claims, err := f.jwt.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user = %q, want %q", claims.UserID, user.ID)
	}

	_, _, err = f.svc.Signup(ctx, models.SignupRequest{Username: "alice2", Email: "ALICE@example.com", Password: "password123"}, "")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate e-mail error = %v, want ErrUserExists", err)
	}
	_, _, err = f.svc.Signup(ctx, models.SignupRequest{Username: "alice", Email: "other@example.com", Password: "password123"}, "")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username error = %v, want ErrUserExists", err)
	}
}

func TestService_SignupAdminEmail(t *testing.T) {
	f := newServiceFixture(t)
	user := signup(t, f, "root", "Root@example.com")
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", user.Role)
	}
}

func TestService_Login(t *testing.T) {
	f := newServiceFixture(t)
	created := signup(t, f, "bob", "bob@example.com")
	ctx := context.Background()

	user, token, err := f.svc.Login(ctx, models.LoginRequest{Email: "BOB@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != created.ID || token == "" {
		t.Errorf("Login() = %+v, %q", user, token)
	}

	tests := []models.LoginRequest{
		{Email: "bob@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password123"},
	}
	for _, req := range tests {
		if _, _, err := f.svc.Login(ctx, req, ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", req.Email, err)
		}
	}
}

func TestService_Logout(t *testing.T) {
	f := newServiceFixture(t)
	signup(t, f, "carol", "carol@example.com")
	ctx := context.Background()

	_, token, err := f.svc.Login(ctx, models.LoginRequest{Email: "carol@example.com", Password: "password123"}, "")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.jwt.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Logout(ctx, claims, ""); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if revoked, _ := f.revoked.IsRevoked(ctx, claims.ID); !revoked {
		t.Error("token not revoked after logout")
	}
	if err := f.svc.Logout(ctx, nil, ""); err != nil {
		t.Errorf("Logout(nil) error = %v", err)
	}
}

func TestService_CurrentUser(t *testing.T) {
	f := newServiceFixture(t)
	created := signup(t, f, "dave", "dave@example.com")
	ctx := context.Background()

	got, err := f.svc.CurrentUser(ctx, &Claims{UserID: created.ID})
	if err != nil || got.Username != "dave" {
		t.Errorf("CurrentUser() = %+v, %v", got, err)
	}
	if _, err := f.svc.CurrentUser(ctx, &Claims{UserID: "missing"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CurrentUser(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestService_PasswordReset(t *testing.T) {
	f := newServiceFixture(t)
	signup(t, f, "erin", "erin@example.com")
	ctx := context.Background()

	token, err := f.svc.ForgotPassword(ctx, "Erin@example.com", "")
	if err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0] != "erin@example.com "+token {
		t.Errorf("mailer sent %v", f.mailer.sent)
	}

	req := models.ResetPasswordRequest{Email: "erin@example.com", Token: token, NewPassword: "new-password-1"}
	if err := f.svc.ResetPassword(ctx, req, ""); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if err := f.svc.ResetPassword(ctx, req, ""); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("reused token error = %v, want ErrInvalidResetToken", err)
	}

	if _, _, err := f.svc.Login(ctx, models.LoginRequest{Email: "erin@example.com", Password: "password123"}, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, _, err := f.svc.Login(ctx, models.LoginRequest{Email: "erin@example.com", Password: "new-password-1"}, ""); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestService_PasswordResetErrors(t *testing.T) {
	f := newServiceFixture(t)
	signup(t, f, "frank", "frank@example.com")
	ctx := context.Background()

	if _, err := f.svc.ForgotPassword(ctx, "ghost@example.com", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ForgotPassword(unknown) error = %v, want ErrUserNotFound", err)
	}

	req := models.ResetPasswordRequest{Email: "ghost@example.com", Token: "00", NewPassword: "new-password-1"}
	if err := f.svc.ResetPassword(ctx, req, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ResetPassword(unknown) error = %v, want ErrUserNotFound", err)
	}

	f.mailer.fail = true
	token, err := f.svc.ForgotPassword(ctx, "frank@example.com", "")
	if !errors.Is(err, ErrResetDeliveryFailed) {
		t.Errorf("ForgotPassword() with failing mailer error = %v, want ErrResetDeliveryFailed", err)
	}
	if token == "" {
		t.Error("token not returned when delivery failed")
	}
}
