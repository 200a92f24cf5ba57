// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
)

// Signup registers an account and signs it in.
//
// @Summary Register a new account
// @Description Creates a user and returns it with a JWT. The token is also set as an HttpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Account details"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 400 {object} models.APIResponse "Validation error"
// @Failure 409 {object} models.APIResponse "User already exists"
// @Router /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.auth.Signup(r.Context(), req, clientIP(r))
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, "User already exists", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create account", err)
		return
	}

	h.cookies.Set(w, token)
	respondSuccess(w, http.StatusCreated, models.AuthResponse{User: user, Token: token}, time.Time{})
}

// Login authenticates by e-mail and password.
//
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 401 {object} models.APIResponse "Invalid email or password"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req, clientIP(r))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Invalid email or password", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to sign in", err)
		return
	}

	h.cookies.Set(w, token)
	respondSuccess(w, http.StatusOK, models.AuthResponse{User: user, Token: token}, time.Time{})
}

// Logout clears the auth cookie and revokes the presented token. It
// succeeds without a valid token so that stale cookies can be cleared.
//
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.MessageResponse}
// @Router /auth/logout [get]
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _, err := h.authMW.AuthenticateRequest(r, false)
	if err == nil {
		if err := h.auth.Logout(r.Context(), claims, clientIP(r)); err != nil {
			respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to sign out", err)
			return
		}
	}

	h.cookies.Clear(w)
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"}, time.Time{})
}

// CheckAuth returns the signed-in user.
//
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} models.APIResponse{data=models.UserResponse}
// @Failure 401 {object} models.APIResponse
// @Router /auth/check-auth [get]
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), auth.GetClaims(r.Context()))
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Unauthorized", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load user", err)
		return
	}
	respondSuccess(w, http.StatusOK, models.UserResponse{User: user}, time.Time{})
}

// ForgotPassword issues a reset token and e-mails it.
//
// @Summary Request a password reset
// @Description Issues a single-use reset token. Outside production the token is also returned as resetToken.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Account e-mail"
// @Success 200 {object} models.APIResponse{data=models.ForgotPasswordResponse}
// @Failure 404 {object} models.APIResponse "User not found"
// @Failure 503 {object} models.APIResponse "E-mail delivery failed"
// @Router /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.auth.ForgotPassword(r.Context(), req.Email, clientIP(r))
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "User not found", nil)
		return
	case errors.Is(err, auth.ErrResetDeliveryFailed):
		if h.config.IsProduction() {
			respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Failed to send password reset e-mail", err)
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Reset e-mail failed; returning token in development")
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to start password reset", err)
		return
	}

	resp := models.ForgotPasswordResponse{Message: "Password reset instructions sent"}
	if !h.config.IsProduction() {
		resp.ResetToken = token
	}
	respondSuccess(w, http.StatusOK, resp, time.Time{})
}

// ResetPassword sets a new password with a previously issued token.
//
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} models.APIResponse{data=models.MessageResponse}
// @Failure 400 {object} models.APIResponse "Invalid or expired reset token"
// @Failure 404 {object} models.APIResponse "User not found"
// @Router /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.auth.ResetPassword(r.Context(), req, clientIP(r))
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "User not found", nil)
		return
	case errors.Is(err, auth.ErrInvalidResetToken):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid or expired reset token", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to reset password", err)
		return
	}
	respondSuccess(w, http.StatusOK, models.MessageResponse{Message: "Password has been reset"}, time.Time{})
}
