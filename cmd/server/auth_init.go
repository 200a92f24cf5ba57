// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/mail"
)

const defaultBcryptCost = 12

// AuthComponents holds the account service and the pieces the HTTP layer
// needs to authenticate requests.
type AuthComponents struct {
	stores      *auth.StoreFactory
	revocations auth.RevocationStore
	service     *auth.Service
	middleware  *auth.Middleware
	cookies     *auth.CookieManager
}

// InitAuth builds JWT signing, password hashing, token stores and the mailer.
func InitAuth(cfg *config.Config, users auth.UserStore) (*AuthComponents, error) {
	stores, err := auth.NewStoreFactory(cfg.Security.StorePath)
	if err != nil {
		return nil, err
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("create JWT manager: %w", err)
	}

	cost := cfg.Security.BcryptCost
	if cost == 0 {
		cost = defaultBcryptCost
	}
	hasher, err := auth.NewPasswordHasher(cost)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("create password hasher: %w", err)
	}

	revocations := stores.RevocationStore()
	service := auth.NewService(users, jwtManager, hasher, revocations,
		stores.ResetTokenStore(), mail.New(&cfg.Mail), &cfg.Security)

	logging.Info().
		Bool("persistent_stores", cfg.Security.StorePath != "").
		Bool("smtp_enabled", cfg.Mail.Enabled).
		Dur("session_timeout", cfg.Security.SessionTimeout).
		Msg("Authentication initialized")

	return &AuthComponents{
		stores:      stores,
		revocations: revocations,
		service:     service,
		middleware:  auth.NewMiddleware(jwtManager, revocations, cfg.Security.CookieName),
		cookies:     auth.NewCookieManager(&cfg.Security),
	}, nil
}

// Sweeper returns a service that prunes expired in-memory revocations, or
// nil when revocations live in Badger (which expires them by TTL).
func (c *AuthComponents) Sweeper() *RevocationSweeper {
	mem, ok := c.revocations.(*auth.MemoryRevocationStore)
	if !ok {
		return nil
	}
	return &RevocationSweeper{store: mem, interval: 10 * time.Minute}
}

// Shutdown closes the Badger token stores.
func (c *AuthComponents) Shutdown() {
	if c == nil || c.stores == nil {
		return
	}
	if err := c.stores.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing auth token stores")
	}
}

// RevocationSweeper periodically drops expired entries from an in-memory
// revocation store. It implements suture.Service.
type RevocationSweeper struct {
	store    *auth.MemoryRevocationStore
	interval time.Duration
}

// Serve runs until ctx is canceled.
func (s *RevocationSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.store.CleanupExpired(); n > 0 {
				logging.Debug().Int("removed", n).Msg("Pruned expired token revocations")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *RevocationSweeper) String() string {
	return "revocation-sweeper"
}
