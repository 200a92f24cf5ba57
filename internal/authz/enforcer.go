// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath overrides the embedded model when the file exists.
	ModelPath string

	// PolicyPath overrides the embedded policy when the file exists.
	PolicyPath string

	// CacheTTL is how long decisions are cached. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns the embedded model and policy with a one
// minute decision cache.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{CacheTTL: time.Minute}
}

// Enforcer wraps a synced Casbin enforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedDecision
	now   func() time.Time
}

type cachedDecision struct {
	allowed   bool
	expiresAt time.Time
}

// NewEnforcer loads the model and policy and builds the enforcer.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	var m model.Model
	var err error
	if fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(embeddedPolicy))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		cacheTTL: cfg.CacheTTL,
		cache:    make(map[string]cachedDecision),
		now:      time.Now,
	}, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Enforce reports whether role may perform method on path.
func (e *Enforcer) Enforce(role, path, method string) (bool, error) {
	start := time.Now()
	key := role + "|" + path + "|" + method

	if allowed, ok := e.cached(key); ok {
		recordDecision(role, method, allowed, true, time.Since(start))
		return allowed, nil
	}

	allowed, err := e.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cacheTTL > 0 {
		e.mu.Lock()
		e.cache[key] = cachedDecision{allowed: allowed, expiresAt: e.now().Add(e.cacheTTL)}
		e.mu.Unlock()
	}
	recordDecision(role, method, allowed, false, time.Since(start))
	return allowed, nil
}

func (e *Enforcer) cached(key string) (bool, bool) {
	if e.cacheTTL <= 0 {
		return false, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.cache[key]
	if !ok || !e.now().Before(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

// InvalidateCache drops every cached decision.
func (e *Enforcer) InvalidateCache() {
	e.mu.Lock()
	e.cache = make(map[string]cachedDecision)
	e.mu.Unlock()
}

// RolesFor returns the roles role inherits, including itself.
func (e *Enforcer) RolesFor(role string) ([]string, error) {
	inherited, err := e.enforcer.GetImplicitRolesForUser(role)
	if err != nil {
		return nil, err
	}
	return append([]string{role}, inherited...), nil
}
