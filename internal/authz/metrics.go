// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package authz

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthzDecisionsTotal counts authorization decisions by role, method and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "method", "decision"},
	)

	// AuthzDecisionDuration tracks decision latency, split by cache hit.
	AuthzDecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waypoint_authz_decision_duration_seconds",
			Help:    "Duration of authorization decisions in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"cache_hit"},
	)
)

func recordDecision(role, method string, allowed, cacheHit bool, d time.Duration) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthzDecisionsTotal.WithLabelValues(role, method, decision).Inc()
	AuthzDecisionDuration.WithLabelValues(strconv.FormatBool(cacheHit)).Observe(d.Seconds())
}
