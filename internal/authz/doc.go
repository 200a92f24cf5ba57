// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package authz authorizes authenticated requests with Casbin RBAC.

The model and policy are embedded (model.conf, policy.csv) and may be
overridden from files. Subjects are user roles; objects are request paths
matched with keyMatch; actions are HTTP methods matched by regular
expression. The admin role inherits every user permission.

Decisions are cached per (role, path, method) for a short TTL and counted in
Prometheus.
*/
package authz
