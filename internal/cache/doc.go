// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package cache holds the in-memory structures used on the read path.

Cache is a TTL cache bounded by least-recently-used eviction. The tracking
service keeps device last locations in it, keyed by device record ID, and
deletes the key whenever a new reading is committed:

	c := cache.New("last_location", 30*time.Second, 10000)
	c.Set(deviceID, loc)
	if v, ok := c.Get(deviceID); ok {
	    loc = v.(models.LastLocation)
	}

Expired entries are removed lazily on Get and periodically by Serve, which
runs under the supervisor.

SpatialHashGrid buckets coordinates into fixed-size cells. Clusters groups a
device's location history into per-cell centroids for the clustered map
view.
*/
package cache
