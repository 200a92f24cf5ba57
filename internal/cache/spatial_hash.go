// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package cache

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/waypoint/internal/models"
)

// kmPerDegree is the approximate length of one degree of latitude.
const kmPerDegree = 111.0

// DefaultCellKM is the clustering cell size when none is requested.
const DefaultCellKM = 1.0

// CellKey identifies a grid cell.
type CellKey struct {
	X, Y int
}

type cell struct {
	sumLat, sumLon float64
	count          int
	first, last    time.Time
}

// SpatialHashGrid buckets points into square cells of a fixed size in
// degrees. It is not safe for concurrent use; build one per query.
type SpatialHashGrid struct {
	cellSize float64
	cells    map[CellKey]*cell
}

// NewSpatialHashGrid creates a grid with cells of roughly cellSizeKm on a
// side at the equator. Non-positive sizes use DefaultCellKM.
func NewSpatialHashGrid(cellSizeKm float64) *SpatialHashGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = DefaultCellKM
	}
	return &SpatialHashGrid{
		cellSize: cellSizeKm / kmPerDegree,
		cells:    make(map[CellKey]*cell),
	}
}

// CellFor returns the key of the cell containing lat/lon.
func (g *SpatialHashGrid) CellFor(lat, lon float64) CellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return CellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds a point observed at ts.
func (g *SpatialHashGrid) Insert(lat, lon float64, ts time.Time) {
	key := g.CellFor(lat, lon)
	c, ok := g.cells[key]
	if !ok {
		c = &cell{first: ts, last: ts}
		g.cells[key] = c
	}
	c.sumLat += lat
	c.sumLon += lon
	c.count++
	if ts.Before(c.first) {
		c.first = ts
	}
	if ts.After(c.last) {
		c.last = ts
	}
}

// Clusters returns one cluster per non-empty cell, positioned at the
// centroid of its points and sorted by first sighting.
func (g *SpatialHashGrid) Clusters() []models.LocationCluster {
	out := make([]models.LocationCluster, 0, len(g.cells))
	for _, c := range g.cells {
		n := float64(c.count)
		out = append(out, models.LocationCluster{
			Latitude:  c.sumLat / n,
			Longitude: c.sumLon / n,
			Count:     c.count,
			FirstSeen: c.first,
			LastSeen:  c.last,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen.Equal(out[j].FirstSeen) {
			if out[i].Latitude == out[j].Latitude {
				return out[i].Longitude < out[j].Longitude
			}
			return out[i].Latitude < out[j].Latitude
		}
		return out[i].FirstSeen.Before(out[j].FirstSeen)
	})
	return out
}

// ClusterRecords groups history records into cells of cellSizeKm. The
// timestamp of a record is its Date.
func ClusterRecords(records []models.LocationRecord, cellSizeKm float64) []models.LocationCluster {
	g := NewSpatialHashGrid(cellSizeKm)
	for i := range records {
		g.Insert(records[i].Latitude, records[i].Longitude, records[i].Date)
	}
	return g.Clusters()
}
