// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package models

import "time"

// TimeLayout formats LocationRecord.Time and LastLocation.Time.
const TimeLayout = "15:04:05"

// LocationRecord is one entry of a device's append-only location history.
type LocationRecord struct {
	ID             string    `json:"id"`
	DeviceRecordID string    `json:"deviceId"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Date           time.Time `json:"date"`
	Time           string    `json:"time"`
	BatteryVoltage float64   `json:"batteryVoltage"`
	CreatedAt      time.Time `json:"createdAt"`
}

// LastLocation returns the record as a device's last-location value.
func (r *LocationRecord) LastLocation() LastLocation {
	return LastLocation{
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Date:           r.Date,
		Time:           r.Time,
		BatteryVoltage: r.BatteryVoltage,
	}
}

// LocationReading is an accepted ingest request. It is what the write-ahead
// log persists, so RecordID is assigned before the first write and makes
// replays idempotent.
type LocationReading struct {
	RecordID       string    `json:"record_id"`
	DeviceRecordID string    `json:"device_record_id"`
	UserID         string    `json:"user_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Date           time.Time `json:"date"`
	Time           string    `json:"time"`
	BatteryVoltage float64   `json:"battery_voltage"`
	ReceivedAt     time.Time `json:"received_at"`
}

// Record converts the reading into the history row it produces.
func (r *LocationReading) Record() *LocationRecord {
	return &LocationRecord{
		ID:             r.RecordID,
		DeviceRecordID: r.DeviceRecordID,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Date:           r.Date,
		Time:           r.Time,
		BatteryVoltage: r.BatteryVoltage,
		CreatedAt:      r.ReceivedAt,
	}
}

// LocationUpdatedEvent is published on the event bus after a reading is
// committed. UserID routes delivery to the owner's connections only.
type LocationUpdatedEvent struct {
	EventID        string       `json:"event_id"`
	DeviceRecordID string       `json:"deviceId"`
	UserID         string       `json:"userId"`
	LastLocation   LastLocation `json:"lastLocation"`
	OccurredAt     time.Time    `json:"occurredAt"`
}

// LocationCluster groups history points falling into one grid cell.
type LocationCluster struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// HistoryFilter narrows a history query. Zero From/To are unbounded.
type HistoryFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}
