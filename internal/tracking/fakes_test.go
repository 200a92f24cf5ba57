// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/wal"
)

// fakeStore is an in-memory Store. Setting failRecord makes RecordLocation
// fail with a transient error.
type fakeStore struct {
	mu         sync.Mutex
	devices    map[string]*models.Device
	history    map[string][]models.LocationRecord
	failRecord error
	reads      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices: make(map[string]*models.Device),
		history: make(map[string][]models.LocationRecord),
	}
}

func (f *fakeStore) addDevice(userID, hardwareID, key string) *models.Device {
	d := &models.Device{ID: uuid.New().String(), DeviceID: hardwareID, ActivationKey: key, UserID: userID, CreatedAt: time.Now()}
	f.mu.Lock()
	f.devices[d.ID] = d
	f.mu.Unlock()
	return d
}

func (f *fakeStore) CreateDevice(_ context.Context, d *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.devices {
		if existing.DeviceID == d.DeviceID {
			return database.ErrDuplicate
		}
	}
	d.ID = uuid.New().String()
	d.CreatedAt = time.Now()
	cp := *d
	f.devices[d.ID] = &cp
	return nil
}

func (f *fakeStore) GetDevice(_ context.Context, id string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	d, ok := f.devices[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *d
	if d.LastLocation != nil {
		loc := *d.LastLocation
		cp.LastLocation = &loc
	}
	return &cp, nil
}

func (f *fakeStore) GetDeviceForUser(ctx context.Context, id, userID string) (*models.Device, error) {
	d, err := f.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, database.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) GetDeviceByHardwareID(_ context.Context, hardwareID string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if d.DeviceID == hardwareID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) ListDevices(_ context.Context, userID string) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Device{}
	for _, d := range f.devices {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateDeviceKey(_ context.Context, id, userID, key, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok || d.UserID != userID {
		return database.ErrNotFound
	}
	d.ActivationKey = key
	if name != "" {
		d.DeviceName = name
	}
	return nil
}

func (f *fakeStore) DeleteDevice(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok || d.UserID != userID {
		return database.ErrNotFound
	}
	delete(f.devices, id)
	delete(f.history, id)
	return nil
}

func (f *fakeStore) RecordLocation(_ context.Context, rec *models.LocationRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRecord != nil {
		return false, f.failRecord
	}
	d, ok := f.devices[rec.DeviceRecordID]
	if !ok {
		return false, database.ErrNotFound
	}
	for _, r := range f.history[rec.DeviceRecordID] {
		if r.ID == rec.ID {
			return false, nil
		}
	}
	f.history[rec.DeviceRecordID] = append(f.history[rec.DeviceRecordID], *rec)
	if d.LastLocation == nil || !rec.Date.Before(d.LastLocation.Date) {
		loc := rec.LastLocation()
		d.LastLocation = &loc
	}
	return true, nil
}

func (f *fakeStore) ListLocationHistory(_ context.Context, id string, filter models.HistoryFilter) ([]models.LocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LocationRecord{}
	for _, r := range f.history[id] {
		if !filter.From.IsZero() && r.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && r.Date.After(filter.To) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) historyLen(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history[id])
}

func (f *fakeStore) setFailure(err error) {
	f.mu.Lock()
	f.failRecord = err
	f.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.LocationUpdatedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *models.LocationUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var errTransient = errors.New("database is locked")

func openTestWAL(t *testing.T) *wal.BadgerWAL {
	t.Helper()
	w, err := wal.Open(wal.Config{
		InMemory:        true,
		RetryInterval:   time.Hour,
		RetryBackoff:    time.Millisecond,
		MaxRetries:      3,
		CompactInterval: time.Hour,
		GCRatio:         0.5,
	})
	if err != nil {
		t.Fatalf("wal.Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func float(v float64) *float64 { return &v }
