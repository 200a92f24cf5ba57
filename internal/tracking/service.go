// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package tracking

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/database"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/wal"
)

// MaxHistoryLimit caps a single history or clustering query.
const MaxHistoryLimit = 10000

// Ingest sources, used as metric labels.
const (
	SourceHTTP      = "http"
	SourceWebSocket = "websocket"
	SourceWAL       = "wal"
)

// Store is the persistence the service needs. *database.DB implements it.
type Store interface {
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	GetDeviceForUser(ctx context.Context, id, userID string) (*models.Device, error)
	GetDeviceByHardwareID(ctx context.Context, deviceID string) (*models.Device, error)
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	UpdateDeviceKey(ctx context.Context, id, userID, activationKey, name string) error
	DeleteDevice(ctx context.Context, id, userID string) error
	RecordLocation(ctx context.Context, rec *models.LocationRecord) (bool, error)
	ListLocationHistory(ctx context.Context, deviceRecordID string, filter models.HistoryFilter) ([]models.LocationRecord, error)
}

// Publisher delivers committed readings to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, event *models.LocationUpdatedEvent) error
}

// Log is the write-ahead log used by Record. *wal.BadgerWAL implements it.
type Log interface {
	Write(ctx context.Context, payload interface{}) (string, error)
	Release(id string)
	Confirm(ctx context.Context, id string) error
	RecordAttempt(ctx context.Context, id, lastErr string) error
	Delete(ctx context.Context, id string) error
	RecoverPending(ctx context.Context, applier wal.Applier) (*wal.RecoveryResult, error)
}

// cachedLocation is what the last-location cache holds per device.
type cachedLocation struct {
	userID   string
	location *models.LastLocation
}

// Service owns device and location operations.
type Service struct {
	store     Store
	log       Log
	publisher Publisher
	cache     *cache.Cache
	now       func() time.Time

	clusterLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithWAL routes ingestion through the write-ahead log.
func WithWAL(l Log) Option {
	return func(s *Service) { s.log = l }
}

// WithClusterLimit caps how many readings a single clustering request may
// cover. Values below 1 keep MaxHistoryLimit.
func WithClusterLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.clusterLimit = n
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCache sets the last-location cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, clusterLimit: MaxHistoryLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func mapNotFound(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return ErrDeviceNotFound
	}
	return err
}

// ListDevices returns the caller's devices, newest first.
func (s *Service) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	return s.store.ListDevices(ctx, userID)
}

// GetDevice returns an owned device.
func (s *Service) GetDevice(ctx context.Context, userID, id string) (*models.Device, error) {
	d, err := s.store.GetDeviceForUser(ctx, id, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return d, nil
}

// AddDevice registers a device for userID or rotates the activation key of
// one the user already owns. created reports which happened.
func (s *Service) AddDevice(ctx context.Context, userID string, req models.AddDeviceRequest) (device *models.Device, created bool, err error) {
	hardwareID := strings.TrimSpace(req.DeviceID)
	name := strings.TrimSpace(req.DeviceName)

	existing, err := s.store.GetDeviceByHardwareID(ctx, hardwareID)
	switch {
	case err == nil:
		if !existing.OwnedBy(userID) {
			return nil, false, ErrDeviceTaken
		}
		if keysEqual(existing.ActivationKey, req.ActivationKey) {
			return nil, false, ErrDeviceExists
		}
		if err := s.store.UpdateDeviceKey(ctx, existing.ID, userID, req.ActivationKey, name); err != nil {
			return nil, false, mapNotFound(err)
		}
		updated, err := s.GetDevice(ctx, userID, existing.ID)
		if err != nil {
			return nil, false, err
		}
		logging.Ctx(ctx).Info().Str("device", existing.ID).Msg("Device activation key rotated")
		return updated, false, nil

	case !errors.Is(err, database.ErrNotFound):
		return nil, false, err
	}

	device = &models.Device{
		DeviceID:      hardwareID,
		DeviceName:    name,
		ActivationKey: req.ActivationKey,
		UserID:        userID,
	}
	if err := s.store.CreateDevice(ctx, device); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost a race with another registration of the same hardware ID.
			return nil, false, ErrDeviceTaken
		}
		return nil, false, err
	}
	logging.Ctx(ctx).Info().Str("device", device.ID).Msg("Device registered")
	return device, true, nil
}

// DeleteDevice removes an owned device and its history.
func (s *Service) DeleteDevice(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteDevice(ctx, id, userID); err != nil {
		return mapNotFound(err)
	}
	s.invalidate(id)
	return nil
}

// LastLocation returns an owned device's last location, reading through
// the cache.
func (s *Service) LastLocation(ctx context.Context, userID, id string) (*models.LastLocation, error) {
	entry, ok := s.cachedLocation(id)
	if !ok {
		d, err := s.store.GetDevice(ctx, id)
		if err != nil {
			return nil, mapNotFound(err)
		}
		entry = cachedLocation{userID: d.UserID, location: d.LastLocation}
		if s.cache != nil {
			s.cache.Set(id, entry)
		}
	}

	if userID == "" || entry.userID != userID {
		return nil, ErrDeviceNotFound
	}
	if entry.location == nil {
		return nil, ErrNoLocation
	}
	loc := *entry.location
	return &loc, nil
}

func (s *Service) cachedLocation(id string) (cachedLocation, bool) {
	if s.cache == nil {
		return cachedLocation{}, false
	}
	v, ok := s.cache.Get(id)
	if !ok {
		return cachedLocation{}, false
	}
	entry, ok := v.(cachedLocation)
	return entry, ok
}

func (s *Service) invalidate(id string) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}

// History returns an owned device's readings sorted by date.
func (s *Service) History(ctx context.Context, userID, id string, filter models.HistoryFilter) ([]models.LocationRecord, error) {
	if _, err := s.GetDevice(ctx, userID, id); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = database.DefaultHistoryLimit
	}
	if filter.Limit > MaxHistoryLimit {
		filter.Limit = MaxHistoryLimit
	}
	return s.store.ListLocationHistory(ctx, id, filter)
}

// Clusters groups an owned device's history into grid cells of cellKM.
// A range holding more readings than the cluster limit is rejected with
// ErrTooManyPoints rather than clustered from a partial history.
func (s *Service) Clusters(ctx context.Context, userID, id string, cellKM float64, filter models.HistoryFilter) ([]models.LocationCluster, error) {
	if _, err := s.GetDevice(ctx, userID, id); err != nil {
		return nil, err
	}
	filter.Limit = s.clusterLimit + 1
	records, err := s.store.ListLocationHistory(ctx, id, filter)
	if err != nil {
		return nil, err
	}
	if len(records) > s.clusterLimit {
		return nil, fmt.Errorf("%w: more than %d readings in range, narrow from/to", ErrTooManyPoints, s.clusterLimit)
	}
	return cache.ClusterRecords(records, cellKM), nil
}

// AddLocation records a reading for an owned device.
func (s *Service) AddLocation(ctx context.Context, userID, id string, req models.AddLocationRequest) (*models.LocationRecord, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidReading)
	}
	d, err := s.GetDevice(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Record(ctx, SourceHTTP, &models.LocationReading{
		DeviceRecordID: d.ID,
		UserID:         d.UserID,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
		BatteryVoltage: req.BatteryVoltage,
	})
}

// IngestSocket records a reading sent over a WebSocket. The caller must own
// the device or present its activation key.
func (s *Service) IngestSocket(ctx context.Context, userID string, data models.UpdateLocationData) (*models.LocationRecord, error) {
	if data.Latitude == nil || data.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidReading)
	}

	d, err := s.store.GetDevice(ctx, data.DeviceID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !d.OwnedBy(userID) && (data.ActivationKey == "" || !keysEqual(d.ActivationKey, data.ActivationKey)) {
		return nil, ErrDeviceNotFound
	}

	reading := &models.LocationReading{
		DeviceRecordID: d.ID,
		UserID:         d.UserID,
		Latitude:       *data.Latitude,
		Longitude:      *data.Longitude,
		Time:           strings.TrimSpace(data.Time),
		BatteryVoltage: data.BatteryVoltage,
	}
	if data.Date != "" {
		date, err := parseDate(data.Date)
		if err != nil {
			return nil, err
		}
		reading.Date = date
	}
	return s.Record(ctx, SourceWebSocket, reading)
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrInvalidReading, logging.SanitizeValue(v))
}

func keysEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// normalize validates r and fills in the record ID, date and time.
func (s *Service) normalize(r *models.LocationReading) error {
	if math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidReading)
	}
	if math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidReading)
	}
	if math.IsNaN(r.BatteryVoltage) || r.BatteryVoltage < 0 {
		return fmt.Errorf("%w: battery voltage must not be negative", ErrInvalidReading)
	}

	now := s.now().UTC()
	if r.RecordID == "" {
		r.RecordID = uuid.New().String()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = now
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	if r.Time == "" {
		r.Time = r.Date.Format(models.TimeLayout)
	} else if _, err := time.Parse(models.TimeLayout, r.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM:SS", ErrInvalidReading)
	}
	return nil
}
