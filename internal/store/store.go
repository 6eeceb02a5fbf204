package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/logger"
	"github.com/avillareal/homescout/pkg/metrics"
)

// Store provides durable read/write access to the three cache tables.
// Every operation is a single atomic unit; callers never see a
// multi-step transaction. Reads return copies, so callers may mutate
// results freely.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
	log *zap.Logger
}

// Option customises the Store.
type Option func(*Store)

// WithNow overrides the clock used for timestamps and expiry checks.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Store over the shared database handle. A
// non-positive ttl falls back to DefaultTTL.
func New(db *gorm.DB, ttl time.Duration, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		db:  db,
		ttl: ttl,
		now: time.Now,
		log: logger.WithModule("store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// TTL returns the configured freshness window.
func (s *Store) TTL() time.Duration { return s.ttl }

// GetGeocode loads a geocode record by its exact address string. No
// expiry check applies: geocoding an address is idempotent, so a stored
// result never goes stale.
func (s *Store) GetGeocode(ctx context.Context, address string) (*models.GeocodeResult, bool, error) {
	var rec models.GeocodeResult
	err := s.db.WithContext(ctx).Take(&rec, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get geocode: %w", err)
	}

	metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
	return &rec, true, nil
}

// PutGeocode upserts a geocode record, stamping the current time.
// Latest write wins; one row per address.
func (s *Store) PutGeocode(ctx context.Context, rec *models.GeocodeResult) error {
	if rec == nil || rec.Address == "" {
		return errors.New("store: geocode record requires an address")
	}

	rec.Timestamp = s.now()

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			UpdateAll: true,
		}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("store: put geocode: %w", err)
	}
	return nil
}

// GetPlaceSearch loads a cached nearby search by its location key.
// Expired rows are reported as absent; the physical row stays until it
// is overwritten or swept.
func (s *Store) GetPlaceSearch(ctx context.Context, locationKey string) (*models.PlaceSearch, bool, error) {
	var rec models.PlaceSearch
	err := s.db.WithContext(ctx).Take(&rec, "location_key = ?", locationKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.CacheLookups.WithLabelValues("places", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get place search: %w", err)
	}

	if IsExpired(rec.Timestamp, s.now(), s.ttl) {
		metrics.CacheLookups.WithLabelValues("places", "expired").Inc()
		s.log.Debug("expired place search", zap.String("location_key", locationKey))
		return nil, false, nil
	}

	metrics.CacheLookups.WithLabelValues("places", "hit").Inc()
	return &rec, true, nil
}

// PutPlaceSearch upserts one nearby-search result set under its
// location key, stamping the current time.
func (s *Store) PutPlaceSearch(ctx context.Context, rec *models.PlaceSearch) error {
	if rec == nil || rec.LocationKey == "" {
		return errors.New("store: place search requires a location key")
	}

	rec.Timestamp = s.now()

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "location_key"}},
			UpdateAll: true,
		}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("store: put place search: %w", err)
	}
	return nil
}

// GetPhoto loads a cached photo by its upstream reference, treating
// expired rows as absent.
func (s *Store) GetPhoto(ctx context.Context, reference string) (*models.PlacePhoto, bool, error) {
	var rec models.PlacePhoto
	err := s.db.WithContext(ctx).Take(&rec, "photo_reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.CacheLookups.WithLabelValues("photos", "miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get photo: %w", err)
	}

	if IsExpired(rec.Timestamp, s.now(), s.ttl) {
		metrics.CacheLookups.WithLabelValues("photos", "expired").Inc()
		return nil, false, nil
	}

	metrics.CacheLookups.WithLabelValues("photos", "hit").Inc()
	return &rec, true, nil
}

// PutPhoto upserts a photo payload under its reference string.
func (s *Store) PutPhoto(ctx context.Context, reference string, data []byte, contentType string) error {
	if reference == "" {
		return errors.New("store: photo requires a reference")
	}

	rec := models.PlacePhoto{
		PhotoReference: reference,
		Data:           data,
		ContentType:    contentType,
		Timestamp:      s.now(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "photo_reference"}},
			UpdateAll: true,
		}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("store: put photo: %w", err)
	}
	return nil
}

// Clear deletes all rows of one cache kind, or of every kind when kind
// is empty. The whole operation runs in one transaction: either all
// targeted rows go, or none do. Returns per-kind deleted counts.
func (s *Store) Clear(ctx context.Context, kind string) (map[string]int64, error) {
	switch kind {
	case "", KindPlaces, KindPhotos, KindGeocode:
	default:
		return nil, fmt.Errorf("store: unknown cache kind %q", kind)
	}

	deleted := make(map[string]int64)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if kind == "" || kind == KindPlaces {
			res := tx.Where("1 = 1").Delete(&models.PlaceSearch{})
			if res.Error != nil {
				return fmt.Errorf("clear place searches: %w", res.Error)
			}
			deleted[KindPlaces] = res.RowsAffected
		}
		if kind == "" || kind == KindPhotos {
			res := tx.Where("1 = 1").Delete(&models.PlacePhoto{})
			if res.Error != nil {
				return fmt.Errorf("clear photos: %w", res.Error)
			}
			deleted[KindPhotos] = res.RowsAffected
		}
		if kind == "" || kind == KindGeocode {
			res := tx.Where("1 = 1").Delete(&models.GeocodeResult{})
			if res.Error != nil {
				return fmt.Errorf("clear geocode results: %w", res.Error)
			}
			deleted[KindGeocode] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	s.log.Info("cache cleared",
		zap.String("kind", kindOrAll(kind)),
		zap.Int64("places", deleted[KindPlaces]),
		zap.Int64("photos", deleted[KindPhotos]),
		zap.Int64("geocode", deleted[KindGeocode]),
	)

	return deleted, nil
}

// Cache kind names accepted by Clear and reported by Stats.
const (
	KindPlaces  = "places"
	KindPhotos  = "photos"
	KindGeocode = "geocode"
)

func kindOrAll(kind string) string {
	if kind == "" {
		return "all"
	}
	return kind
}
