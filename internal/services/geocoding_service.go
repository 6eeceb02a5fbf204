package services

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/store"
	apperrors "github.com/avillareal/homescout/pkg/errors"
	"github.com/avillareal/homescout/pkg/logger"
)

// GeocodingService is the read-through cache over the geocoding
// provider. The exact address string is the cache key; stored results
// never expire.
type GeocodingService struct {
	store    *store.Store
	geocoder providers.Geocoder
	log      *zap.Logger
}

// NewGeocodingService constructs the service.
func NewGeocodingService(st *store.Store, geocoder providers.Geocoder) (*GeocodingService, error) {
	if st == nil {
		return nil, errors.New("geocoding service: store is required")
	}
	if geocoder == nil {
		return nil, errors.New("geocoding service: geocoder is required")
	}
	return &GeocodingService{
		store:    st,
		geocoder: geocoder,
		log:      logger.WithModule("geocoding"),
	}, nil
}

// Resolve returns coordinates for an address, consulting the cache
// before the provider. cached reports whether the answer came from the
// store. Upstream failures are recorded as failure-marker rows so the
// attempt is visible, but markers do not suppress later retries: a
// stored non-success row counts as a miss.
//
// Two concurrent misses for the same address may both call the
// provider and both upsert; the store's last-write-wins upsert keeps
// exactly one row either way, so no single-flight deduplication is done.
func (s *GeocodingService) Resolve(ctx context.Context, address string) (models.Coordinates, bool, error) {
	if address == "" {
		return models.Coordinates{}, false, apperrors.NewInvalidInput("address must not be empty")
	}

	rec, ok, err := s.store.GetGeocode(ctx, address)
	if err != nil {
		return models.Coordinates{}, false, apperrors.ErrStore.WithInternal(err)
	}
	if ok && rec.Success {
		s.log.Debug("geocode cache hit", zap.String("address", address))
		return rec.Coordinates(), true, nil
	}

	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.persistFailure(ctx, address, err)
		return models.Coordinates{}, false, apperrors.ErrUpstreamUnavailable.WithInternal(err)
	}

	if err := s.store.PutGeocode(ctx, result); err != nil {
		return models.Coordinates{}, false, apperrors.ErrStore.WithInternal(err)
	}

	if !result.Success {
		s.log.Warn("geocoding found no results", zap.String("address", address))
		return models.Coordinates{}, false, apperrors.ErrNoResult
	}

	s.log.Debug("geocode cache fill", zap.String("address", address))
	return result.Coordinates(), false, nil
}

// persistFailure records an unreachable-provider attempt. Best effort:
// a store failure here is logged, not surfaced, because the caller is
// already handling the upstream error.
func (s *GeocodingService) persistFailure(ctx context.Context, address string, cause error) {
	raw, _ := json.Marshal(map[string]string{"error": cause.Error()})
	marker := &models.GeocodeResult{
		Address:     address,
		Success:     false,
		RawResponse: raw,
	}
	if err := s.store.PutGeocode(ctx, marker); err != nil {
		s.log.Error("could not persist geocode failure marker",
			zap.String("address", address), zap.Error(err))
	}
}
