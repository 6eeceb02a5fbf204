package services

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/store"
	apperrors "github.com/avillareal/homescout/pkg/errors"
	"github.com/avillareal/homescout/pkg/logger"
)

// DeriveLocationKey builds the cache key for a nearby search. The raw
// fields are joined with underscores and hashed; inputs are not
// normalized, so "30.1,-97.7" and "30.10,-97.70" are distinct keys.
func DeriveLocationKey(location string, radius int, placeType, keyword string) string {
	material := fmt.Sprintf("%s_%d_%s", location, radius, placeType)
	if keyword != "" {
		material = fmt.Sprintf("%s_%s", material, keyword)
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(material)))
}

// PlacesService is the read-through cache over the places provider,
// covering both nearby searches and photo payloads.
type PlacesService struct {
	store  *store.Store
	places providers.PlacesProvider
	log    *zap.Logger
}

// NewPlacesService constructs the service.
func NewPlacesService(st *store.Store, places providers.PlacesProvider) (*PlacesService, error) {
	if st == nil {
		return nil, errors.New("places service: store is required")
	}
	if places == nil {
		return nil, errors.New("places service: places provider is required")
	}
	return &PlacesService{
		store:  st,
		places: places,
		log:    logger.WithModule("places"),
	}, nil
}

// SearchNearby returns places around a location. Paginated requests
// (a non-empty page token) always go straight to the provider and are
// never cached; only first-page results live in the store. Upstream
// failures are returned to the caller and leave the cache untouched.
func (s *PlacesService) SearchNearby(ctx context.Context, q providers.NearbyQuery) (*models.PlacesResult, bool, error) {
	if q.Location == "" {
		return nil, false, apperrors.NewInvalidInput("location must not be empty")
	}

	if q.PageToken != "" {
		result, err := s.places.SearchNearby(ctx, q)
		if err != nil {
			return nil, false, apperrors.ErrUpstreamUnavailable.WithInternal(err)
		}
		return result, false, nil
	}

	key := DeriveLocationKey(q.Location, q.Radius, q.PlaceType, q.Keyword)

	rec, ok, err := s.store.GetPlaceSearch(ctx, key)
	if err != nil {
		return nil, false, apperrors.ErrStore.WithInternal(err)
	}
	if ok {
		var cached models.PlacesResult
		if err := json.Unmarshal(rec.Results, &cached); err == nil {
			s.log.Debug("places cache hit",
				zap.String("location_key", key), zap.String("place_type", q.PlaceType))
			return &cached, true, nil
		}
		// Unreadable payload is treated as a miss and overwritten below.
		s.log.Warn("discarding undecodable cached search", zap.String("location_key", key))
	}

	result, err := s.places.SearchNearby(ctx, q)
	if err != nil {
		return nil, false, apperrors.ErrUpstreamUnavailable.WithInternal(err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, false, fmt.Errorf("places service: encode results: %w", err)
	}
	if err := s.store.PutPlaceSearch(ctx, &models.PlaceSearch{
		LocationKey: key,
		Location:    q.Location,
		Radius:      q.Radius,
		PlaceType:   q.PlaceType,
		Keyword:     q.Keyword,
		Results:     payload,
	}); err != nil {
		return nil, false, apperrors.ErrStore.WithInternal(err)
	}

	s.log.Debug("places cache fill",
		zap.String("location_key", key), zap.String("place_type", q.PlaceType))
	return result, false, nil
}

// Photo returns a photo payload by provider reference, read through
// the cache. Failed fetches are never persisted.
func (s *PlacesService) Photo(ctx context.Context, reference string, maxWidth, maxHeight int) (*providers.Photo, bool, error) {
	if reference == "" {
		return nil, false, apperrors.NewInvalidInput("photoreference must not be empty")
	}

	rec, ok, err := s.store.GetPhoto(ctx, reference)
	if err != nil {
		return nil, false, apperrors.ErrStore.WithInternal(err)
	}
	if ok {
		return &providers.Photo{Data: rec.Data, ContentType: rec.ContentType}, true, nil
	}

	photo, err := s.places.FetchPhoto(ctx, reference, maxWidth, maxHeight)
	if err != nil {
		return nil, false, apperrors.ErrUpstreamUnavailable.WithInternal(err)
	}

	if err := s.store.PutPhoto(ctx, reference, photo.Data, photo.ContentType); err != nil {
		return nil, false, apperrors.ErrStore.WithInternal(err)
	}
	return photo, false, nil
}
