package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/internal/providers"
	apperrors "github.com/avillareal/homescout/pkg/errors"
	"github.com/avillareal/homescout/pkg/logger"
)

// EnrichmentStats counts what happened to each listing in a batch.
// Input equals CacheHits + Geocoded + NoAddress + GeocodeFailed.
type EnrichmentStats struct {
	Input         int `json:"input"`
	CacheHits     int `json:"cache_hits"`
	Geocoded      int `json:"geocoded"`
	NoAddress     int `json:"no_address"`
	GeocodeFailed int `json:"geocode_failed"`
}

// EnrichmentService joins the listing source with the geocoding cache,
// producing listings annotated with coordinates. Listings that cannot
// be enriched are dropped from the result rather than failing the
// whole batch; only store failures abort.
type EnrichmentService struct {
	source   providers.ListingSource
	geocoder *GeocodingService
	log      *zap.Logger
}

// NewEnrichmentService constructs the service.
func NewEnrichmentService(source providers.ListingSource, geocoder *GeocodingService) (*EnrichmentService, error) {
	if source == nil {
		return nil, errors.New("enrichment service: listing source is required")
	}
	if geocoder == nil {
		return nil, errors.New("enrichment service: geocoding service is required")
	}
	return &EnrichmentService{
		source:   source,
		geocoder: geocoder,
		log:      logger.WithModule("enrichment"),
	}, nil
}

// EnrichActive fetches up to limit active listings and resolves each
// one's canonical address to coordinates. Output order follows input
// order. Listings with no usable address, and listings whose geocoding
// fails, are omitted and counted.
func (s *EnrichmentService) EnrichActive(ctx context.Context, limit int) ([]models.Listing, EnrichmentStats, error) {
	var stats EnrichmentStats

	listings, err := s.source.ActiveListings(ctx, limit)
	if err != nil {
		return nil, stats, fmt.Errorf("enrichment service: fetch listings: %w", err)
	}
	stats.Input = len(listings)

	enriched := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		address := listing.CanonicalAddress()
		if address == "" {
			stats.NoAddress++
			s.log.Warn("listing has no usable address",
				zap.String("listing_key", listing.ListingKey))
			continue
		}

		coords, cached, err := s.geocoder.Resolve(ctx, address)
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrStore.Code) {
				return nil, stats, err
			}
			stats.GeocodeFailed++
			s.log.Warn("listing could not be geocoded",
				zap.String("listing_key", listing.ListingKey),
				zap.String("address", address),
				zap.Error(err))
			continue
		}
		if cached {
			stats.CacheHits++
		} else {
			stats.Geocoded++
		}

		listing.Coordinates = &coords
		enriched = append(enriched, listing)
	}

	s.log.Info("enriched active listings",
		zap.Int("input", stats.Input),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("geocoded", stats.Geocoded),
		zap.Int("no_address", stats.NoAddress),
		zap.Int("geocode_failed", stats.GeocodeFailed))
	return enriched, stats, nil
}

// Listing returns a single listing by key, enriched with coordinates
// when its address resolves. A missing listing maps to ErrNotFound;
// geocoding trouble degrades to a listing without coordinates.
func (s *EnrichmentService) Listing(ctx context.Context, listingKey string) (*models.Listing, error) {
	if listingKey == "" {
		return nil, apperrors.NewInvalidInput("listing key must not be empty")
	}

	listing, err := s.source.Listing(ctx, listingKey)
	if err != nil {
		return nil, fmt.Errorf("enrichment service: fetch listing: %w", err)
	}
	if listing == nil {
		return nil, apperrors.ErrNotFound.WithMessage("Listing not found")
	}

	address := listing.CanonicalAddress()
	if address == "" {
		return listing, nil
	}
	coords, _, err := s.geocoder.Resolve(ctx, address)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrStore.Code) {
			return nil, err
		}
		s.log.Warn("listing could not be geocoded",
			zap.String("listing_key", listingKey), zap.Error(err))
		return listing, nil
	}
	listing.Coordinates = &coords
	return listing, nil
}
