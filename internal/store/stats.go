package store

import (
	"context"
	"fmt"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/metrics"
)

// KindStats reports the row count and serialized payload size of one
// cache kind.
type KindStats struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

// CacheStats aggregates per-kind statistics.
type CacheStats struct {
	Places         KindStats `json:"places"`
	Photos         KindStats `json:"photos"`
	Geocode        KindStats `json:"geocode"`
	TotalCacheSize int64     `json:"total_cache_size"`
}

// Stats computes counts and payload byte sizes across all cache kinds.
func (s *Store) Stats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats

	db := s.db.WithContext(ctx)

	if err := db.Model(&models.PlaceSearch{}).Count(&stats.Places.Count).Error; err != nil {
		return stats, fmt.Errorf("store: count place searches: %w", err)
	}
	if err := db.Model(&models.PlaceSearch{}).
		Select("COALESCE(SUM(LENGTH(results)), 0)").Scan(&stats.Places.Size).Error; err != nil {
		return stats, fmt.Errorf("store: size place searches: %w", err)
	}

	if err := db.Model(&models.PlacePhoto{}).Count(&stats.Photos.Count).Error; err != nil {
		return stats, fmt.Errorf("store: count photos: %w", err)
	}
	if err := db.Model(&models.PlacePhoto{}).
		Select("COALESCE(SUM(LENGTH(data)), 0)").Scan(&stats.Photos.Size).Error; err != nil {
		return stats, fmt.Errorf("store: size photos: %w", err)
	}

	if err := db.Model(&models.GeocodeResult{}).Count(&stats.Geocode.Count).Error; err != nil {
		return stats, fmt.Errorf("store: count geocode results: %w", err)
	}
	if err := db.Model(&models.GeocodeResult{}).
		Select("COALESCE(SUM(LENGTH(raw_response)), 0)").Scan(&stats.Geocode.Size).Error; err != nil {
		return stats, fmt.Errorf("store: size geocode results: %w", err)
	}

	stats.TotalCacheSize = stats.Places.Size + stats.Photos.Size + stats.Geocode.Size

	metrics.CacheBytes.WithLabelValues(KindPlaces).Set(float64(stats.Places.Size))
	metrics.CacheBytes.WithLabelValues(KindPhotos).Set(float64(stats.Photos.Size))
	metrics.CacheBytes.WithLabelValues(KindGeocode).Set(float64(stats.Geocode.Size))

	return stats, nil
}
