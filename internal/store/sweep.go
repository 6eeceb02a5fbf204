package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/metrics"
)

// SweepReport summarizes one expiration sweep.
type SweepReport struct {
	DeletedPlaces  int64 `json:"deleted_places"`
	DeletedPhotos  int64 `json:"deleted_photos"`
	ExpiredBytes   int64 `json:"expired_bytes"`
	SizeBefore     int64 `json:"size_before"`
	SizeAfter      int64 `json:"size_after"`
	BytesReclaimed int64 `json:"bytes_reclaimed"`
}

// TotalDeleted returns the number of rows removed across both tables.
func (r SweepReport) TotalDeleted() int64 {
	return r.DeletedPlaces + r.DeletedPhotos
}

// SweepExpired removes every place-search and photo row stamped
// strictly before cutoff, then vacuums the database to reclaim space.
// Geocode rows are exempt: they are refreshed on write and never
// considered stale for deletion. Safe to re-run; a second sweep with no
// newly expired rows deletes nothing and reclaims nothing.
func (s *Store) SweepExpired(ctx context.Context, cutoff time.Time) (SweepReport, error) {
	var report SweepReport

	report.SizeBefore = s.databaseSize(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PlaceSearch{}).
			Where("timestamp < ?", cutoff).
			Select("COALESCE(SUM(LENGTH(results)), 0)").
			Scan(&report.ExpiredBytes).Error; err != nil {
			return fmt.Errorf("size expired place searches: %w", err)
		}

		var photoBytes int64
		if err := tx.Model(&models.PlacePhoto{}).
			Where("timestamp < ?", cutoff).
			Select("COALESCE(SUM(LENGTH(data)), 0)").
			Scan(&photoBytes).Error; err != nil {
			return fmt.Errorf("size expired photos: %w", err)
		}
		report.ExpiredBytes += photoBytes

		res := tx.Where("timestamp < ?", cutoff).Delete(&models.PlaceSearch{})
		if res.Error != nil {
			return fmt.Errorf("delete expired place searches: %w", res.Error)
		}
		report.DeletedPlaces = res.RowsAffected

		res = tx.Where("timestamp < ?", cutoff).Delete(&models.PlacePhoto{})
		if res.Error != nil {
			return fmt.Errorf("delete expired photos: %w", res.Error)
		}
		report.DeletedPhotos = res.RowsAffected

		return nil
	})
	if err != nil {
		return report, fmt.Errorf("store: sweep: %w", err)
	}

	// VACUUM cannot run inside the delete transaction. It briefly blocks
	// writers, so only pay for it when something was removed.
	if report.TotalDeleted() > 0 {
		if err := s.db.WithContext(ctx).Exec("VACUUM").Error; err != nil {
			return report, fmt.Errorf("store: vacuum: %w", err)
		}
	}

	report.SizeAfter = s.databaseSize(ctx)
	if report.SizeBefore > report.SizeAfter {
		report.BytesReclaimed = report.SizeBefore - report.SizeAfter
	}

	metrics.SweepDeleted.WithLabelValues(KindPlaces).Add(float64(report.DeletedPlaces))
	metrics.SweepDeleted.WithLabelValues(KindPhotos).Add(float64(report.DeletedPhotos))

	s.log.Info("expiration sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted_places", report.DeletedPlaces),
		zap.Int64("deleted_photos", report.DeletedPhotos),
		zap.Int64("bytes_reclaimed", report.BytesReclaimed),
	)

	return report, nil
}

// databaseSize reads the page-level size of the underlying SQLite file.
// Best effort: failures report zero rather than aborting a sweep.
func (s *Store) databaseSize(ctx context.Context) int64 {
	var pageCount, pageSize int64
	if err := s.db.WithContext(ctx).Raw("PRAGMA page_count").Scan(&pageCount).Error; err != nil {
		s.log.Warn("could not read page_count", zap.Error(err))
		return 0
	}
	if err := s.db.WithContext(ctx).Raw("PRAGMA page_size").Scan(&pageSize).Error; err != nil {
		s.log.Warn("could not read page_size", zap.Error(err))
		return 0
	}
	return pageCount * pageSize
}
