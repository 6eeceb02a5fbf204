package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avillareal/homescout/internal/store"
	"github.com/avillareal/homescout/pkg/response"
)

// SystemHandler serves health and cache administration endpoints.
type SystemHandler struct {
	store   *store.Store
	started time.Time
	version string
}

func NewSystemHandler(st *store.Store, version string) *SystemHandler {
	return &SystemHandler{store: st, started: time.Now(), version: version}
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// CacheStats handles GET /api/cache/stats.
func (h *SystemHandler) CacheStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"places": gin.H{
			"count": stats.Places.Count,
			"size":  stats.Places.Size,
		},
		"photos": gin.H{
			"count": stats.Photos.Count,
			"size":  stats.Photos.Size,
		},
		"geocode": gin.H{
			"count": stats.Geocode.Count,
			"size":  stats.Geocode.Size,
		},
		"total_cache_size":           stats.TotalCacheSize,
		"total_cache_size_formatted": formatBytes(stats.TotalCacheSize),
		"expiration":                 h.store.TTL().String(),
	})
}

// CacheClear handles DELETE /api/cache/clear. An absent type clears
// every kind; the whole clear is atomic.
func (h *SystemHandler) CacheClear(c *gin.Context) {
	kind := c.Query("type")
	switch kind {
	case "", store.KindPlaces, store.KindPhotos, store.KindGeocode:
	default:
		response.Error(c, apperrInvalid(
			"type must be one of places, photos, geocode", nil))
		return
	}

	deleted, err := h.store.Clear(c.Request.Context(), kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"deleted": deleted,
	})
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
