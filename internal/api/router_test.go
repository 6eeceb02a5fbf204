package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avillareal/homescout/internal/database"
	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/store"
)

type noopGeocoder struct{}

func (noopGeocoder) Geocode(_ context.Context, address string) (*models.GeocodeResult, error) {
	return &models.GeocodeResult{Address: address, Success: true, Lat: 1, Lon: 2}, nil
}

type noopPlaces struct{}

func (noopPlaces) SearchNearby(context.Context, providers.NearbyQuery) (*models.PlacesResult, error) {
	return &models.PlacesResult{Status: "OK"}, nil
}

func (noopPlaces) FetchPhoto(context.Context, string, int, int) (*providers.Photo, error) {
	return &providers.Photo{Data: []byte{1}, ContentType: "image/jpeg"}, nil
}

type noopListings struct{}

func (noopListings) ActiveListings(context.Context, int) ([]models.Listing, error) {
	return nil, nil
}

func (noopListings) Listing(context.Context, string) (*models.Listing, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st, err := store.New(db, store.DefaultTTL)
	require.NoError(t, err)

	router, err := NewRouter(Deps{
		Store:    st,
		Geocoder: noopGeocoder{},
		Places:   noopPlaces{},
		Listings: noopListings{},
		Version:  "test",
	})
	require.NoError(t, err)
	return router
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/listings/active", http.StatusOK},
		{http.MethodGet, "/api/places/nearby?location=1,2", http.StatusOK},
		{http.MethodGet, "/api/places/schools?location=1,2", http.StatusOK},
		{http.MethodGet, "/api/cache/stats", http.StatusOK},
		{http.MethodDelete, "/api/cache/clear", http.StatusOK},
		{http.MethodGet, "/api/nowhere", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.target, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.target)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "go_goroutines") ||
		strings.Contains(w.Body.String(), "homescout_"))
}

func TestRouterRequiresDeps(t *testing.T) {
	_, err := NewRouter(Deps{})
	require.Error(t, err)
}
