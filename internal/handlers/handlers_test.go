package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avillareal/homescout/internal/database"
	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/services"
	"github.com/avillareal/homescout/internal/store"
	"github.com/avillareal/homescout/pkg/response"
)

type fakeGeocoder struct {
	calls int
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*models.GeocodeResult, error) {
	g.calls++
	return &models.GeocodeResult{Address: address, Success: true, Lat: 30.27, Lon: -97.74}, nil
}

type fakePlaces struct {
	searchCalls int
}

func (p *fakePlaces) SearchNearby(_ context.Context, q providers.NearbyQuery) (*models.PlacesResult, error) {
	p.searchCalls++
	return &models.PlacesResult{
		Status:  "OK",
		Results: []models.Place{{PlaceID: "p1", Name: "Zilker Elementary"}},
	}, nil
}

func (p *fakePlaces) FetchPhoto(_ context.Context, _ string, _, _ int) (*providers.Photo, error) {
	return &providers.Photo{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}, nil
}

type fakeListings struct{}

func (fakeListings) ActiveListings(_ context.Context, limit int) ([]models.Listing, error) {
	all := []models.Listing{
		{ListingKey: "L1", StreetNumber: "1", StreetName: "First St", City: "Austin", StateOrProvince: "TX"},
		{ListingKey: "L2"},
	}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (fakeListings) Listing(_ context.Context, key string) (*models.Listing, error) {
	if key != "L1" {
		return nil, nil
	}
	return &models.Listing{
		ListingKey: "L1", StreetNumber: "1", StreetName: "First St",
		City: "Austin", StateOrProvince: "TX",
	}, nil
}

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	places *fakePlaces
}

func newTestEnv(t *testing.T) *testEnv {
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

	geoSvc, err := services.NewGeocodingService(st, &fakeGeocoder{})
	require.NoError(t, err)
	fp := &fakePlaces{}
	placesSvc, err := services.NewPlacesService(st, fp)
	require.NoError(t, err)
	enrichSvc, err := services.NewEnrichmentService(fakeListings{}, geoSvc)
	require.NoError(t, err)

	listings := NewListingsHandler(enrichSvc)
	places := NewPlacesHandler(placesSvc, st)
	system := NewSystemHandler(st, "test")

	r := gin.New()
	api := r.Group("/api")
	api.GET("/listings/active", listings.Active)
	api.GET("/listings/:listingKey", listings.Detail)
	api.GET("/places/nearby", places.Nearby)
	api.GET("/places/schools", places.Schools)
	api.GET("/places/photo", places.Photo)
	api.POST("/places/clear-cache", places.ClearCache)
	api.GET("/cache/stats", system.CacheStats)
	api.DELETE("/cache/clear", system.CacheClear)
	r.GET("/health", system.Health)

	return &testEnv{router: r, store: st, places: fp}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	e.router.ServeHTTP(w, req)
	return w
}

func TestActiveListingsEnrichment(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/listings/active?limit=5")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Listings []models.Listing         `json:"listings"`
		Count    int                      `json:"count"`
		Stats    services.EnrichmentStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// L2 has no address and is dropped.
	require.Equal(t, 1, body.Count)
	require.Equal(t, "L1", body.Listings[0].ListingKey)
	require.NotNil(t, body.Listings[0].Coordinates)
	require.Equal(t, 2, body.Stats.Input)
	require.Equal(t, 1, body.Stats.NoAddress)
}

func TestActiveListingsLimitValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{
		"/api/listings/active?limit=0",
		"/api/listings/active?limit=101",
	} {
		w := env.do(http.MethodGet, target)
		require.Equal(t, http.StatusBadRequest, w.Code, target)

		var body response.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "INVALID_INPUT", body.Error.Code)
	}
}

func TestListingDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/listings/L1")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/listings/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNearbySecondCallServedFromCache(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74&radius=1500&type=school")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74&radius=1500&type=school")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.JSONEq(t, first.Body.String(), second.Body.String())
	require.Equal(t, 1, env.places.searchCalls)
}

func TestNearbyRequiresLocation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/places/nearby")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNearbyRadiusBounds(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74&radius=50")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74&radius=60000")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchoolsUsesFixedTypeAndRadius(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/places/schools?location=30.27,-97.74")
	require.Equal(t, http.StatusOK, w.Code)

	// The category endpoint cached under type=school radius=1500.
	key := services.DeriveLocationKey("30.27,-97.74", 1500, "school", "")
	_, ok, err := env.store.GetPlaceSearch(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPhotoStreamsBytes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/places/photo?reference=ref-1&maxwidth=400")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	require.Equal(t, "jpeg-bytes", w.Body.String())

	w = env.do(http.MethodGet, "/api/places/photo")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearPlacesCacheOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Seed one row of each kind.
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74").Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/places/photo?reference=ref-1").Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/listings/active?limit=5").Code)

	w := env.do(http.MethodPost, "/api/places/clear-cache")
	require.Equal(t, http.StatusOK, w.Code)

	stats, err := env.store.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Places.Count)
	require.Equal(t, int64(1), stats.Photos.Count)
	require.Equal(t, int64(1), stats.Geocode.Count)
}

func TestCacheStatsAndClearAll(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/places/nearby?location=30.27,-97.74").Code)

	w := env.do(http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Contains(t, stats, "total_cache_size")
	require.Contains(t, stats, "total_cache_size_formatted")
	require.EqualValues(t, 1, stats["places"].(map[string]any)["count"])

	w = env.do(http.MethodDelete, "/api/cache/clear")
	require.Equal(t, http.StatusOK, w.Code)

	after, err := env.store.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, after.Places.Count+after.Photos.Count+after.Geocode.Count)
}

func TestCacheClearRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/cache/clear?type=listings")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512 B", formatBytes(512))
	require.Equal(t, "1.0 KiB", formatBytes(1024))
	require.Equal(t, "1.5 MiB", formatBytes(1536*1024))
}
