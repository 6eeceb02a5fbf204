package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avillareal/homescout/internal/handlers"
	"github.com/avillareal/homescout/internal/middleware"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/services"
	"github.com/avillareal/homescout/internal/store"
)

// Deps carries everything the router needs. Providers are interfaces
// so tests can inject fakes.
type Deps struct {
	Store    *store.Store
	Geocoder providers.Geocoder
	Places   providers.PlacesProvider
	Listings providers.ListingSource
	Version  string
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("store must be provided")
	}
	if deps.Geocoder == nil || deps.Places == nil || deps.Listings == nil {
		return nil, fmt.Errorf("all three providers must be provided")
	}

	geocoding, err := services.NewGeocodingService(deps.Store, deps.Geocoder)
	if err != nil {
		return nil, err
	}
	placesSvc, err := services.NewPlacesService(deps.Store, deps.Places)
	if err != nil {
		return nil, err
	}
	enrichment, err := services.NewEnrichmentService(deps.Listings, geocoding)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	r.NoRoute(middleware.NotFoundHandler)

	system := handlers.NewSystemHandler(deps.Store, deps.Version)
	r.GET("/health", system.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	listingsHandler := handlers.NewListingsHandler(enrichment)
	placesHandler := handlers.NewPlacesHandler(placesSvc, deps.Store)

	api := r.Group("/api")

	listings := api.Group("/listings")
	{
		listings.GET("/active", listingsHandler.Active)
		listings.GET("/:listingKey", listingsHandler.Detail)
	}

	places := api.Group("/places")
	{
		places.GET("/nearby", placesHandler.Nearby)
		places.GET("/schools", placesHandler.Schools)
		places.GET("/hospitals", placesHandler.Hospitals)
		places.GET("/grocery", placesHandler.Grocery)
		places.GET("/transportation", placesHandler.Transportation)
		places.GET("/photo", placesHandler.Photo)
		places.POST("/clear-cache", placesHandler.ClearCache)
	}

	cache := api.Group("/cache")
	{
		cache.GET("/stats", system.CacheStats)
		cache.DELETE("/clear", system.CacheClear)
	}

	return r, nil
}
