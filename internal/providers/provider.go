// Package providers contains the HTTP clients for the three upstream
// collaborators: the Bridge RESO listings API, the Geoapify geocoding
// API, and the Google Places API. The caching layer depends only on
// the interfaces here; concrete clients are injected at bootstrap.
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/avillareal/homescout/internal/models"
)

// DefaultTimeout bounds every upstream call unless a custom client is
// supplied. Timeouts surface through the normal error path.
const DefaultTimeout = 10 * time.Second

// Geocoder resolves a free-form address to coordinates. A nil error
// with Success=false on the result means the provider answered but
// found nothing; a non-nil error means the provider was unreachable.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeocodeResult, error)
}

// NearbyQuery carries the parameters of one nearby search. A non-empty
// PageToken replaces every other parameter upstream.
type NearbyQuery struct {
	Location  string
	Radius    int
	PlaceType string
	Keyword   string
	PageToken string
}

// Photo is a fetched photo payload.
type Photo struct {
	Data        []byte
	ContentType string
}

// PlacesProvider searches for nearby places and fetches place photos.
type PlacesProvider interface {
	SearchNearby(ctx context.Context, q NearbyQuery) (*models.PlacesResult, error)
	FetchPhoto(ctx context.Context, reference string, maxWidth, maxHeight int) (*Photo, error)
}

// ListingSource serves raw residential listings. Upstream failures
// surface as an empty slice or nil listing rather than an error; the
// batch pipeline degrades by omission.
type ListingSource interface {
	ActiveListings(ctx context.Context, limit int) ([]models.Listing, error)
	Listing(ctx context.Context, key string) (*models.Listing, error)
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}
