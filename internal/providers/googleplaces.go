package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/logger"
	"github.com/avillareal/homescout/pkg/metrics"
)

// fieldMask selects the place fields the frontend consumes.
const fieldMask = "places.displayName,places.id,places.formattedAddress,places.location," +
	"places.rating,places.userRatingCount,places.types,places.regularOpeningHours," +
	"places.priceLevel,places.photos,nextPageToken"

// GooglePlacesConfig configures the places client.
type GooglePlacesConfig struct {
	SearchURL  string
	PhotoURL   string
	APIKey     string
	HTTPClient *http.Client
}

// GooglePlacesClient talks to the new Places API (places:searchNearby)
// and normalizes its responses into the legacy shape the rest of the
// system caches and serves.
type GooglePlacesClient struct {
	searchURL string
	photoURL  string
	apiKey    string
	http      *http.Client
	log       *zap.Logger
}

// NewGooglePlacesClient constructs a places client.
func NewGooglePlacesClient(cfg GooglePlacesConfig) *GooglePlacesClient {
	return &GooglePlacesClient{
		searchURL: cfg.SearchURL,
		photoURL:  cfg.PhotoURL,
		apiKey:    cfg.APIKey,
		http:      httpClientOrDefault(cfg.HTTPClient),
		log:       logger.WithModule("places"),
	}
}

type newPlacesResponse struct {
	Places []struct {
		ID          string `json:"id"`
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Types               []string `json:"types"`
		Rating              float64  `json:"rating"`
		UserRatingCount     int      `json:"userRatingCount"`
		RegularOpeningHours *struct {
			OpenNow             bool     `json:"openNow"`
			WeekdayDescriptions []string `json:"weekdayDescriptions"`
		} `json:"regularOpeningHours"`
		PriceLevel string `json:"priceLevel"`
		Photos     []struct {
			Name     string `json:"name"`
			WidthPx  int    `json:"widthPx"`
			HeightPx int    `json:"heightPx"`
		} `json:"photos"`
	} `json:"places"`
	NextPageToken string `json:"nextPageToken"`
}

var priceLevels = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// SearchNearby runs one nearby search. Page-token queries go out as a
// GET carrying only the token; everything else posts a circle
// restriction built from the "lat,lng" location string.
func (c *GooglePlacesClient) SearchNearby(ctx context.Context, q NearbyQuery) (*models.PlacesResult, error) {
	var req *http.Request
	var err error

	if q.PageToken != "" {
		endpoint := fmt.Sprintf("%s?key=%s&pageToken=%s", c.searchURL, url.QueryEscape(c.apiKey), url.QueryEscape(q.PageToken))
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	} else {
		var lat, lng float64
		lat, lng, err = parseLocation(q.Location)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"includedTypes": []string{q.PlaceType},
			"locationRestriction": map[string]any{
				"circle": map[string]any{
					"center": map[string]float64{"latitude": lat, "longitude": lng},
					"radius": float64(q.Radius),
				},
			},
			"maxResultCount": 20,
		}
		if q.Keyword != "" {
			payload["textQuery"] = q.Keyword
		}

		var body []byte
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("places: marshal request: %w", err)
		}

		endpoint := fmt.Sprintf("%s?key=%s", c.searchURL, url.QueryEscape(c.apiKey))
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("places", "failure").Inc()
		return nil, fmt.Errorf("places: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("places", "failure").Inc()
		return nil, fmt.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var payload newPlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.UpstreamRequests.WithLabelValues("places", "failure").Inc()
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	metrics.UpstreamRequests.WithLabelValues("places", "success").Inc()
	result := c.transform(payload)
	c.log.Debug("nearby search", zap.String("type", q.PlaceType), zap.Int("results", len(result.Results)))

	return result, nil
}

// transform maps the new API payload onto the legacy result shape.
// Missing rating, rating count, and price level default to zero.
func (c *GooglePlacesClient) transform(payload newPlacesResponse) *models.PlacesResult {
	result := &models.PlacesResult{
		Results:       make([]models.Place, 0, len(payload.Places)),
		Status:        "OK",
		NextPageToken: payload.NextPageToken,
	}

	for _, p := range payload.Places {
		place := models.Place{
			PlaceID:          p.ID,
			Name:             p.DisplayName.Text,
			Vicinity:         shortenVicinity(p.FormattedAddress),
			FormattedAddress: p.FormattedAddress,
			Geometry: models.Geometry{
				Location: models.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
			},
			Types:            p.Types,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingCount,
			PriceLevel:       priceLevels[p.PriceLevel],
		}

		if p.RegularOpeningHours != nil {
			place.OpeningHours = &models.OpeningHours{
				OpenNow:     p.RegularOpeningHours.OpenNow,
				WeekdayText: p.RegularOpeningHours.WeekdayDescriptions,
			}
		}

		for _, photo := range p.Photos {
			place.Photos = append(place.Photos, models.PhotoDescriptor{
				PhotoReference: photo.Name,
				Width:          photo.WidthPx,
				Height:         photo.HeightPx,
			})
		}

		result.Results = append(result.Results, place)
	}

	return result
}

// shortenVicinity trims long formatted addresses down to their first
// comma-separated segment.
func shortenVicinity(formatted string) string {
	if len(formatted) <= 50 {
		return formatted
	}
	if idx := strings.Index(formatted, ","); idx > 0 {
		return strings.TrimSpace(formatted[:idx])
	}
	return formatted
}

// FetchPhoto downloads one place photo. maxHeight may be zero.
func (c *GooglePlacesClient) FetchPhoto(ctx context.Context, reference string, maxWidth, maxHeight int) (*Photo, error) {
	params := url.Values{}
	params.Set("photoreference", reference)
	params.Set("maxwidth", strconv.Itoa(maxWidth))
	if maxHeight > 0 {
		params.Set("maxheight", strconv.Itoa(maxHeight))
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.photoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build photo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("places_photo", "failure").Inc()
		return nil, fmt.Errorf("places: photo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("places_photo", "failure").Inc()
		return nil, fmt.Errorf("places: photo status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("places_photo", "failure").Inc()
		return nil, fmt.Errorf("places: read photo: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	metrics.UpstreamRequests.WithLabelValues("places_photo", "success").Inc()
	return &Photo{Data: data, ContentType: contentType}, nil
}

// parseLocation splits a "lat,lng" pair.
func parseLocation(location string) (float64, float64, error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("places: location %q is not lat,lng", location)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("places: latitude in %q: %w", location, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("places: longitude in %q: %w", location, err)
	}

	return lat, lng, nil
}
