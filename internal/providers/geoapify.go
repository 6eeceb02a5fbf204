package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/logger"
	"github.com/avillareal/homescout/pkg/metrics"
)

// GeoapifyConfig configures the geocoding client.
type GeoapifyConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// GeoapifyClient geocodes addresses via the Geoapify search API.
type GeoapifyClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// NewGeoapifyClient constructs a geocoding client.
func NewGeoapifyClient(cfg GeoapifyConfig) *GeoapifyClient {
	return &GeoapifyClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpClientOrDefault(cfg.HTTPClient),
		log:     logger.WithModule("geoapify"),
	}
}

type geoapifyResponse struct {
	Features []struct {
		Properties struct {
			Lat         float64 `json:"lat"`
			Lon         float64 `json:"lon"`
			Formatted   string  `json:"formatted"`
			HouseNumber string  `json:"housenumber"`
			Street      string  `json:"street"`
			City        string  `json:"city"`
			County      string  `json:"county"`
			State       string  `json:"state"`
			Country     string  `json:"country"`
			Postcode    string  `json:"postcode"`
			Suburb      string  `json:"suburb"`
			PlaceID     string  `json:"place_id"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode resolves one address. An answer with no features yields a
// Success=false record holding the raw payload; transport and non-2xx
// failures return an error and no record.
func (c *GeoapifyClient) Geocode(ctx context.Context, address string) (*models.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s?text=%s&apiKey=%s", c.baseURL, url.QueryEscape(address), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geoapify: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("geoapify", "failure").Inc()
		return nil, fmt.Errorf("geoapify: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("geoapify", "failure").Inc()
		return nil, fmt.Errorf("geoapify: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("geoapify", "failure").Inc()
		return nil, fmt.Errorf("geoapify: read response: %w", err)
	}

	var payload geoapifyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.UpstreamRequests.WithLabelValues("geoapify", "failure").Inc()
		return nil, fmt.Errorf("geoapify: decode response: %w", err)
	}

	if len(payload.Features) == 0 {
		c.log.Warn("no geocoding results", zap.String("address", address))
		metrics.UpstreamRequests.WithLabelValues("geoapify", "no_result").Inc()
		return &models.GeocodeResult{
			Address:     address,
			Success:     false,
			RawResponse: body,
		}, nil
	}

	props := payload.Features[0].Properties
	metrics.UpstreamRequests.WithLabelValues("geoapify", "success").Inc()

	return &models.GeocodeResult{
		Address:          address,
		Success:          true,
		Lat:              props.Lat,
		Lon:              props.Lon,
		FormattedAddress: props.Formatted,
		HouseNumber:      props.HouseNumber,
		Street:           props.Street,
		City:             props.City,
		County:           props.County,
		State:            props.State,
		Country:          props.Country,
		Postcode:         props.Postcode,
		Suburb:           props.Suburb,
		PlaceID:          props.PlaceID,
		RawResponse:      body,
	}, nil
}
