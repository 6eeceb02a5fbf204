package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/avillareal/homescout/internal/models"
	"github.com/avillareal/homescout/pkg/logger"
	"github.com/avillareal/homescout/pkg/metrics"
)

// BridgeConfig configures the RESO Web API client.
type BridgeConfig struct {
	BaseURL     string
	Dataset     string
	ServerToken string
	HTTPClient  *http.Client
}

// BridgeClient fetches residential listings from a Bridge RESO OData
// endpoint. Upstream failures degrade to empty results: listing data is
// best effort and the enrichment pipeline tolerates gaps.
type BridgeClient struct {
	baseURL string
	dataset string
	token   string
	http    *http.Client
	log     *zap.Logger
}

// NewBridgeClient constructs a listings client.
func NewBridgeClient(cfg BridgeConfig) *BridgeClient {
	return &BridgeClient{
		baseURL: cfg.BaseURL,
		dataset: cfg.Dataset,
		token:   cfg.ServerToken,
		http:    httpClientOrDefault(cfg.HTTPClient),
		log:     logger.WithModule("bridge"),
	}
}

// ActiveListings fetches up to limit active residential listings.
func (c *BridgeClient) ActiveListings(ctx context.Context, limit int) ([]models.Listing, error) {
	filter := "StandardStatus eq 'Active' and PropertyType eq 'Residential'"
	endpoint := fmt.Sprintf("%s%s/Property?access_token=%s&$filter=%s&$top=%d",
		c.baseURL, c.dataset, url.QueryEscape(c.token), url.QueryEscape(filter), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("active listings request failed", zap.Error(err))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("active listings request failed", zap.Int("status", resp.StatusCode))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}

	var payload struct {
		Value []models.Listing `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("active listings decode failed", zap.Error(err))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}

	metrics.UpstreamRequests.WithLabelValues("bridge", "success").Inc()
	c.log.Info("fetched active listings", zap.Int("count", len(payload.Value)))

	return payload.Value, nil
}

// Listing fetches one listing by key. Absent or failing lookups return
// nil without an error.
func (c *BridgeClient) Listing(ctx context.Context, key string) (*models.Listing, error) {
	endpoint := fmt.Sprintf("%s%s/Property('%s')?access_token=%s",
		c.baseURL, c.dataset, url.PathEscape(key), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("listing request failed", zap.String("key", key), zap.Error(err))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("listing not available", zap.String("key", key), zap.Int("status", resp.StatusCode))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}

	var listing models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		c.log.Error("listing decode failed", zap.String("key", key), zap.Error(err))
		metrics.UpstreamRequests.WithLabelValues("bridge", "failure").Inc()
		return nil, nil
	}

	metrics.UpstreamRequests.WithLabelValues("bridge", "success").Inc()
	return &listing, nil
}
