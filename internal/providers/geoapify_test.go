package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeoapifyGeocodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "123 Main St, Austin, TX, 78701, United States", r.URL.Query().Get("text"))
		require.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"features": [{
				"properties": {
					"lat": 30.27, "lon": -97.74,
					"formatted": "123 Main Street, Austin, TX 78701, United States of America",
					"housenumber": "123", "street": "Main Street",
					"city": "Austin", "county": "Travis County",
					"state": "Texas", "country": "United States",
					"postcode": "78701", "place_id": "51a0b"
				}
			}]
		}`))
	}))
	defer srv.Close()

	client := NewGeoapifyClient(GeoapifyConfig{BaseURL: srv.URL, APIKey: "test-key"})

	result, err := client.Geocode(context.Background(), "123 Main St, Austin, TX, 78701, United States")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 30.27, result.Lat)
	require.Equal(t, -97.74, result.Lon)
	require.Equal(t, "Austin", result.City)
	require.Equal(t, "51a0b", result.PlaceID)
	require.NotEmpty(t, result.RawResponse)
}

func TestGeoapifyGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	client := NewGeoapifyClient(GeoapifyConfig{BaseURL: srv.URL, APIKey: "k"})

	result, err := client.Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "nowhere at all", result.Address)
	require.NotEmpty(t, result.RawResponse)
}

func TestGeoapifyGeocodeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewGeoapifyClient(GeoapifyConfig{BaseURL: srv.URL, APIKey: "k"})

	result, err := client.Geocode(context.Background(), "anywhere")
	require.Error(t, err)
	require.Nil(t, result)
}
