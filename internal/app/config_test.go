package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "./data/homescout.sqlite", cfg.Database.Path)
	require.Equal(t, 120*time.Hour, cfg.Cache.Expiration)
	require.Equal(t, "@daily", cfg.Cache.SweepSchedule)
	require.Equal(t, "https://api.bridgedataoutput.com/api/v2/OData/", cfg.Providers.Bridge.BaseURL)
	require.Equal(t, "https://api.geoapify.com/v1/geocode/search", cfg.Providers.Geoapify.BaseURL)
	require.Equal(t, "https://places.googleapis.com/v1/places:searchNearby", cfg.Providers.GooglePlaces.SearchURL)
	require.Equal(t, 10*time.Second, cfg.Providers.Bridge.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("testdata"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "./testdata/cache.sqlite", cfg.Database.Path)
	require.Equal(t, 48*time.Hour, cfg.Cache.Expiration)
	require.Equal(t, "@hourly", cfg.Cache.SweepSchedule)
	require.Equal(t, "actris_ref", cfg.Providers.Bridge.Dataset)
	require.Equal(t, "bridge-token", cfg.Providers.Bridge.ServerToken)
	require.Equal(t, 5*time.Second, cfg.Providers.Bridge.Timeout)
	require.Equal(t, "geo-key", cfg.Providers.Geoapify.APIKey)
	require.Equal(t, "places-key", cfg.Providers.GooglePlaces.APIKey)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("HOMESCOUT_SERVER_PORT", "9001")
	t.Setenv("HOMESCOUT_CACHE_EXPIRATION", "72h")
	t.Setenv("HOMESCOUT_PROVIDERS_GEOAPIFY_API_KEY", "env-key")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 72*time.Hour, cfg.Cache.Expiration)
	require.Equal(t, "env-key", cfg.Providers.Geoapify.APIKey)
}

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(""))
	require.NoError(t, ConfigureLogging("debug"))
}
