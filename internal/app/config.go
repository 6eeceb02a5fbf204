package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the HomeScout backend.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes the sqlite cache database location. DSN,
// when set, overrides Path entirely.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
}

// CacheConfig controls cache freshness and maintenance.
type CacheConfig struct {
	Expiration    time.Duration `mapstructure:"expiration"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// ProvidersConfig groups upstream provider settings.
type ProvidersConfig struct {
	Bridge       BridgeConfig       `mapstructure:"bridge"`
	Geoapify     GeoapifyConfig     `mapstructure:"geoapify"`
	GooglePlaces GooglePlacesConfig `mapstructure:"google_places"`
}

// BridgeConfig configures the RESO listings API.
type BridgeConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Dataset     string        `mapstructure:"dataset"`
	ServerToken string        `mapstructure:"server_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// GeoapifyConfig configures the geocoding API.
type GeoapifyConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GooglePlacesConfig configures the places API.
type GooglePlacesConfig struct {
	SearchURL string        `mapstructure:"search_url"`
	PhotoURL  string        `mapstructure:"photo_url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("HOMESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.path", "./data/homescout.sqlite")
	v.SetDefault("database.dsn", "")

	v.SetDefault("cache.expiration", "120h") // 5 days
	v.SetDefault("cache.sweep_schedule", "@daily")

	v.SetDefault("providers.bridge.base_url", "https://api.bridgedataoutput.com/api/v2/OData/")
	v.SetDefault("providers.bridge.dataset", "")
	v.SetDefault("providers.bridge.server_token", "")
	v.SetDefault("providers.bridge.timeout", "10s")

	v.SetDefault("providers.geoapify.base_url", "https://api.geoapify.com/v1/geocode/search")
	v.SetDefault("providers.geoapify.api_key", "")
	v.SetDefault("providers.geoapify.timeout", "10s")

	v.SetDefault("providers.google_places.search_url", "https://places.googleapis.com/v1/places:searchNearby")
	v.SetDefault("providers.google_places.photo_url", "https://maps.googleapis.com/maps/api/place/photo")
	v.SetDefault("providers.google_places.api_key", "")
	v.SetDefault("providers.google_places.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
