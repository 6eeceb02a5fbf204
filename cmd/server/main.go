package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/avillareal/homescout/internal/api"
	"github.com/avillareal/homescout/internal/app"
	"github.com/avillareal/homescout/internal/app/maintenance"
	"github.com/avillareal/homescout/internal/database"
	"github.com/avillareal/homescout/internal/providers"
	"github.com/avillareal/homescout/internal/store"
	"github.com/avillareal/homescout/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("homescout-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	db, err := database.Open(database.Config{
		Path: cfg.Database.Path,
		DSN:  cfg.Database.DSN,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDatabase(db, log)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	st, err := store.New(db, cfg.Cache.Expiration)
	if err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}

	sweeper, err := maintenance.NewSweeper(st,
		maintenance.WithSchedule(cfg.Cache.SweepSchedule))
	if err != nil {
		return fmt.Errorf("initialise sweeper: %w", err)
	}
	if err := sweeper.Start(); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer func() {
		stopCtx := sweeper.Stop()
		if err := sweeper.RunOnce(stopCtx); err != nil {
			log.Warn("shutdown sweep failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(api.Deps{
		Store: st,
		Geocoder: providers.NewGeoapifyClient(providers.GeoapifyConfig{
			BaseURL:    cfg.Providers.Geoapify.BaseURL,
			APIKey:     cfg.Providers.Geoapify.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Providers.Geoapify.Timeout},
		}),
		Places: providers.NewGooglePlacesClient(providers.GooglePlacesConfig{
			SearchURL:  cfg.Providers.GooglePlaces.SearchURL,
			PhotoURL:   cfg.Providers.GooglePlaces.PhotoURL,
			APIKey:     cfg.Providers.GooglePlaces.APIKey,
			HTTPClient: &http.Client{Timeout: cfg.Providers.GooglePlaces.Timeout},
		}),
		Listings: providers.NewBridgeClient(providers.BridgeConfig{
			BaseURL:     cfg.Providers.Bridge.BaseURL,
			Dataset:     cfg.Providers.Bridge.Dataset,
			ServerToken: cfg.Providers.Bridge.ServerToken,
			HTTPClient:  &http.Client{Timeout: cfg.Providers.Bridge.Timeout},
		}),
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("could not fetch raw database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("could not close database", zap.Error(err))
	}
}
