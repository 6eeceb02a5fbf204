package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avillareal/homescout/internal/models"
)

// Config contains database connection options. The cache lives in a
// single local SQLite file; Path may be ":memory:" for tests.
type Config struct {
	Path string
	DSN  string // Optional DSN override
}

// Open initialises a gorm.DB using the provided configuration.
func Open(cfg Config) (*gorm.DB, error) {
	return openSQLite(cfg)
}

// AutoMigrate creates the three cache tables when missing.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.AutoMigrate(
		&models.GeocodeResult{},
		&models.PlaceSearch{},
		&models.PlacePhoto{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
