package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avillareal/homescout/internal/models"
)

func TestOpenInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"geocode_results", "nearby_place_searches", "place_photos"} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.sqlite")

	db, err := Open(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, db.Create(&models.PlacePhoto{
		PhotoReference: "ref-1",
		Data:           []byte{0x1},
		ContentType:    "image/jpeg",
	}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestAutoMigrateRejectsNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
