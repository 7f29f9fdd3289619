package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}

	db, err := Connect(cfg, "silent")
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg.Driver))

	t.Cleanup(func() { _ = Close(db) })
	return db
}
