package database

import (
	"embed"
	"fmt"

	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; sqlite (local runs and tests) is auto-migrated from the models.
func Migrate(db *gorm.DB, driver string) error {
	if driver == config.DriverSQLite {
		if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Image{}); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB object: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
