package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/amazongreen/storefront/internal/config"
	"github.com/amazongreen/storefront/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations applies the embedded SQL migrations against PostgreSQL.
// migrate opens its own connection, so the pool in DB is untouched.
func RunMigrations(cfg *config.PostgresConfig, log *logger.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to initialise migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("Failed to close migrator")
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Database schema up to date")

	return nil
}

// Migrate prepares the schema using the strategy named in config: "sql"
// runs the embedded migrations, "auto" uses gorm AutoMigrate.
func (db *DB) Migrate(cfg *config.PostgresConfig, log *logger.Logger) error {
	if cfg.Migrations == "auto" {
		log.Info().Msg("Running gorm AutoMigrate")
		return db.AutoMigrate()
	}
	return RunMigrations(cfg, log)
}
