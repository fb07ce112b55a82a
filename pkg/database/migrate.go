package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// SchemaVersion latest migration shipped with this binary
const SchemaVersion uint = 2

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration. A dirty schema stops
// startup: the attendance upsert relies on uq_attendance_triple existing.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err := checkSchema(version, dirty, err); err != nil {
		return err
	}
	logger.Info("database migrated", zap.Uint("version", version))
	return nil
}

// checkSchema interprets migrate.Version after Up
func checkSchema(version uint, dirty bool, err error) error {
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return fmt.Errorf("no migrations applied")
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty:
		return fmt.Errorf("schema version %d is dirty; fix it and force the version before starting", version)
	case version < SchemaVersion:
		return fmt.Errorf("schema version %d is older than required %d", version, SchemaVersion)
	}
	return nil
}
