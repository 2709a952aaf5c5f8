package database

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"minisocial/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

// newMigrator opens its own connection through the migrate driver so closing
// it never touches the application's pool.
func newMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	var dbURL string
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dbURL = cfg.DatabaseURL
	case config.DriverSQLite:
		dbURL = "sqlite://" + cfg.DatabasePath
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Printf("[Migrate] close: source=%v database=%v", srcErr, dbErr)
	}
}

// MigrateUp applies every pending migration.
func MigrateUp(cfg *config.Config) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[Migrate] schema is up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	log.Println("[Migrate] migrations applied")
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(cfg *config.Config) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrationVersion reports the applied schema version. ok is false when no
// migration has run yet.
func MigrationVersion(cfg *config.Config) (version uint, dirty bool, ok bool, err error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, false, err
	}
	defer closeMigrator(m)

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, true, nil
}
