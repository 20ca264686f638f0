package persistence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // PostgreSQL driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // File source driver
)

var (
	ErrNoMigrationsPath = errors.New("migrations path cannot be empty")
	ErrNoDatabaseURL    = errors.New("database URL cannot be empty")

	// ErrDirtySchema means an earlier migration failed halfway and needs manual repair.
	ErrDirtySchema = errors.New("database schema is dirty")
)

// RunMigrations applies the schema under migrationsPath (e.g. migrations/postgres).
// It refuses to touch a dirty schema so the service never starts on a half-applied migration.
func RunMigrations(logger *slog.Logger, databaseURL string, migrationsPath string) (err error) {
	if migrationsPath == "" {
		return ErrNoMigrationsPath
	}
	if databaseURL == "" {
		return ErrNoDatabaseURL
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(sourceErr, dbErr)
		}
	}()

	if version, dirty, verr := m.Version(); verr == nil && dirty {
		logger.Error("Refusing to migrate a dirty schema", "version", version)
		return fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Warn("Could not read schema version", "error", err)
	} else {
		logger.Info("Database schema is up to date", "version", version)
	}
	return nil
}
