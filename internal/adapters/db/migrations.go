// internal/adapters/db/migrations.go
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending database migrations
func RunMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Error("failed to close migration source", slog.String("error", srcErr.Error()))
		}
		if dbErr != nil {
			logger.Error("failed to close migration database", slog.String("error", dbErr.Error()))
		}
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no pending migrations", slog.Uint64("version", uint64(version)))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	logger.Info("migrations applied",
		slog.Uint64("from_version", uint64(version)),
		slog.Uint64("to_version", uint64(newVersion)),
	)

	return nil
}

// RunMigrationsWithRetry runs migrations with retries, useful when the
// database container is still starting up.
func RunMigrationsWithRetry(databaseURL, migrationsPath string, maxRetries int, logger *slog.Logger) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := RunMigrations(databaseURL, migrationsPath, logger); err != nil {
			lastErr = err
			logger.Warn("migration attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_retries", maxRetries),
				slog.String("error", err.Error()),
			)
			time.Sleep(time.Duration(attempt) * time.Second)
			continue
		}
		return nil
	}
	return fmt.Errorf("migrations failed after %d attempts: %w", maxRetries, lastErr)
}
