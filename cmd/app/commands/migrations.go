package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Coops0/jrnlapp/internal/database"
)

// RunMigrations brings the active_entries and entries tables up to date from
// ./migrations/<dialect>. Running it against a current schema is a no-op.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	dir, err := database.MigrationDir(driver)
	if err != nil {
		return err
	}

	m, err := migrate.New("file://migrations/"+dir, migrationURL(driver, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	from, _, _ := m.Version()
	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema already current", slog.String("driver", driver), slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	to, _, _ := m.Version()
	logger.Info("schema migrated",
		slog.String("driver", driver),
		slog.Uint64("from_version", uint64(from)),
		slog.Uint64("to_version", uint64(to)))
	return nil
}

// migrationURL adds the scheme golang-migrate needs to a go-sql-driver DSN.
func migrationURL(driver, connectionString string) string {
	if driver == database.DriverMySQL && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}
