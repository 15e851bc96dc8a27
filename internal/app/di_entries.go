package app

import (
	"fmt"

	"github.com/Coops0/jrnlapp/internal/database"
	entriesHTTP "github.com/Coops0/jrnlapp/internal/entries/http"
	entriesRepository "github.com/Coops0/jrnlapp/internal/entries/repository"
	entriesUseCase "github.com/Coops0/jrnlapp/internal/entries/usecase"
)

type entryComponents struct {
	activeRepo   lazy[entriesUseCase.ActiveEntryRepository]
	entryRepo    lazy[entriesUseCase.EntryRepository]
	migration    lazy[entriesUseCase.MigrationUseCase]
	entryUseCase lazy[entriesUseCase.EntryUseCase]
	sweeper      lazy[*entriesUseCase.Sweeper]
	entryHandler lazy[*entriesHTTP.EntryHandler]
}

// ActiveEntryRepository returns the plaintext store for the configured driver.
func (c *Container) ActiveEntryRepository() (entriesUseCase.ActiveEntryRepository, error) {
	return c.activeRepo.get(func() (entriesUseCase.ActiveEntryRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for active entry repository: %w", err)
		}

		switch {
		case database.IsPostgres(c.config.DBDriver):
			return entriesRepository.NewPostgreSQLActiveEntryRepository(db), nil
		case c.config.DBDriver == database.DriverMySQL:
			return entriesRepository.NewMySQLActiveEntryRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// EntryRepository returns the encrypted store for the configured driver.
func (c *Container) EntryRepository() (entriesUseCase.EntryRepository, error) {
	return c.entryRepo.get(func() (entriesUseCase.EntryRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for entry repository: %w", err)
		}

		switch {
		case database.IsPostgres(c.config.DBDriver):
			return entriesRepository.NewPostgreSQLEntryRepository(db), nil
		case c.config.DBDriver == database.DriverMySQL:
			return entriesRepository.NewMySQLEntryRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// MigrationUseCase returns the migration transaction runner, instrumented when
// metrics are enabled.
func (c *Container) MigrationUseCase() (entriesUseCase.MigrationUseCase, error) {
	return c.migration.get(func() (entriesUseCase.MigrationUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		activeRepo, err := c.ActiveEntryRepository()
		if err != nil {
			return nil, err
		}
		entryRepo, err := c.EntryRepository()
		if err != nil {
			return nil, err
		}
		cipher, err := c.EntryCipher()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		migration := entriesUseCase.NewMigrationUseCase(
			txManager,
			activeRepo,
			entryRepo,
			cipher,
			c.WorkerPool(),
			c.Logger(),
		)
		return entriesUseCase.NewMigrationUseCaseWithMetrics(migration, businessMetrics), nil
	})
}

func (c *Container) EntryUseCase() (entriesUseCase.EntryUseCase, error) {
	return c.entryUseCase.get(func() (entriesUseCase.EntryUseCase, error) {
		migration, err := c.MigrationUseCase()
		if err != nil {
			return nil, err
		}
		activeRepo, err := c.ActiveEntryRepository()
		if err != nil {
			return nil, err
		}
		entryRepo, err := c.EntryRepository()
		if err != nil {
			return nil, err
		}
		cipher, err := c.EntryCipher()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := entriesUseCase.NewEntryUseCase(
			entriesUseCase.EntryConfig{LocalImportMaxEntries: c.config.LocalImportMaxEntries},
			migration,
			activeRepo,
			entryRepo,
			cipher,
			c.WorkerPool(),
			c.Logger(),
		)
		return entriesUseCase.NewEntryUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// Sweeper returns the background migration loop.
func (c *Container) Sweeper() (*entriesUseCase.Sweeper, error) {
	return c.sweeper.get(func() (*entriesUseCase.Sweeper, error) {
		migration, err := c.MigrationUseCase()
		if err != nil {
			return nil, err
		}
		activeRepo, err := c.ActiveEntryRepository()
		if err != nil {
			return nil, err
		}
		return entriesUseCase.NewSweeper(
			entriesUseCase.SweeperConfig{Interval: c.config.SweeperInterval},
			migration,
			activeRepo,
			c.Logger(),
		), nil
	})
}

func (c *Container) EntryHandler() (*entriesHTTP.EntryHandler, error) {
	return c.entryHandler.get(func() (*entriesHTTP.EntryHandler, error) {
		useCase, err := c.EntryUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get entry use case for handler: %w", err)
		}
		return entriesHTTP.NewEntryHandler(useCase, c.Logger()), nil
	})
}
