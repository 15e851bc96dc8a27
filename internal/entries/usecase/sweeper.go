package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SweeperConfig holds the background sweeper settings.
type SweeperConfig struct {
	Interval time.Duration
}

// Sweeper migrates every author's expired entries on a fixed interval so
// nothing stays in plaintext long after its day ends, even for authors who
// never come back.
type Sweeper struct {
	config     SweeperConfig
	migration  MigrationUseCase
	activeRepo ActiveEntryRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewSweeper creates a new Sweeper.
func NewSweeper(
	config SweeperConfig,
	migration MigrationUseCase,
	activeRepo ActiveEntryRepository,
	logger *slog.Logger,
) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		config:     config,
		migration:  migration,
		activeRepo: activeRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs Sweep on every tick until ctx is cancelled, then returns ctx.Err().
// A failed sweep is logged and the loop waits for the next tick.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("starting entry sweeper", slog.Duration("interval", s.config.Interval))

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping entry sweeper")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("entry sweep failed", slog.Any("error", err))
			}
		}
	}
}

// Sweep drops expired ephemeral entries and then migrates every expired
// entry across all authors in one transaction. A purge failure does not stop
// the migration.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now().UTC()

	purged, purgeErr := s.activeRepo.PurgeEphemeral(ctx, now)
	if purged > 0 {
		s.logger.Info("purged ephemeral entries", slog.Int64("count", purged))
	}

	_, migrateErr := s.migration.Migrate(ctx, Selector{Before: now})
	return errors.Join(purgeErr, migrateErr)
}
