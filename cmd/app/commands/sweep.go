package commands

import (
	"context"
	"log/slog"
	"time"

	entriesUseCase "github.com/Coops0/jrnlapp/internal/entries/usecase"
)

// RunSweep runs one sweeper pass, for deployments that schedule it externally
// instead of running it inside the server.
func RunSweep(ctx context.Context, sweeper entriesUseCase.SweeperUseCase, logger *slog.Logger) error {
	start := time.Now()
	if err := sweeper.Sweep(ctx); err != nil {
		return err
	}
	logger.Info("sweep completed", slog.Duration("duration", time.Since(start)))
	return nil
}
