package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Coops0/jrnlapp/internal/app"
	"github.com/Coops0/jrnlapp/internal/config"
	entriesUseCase "github.com/Coops0/jrnlapp/internal/entries/usecase"
)

// shutdownGrace is added to the request timeout when draining the servers.
const shutdownGrace = 5 * time.Second

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// RunServer serves the API, the metrics endpoint and, when enabled, the
// background sweeper until SIGINT or SIGTERM arrives or one of them fails.
// The master key is loaded before anything listens, so a bad key stops startup.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if _, err := container.MasterKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	var sweeper *entriesUseCase.Sweeper
	if cfg.SweeperEnabled {
		if sweeper, err = container.Sweeper(); err != nil {
			return fmt.Errorf("failed to initialize sweeper: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	running := []shutdowner{server}

	g.Go(func() error { return server.Start(gctx) })
	if metricsServer != nil {
		running = append(running, metricsServer)
		g.Go(func() error { return metricsServer.Start(gctx) })
	}

	if sweeper != nil {
		g.Go(func() error {
			if err := sweeper.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("sweeper stopped: %w", err)
			}
			return nil
		})
	} else {
		logger.Warn("sweeper disabled; expired entries migrate only when their author lists history")
	}

	logger.Info("jrnl started",
		slog.String("version", version),
		slog.Bool("sweeper", cfg.SweeperEnabled),
		slog.Duration("sweep_interval", cfg.SweeperInterval))

	<-gctx.Done()
	if ctx.Err() != nil {
		logger.Info("shutdown signal received")
	}
	return drain(g, running, cfg)
}

// drain shuts the servers down within the request timeout plus a grace
// period and waits for every goroutine in g.
func drain(g *errgroup.Group, servers []shutdowner, cfg *config.Config) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+shutdownGrace)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if err := s.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(append(errs, g.Wait())...)
}
