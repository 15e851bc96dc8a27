package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Coops0/jrnlapp/cmd/app/commands"
	"github.com/Coops0/jrnlapp/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	serve := &cli.Command{
		Name:  "server",
		Usage: "serve the entry API and run the sweeper every SWEEPER_INTERVAL_SECONDS",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return commands.RunServer(ctx, version)
		},
	}

	migrate := &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations for DB_DRIVER",
		Action: withContainer(func(_ context.Context, _ *cli.Command, c *app.Container) error {
			cfg := c.Config()
			return commands.RunMigrations(c.Logger(), cfg.DBDriver, cfg.DBConnectionString)
		}),
	}

	sweep := &cli.Command{
		Name:  "sweep",
		Usage: "run one sweep: encrypt expired entries of every author and drop expired ephemeral ones",
		Action: withContainer(func(ctx context.Context, _ *cli.Command, c *app.Container) error {
			sweeper, err := c.Sweeper()
			if err != nil {
				return err
			}
			return commands.RunSweep(ctx, sweeper, c.Logger())
		}),
	}

	return []*cli.Command{serve, migrate, sweep}
}
