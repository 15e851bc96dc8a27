// Package main is the jrnl CLI: the API server and its maintenance commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Coops0/jrnlapp/internal/app"
	"github.com/Coops0/jrnlapp/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := &cli.Command{
		Name:     "jrnl",
		Usage:    "Journal API with encryption at rest",
		Version:  version,
		Commands: append(getSystemCommands(version), getKeyCommands()...),
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		slog.Error("jrnl failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// withContainer builds a container from the environment for one command and
// shuts it down when the command returns.
func withContainer(run func(ctx context.Context, cmd *cli.Command, c *app.Container) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container := app.NewContainer(config.Load())
		defer func() {
			if err := container.Shutdown(ctx); err != nil {
				container.Logger().Warn("shutdown failed", slog.Any("error", err))
			}
		}()
		return run(ctx, cmd, container)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "output format, text or json",
		Validator: func(v string) error {
			if v != "text" && v != "json" {
				return fmt.Errorf("format must be text or json, got %q", v)
			}
			return nil
		},
	}
}
