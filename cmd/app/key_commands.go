package main

import (
	"context"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Coops0/jrnlapp/cmd/app/commands"
	"github.com/Coops0/jrnlapp/internal/app"
)

func getKeyCommands() []*cli.Command {
	createMasterKey := &cli.Command{
		Name:  "create-master-key",
		Usage: "generate the master key that wraps every entry key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "kms-key-uri",
				Usage: "wrap the key with a KMS key: gcpkms://, awskms://, azurekeyvault://, hashivault:// or base64key://",
			},
			formatFlag(),
		},
		Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
			return commands.RunCreateMasterKey(
				ctx,
				c.KMSService(),
				c.Logger(),
				os.Stdout,
				cmd.String("kms-key-uri"),
				cmd.String("format"),
			)
		}),
	}

	createToken := &cli.Command{
		Name:  "create-token",
		Usage: "issue a bearer token for an author (development and testing)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "author",
				Aliases: []string{"a"},
				Usage:   "author UUID, generated when omitted",
			},
			&cli.StringFlag{
				Name:    "timezone",
				Aliases: []string{"tz"},
				Usage:   "IANA timezone that defines the author's day",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Value: 24 * time.Hour,
			},
			formatFlag(),
		},
		Action: withContainer(func(_ context.Context, cmd *cli.Command, c *app.Container) error {
			tokenService, err := c.TokenService()
			if err != nil {
				return err
			}
			return commands.RunCreateToken(
				tokenService,
				os.Stdout,
				cmd.String("author"),
				cmd.String("timezone"),
				cmd.Duration("ttl"),
				cmd.String("format"),
			)
		}),
	}

	return []*cli.Command{createMasterKey, createToken}
}
