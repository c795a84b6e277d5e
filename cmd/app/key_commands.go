package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Create a managed key under an alias",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "alias",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Key alias (lowercase letters, digits, hyphens)",
				},
				&cli.StringFlag{
					Name:    "region",
					Aliases: []string{"r"},
					Value:   "",
					Usage:   "Primary region (defaults to AUTHORITY_PRIMARY_REGION)",
				},
				&cli.StringFlag{
					Name:    "dr-region",
					Value:   "",
					Usage:   "Disaster-recovery region (defaults to AUTHORITY_DR_REGION, empty disables failover)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				region := cmd.String("region")
				if region == "" {
					region = cfg.AuthorityPrimaryRegion
				}
				drRegion := cmd.String("dr-region")
				if drRegion == "" {
					drRegion = cfg.AuthorityDRRegion
				}

				return commands.RunCreateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("alias"),
					region,
					drRegion,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "rotate-key",
			Usage: "Rotate a managed key to a new version immediately",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "alias",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Key alias",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunRotateKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("alias"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "describe-key",
			Usage: "Show every version of a managed key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "alias",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Key alias",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunDescribeKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("alias"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-keys",
			Usage: "List managed keys",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "offset",
					Value:   0,
					Usage:   "Number of keys to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of keys to return",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunListKeys(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("offset")),
					int(cmd.Int("limit")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reset-key",
			Usage: "Reset a rotation-failed key so scheduled rotation resumes",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "alias",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Key alias",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyUseCase, err := container.KeyUseCase()
				if err != nil {
					return err
				}

				return commands.RunResetKey(
					ctx,
					keyUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("alias"),
					cmd.String("format"),
				)
			},
		},
	}
}
