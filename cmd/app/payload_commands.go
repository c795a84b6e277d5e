package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
)

func getPayloadCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt a payload under an alias's current key version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "alias",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Key alias",
				},
				&cli.StringFlag{
					Name:     "plaintext",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Base64-encoded plaintext to encrypt",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				encryptionUseCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				return commands.RunEncrypt(
					ctx,
					encryptionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("alias"),
					cmd.String("plaintext"),
				)
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt an encrypted blob",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "blob",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Encrypted blob (alias:version:ciphertext-base64)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				encryptionUseCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				return commands.RunDecrypt(
					ctx,
					encryptionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("blob"),
				)
			},
		},
		{
			Name:  "reencrypt",
			Usage: "Re-encrypt a blob under its alias's current key version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "blob",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Encrypted blob (alias:version:ciphertext-base64)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				encryptionUseCase, err := container.EncryptionUseCase()
				if err != nil {
					return err
				}

				return commands.RunReencrypt(
					ctx,
					encryptionUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("blob"),
				)
			},
		},
	}
}
