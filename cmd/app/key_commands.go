package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/epiccms/cardvault/cmd/app/commands"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-storage-key",
			Usage: "Generate a new installation key for card number storage encryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Value: "",
					Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault); omit for plaintext output",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateStorageKey(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "hash-admin-password",
			Usage: "Hash the admin password authorizing storage decryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Admin password to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHashAdminPassword(
					commands.DefaultIO().Writer,
					cmd.String("password"),
				)
			},
		},
	}
}
