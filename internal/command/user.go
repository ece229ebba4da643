package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stolasapp/wicket/internal/sec"
	"github.com/stolasapp/wicket/internal/storage"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(
		userCreateCommand(),
	)
	return cmd
}

func userCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create user",
		Long: "Creates user entry for the provided username and password. Passwords may be\n" +
			"provided via stdin or through the interactive prompt.",

		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			if !sec.ValidUsername(name) {
				return sec.ErrInvalidUsername
			}
			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			} else if len(passwd) == 0 || len(passwd) > sec.MaxPasswordLen {
				return sec.ErrInvalidPassword
			}
			hash, err := sec.NewBcrypt(cfg.BcryptCost).Hash(string(passwd))
			if err != nil {
				return err
			}
			user, err := store.CreateUser(cmd.Context(), name, hash)
			if errors.Is(err, storage.ErrAlreadyExists) {
				return fmt.Errorf("user %q: %w", name, sec.ErrUsernameTaken)
			} else if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user",
				slog.String("name", user.Name),
				slog.Int64("id", user.ID),
			)
			return nil
		},
	}
}
