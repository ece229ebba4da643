package command

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
)

func sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}
	cmd.AddCommand(
		sessionPruneCommand(),
	)
	return cmd
}

func sessionPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Long: "Removes session rows whose validity window has closed. Expired sessions\n" +
			"are already rejected at login resolution; this only reclaims space.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			n, err := store.PruneSessions(cmd.Context())
			if err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "pruned expired sessions", slog.Int64("count", n))
			return nil
		},
	}
}
