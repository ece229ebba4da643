package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolasapp/wicket/internal/app"
	"github.com/stolasapp/wicket/internal/config"
	"github.com/stolasapp/wicket/internal/sec"
	"github.com/stolasapp/wicket/internal/server"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the web app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			cfg, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			grp, ctx := errgroup.WithContext(cmd.Context())

			gateway, err := sec.NewGateway(
				store, store,
				sec.NewBcrypt(cfg.BcryptCost),
				sec.NewCookieCodec(cfg.SessionTTL),
				logger,
			)
			if err != nil {
				return err
			}
			appServer := app.New(cfg, logger, gateway)

			serveApp(ctx, grp, cfg, logger, appServer)
			return grp.Wait()
		},
	}
}

func serveApp(
	ctx context.Context,
	grp *errgroup.Group,
	cfg *config.Config,
	logger *slog.Logger,
	srv *echo.Echo,
) {
	addr := cfg.WebAddress
	if addr == "" {
		logger.WarnContext(ctx, "no web_address configured; nothing to serve")
		return
	}

	listener, err := server.Listen(ctx, addr)
	if err != nil {
		grp.Go(func() error { return err })
		return
	}

	logger.InfoContext(ctx,
		"starting app server...",
		slog.String("address", addr),
		slog.Duration("session_ttl", cfg.SessionTTL),
	)
	server.Serve(ctx, grp, logger, srv.Server, listener, server.ShutdownTimeout)
}
