// Package app contains the web front-end.
package app

import (
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/wicket/internal/app/component"
	"github.com/stolasapp/wicket/internal/config"
	"github.com/stolasapp/wicket/internal/sec"
)

//go:embed static
var staticFiles embed.FS

// New creates a web front-end server.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	gateway *sec.Gateway,
) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.HTTPErrorHandler = errorHandler(srv, logger)

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	}

	srv.Use(
		middleware.Recover(),
		middleware.Secure(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: uuid.NewString,
		}),
		resolveIdentity(gateway),
	)

	handler{gateway: gateway}.register(srv)
	staticFS := echo.MustSubFS(staticFiles, "static")
	srv.StaticFS("/static/", staticFS)
	srv.FileFS("/robots.txt", "robots.txt", staticFS)
	return srv
}

// resolveIdentity attaches the session's identity to every request. Requests
// without a valid session proceed as anonymous.
func resolveIdentity(gateway *sec.Gateway) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := gateway.ResolveCurrentUser(req.Context(), cookieHeader(req))
			if err != nil {
				return err
			}
			c.SetRequest(req.WithContext(sec.SetIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func errorHandler(srv *echo.Echo, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var httpErr *echo.HTTPError
		if !errors.As(err, &httpErr) {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.Any("error", err),
			)
		} else if httpErr.Code == http.StatusNotFound {
			if err = render(c, http.StatusNotFound, component.NotFoundPage()); err == nil {
				return
			}
		}
		srv.DefaultHTTPErrorHandler(err, c)
	}
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
				slog.Bool("authenticated", sec.GetIdentity(req.Context()).Authenticated),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}
