// Package simple is a small todo application built on hyperkit. It shows the
// pieces a real service wires together: configuration from the environment,
// request middleware, sessions, HTMX fragments, a WebSocket broadcast channel,
// health checks, metrics and graceful shutdown.
package simple

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/config"
	"github.com/dmitrymomot/hyperkit/core/logger"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/server"
	"github.com/dmitrymomot/hyperkit/middleware"
)

// App is the demo application.
type App struct {
	config   *Config
	logger   *slog.Logger
	registry *prometheus.Registry
	web      *hyperkit.App
	todos    *todoStore
	notify   hyperkit.SendFunc
}

type AppOption func(*App) error

// NewApp builds the application. Without WithConfig the configuration is read
// from the environment.
func NewApp(opts ...AppOption) (*App, error) {
	app := &App{todos: &todoStore{}}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		var cfg Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		app.config = &cfg
	}
	if app.logger == nil {
		app.logger = newLogger(app.config.LogLevel)
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector())

	web, err := hyperkit.New(
		hyperkit.WithConfig(app.config.Web),
		hyperkit.WithLogger(app.logger),
		hyperkit.WithTitle(app.config.AppName),
		hyperkit.WithMetrics(app.registry),
		hyperkit.WithHdrs(markup.Script(markup.Attr("src", wsExtensionSrc))),
		hyperkit.WithMiddleware(
			middleware.RequestID(),
			middleware.Logging(app.logger),
			middleware.SecurityHeaders(),
		),
		hyperkit.WithExceptionHandler(http.StatusNotFound, hyperkit.Fn(notFoundPage, "", "")),
	)
	if err != nil {
		return nil, err
	}
	app.web = web
	app.routes()

	return app, nil
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = &cfg
		return nil
	}
}

// Handler returns the root HTTP handler.
func (app *App) Handler() http.Handler {
	return app.web
}

// Run serves the application until ctx is canceled, then drains background
// work and closes WebSocket clients.
func (app *App) Run(ctx context.Context) error {
	srv, err := server.NewFromConfig(app.config.Server,
		server.WithLogger(app.logger),
		server.WithShutdownHook(app.web.Shutdown),
	)
	if err != nil {
		return err
	}

	app.logger.InfoContext(ctx, "starting application",
		slog.String("app", app.config.AppName),
		slog.String("addr", app.config.Server.Addr),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, app.web))
	return eg.Wait()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})).
		With(logger.Component("simple"))
}
