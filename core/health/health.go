// Package health provides liveness and readiness handlers.
//
// The handlers are plain functions, so they register like any other route:
//
//	app.Get("/health/live", hyperkit.Fn(health.Liveness))
//	app.Get("/health/ready", hyperkit.Fn(health.Readiness(log, db.PingContext)))
//	app.Get("/ping", hyperkit.Fn(health.NoContent))
package health

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/hyperkit/core/logger"
	"github.com/dmitrymomot/hyperkit/core/response"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Liveness reports that the process is running. It checks nothing.
func Liveness() *response.Envelope {
	return response.String("ALIVE")
}

// NoContent answers 204 without a body.
func NoContent() *response.Envelope {
	return response.NoContent()
}

// Readiness returns a handler that runs every check concurrently. It answers
// "READY", or 503 when any check fails.
func Readiness(log *slog.Logger, checks ...Check) func(ctx context.Context) (*response.Envelope, error) {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx context.Context) (*response.Envelope, error) {
		eg, ctx := errgroup.WithContext(ctx)
		for _, check := range checks {
			eg.Go(func() error { return check(ctx) })
		}
		if err := eg.Wait(); err != nil {
			log.ErrorContext(ctx, "readiness check failed", logger.Component("health"), logger.Error(err))
			return nil, response.ErrServiceUnavailable.WithError(err)
		}
		return response.String("READY"), nil
	}
}
