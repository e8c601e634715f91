// Package middleware provides net/http middleware for cross-cutting concerns:
// request IDs, request logging and security headers.
//
// Every constructor returns a handler.Middleware, so the result plugs straight
// into an App:
//
//	app := hyperkit.MustNew(
//		hyperkit.WithMiddleware(
//			middleware.RequestID(),
//			middleware.Logging(log),
//			middleware.SecurityHeaders(),
//		),
//	)
//
// Middlewares run in the order given, outermost first. Each has a WithConfig
// variant whose Skip function bypasses it for selected requests.
package middleware
