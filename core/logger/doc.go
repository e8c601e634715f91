// Package logger provides slog attribute helpers with consistent keys.
//
//	log.WarnContext(ctx, "unrecognized parameter",
//		logger.Component("resolver"),
//		logger.Param(name),
//		logger.Path(r.URL.Path),
//	)
//
// Helpers return an empty slog.Attr for nil errors and empty names, which slog
// drops, so call sites need no conditionals.
package logger
