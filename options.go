package hyperkit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/response"
)

// Option configures an App during creation.
type Option func(*App)

// WithConfig replaces the whole configuration. Pass it before options that
// change single settings.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTitle sets the default <title> of synthesized pages.
func WithTitle(title string) Option {
	return func(a *App) {
		a.cfg.Title = title
	}
}

// WithCanonical toggles the canonical link on synthesized pages.
func WithCanonical(on bool) Option {
	return func(a *App) {
		a.cfg.Canonical = on
	}
}

// WithIndent toggles indented HTML output.
func WithIndent(on bool) Option {
	return func(a *App) {
		a.cfg.Indent = on
	}
}

// WithDefaultHdrs toggles the built-in charset, viewport and htmx head elements.
func WithDefaultHdrs(on bool) Option {
	return func(a *App) {
		a.cfg.DefaultHdrs = on
	}
}

// WithHdrs appends elements to the <head> of every synthesized page.
func WithHdrs(items ...any) Option {
	return func(a *App) {
		a.hdrs = append(a.hdrs, items...)
	}
}

// WithFtrs appends elements to the end of the <body> of every synthesized page.
func WithFtrs(items ...any) Option {
	return func(a *App) {
		a.ftrs = append(a.ftrs, items...)
	}
}

// WithHTMLKw sets attributes of the <html> element.
func WithHTMLKw(kw map[string]any) Option {
	return func(a *App) {
		a.htmlKw = kw
	}
}

// WithBodyKw sets attributes of the <body> element.
func WithBodyKw(kw map[string]any) Option {
	return func(a *App) {
		a.bodyKw = kw
	}
}

// WithBodyWrap sets the function wrapping page content inside <body>.
func WithBodyWrap(fn BodyWrap) Option {
	return func(a *App) {
		a.bodyWrap = fn
	}
}

// WithBefore adds before-interceptors, run in order ahead of every route.
func WithBefore(bs ...Beforeware) Option {
	return func(a *App) {
		a.before = append(a.before, bs...)
	}
}

// WithAfter adds after-interceptors. Their first named parameter receives the
// response produced so far.
func WithAfter(hs ...*Handler) Option {
	return func(a *App) {
		a.after = append(a.after, hs...)
	}
}

// WithExceptionHandler handles errors that map to status with h. h may take an
// error parameter and is resolved like a route.
func WithExceptionHandler(status int, h *Handler) Option {
	return func(a *App) {
		a.exceptions[status] = h
	}
}

// WithErrorHandler replaces the fallback used when no exception handler
// matches. The default writes a plain-text error.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) Option {
	return func(a *App) {
		if fn != nil {
			a.errorHandler = fn
		}
	}
}

// WithMiddleware wraps the App with net/http middleware. The first one is the
// outermost.
func WithMiddleware(mws ...handler.Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mws...)
	}
}

// WithSecretKey sets the key sessions are signed with.
func WithSecretKey(key string) Option {
	return func(a *App) {
		a.cfg.SecretKey = key
	}
}

// WithoutSessions disables the session middleware. The session parameter is
// then an empty mapping private to each request.
func WithoutSessions() Option {
	return func(a *App) {
		a.cfg.Sessions = false
	}
}

// WithWorkers bounds how many synchronous handlers run at once.
func WithWorkers(n int) Option {
	return func(a *App) {
		a.cfg.Workers = n
	}
}

// WithStaticMaxAge sets how long browsers may cache StaticRoute files.
func WithStaticMaxAge(d time.Duration) Option {
	return func(a *App) {
		a.cfg.StaticMaxAge = d
	}
}

// WithMetrics registers the App's collectors in reg.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithWebSocketOptions configures the upgrader of WebSocket routes.
func WithWebSocketOptions(opts ...response.WebSocketOption) Option {
	return func(a *App) {
		a.wsOpts = append(a.wsOpts, opts...)
	}
}
