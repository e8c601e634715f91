package hyperkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/hyperkit/core/cookie"
	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/logger"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
	"github.com/dmitrymomot/hyperkit/core/session"
	"github.com/dmitrymomot/hyperkit/core/telemetry"
	"github.com/dmitrymomot/hyperkit/pkg/async"
	"github.com/dmitrymomot/hyperkit/pkg/broadcast"
)

// HTMXSrc is the htmx script included in the default head elements.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// DefaultStaticExts are the file extensions StaticRoute serves when none are given.
var DefaultStaticExts = []string{
	"ico", "gif", "jpg", "jpeg", "webm", "css", "js", "woff", "png", "svg", "mp4",
	"webp", "ttf", "otf", "eot", "woff2", "txt", "html", "map", "pdf", "zip", "xml",
}

// App routes requests to handlers, resolves their parameters and turns their
// results into responses. It implements http.Handler.
type App struct {
	cfg      Config
	router   *mux.Router
	handler  http.Handler
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	registry *prometheus.Registry
	pool     *async.Pool
	sessions *session.Manager

	hdrs     []any
	ftrs     []any
	htmlKw   map[string]any
	bodyKw   map[string]any
	bodyWrap BodyWrap

	before       []Beforeware
	after        []*Handler
	exceptions   map[int]*Handler
	errorHandler func(http.ResponseWriter, *http.Request, error)
	middlewares  []handler.Middleware

	upgrader *websocket.Upgrader
	wsOpts   []response.WebSocketOption
	hub      *broadcast.MemoryBroadcaster[string]

	tasks sync.WaitGroup
}

// New creates an App from DefaultConfig and opts. Unless sessions are
// disabled, a signing key must be available from the config, WithSecretKey, or
// the key file.
func New(opts ...Option) (*App, error) {
	a := &App{
		cfg:          DefaultConfig(),
		router:       mux.NewRouter(),
		logger:       logger.Discard(),
		bodyWrap:     NoopBodyWrap,
		exceptions:   map[int]*Handler{http.StatusNotFound: Fn(notFound)},
		errorHandler: response.ErrorHandler,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.cfg.DefaultHdrs {
		a.hdrs = append(defaultHdrs(), a.hdrs...)
	}
	if a.registry != nil {
		a.metrics = telemetry.New(a.registry)
	}
	a.pool = async.NewPool(a.cfg.Workers)
	a.upgrader = response.NewUpgrader(a.wsOpts...)

	a.router.NotFoundHandler = a.fail(response.ErrNotFound)
	a.router.MethodNotAllowedHandler = a.fail(response.ErrMethodNotAllowed)

	var h http.Handler = a.router
	if a.cfg.Sessions {
		key, err := GetKey(a.cfg.SecretKey, a.cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		a.sessions, err = session.NewManager(key, a.logger,
			session.WithCookieName(a.cfg.SessionCookie),
			session.WithMaxAge(a.cfg.SessionMaxAge),
			session.WithPath(a.cfg.SessionPath),
			session.WithDomain(a.cfg.SessionDomain),
			session.WithSameSite(cookie.ParseSameSite(a.cfg.SessionSameSite)),
			session.WithHTTPSOnly(a.cfg.SessionHTTPSOnly),
		)
		if err != nil {
			return nil, fmt.Errorf("session manager: %w", err)
		}
		h = a.sessions.Middleware(h)
	}
	for i := len(a.middlewares) - 1; i >= 0; i-- {
		h = a.middlewares[i](h)
	}
	a.handler = h

	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

func defaultHdrs() []any {
	return []any{
		markup.Meta(markup.Attr("charset", "utf-8")),
		markup.Meta(
			markup.Attr("name", "viewport"),
			markup.Attr("content", "width=device-width, initial-scale=1, viewport-fit=cover"),
		),
		markup.Script(markup.Attr("src", HTMXSrc)),
	}
}

func notFound() *response.Envelope {
	return response.StringWithStatus("404 Not Found", http.StatusNotFound)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }

// Logger returns the App logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Route registers h for path. Without methods it answers GET and POST; HEAD is
// added whenever GET is present. Patterns use gorilla/mux syntax:
// "/users/{id}" or "/users/{id:[0-9]+}".
func (a *App) Route(path string, h *Handler, methods ...string) *Handler {
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost}
	}
	seen := make(map[string]bool, len(methods)+1)
	list := make([]string, 0, len(methods)+1)
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !seen[m] {
			seen[m] = true
			list = append(list, m)
		}
	}
	if seen[http.MethodGet] && !seen[http.MethodHead] {
		list = append(list, http.MethodHead)
	}

	h.path = path
	a.router.Handle(path, a.endpoint(h)).Methods(list...).Name(h.RouteName())
	return h
}

// Get registers h for GET and HEAD requests.
func (a *App) Get(path string, h *Handler) *Handler {
	return a.Route(path, h, http.MethodGet)
}

// Post registers h for POST requests.
func (a *App) Post(path string, h *Handler) *Handler {
	return a.Route(path, h, http.MethodPost)
}

// Put registers h for PUT requests.
func (a *App) Put(path string, h *Handler) *Handler {
	return a.Route(path, h, http.MethodPut)
}

// Delete registers h for DELETE requests.
func (a *App) Delete(path string, h *Handler) *Handler {
	return a.Route(path, h, http.MethodDelete)
}

// Patch registers h for PATCH requests.
func (a *App) Patch(path string, h *Handler) *Handler {
	return a.Route(path, h, http.MethodPatch)
}

// URLFor reverses the route registered under name. kv holds alternating path
// variable names and values.
func (a *App) URLFor(name string, kv ...string) (string, error) {
	route := a.router.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	u, err := route.URLPath(kv...)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRouteNotFound, name, err)
	}
	return u.Path, nil
}

// StaticRoute serves files below dir for GET requests under prefix, limited to
// the given extensions (DefaultStaticExts when none). A missing file is a 404.
// Found files carry cache headers for Config.StaticMaxAge.
func (a *App) StaticRoute(prefix, dir string, exts ...string) *Handler {
	if len(exts) == 0 {
		exts = DefaultStaticExts
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	pattern := prefix + "{fname:.+}.{ext:(?:" + strings.Join(exts, "|") + ")}"

	serve := func(req *Request) any {
		fname, _ := req.PathParam("fname")
		ext, _ := req.PathParam("ext")
		clean := path.Clean("/" + fname + "." + ext)
		f := response.File(filepath.Join(dir, filepath.FromSlash(clean)))
		if !f.Exists() {
			return f
		}
		return response.WithCache(f, a.cfg.StaticMaxAge)
	}
	return a.Get(pattern, Fn(serve).Name("static_"+pathName(prefix)))
}

// MetricsHandler serves the registry passed to WithMetrics; without one it
// answers 404.
func (a *App) MetricsHandler() http.Handler {
	return a.metrics.Handler()
}

// Shutdown waits for background tasks to finish or ctx to end, then closes the
// WebSocket hub.
func (a *App) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.tasks.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if a.hub != nil {
		if cerr := a.hub.Close(); cerr != nil && !errors.Is(cerr, broadcast.ErrBroadcasterClosed) {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

// endpoint adapts h to net/http.
func (a *App) endpoint(h *Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w}
		req := a.newRequest(ww, r, h.RouteName(), "http")

		err := async.Safe(func() error {
			result, err := a.run(req, h)
			if err != nil {
				return err
			}
			resp, err := a.Normalize(req, result, h.class, http.StatusOK)
			if err != nil {
				return err
			}
			return a.write(ww, req, resp)
		})
		if err != nil {
			a.handleError(ww, req, err)
		}
		a.metrics.Observe(req.route, time.Since(start))
	})
}

// fail answers every request with err through the exception handlers.
func (a *App) fail(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w}
		a.handleError(ww, a.newRequest(ww, r, "", "http"), err)
	})
}

// handleError answers err with the exception handler registered for its status,
// or with the error handler. Once the response has started the error is only
// logged.
func (a *App) handleError(w *responseWriter, req *Request, err error) {
	status := response.StatusOf(err)
	attrs := []any{
		logger.Error(err),
		logger.StatusCode(status),
		logger.Method(req.Method),
		logger.Path(req.URL.Path),
		logger.Route(req.route),
	}
	var perr *async.PanicError
	if errors.As(err, &perr) {
		attrs = append(attrs, logger.Stack(perr.Stack))
	}
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(req.Context(), "request failed", attrs...)
	} else {
		a.logger.DebugContext(req.Context(), "request failed", attrs...)
	}

	if w.Written() {
		return
	}

	if eh, ok := a.exceptions[status]; ok {
		ereq := a.newRequest(w, req.Request, req.route, "http")
		herr := async.Safe(func() error {
			out, cerr := a.call(ereq, eh, callInput{err: err})
			if cerr != nil {
				return cerr
			}
			resp, nerr := a.Normalize(ereq, out, eh.class, status)
			if nerr != nil {
				return nerr
			}
			return a.write(w, ereq, resp)
		})
		if herr == nil {
			return
		}
		a.logger.ErrorContext(req.Context(), "exception handler failed",
			logger.Error(herr),
			logger.StatusCode(status),
			logger.Path(req.URL.Path),
		)
		if w.Written() {
			return
		}
	}

	a.metrics.Response(telemetry.KindError)
	a.errorHandler(w, req.Request, err)
}

// write renders resp and schedules its background tasks.
func (a *App) write(w *responseWriter, req *Request, resp handler.Renderer) error {
	if err := resp.Render(w, req.Request); err != nil {
		if w.Written() {
			a.logger.ErrorContext(req.Context(), "render failed after response started",
				logger.Error(err),
				logger.Path(req.URL.Path),
				logger.Route(req.route),
			)
			return nil
		}
		return err
	}
	if env, ok := resp.(*response.Envelope); ok && len(env.Tasks) > 0 {
		a.schedule(req.Context(), env.Tasks)
	}
	return nil
}

// schedule runs tasks after the response, detached from request cancellation.
func (a *App) schedule(ctx context.Context, tasks response.Tasks) {
	a.tasks.Add(1)
	async.Exec(context.WithoutCancel(ctx), tasks, func(ctx context.Context, tasks response.Tasks) error {
		defer a.tasks.Done()
		return a.runTasks(ctx, tasks)
	})
}

// runTasks runs tasks in order. A failing task is logged and counted; the rest
// still run.
func (a *App) runTasks(ctx context.Context, tasks response.Tasks) error {
	var errs []error
	for _, t := range tasks {
		err := async.Safe(func() error { return t.Run(ctx) })
		a.metrics.Task(err)
		if err != nil {
			a.logger.ErrorContext(ctx, "background task failed",
				logger.Task(t.Name),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
