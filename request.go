package hyperkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/mux"

	"github.com/dmitrymomot/hyperkit/core/binder"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
	"github.com/dmitrymomot/hyperkit/core/session"
	"github.com/dmitrymomot/hyperkit/pkg/clientip"
)

// BodyWrap wraps the body content of a synthesized page.
type BodyWrap func(content []any, req *Request) any

// NoopBodyWrap returns the content unchanged.
func NoopBodyWrap(content []any, _ *Request) any {
	return content
}

// Request is the per-request state handlers and interceptors share. It embeds
// the transport request and owns deep copies of the App's page defaults, so
// changes made while serving one request never reach another.
type Request struct {
	*http.Request

	App *App

	// Hdrs are appended to <head> and Ftrs to <body> of synthesized pages.
	Hdrs []any
	Ftrs []any
	// HTMLKw and BodyKw become attributes of <html> and <body>.
	HTMLKw   map[string]any
	BodyKw   map[string]any
	BodyWrap BodyWrap

	// Canonical overrides the canonical link of synthesized pages.
	Canonical string
	// Auth is exposed to handlers through the "auth" parameter name.
	Auth any

	w       http.ResponseWriter
	route   string
	vars    map[string]string
	injects []any
	session session.Values
	scope   string

	rawOnce sync.Once
	raw     []byte
	rawErr  error

	formOnce sync.Once
	form     binder.Values
	formErr  error
}

type requestKey struct{}

// RequestFrom returns the *Request serving ctx, or nil.
func RequestFrom(ctx context.Context) *Request {
	req, _ := ctx.Value(requestKey{}).(*Request)
	return req
}

type authKey struct{}

// WithAuth attaches an auth value to ctx. Middleware running before the App
// uses it to populate the "auth" parameter.
func WithAuth(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, authKey{}, v)
}

func (a *App) newRequest(w http.ResponseWriter, r *http.Request, route, scope string) *Request {
	req := &Request{
		App:      a,
		Hdrs:     markup.CloneAll(a.hdrs),
		Ftrs:     markup.CloneAll(a.ftrs),
		HTMLKw:   markup.CloneMap(a.htmlKw),
		BodyKw:   markup.CloneMap(a.bodyKw),
		BodyWrap: a.bodyWrap,
		Auth:     r.Context().Value(authKey{}),
		w:        w,
		route:    route,
		vars:     mux.Vars(r),
		scope:    scope,
	}
	if req.Hdrs == nil {
		req.Hdrs = []any{}
	}
	if req.Ftrs == nil {
		req.Ftrs = []any{}
	}
	if req.HTMLKw == nil {
		req.HTMLKw = map[string]any{}
	}
	if req.BodyKw == nil {
		req.BodyKw = map[string]any{}
	}
	if req.BodyWrap == nil {
		req.BodyWrap = NoopBodyWrap
	}
	req.Request = r.WithContext(context.WithValue(r.Context(), requestKey{}, req))
	return req
}

// Inject queues extra content that is appended to whatever the handler returns.
func (r *Request) Inject(items ...any) {
	r.injects = append(r.injects, items...)
}

// Route returns the name of the matched route.
func (r *Request) Route() string { return r.route }

// PathParam returns a path parameter and whether it was matched.
func (r *Request) PathParam(name string) (string, bool) {
	v, ok := r.vars[name]
	return v, ok
}

// PathParams returns a copy of every matched path parameter.
func (r *Request) PathParams() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// HTMX returns the HTMX request headers.
func (r *Request) HTMX() response.HTMXHeaders {
	return response.GetHTMXHeaders(r.Request)
}

// ResponseWriter returns the writer the response is rendered into.
func (r *Request) ResponseWriter() http.ResponseWriter { return r.w }

// Session returns the session mapping. Without the session middleware it is an
// empty mapping private to this request.
func (r *Request) Session() session.Values {
	if r.session != nil {
		return r.session
	}
	if s := session.FromContext(r.Context()); s != nil {
		r.session = s
	} else {
		r.session = session.Values{}
	}
	return r.session
}

// RawBody returns the request body. It is read once and kept in memory, so the
// decoded form is still available afterwards.
func (r *Request) RawBody() ([]byte, error) {
	r.rawOnce.Do(func() {
		if r.Request.Body == nil || r.Request.Body == http.NoBody {
			r.raw = []byte{}
			return
		}
		limit := r.App.cfg.MaxBodySize
		body := r.Request.Body
		if limit > 0 {
			body = http.MaxBytesReader(r.w, body, limit)
		}
		r.raw, r.rawErr = io.ReadAll(body)
		if r.rawErr != nil {
			r.rawErr = response.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large").WithError(r.rawErr)
		}
	})
	return r.raw, r.rawErr
}

// BodyValues returns the decoded body (form, multipart or JSON).
func (r *Request) BodyValues() (binder.Values, error) {
	r.formOnce.Do(func() {
		raw, err := r.RawBody()
		if err != nil {
			r.formErr = err
			return
		}
		clone := *r.Request
		clone.Body = io.NopCloser(bytes.NewReader(raw))
		r.form, r.formErr = binder.DecodeBody(&clone, r.App.cfg.MaxMultipartMemory)
		if r.formErr != nil {
			r.formErr = bodyError(r.URL.Path, r.formErr)
		}
	})
	return r.form, r.formErr
}

// URLFor reverses a named route. kv holds alternating path variable names and
// values.
func (r *Request) URLFor(name string, kv ...string) (string, error) {
	return r.App.URLFor(name, kv...)
}

// CanonicalURL returns the canonical link target of the request.
func (r *Request) CanonicalURL() string {
	if r.Canonical != "" {
		return r.Canonical
	}
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	return u.String()
}

// Scope is a read-only snapshot of the connection a handler is serving.
type Scope struct {
	Type       string
	Method     string
	Path       string
	RawQuery   string
	Headers    http.Header
	Client     string
	PathParams map[string]string
	Route      string
	Auth       any
	Session    map[string]any
	App        *App
}

// Scope snapshots the request connection.
func (r *Request) Scope() Scope {
	return Scope{
		Type:       r.scope,
		Method:     r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		Headers:    r.Header.Clone(),
		Client:     clientip.GetIP(r.Request),
		PathParams: r.PathParams(),
		Route:      r.route,
		Auth:       r.Auth,
		Session:    r.Session(),
		App:        r.App,
	}
}

func (s Scope) String() string {
	return fmt.Sprintf("%s %s %s", s.Type, s.Method, s.Path)
}
