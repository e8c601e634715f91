package hyperkit

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/dmitrymomot/hyperkit/core/coerce"
	"github.com/dmitrymomot/hyperkit/core/response"
)

// Param names a handler argument and optionally gives it a default.
type Param struct {
	name   string
	def    any
	hasDef bool
}

// P declares a parameter named name.
func P(name string) Param {
	return Param{name: name}
}

// Default returns a copy of p that falls back to v when no source has a value.
// The default is used as is, never parsed.
func (p Param) Default(v any) Param {
	p.def = v
	p.hasDef = true
	return p
}

// Name returns the parameter name.
func (p Param) Name() string { return p.name }

// special marks argument types the resolver fills from the framework rather
// than from request data.
type special uint8

const (
	notSpecial special = iota
	specialContext
	specialRequest
	specialHTTPRequest
	specialHTMX
	specialApp
	specialError
	specialSocket
	specialSend
	specialScope
)

var (
	contextType     = reflect.TypeFor[context.Context]()
	requestType     = reflect.TypeFor[*Request]()
	httpRequestType = reflect.TypeFor[*http.Request]()
	htmxType        = reflect.TypeFor[response.HTMXHeaders]()
	appType         = reflect.TypeFor[*App]()
	errorType       = reflect.TypeFor[error]()
	socketType      = reflect.TypeFor[*Socket]()
	sendType        = reflect.TypeFor[SendFunc]()
	scopeType       = reflect.TypeFor[Scope]()
)

func specialOf(t reflect.Type) special {
	switch t {
	case contextType:
		return specialContext
	case requestType:
		return specialRequest
	case httpRequestType:
		return specialHTTPRequest
	case htmxType:
		return specialHTMX
	case appType:
		return specialApp
	case errorType:
		return specialError
	case socketType:
		return specialSocket
	case sendType:
		return specialSend
	case scopeType:
		return specialScope
	}
	return notSpecial
}

// paramSpec is a parameter analyzed once at declaration time.
type paramSpec struct {
	name    string
	index   int
	typ     coerce.Type
	special special
	def     reflect.Value
	hasDef  bool
}

// annotated reports whether the parameter declares a concrete type.
func (p paramSpec) annotated() bool {
	return p.typ.Kind != coerce.Unannotated
}

// Handler is an analyzed handler function. Create it with Fn.
type Handler struct {
	fn       reflect.Value
	fnName   string
	params   []paramSpec
	argc     int
	async    bool
	errOut   int // index of the error result, -1 when absent
	valOut   int // index of the value result, -1 when absent
	name     string
	path     string
	class    response.Class
	bodyWrap BodyWrap
}

// Fn analyzes fn for use as a route handler, interceptor or exception handler.
//
// Each argument of fn is paired positionally with a parameter: a Param, or a plain
// string that is shorthand for P(name). A leading context.Context argument takes
// no parameter and marks fn as context-aware, so it runs on the request goroutine
// instead of the worker pool. Arguments of framework types (*Request,
// *http.Request, *App, response.HTMXHeaders, Scope, error, *Socket, SendFunc)
// may be paired with an empty name.
//
// fn may return nothing, a value, an error, or a value and an error.
// Fn panics when fn does not fit these rules.
func Fn(fn any, params ...any) *Handler {
	h, err := newHandler(fn, params)
	if err != nil {
		panic(err)
	}
	return h
}

func newHandler(fn any, params []any) (*Handler, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidHandler, fn)
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic functions are not supported", ErrInvalidHandler)
	}

	h := &Handler{
		fn:     rv,
		fnName: funcName(rv),
		argc:   ft.NumIn(),
		errOut: -1,
		valOut: -1,
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			h.errOut = 0
		} else {
			h.valOut = 0
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result of %s must be error", ErrInvalidHandler, h.fnName)
		}
		h.valOut, h.errOut = 0, 1
	default:
		return nil, fmt.Errorf("%w: %s returns more than two values", ErrInvalidHandler, h.fnName)
	}

	next := 0
	for i := range ft.NumIn() {
		at := ft.In(i)
		if i == 0 && at == contextType {
			h.async = true
			continue
		}
		if at == contextType {
			h.params = append(h.params, paramSpec{index: i, special: specialContext, typ: coerce.Analyze(at)})
			continue
		}

		var p Param
		if next < len(params) {
			switch v := params[next].(type) {
			case Param:
				p = v
			case string:
				p = P(v)
			default:
				return nil, fmt.Errorf("%w: parameter %d of %s must be a string or Param, got %T",
					ErrInvalidHandler, next, h.fnName, params[next])
			}
		}
		next++

		spec := paramSpec{
			name:    p.name,
			index:   i,
			typ:     coerce.Analyze(at),
			special: specialOf(at),
			hasDef:  p.hasDef,
		}
		if spec.special == notSpecial && p.name == "" && spec.typ.Kind != coerce.Record {
			return nil, fmt.Errorf("%w: argument %d (%s) of %s has no parameter name",
				ErrInvalidHandler, i, at, h.fnName)
		}
		if p.hasDef {
			def, err := coerce.Convert(p.def, at)
			if err != nil {
				return nil, fmt.Errorf("%w: default for %q of %s: %w", ErrInvalidHandler, p.name, h.fnName, err)
			}
			spec.def = def
		}
		h.params = append(h.params, spec)
	}
	if next < len(params) {
		return nil, fmt.Errorf("%w: %s takes %d parameters, %d given",
			ErrInvalidHandler, h.fnName, next, len(params))
	}

	return h, nil
}

// Name sets the route name used for URL reversal and returns h.
func (h *Handler) Name(name string) *Handler {
	h.name = name
	return h
}

// Class makes the route encode its content with c, skipping page negotiation.
func (h *Handler) Class(c response.Class) *Handler {
	h.class = c
	return h
}

// BodyWrap sets a route-specific body wrapper for synthesized pages.
func (h *Handler) BodyWrap(fn BodyWrap) *Handler {
	h.bodyWrap = fn
	return h
}

// RouteName returns the name the route is registered under.
func (h *Handler) RouteName() string {
	if h.name != "" {
		return h.name
	}
	if h.fnName != "" && !anonymousFunc.MatchString(h.fnName) {
		return h.fnName
	}
	return pathName(h.path)
}

// Path returns the route pattern h was registered with.
func (h *Handler) Path() string { return h.path }

// To fills the route pattern with kw; leftovers become the query string.
func (h *Handler) To(kw map[string]any) string {
	return QP(h.path, kw)
}

func (h *Handler) String() string { return h.path }

var (
	anonymousFunc = regexp.MustCompile(`^(func)?\d+$`)
	nonWord       = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// funcName returns the bare Go name of fn: "index" for pkg.index, "func1" for a
// closure.
func funcName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// pathName derives a route name from a pattern: "/" is "index",
// "/users/{id}" is "users_id".
func pathName(path string) string {
	name := strings.Trim(nonWord.ReplaceAllString(path, "_"), "_")
	if name == "" {
		return "index"
	}
	return strings.ToLower(name)
}
