package hyperkit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrymomot/hyperkit/core/binder"
	"github.com/dmitrymomot/hyperkit/core/coerce"
	"github.com/dmitrymomot/hyperkit/core/logger"
	"github.com/dmitrymomot/hyperkit/core/response"
)

// Diagnostic reports a parameter that resolved to nil because nothing about it
// could be matched. It is not an error: the handler is still called.
type Diagnostic struct {
	Param   string
	Message string
}

// Resolution is the result of resolving a handler's parameters.
type Resolution struct {
	Args        []reflect.Value
	Diagnostics []Diagnostic
}

// callInput carries values that are not looked up in the request.
type callInput struct {
	// first, when set, fills the first named parameter (the response passed to
	// after-interceptors).
	first *any
	err   error
}

// Resolve builds the argument list for h from req, in declaration order.
func (a *App) Resolve(req *Request, h *Handler) (Resolution, error) {
	return a.resolve(req, h, callInput{})
}

func (a *App) resolve(req *Request, h *Handler, in callInput) (Resolution, error) {
	res := Resolution{Args: make([]reflect.Value, h.argc)}
	if h.async {
		res.Args[0] = reflect.ValueOf(req.Context())
	}

	firstUsed := false
	for _, p := range h.params {
		if in.first != nil && !firstUsed && p.special != specialContext {
			firstUsed = true
			v, err := coerce.Convert(*in.first, p.typ.Go)
			if err != nil {
				v = reflect.Zero(p.typ.Go)
			}
			res.Args[p.index] = v
			continue
		}

		v, diag, err := a.resolveParam(req, p, in)
		if err != nil {
			return Resolution{}, err
		}
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
			a.metrics.Unresolved()
			a.logger.WarnContext(req.Context(), diag.Message,
				logger.Component("resolver"),
				logger.Param(diag.Param),
				logger.Route(req.route),
				logger.Path(req.URL.Path),
			)
		}
		res.Args[p.index] = valueOrZero(v, p.typ.Go)
	}
	return res, nil
}

func (a *App) resolveParam(req *Request, p paramSpec, in callInput) (reflect.Value, *Diagnostic, error) {
	name := strings.ToLower(p.name)

	switch p.special {
	case specialContext:
		return reflect.ValueOf(req.Context()), nil, nil
	case specialRequest:
		return reflect.ValueOf(req), nil, nil
	case specialHTTPRequest:
		return reflect.ValueOf(req.Request), nil, nil
	case specialHTMX:
		return reflect.ValueOf(req.HTMX()), nil, nil
	case specialApp:
		return reflect.ValueOf(a), nil, nil
	case specialScope:
		return reflect.ValueOf(req.Scope()), nil, nil
	case specialError:
		if in.err == nil {
			return reflect.Value{}, nil, nil
		}
		return reflect.ValueOf(in.err), nil, nil
	case specialSocket, specialSend:
		// Only meaningful on WebSocket routes.
		return reflect.Value{}, nil, nil
	}

	if p.typ.Effective().Kind == coerce.Record {
		if name != "" && strings.HasPrefix("session", name) {
			v, err := coerce.Convert(map[string]any(req.Session()), p.typ.Go)
			if err != nil {
				return reflect.Value{}, nil, err
			}
			return v, nil, nil
		}
		return a.resolveRecord(req, p)
	}

	if !p.annotated() {
		if v, ok, err := a.resolveName(req, name); ok || err != nil {
			if err != nil {
				return reflect.Value{}, nil, err
			}
			return reflect.ValueOf(v), nil, nil
		}
		if !p.hasDef {
			if name == "resp" {
				return reflect.Value{}, nil, nil
			}
			return reflect.Value{}, &Diagnostic{
				Param:   p.name,
				Message: fmt.Sprintf("parameter %q has no type and is not a recognized special name, so it is ignored", p.name),
			}, nil
		}
	}

	raw, found, err := a.lookup(req, p.name)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	if !found {
		if !p.hasDef {
			return reflect.Value{}, nil, errMissingField(p.name)
		}
		return p.def, nil, nil
	}
	if !p.annotated() {
		return reflect.ValueOf(raw), nil, nil
	}

	v, err := coerce.Coerce(p.typ, raw)
	if err != nil {
		return reflect.Value{}, nil, errNotFound(req.URL.Path, fmt.Errorf("parameter %s: %w", p.name, err))
	}
	return v, nil, nil
}

// resolveName handles the special names an untyped parameter can have.
func (a *App) resolveName(req *Request, name string) (any, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	switch {
	case strings.HasPrefix("request", name):
		return req, true, nil
	case strings.HasPrefix("session", name):
		return req.Session(), true, nil
	}

	switch name {
	case "scope":
		return req.Scope(), true, nil
	case "auth":
		return req.Auth, true, nil
	case "htmx":
		return req.HTMX(), true, nil
	case "app":
		return a, true, nil
	case "body":
		raw, err := req.RawBody()
		if err != nil {
			return nil, false, err
		}
		return string(raw), true, nil
	case "hdrs":
		return req.Hdrs, true, nil
	case "ftrs":
		return req.Ftrs, true, nil
	case "bodykw":
		return req.BodyKw, true, nil
	case "htmlkw":
		return req.HTMLKw, true, nil
	}
	return nil, false, nil
}

// lookup checks the request sources in order: path, cookies, headers, query,
// body. An empty query list counts as absent.
func (a *App) lookup(req *Request, name string) (any, bool, error) {
	if v, ok := req.vars[name]; ok {
		return v, true, nil
	}
	if c, err := req.Cookie(name); err == nil {
		return c.Value, true, nil
	}
	if vals := req.Header.Values(response.SnakeToHyphens(name)); len(vals) > 0 {
		return vals[0], true, nil
	}
	if vals := req.URL.Query()[name]; len(vals) > 0 {
		return vals, true, nil
	}

	form, err := req.BodyValues()
	if err != nil {
		return nil, false, err
	}
	if v, ok := form.Get(name); ok && v != nil {
		return v, true, nil
	}
	return nil, false, nil
}

func (a *App) resolveRecord(req *Request, p paramSpec) (reflect.Value, *Diagnostic, error) {
	form, err := req.BodyValues()
	if err != nil {
		return reflect.Value{}, nil, err
	}
	v, err := binder.Record(p.typ.Go, form, binder.Query(req.Request))
	if err != nil {
		if errors.Is(err, binder.ErrInvalidRecord) {
			return reflect.Value{}, nil, err
		}
		return reflect.Value{}, nil, bodyError(req.URL.Path, err)
	}
	return v, nil, nil
}

// valueOrZero makes v usable as an argument of type t.
func valueOrZero(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type().AssignableTo(t) {
		return v
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}
	return reflect.Zero(t)
}
