package hyperkit

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"github.com/dmitrymomot/hyperkit/pkg/async"
)

// Beforeware is a before-interceptor with the paths it skips.
type Beforeware struct {
	handler *Handler
	skip    []*regexp.Regexp
}

// Before wraps h as a before-interceptor. It is not run for requests whose path
// fully matches one of the skip patterns. Before panics on an invalid pattern.
func Before(h *Handler, skip ...string) Beforeware {
	b := Beforeware{handler: h}
	for _, s := range skip {
		b.skip = append(b.skip, regexp.MustCompile(`^(?:`+s+`)$`))
	}
	return b
}

// Skips reports whether the interceptor is skipped for path.
func (b Beforeware) Skips(path string) bool {
	for _, re := range b.skip {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// run drives the interceptor chain around h and returns the provisional
// response. A before-interceptor returning a non-empty value replaces the
// handler; after-interceptors always run and may replace the response.
func (a *App) run(req *Request, h *Handler) (any, error) {
	var resp any

	for _, b := range a.before {
		if b.Skips(req.URL.Path) {
			continue
		}
		out, err := a.call(req, b.handler, callInput{})
		if err != nil {
			return nil, err
		}
		if !isEmpty(out) {
			resp = out
			a.metrics.ShortCircuit()
			break
		}
	}

	if h.bodyWrap != nil {
		req.BodyWrap = h.bodyWrap
	}

	if isEmpty(resp) {
		out, err := a.call(req, h, callInput{})
		if err != nil {
			return nil, err
		}
		resp = out
	}

	for _, af := range a.after {
		out, err := a.call(req, af, callInput{first: &resp})
		if err != nil {
			return nil, err
		}
		if !isEmpty(out) {
			resp = out
		}
	}

	return resp, nil
}

// call resolves the parameters of h and invokes it. Context-aware handlers run
// on the calling goroutine; all others go through the worker pool.
func (a *App) call(req *Request, h *Handler, in callInput) (any, error) {
	res, err := a.resolve(req, h, in)
	if err != nil {
		return nil, err
	}
	return a.invoke(req.Context(), h, res.Args)
}

func (a *App) invoke(ctx context.Context, h *Handler, args []reflect.Value) (any, error) {
	var out []reflect.Value
	fn := func() error {
		out = h.fn.Call(args)
		return nil
	}

	var err error
	if h.async {
		err = async.Safe(fn)
	} else {
		err = a.pool.Do(ctx, fn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.RouteName(), err)
	}
	return h.results(out)
}

func (h *Handler) results(out []reflect.Value) (any, error) {
	if h.errOut >= 0 {
		if e := out[h.errOut]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
	}
	if h.valOut < 0 {
		return nil, nil
	}
	v := out[h.valOut]
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil, nil
		}
	}
	return v.Interface(), nil
}

// isEmpty reports whether v counts as "no response": nil, false, a zero
// number, an empty string, or an empty slice or map.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return rv.IsZero()
	}
	return false
}
