package hyperkit

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
	"github.com/dmitrymomot/hyperkit/core/telemetry"
)

// parts is a handler result split into headers, tasks and visible content.
type parts struct {
	content any
	headers []response.HTTPHeader
	tasks   response.Tasks
}

// partition flattens result, appends (and consumes) the injected fragments of
// req and pulls out headers and tasks. A single remaining item is unwrapped.
func partition(req *Request, result any) parts {
	items := markup.Flatten(result)
	items = append(items, markup.Flatten(req.injects)...)
	req.injects = nil

	p := parts{headers: []response.HTTPHeader{response.Header("Vary", response.VaryHeader)}}
	visible := make([]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case response.HTTPHeader:
			p.headers = append(p.headers, v)
		case response.Task:
			p.tasks = append(p.tasks, v)
		default:
			visible = append(visible, item)
		}
	}

	if len(visible) == 1 {
		p.content = visible[0]
	} else {
		p.content = visible
	}
	return p
}

// Normalize turns a handler result into a concrete response.
//
// Values implementing handler.Responder convert themselves first. A missing
// file fails with 404. Headers and tasks are then split out of the result; an
// explicit class encodes what is left directly. Otherwise a concrete response
// passes through untouched, markup goes through page negotiation, strings are
// sent as HTML, mappings as JSON and anything else as its string form.
func (a *App) Normalize(req *Request, result any, class response.Class, status int) (handler.Renderer, error) {
	if status == 0 {
		status = http.StatusOK
	}
	if isEmpty(result) {
		result = ""
	}
	if r, ok := result.(handler.Responder); ok {
		result = r.Respond(req.Request)
	}
	if nf, ok := result.(handler.NotFounder); ok && !nf.Exists() {
		return nil, errNotFound(nf.Path(), fmt.Errorf("%w: %s", ErrFileNotFound, nf.Path()))
	}

	p := partition(req, result)

	if !class.IsZero() {
		env, err := class.Build(p.content, status)
		if err != nil {
			return nil, err
		}
		a.metrics.Response(telemetry.KindClass)
		return env.WithHeaders(p.headers...).WithTasks(p.tasks...), nil
	}

	if r, ok := p.content.(handler.Renderer); ok {
		a.metrics.Response(telemetry.KindRaw)
		return r, nil
	}

	var (
		body string
		kind = telemetry.KindHTML
	)
	switch v := p.content.(type) {
	case string:
		body = v
	case markup.Raw:
		body = string(v)
	case []byte:
		body = string(v)
	default:
		switch {
		case isMarkup(v):
			page, full, err := a.negotiate(req, v)
			if err != nil {
				return nil, err
			}
			body = page
			kind = telemetry.KindFragment
			if full {
				kind = telemetry.KindPage
			}
		case isMapping(v):
			env, err := response.JSONEnvelope(v, status)
			if err != nil {
				return nil, err
			}
			a.metrics.Response(telemetry.KindJSON)
			return env.WithHeaders(p.headers...).WithTasks(p.tasks...), nil
		default:
			body = fmt.Sprint(v)
		}
	}

	a.metrics.Response(kind)
	return response.HTMLWithStatus(body, status).WithHeaders(p.headers...).WithTasks(p.tasks...), nil
}

// isMarkup reports whether v should be rendered through page negotiation: a
// node, a component, or a sequence (including the empty sequence left when a
// handler returns only headers).
func isMarkup(v any) bool {
	switch x := v.(type) {
	case []any:
		return true
	case *markup.Node, markup.Fragment, markup.Component, templ.Component:
		return true
	default:
		return markup.IsMarkup(x)
	}
}

func isMapping(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// Page renders Content like a handler result but with its own status, class,
// headers and tasks.
type Page struct {
	Content any
	Status  int
	Class   response.Class
	Headers []response.HTTPHeader
	Tasks   response.Tasks
}

var _ handler.Responder = Page{}

// Respond normalizes the page against the request being served. Outside an App
// the content is rendered as a bare HTML fragment.
func (p Page) Respond(r *http.Request) any {
	req := RequestFrom(r.Context())
	if req == nil {
		env := response.HTMLWithStatus(markup.String(markup.Expand(p.Content)), p.Status)
		return env.WithHeaders(p.Headers...).WithTasks(p.Tasks...)
	}

	items := []any{p.Content}
	for _, h := range p.Headers {
		items = append(items, h)
	}
	for _, t := range p.Tasks {
		items = append(items, t)
	}
	resp, err := req.App.Normalize(req, items, p.Class, p.Status)
	if err != nil {
		return handler.Response(func(http.ResponseWriter, *http.Request) error { return err })
	}
	return resp
}
