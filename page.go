package hyperkit

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
)

var headTags = map[string]bool{"title": true, "meta": true, "link": true, "style": true, "base": true}

// verbs maps the client-action attributes handlers may set on nodes to the
// attribute they are rendered as. Their values are route references.
var verbs = []struct{ attr, wire string }{
	{"get", "hx-get"},
	{"post", "hx-post"},
	{"put", "hx-put"},
	{"delete", "hx-delete"},
	{"patch", "hx-patch"},
	{"link", "href"},
}

// isFragmentRequest reports whether the client asked for a fragment: an HTMX
// request that is not restoring history.
func isFragmentRequest(req *Request) bool {
	return response.IsHTMXRequest(req.Request) && !response.IsHistoryRestore(req.Request)
}

// negotiate renders markup content, wrapping it in a full document unless it
// already is one or the client asked for a fragment. The boolean reports
// whether the result is a whole document.
func (a *App) negotiate(req *Request, content any) (string, bool, error) {
	items := markup.Flatten(content)

	var heads, body []any
	hasTitle, hasCanonical, hasRoot := false, false, false
	for _, item := range items {
		tag := markup.TagOf(item)
		switch {
		case tag == "html":
			hasRoot = true
			body = append(body, item)
		case headTags[tag]:
			heads = append(heads, item)
			if tag == "title" {
				hasTitle = true
			}
			if tag == "link" {
				if rel, _ := item.(*markup.Node).Get("rel"); rel == "canonical" {
					hasCanonical = true
				}
			}
		default:
			body = append(body, item)
		}
	}

	var doc any = content
	wrap := !hasRoot && !isFragmentRequest(req)
	if wrap {
		if !hasTitle {
			heads = append(heads, markup.Title(a.cfg.Title))
		}
		if a.cfg.Canonical && !hasCanonical {
			heads = append(heads, markup.Link(
				markup.Attr("rel", "canonical"),
				markup.Attr("href", req.CanonicalURL()),
			))
		}
		heads = append(heads, req.Hdrs...)

		bodyArgs := []any{req.BodyWrap(body, req)}
		bodyArgs = append(bodyArgs, req.Ftrs...)
		bodyArgs = append(bodyArgs, sortedAttrs(req.BodyKw))

		htmlArgs := []any{markup.Head(heads...), markup.Body(bodyArgs...)}
		htmlArgs = append(htmlArgs, sortedAttrs(req.HTMLKw))
		doc = markup.Html(htmlArgs...)
	}

	doc = markup.Expand(doc)
	if err := a.rewriteVerbs(doc); err != nil {
		return "", false, err
	}

	var sb strings.Builder
	if err := markup.Render(req.Context(), &sb, doc, markup.WithIndent(a.cfg.Indent)); err != nil {
		return "", false, fmt.Errorf("render page: %w", err)
	}
	return sb.String(), wrap || hasRoot, nil
}

// sortedAttrs turns an attribute map into attributes ordered by name.
func sortedAttrs(kw map[string]any) markup.Attrs {
	attrs := make(markup.Attrs, 0, len(kw))
	for _, k := range slices.Sorted(maps.Keys(kw)) {
		attrs = append(attrs, markup.Attr(k, kw[k]))
	}
	return attrs
}

// rewriteVerbs replaces client-action attributes with their wire form, turning
// route references into URLs.
func (a *App) rewriteVerbs(doc any) error {
	var err error
	markup.Walk(doc, func(n *markup.Node) {
		if err != nil {
			return
		}
		for _, v := range verbs {
			ref, ok := n.Get(v.attr)
			if !ok || isEmpty(ref) {
				continue
			}
			target, e := a.resolveTarget(ref)
			if e != nil {
				err = fmt.Errorf("%s attribute on <%s>: %w", v.attr, n.Tag, e)
				return
			}
			n.Del(v.attr)
			n.Set(v.wire, target)
		}
	})
	return err
}

// resolveTarget turns a route reference into a URL. A reference is a *Handler,
// a literal path starting with "/", a route name with an optional query
// ("show?x=1"), or an encoded URI reference ("show/id=3").
func (a *App) resolveTarget(ref any) (string, error) {
	var t string
	switch v := ref.(type) {
	case *Handler:
		t = v.RouteName()
	case string:
		t = v
	case markup.Raw:
		t = string(v)
	default:
		t = fmt.Sprint(v)
	}
	if strings.HasPrefix(t, "/") {
		return t, nil
	}

	var kv map[string]string
	slash, query := strings.Index(t, "/"), strings.Index(t, "?")
	if slash >= 0 && (query < 0 || slash < query) {
		name, args, err := DecodeURI(t)
		if err != nil {
			return "", err
		}
		t, kv = name, args
	}

	name, q, hasQuery := strings.Cut(t, "?")
	pairs := make([]string, 0, len(kv)*2)
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		pairs = append(pairs, k, kv[k])
	}
	path, err := a.URLFor(name, pairs...)
	if err != nil {
		return "", err
	}
	if hasQuery {
		path += "?" + q
	}
	return path, nil
}
