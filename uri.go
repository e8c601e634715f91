package hyperkit

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
)

// URI builds a route reference for use as a client-action attribute value:
// the escaped route name, a slash, then kw as a query string.
//
//	markup.Button(markup.Attr("get", hyperkit.URI("show", map[string]any{"id": 3})))
func URI(name string, kw map[string]any) string {
	return url.PathEscape(name) + "/" + encodeQuery(kw)
}

// DecodeURI splits a reference built by URI into the route name and its
// arguments. Repeated arguments keep their first value.
func DecodeURI(s string) (string, map[string]string, error) {
	rawName, rawQuery, _ := strings.Cut(s, "/")
	name, err := url.PathUnescape(rawName)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrInvalidURI, s, err)
	}
	vals, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q: %w", ErrInvalidURI, s, err)
	}
	kw := make(map[string]string, len(vals))
	for k, v := range vals {
		if len(v) > 0 {
			kw[k] = v[0]
		}
	}
	return name, kw, nil
}

var pathVar = regexp.MustCompile(`\{([^:}]+)(:.+?)?\}`)

// QP fills the variables of a route pattern from kw. Variables without a value
// stay in place; everything left over in kw is appended as a query string.
// false and nil render as empty strings.
//
//	QP("/users/{id}", map[string]any{"id": 3, "tab": "posts"}) // "/users/3?tab=posts"
func QP(path string, kw map[string]any) string {
	rest := make(map[string]any, len(kw))
	for k, v := range kw {
		rest[k] = v
	}

	path = pathVar.ReplaceAllStringFunc(path, func(m string) string {
		sub := pathVar.FindStringSubmatch(m)
		v, ok := rest[sub[1]]
		if !ok {
			return m
		}
		delete(rest, sub[1])
		return queryString(v)
	})

	if len(rest) == 0 {
		return path
	}
	return path + "?" + encodeQuery(rest)
}

// encodeQuery encodes kw sorted by key. Slice values repeat the key.
func encodeQuery(kw map[string]any) string {
	vals := url.Values{}
	for k, v := range kw {
		rv := reflect.ValueOf(v)
		if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			for i := range rv.Len() {
				vals.Add(k, queryString(rv.Index(i).Interface()))
			}
			continue
		}
		vals.Add(k, queryString(v))
	}
	return vals.Encode()
}

func queryString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if !x {
			return ""
		}
		return "true"
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}
