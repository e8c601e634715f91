package binder

import (
	"mime/multipart"
	"net/url"
)

// Values is a decoded request body keyed by field name.
//
// A form field holds a string, or a []string when it was submitted more than once.
// Uploads hold a *multipart.FileHeader or []*multipart.FileHeader. A JSON body holds
// whatever encoding/json produced for the top-level object.
type Values map[string]any

// Get returns the value stored under key and whether it was submitted.
func (v Values) Get(key string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v[key]
	return val, ok
}

// Clone returns a shallow copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Item collapses a multi-valued field: nil when empty, the single value when
// exactly one was submitted, the full list otherwise.
func Item(values []string) any {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// FromURLValues collapses every key of vals with Item.
func FromURLValues(vals url.Values) Values {
	out := make(Values, len(vals))
	for k, vs := range vals {
		if item := Item(vs); item != nil {
			out[k] = item
		}
	}
	return out
}

func addFiles(dst Values, files map[string][]*multipart.FileHeader) {
	for k, fhs := range files {
		for _, fh := range fhs {
			fh.Filename = sanitizeFilename(fh.Filename)
		}
		switch len(fhs) {
		case 0:
		case 1:
			dst[k] = fhs[0]
		default:
			dst[k] = fhs
		}
	}
}
