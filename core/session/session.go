package session

import (
	"context"
	"encoding/json"
	"maps"
	"reflect"
)

// Values is the session mapping handed to handlers. Handlers mutate it in place;
// changes are written back to the cookie when the response starts.
type Values map[string]any

type ctxKey struct{}

type state struct {
	values   Values
	original Values
}

// NewContext returns ctx carrying values as the request's session.
func NewContext(ctx context.Context, values Values) context.Context {
	return context.WithValue(ctx, ctxKey{}, &state{values: values, original: clone(values)})
}

// FromContext returns the session stored in ctx, or nil when no session
// middleware ran.
func FromContext(ctx context.Context) Values {
	if st, ok := ctx.Value(ctxKey{}).(*state); ok {
		return st.values
	}
	return nil
}

func stateFrom(ctx context.Context) *state {
	st, _ := ctx.Value(ctxKey{}).(*state)
	return st
}

// modified reports whether the values differ from what was loaded.
func (s *state) modified() bool {
	return !reflect.DeepEqual(normalize(s.values), normalize(s.original))
}

func clone(v Values) Values {
	if v == nil {
		return Values{}
	}
	// Round-trip through JSON so nested maps and slices are copied too.
	data, err := json.Marshal(v)
	if err != nil {
		return maps.Clone(v)
	}
	out := Values{}
	if err := json.Unmarshal(data, &out); err != nil {
		return maps.Clone(v)
	}
	return out
}

func normalize(v Values) Values {
	if len(v) == 0 {
		return Values{}
	}
	return clone(v)
}
