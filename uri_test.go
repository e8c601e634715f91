package hyperkit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit"
)

func TestURI(t *testing.T) {
	t.Parallel()

	t.Run("encode", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "show/id=3", hyperkit.URI("show", map[string]any{"id": 3}))
		assert.Equal(t, "show/", hyperkit.URI("show", nil))
		assert.Equal(t, "my%20route/a=1&b=x+y", hyperkit.URI("my route", map[string]any{"b": "x y", "a": 1}))
	})

	t.Run("round_trip", func(t *testing.T) {
		t.Parallel()
		name, kw, err := hyperkit.DecodeURI(hyperkit.URI("user list", map[string]any{"page": 2, "q": "a&b"}))
		require.NoError(t, err)
		assert.Equal(t, "user list", name)
		assert.Equal(t, map[string]string{"page": "2", "q": "a&b"}, kw)
	})

	t.Run("repeated_keys_keep_first", func(t *testing.T) {
		t.Parallel()
		_, kw, err := hyperkit.DecodeURI("show/id=1&id=2")
		require.NoError(t, err)
		assert.Equal(t, "1", kw["id"])
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, _, err := hyperkit.DecodeURI("bad%zz/x=1")
		assert.ErrorIs(t, err, hyperkit.ErrInvalidURI)

		_, _, err = hyperkit.DecodeURI("show/x=%zz")
		assert.ErrorIs(t, err, hyperkit.ErrInvalidURI)
	})
}

func TestQP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		path string
		kw   map[string]any
		want string
	}{
		{"fills_and_appends", "/users/{id}", map[string]any{"id": 3, "tab": "posts"}, "/users/3?tab=posts"},
		{"pattern_var", "/users/{id:[0-9]+}", map[string]any{"id": 5}, "/users/5"},
		{"unfilled_var_stays", "/users/{id}/{tab}", map[string]any{"id": 1}, "/users/1/{tab}"},
		{"false_and_nil_are_empty", "/f/{a}", map[string]any{"a": false, "b": nil}, "/f/?b="},
		{"true", "/f", map[string]any{"on": true}, "/f?on=true"},
		{"sorted_query", "/f", map[string]any{"b": 1, "a": 2}, "/f?a=2&b=1"},
		{"slice_repeats_key", "/f", map[string]any{"tag": []string{"a", "b"}}, "/f?tag=a&tag=b"},
		{"no_kw", "/plain", nil, "/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, hyperkit.QP(tc.path, tc.kw))
		})
	}
}
