package markup

import (
	"reflect"

	"github.com/a-h/templ"
)

// Expand converts every Component in v into markup, recursively, and returns the
// resulting tree. Nodes are copied, so v is left untouched.
func Expand(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *Node:
		if x == nil {
			return nil
		}
		out := &Node{Tag: x.Tag, Attrs: append([]Attribute(nil), x.Attrs...)}
		out.Children = make([]any, 0, len(x.Children))
		for _, c := range x.Children {
			out.Children = append(out.Children, Expand(c))
		}
		return out
	case Fragment:
		return Fragment(expandAll(x))
	case []any:
		return expandAll(x)
	case templ.Component:
		return x
	case Component:
		return Expand(x.Node())
	}
	return v
}

func expandAll(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Expand(item)
	}
	return out
}

// Walk calls fn for every node in v, parents before children.
func Walk(v any, fn func(*Node)) {
	switch x := v.(type) {
	case *Node:
		if x == nil {
			return
		}
		fn(x)
		for _, c := range x.Children {
			Walk(c, fn)
		}
	case Fragment:
		for _, c := range x {
			Walk(c, fn)
		}
	case []any:
		for _, c := range x {
			Walk(c, fn)
		}
	case []*Node:
		for _, c := range x {
			Walk(c, fn)
		}
	}
}

// Flatten turns nested slices and fragments into one flat sequence. A single
// value becomes a one-element slice; nil yields an empty slice. Strings and
// []byte are kept whole.
func Flatten(v any) []any {
	var out []any
	flattenInto(&out, v)
	return out
}

func flattenInto(out *[]any, v any) {
	switch x := v.(type) {
	case nil:
		return
	case []any:
		for _, item := range x {
			flattenInto(out, item)
		}
		return
	case Fragment:
		for _, item := range x {
			flattenInto(out, item)
		}
		return
	case string, []byte, Raw, *Node:
		*out = append(*out, v)
		return
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := range rv.Len() {
			flattenInto(out, rv.Index(i).Interface())
		}
		return
	}
	*out = append(*out, v)
}

// IsMarkup reports whether v is tree-shaped: a node, a fragment, a component,
// or a sequence whose items are all markup or text.
func IsMarkup(v any) bool {
	switch x := v.(type) {
	case *Node, Fragment, Component, templ.Component:
		return true
	case []any:
		if len(x) == 0 {
			return false
		}
		for _, item := range x {
			switch item.(type) {
			case string, Raw:
				continue
			}
			if !IsMarkup(item) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v. Nodes, fragments, slices of any and maps with
// string keys are copied recursively; other values are shared.
func Clone(v any) any {
	switch x := v.(type) {
	case *Node:
		if x == nil {
			return x
		}
		out := &Node{Tag: x.Tag, Attrs: make([]Attribute, len(x.Attrs))}
		for i, a := range x.Attrs {
			out.Attrs[i] = Attribute{Key: a.Key, Value: Clone(a.Value)}
		}
		out.Children = CloneAll(x.Children)
		return out
	case Fragment:
		return Fragment(CloneAll(x))
	case []any:
		return CloneAll(x)
	case map[string]any:
		return CloneMap(x)
	}
	return v
}

// CloneAll deep-copies every item of items. A nil slice stays nil.
func CloneAll(items []any) []any {
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Clone(item)
	}
	return out
}

// CloneMap deep-copies m. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}
