package markup

import (
	"strings"
)

// Attribute is a single name/value pair on a node.
type Attribute struct {
	Key   string
	Value any
}

// Attr returns an attribute with a normalized name.
func Attr(key string, value any) Attribute {
	return Attribute{Key: AttrName(key), Value: value}
}

// Attrs is a convenience for passing several attributes at once.
type Attrs []Attribute

// AttrName normalizes a Go-friendly attribute name to its HTML form.
func AttrName(key string) string {
	switch key {
	case "cls", "klass", "_class", "class_":
		return "class"
	case "fr", "_for", "for_":
		return "for"
	}
	key = strings.Trim(key, "_")
	return strings.ReplaceAll(key, "_", "-")
}

// Component is implemented by values that convert themselves into markup.
// Node may return a *Node, a Fragment, a string or another Component.
type Component interface {
	Node() any
}

// Raw is text written without escaping.
type Raw string

// Fragment is an ordered list of siblings rendered without a wrapping tag.
type Fragment []any

// Node is an element in the tree.
type Node struct {
	Tag      string
	Attrs    []Attribute
	Children []any
}

// El builds a node. Attribute and Attrs arguments become attributes in order;
// everything else becomes a child.
func El(tag string, args ...any) *Node {
	n := &Node{Tag: strings.ToLower(tag)}
	for _, arg := range args {
		switch a := arg.(type) {
		case Attribute:
			n.Set(a.Key, a.Value)
		case Attrs:
			for _, at := range a {
				n.Set(at.Key, at.Value)
			}
		case nil:
		default:
			n.Children = append(n.Children, arg)
		}
	}
	return n
}

// Get returns the value of the attribute named key.
func (n *Node) Get(key string) (any, bool) {
	key = AttrName(key)
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Set replaces the attribute named key, or appends it when absent.
func (n *Node) Set(key string, value any) *Node {
	key = AttrName(key)
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Value: value})
	return n
}

// Del removes the attribute named key.
func (n *Node) Del(key string) *Node {
	key = AttrName(key)
	out := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attrs = out
	return n
}

// Append adds children to the node.
func (n *Node) Append(children ...any) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Node returns n itself so a *Node satisfies Component.
func (n *Node) Node() any { return n }

func (n *Node) String() string { return String(n) }

// TagOf returns the tag of v when it is a *Node, or "" otherwise.
func TagOf(v any) string {
	if n, ok := v.(*Node); ok && n != nil {
		return n.Tag
	}
	return ""
}
