package markup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

const doctype = "<!doctype html>"

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

type renderConfig struct {
	indent bool
}

// Option configures Render.
type Option func(*renderConfig)

// Indent renders nested nodes on their own lines with two-space indentation.
func Indent() Option {
	return func(c *renderConfig) { c.indent = true }
}

// WithIndent toggles indentation; handy when the choice comes from configuration.
func WithIndent(on bool) Option {
	return func(c *renderConfig) { c.indent = on }
}

// Render writes v as HTML to w. ctx is passed to embedded templ components.
func Render(ctx context.Context, w io.Writer, v any, opts ...Option) error {
	cfg := renderConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &printer{ctx: ctx, w: w, indent: cfg.indent}
	p.value(v, 0)
	return p.err
}

// String renders v to a string. Rendering errors from templ components are
// dropped; use Render when they matter.
func String(v any, opts ...Option) string {
	var sb strings.Builder
	_ = Render(context.Background(), &sb, v, opts...)
	return sb.String()
}

type printer struct {
	ctx    context.Context
	w      io.Writer
	indent bool
	err    error
}

func (p *printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) pad(depth int) {
	if p.indent {
		p.write(strings.Repeat("  ", depth))
	}
}

func (p *printer) newline() {
	if p.indent {
		p.write("\n")
	}
}

func (p *printer) value(v any, depth int) {
	switch x := v.(type) {
	case nil:
	case *Node:
		if x != nil {
			p.node(x, depth)
		}
	case string:
		p.text(templ.EscapeString(x), depth)
	case Raw:
		p.text(string(x), depth)
	case Fragment:
		p.list([]any(x), depth)
	case []any:
		p.list(x, depth)
	case []*Node:
		for _, n := range x {
			p.value(n, depth)
		}
	case []string:
		for _, s := range x {
			p.value(s, depth)
		}
	case templ.Component:
		p.pad(depth)
		if p.err == nil {
			p.err = x.Render(p.ctx, p.w)
		}
		p.newline()
	case Component:
		p.value(x.Node(), depth)
	case fmt.Stringer:
		p.text(templ.EscapeString(x.String()), depth)
	default:
		p.text(templ.EscapeString(fmt.Sprint(x)), depth)
	}
}

func (p *printer) list(items []any, depth int) {
	for _, item := range items {
		p.value(item, depth)
	}
}

func (p *printer) text(s string, depth int) {
	if s == "" {
		return
	}
	p.pad(depth)
	p.write(s)
	p.newline()
}

func (p *printer) node(n *Node, depth int) {
	if n.Tag == "" {
		p.list(n.Children, depth)
		return
	}
	if n.Tag == "html" {
		p.pad(depth)
		p.write(doctype)
		p.newline()
	}

	p.pad(depth)
	p.write("<" + n.Tag)
	for _, a := range n.Attrs {
		p.attr(a)
	}
	p.write(">")
	if voidTags[n.Tag] {
		p.newline()
		return
	}

	if p.indent && inlineOnly(n.Children) {
		indent := p.indent
		p.indent = false
		p.list(n.Children, 0)
		p.indent = indent
	} else if len(n.Children) > 0 {
		p.newline()
		p.list(n.Children, depth+1)
		p.pad(depth)
	}
	p.write("</" + n.Tag + ">")
	p.newline()
}

func (p *printer) attr(a Attribute) {
	switch v := a.Value.(type) {
	case nil:
		return
	case bool:
		if v {
			p.write(" " + a.Key)
		}
		return
	case string:
		p.write(" " + a.Key + `="` + templ.EscapeString(v) + `"`)
	case Raw:
		p.write(" " + a.Key + `="` + templ.EscapeString(string(v)) + `"`)
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			data = []byte(fmt.Sprint(v))
		}
		p.write(" " + a.Key + `="` + templ.EscapeString(string(data)) + `"`)
	default:
		p.write(" " + a.Key + `="` + templ.EscapeString(fmt.Sprint(v)) + `"`)
	}
}

// inlineOnly reports whether children are all text, so an indented node can keep
// them on its own line.
func inlineOnly(children []any) bool {
	for _, c := range children {
		switch c.(type) {
		case string, Raw, nil:
		default:
			return false
		}
	}
	return true
}
