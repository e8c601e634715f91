// Package markup is a small HTML node tree used as the return value of handlers.
//
// Nodes carry a tag, ordered attributes and children. Children may be strings
// (escaped on render), Raw text, other nodes, Fragments, Components or
// templ.Component values:
//
//	page := markup.Div(markup.Attr("id", "main"),
//		markup.H1("Hello"),
//		markup.P("Escaped <text>"),
//		markup.Raw("<b>as is</b>"),
//	)
//	html := markup.String(page)
//
// Attribute names are normalized the usual way: "cls" becomes "class", "fr" and
// "_for" become "for", and underscores turn into hyphens ("hx_get" -> "hx-get").
// A true value renders as a bare attribute; false and nil omit it.
//
// An "html" root is preceded by <!doctype html>. Render writes compact markup by
// default; pass Indent() for nested, two-space indented output.
package markup
