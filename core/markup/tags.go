package markup

// Document structure.

func Html(args ...any) *Node { return El("html", args...) }
func Head(args ...any) *Node { return El("head", args...) }
func Body(args ...any) *Node { return El("body", args...) }
func Title(args ...any) *Node { return El("title", args...) }
func Meta(args ...any) *Node { return El("meta", args...) }
func Link(args ...any) *Node { return El("link", args...) }
func Base(args ...any) *Node { return El("base", args...) }

// Style keeps string children unescaped.
func Style(args ...any) *Node { return El("style", rawStrings(args)...) }

// Script keeps string children unescaped.
func Script(args ...any) *Node { return El("script", rawStrings(args)...) }

// Content.

func Main(args ...any) *Node { return El("main", args...) }
func Div(args ...any) *Node { return El("div", args...) }
func Span(args ...any) *Node { return El("span", args...) }
func P(args ...any) *Node { return El("p", args...) }
func A(args ...any) *Node { return El("a", args...) }
func H1(args ...any) *Node { return El("h1", args...) }
func H2(args ...any) *Node { return El("h2", args...) }
func H3(args ...any) *Node { return El("h3", args...) }
func Ul(args ...any) *Node { return El("ul", args...) }
func Li(args ...any) *Node { return El("li", args...) }
func Form(args ...any) *Node { return El("form", args...) }
func Input(args ...any) *Node { return El("input", args...) }
func Button(args ...any) *Node { return El("button", args...) }
func Label(args ...any) *Node { return El("label", args...) }
func Textarea(args ...any) *Node { return El("textarea", args...) }
func Img(args ...any) *Node { return El("img", args...) }
func Br() *Node { return El("br") }

func rawStrings(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			out[i] = Raw(s)
			continue
		}
		out[i] = a
	}
	return out
}
