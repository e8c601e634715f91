package response

import (
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HTTPHeader is a single response header returned alongside handler content.
// Handlers return it next to their markup and it is applied to the final response.
type HTTPHeader struct {
	Key   string
	Value string
}

// Header creates an HTTPHeader.
func Header(key, value string) HTTPHeader {
	return HTTPHeader{Key: key, Value: value}
}

func (h HTTPHeader) apply(dst http.Header) {
	if http.CanonicalHeaderKey(h.Key) == "Set-Cookie" {
		dst.Add(h.Key, h.Value)
		return
	}
	dst.Set(h.Key, h.Value)
}

// SnakeToHyphens converts a snake_case name to Hyphenated-Title-Case,
// e.g. "current_url" to "Current-Url".
func SnakeToHyphens(s string) string {
	caser := cases.Title(language.Und)
	parts := strings.Split(s, "_")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "-")
}

// HXHeader builds an HX-* response header from a snake_case field name:
// HXHeader("trigger_after_settle", v) sets HX-Trigger-After-Settle.
func HXHeader(field, value string) HTTPHeader {
	return HTTPHeader{Key: "HX-" + SnakeToHyphens(field), Value: value}
}
