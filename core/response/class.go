package response

import (
	"fmt"

	"github.com/dmitrymomot/hyperkit/core/markup"
)

// Class is an explicit response type for a route. When a route declares one,
// the handler's content is encoded with it directly and page negotiation is skipped.
type Class struct {
	name        string
	contentType string
	encode      func(content any) ([]byte, error)
}

// NewClass defines a response class from a content type and an encoder.
func NewClass(name, contentType string, encode func(content any) ([]byte, error)) Class {
	return Class{name: name, contentType: contentType, encode: encode}
}

// Predefined response classes.
var (
	HTMLClass = NewClass("html", ContentTypeHTML, encodeText)
	TextClass = NewClass("text", ContentTypeText, encodeText)
	JSONClass = NewClass("json", ContentTypeJSON, EncodeJSON)
)

// Name returns the class name.
func (c Class) Name() string { return c.name }

// IsZero reports whether c is the zero Class, meaning no explicit class.
func (c Class) IsZero() bool { return c.encode == nil }

// Build encodes content into an envelope with the given status.
func (c Class) Build(content any, status int) (*Envelope, error) {
	if c.encode == nil {
		return nil, fmt.Errorf("response class %q has no encoder", c.name)
	}
	data, err := c.encode(content)
	if err != nil {
		return nil, fmt.Errorf("%s response: %w", c.name, err)
	}
	return NewEnvelope(data, c.contentType, status), nil
}

func encodeText(content any) ([]byte, error) {
	switch v := content.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	}
	if markup.IsMarkup(content) {
		return []byte(markup.String(content)), nil
	}
	return []byte(fmt.Sprint(content)), nil
}
