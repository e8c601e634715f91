package response

import (
	"fmt"
	"net/http"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// Content types used by the constructors in this package.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Envelope is a fully materialized response: status, body, headers and the
// background tasks to run once it has been written.
type Envelope struct {
	Status      int
	ContentType string
	Body        []byte
	Header      http.Header
	Tasks       Tasks
}

var _ handler.Renderer = (*Envelope)(nil)

// NewEnvelope creates an envelope with the given body and content type.
// A zero status means 200 OK.
func NewEnvelope(body []byte, contentType string, status int) *Envelope {
	if status == 0 {
		status = http.StatusOK
	}
	return &Envelope{
		Status:      status,
		ContentType: contentType,
		Body:        body,
		Header:      make(http.Header),
	}
}

// HTML creates a text/html envelope with 200 OK status.
func HTML(content string) *Envelope {
	return NewEnvelope([]byte(content), ContentTypeHTML, http.StatusOK)
}

// HTMLWithStatus creates a text/html envelope with a custom status code.
func HTMLWithStatus(content string, status int) *Envelope {
	return NewEnvelope([]byte(content), ContentTypeHTML, status)
}

// String creates a text/plain envelope with 200 OK status.
func String(content string) *Envelope {
	return NewEnvelope([]byte(content), ContentTypeText, http.StatusOK)
}

// StringWithStatus creates a text/plain envelope with a custom status code.
func StringWithStatus(content string, status int) *Envelope {
	return NewEnvelope([]byte(content), ContentTypeText, status)
}

// Bytes creates an envelope with a custom content type and 200 OK status.
func Bytes(content []byte, contentType string) *Envelope {
	return NewEnvelope(content, contentType, http.StatusOK)
}

// NoContent creates an empty 204 envelope.
func NoContent() *Envelope {
	return NewEnvelope(nil, "", http.StatusNoContent)
}

// WithHeader sets a header on the envelope and returns it.
func (e *Envelope) WithHeader(key, value string) *Envelope {
	if e.Header == nil {
		e.Header = make(http.Header)
	}
	e.Header.Set(key, value)
	return e
}

// WithHeaders applies HTTPHeader values in order. Set-Cookie headers accumulate;
// any other key replaces earlier values.
func (e *Envelope) WithHeaders(headers ...HTTPHeader) *Envelope {
	if e.Header == nil {
		e.Header = make(http.Header)
	}
	for _, h := range headers {
		h.apply(e.Header)
	}
	return e
}

// WithTasks appends background tasks to the envelope.
func (e *Envelope) WithTasks(tasks ...Task) *Envelope {
	e.Tasks = append(e.Tasks, tasks...)
	return e
}

// Render writes the envelope. Tasks are not run here; the caller runs them after
// the response has been sent.
func (e *Envelope) Render(w http.ResponseWriter, r *http.Request) error {
	dst := w.Header()
	for k, vs := range e.Header {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	if e.ContentType != "" && dst.Get("Content-Type") == "" {
		dst.Set("Content-Type", e.ContentType)
	}

	status := e.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch status {
	case http.StatusNoContent, http.StatusNotModified:
		return nil
	}
	if len(e.Body) == 0 || (r != nil && r.Method == http.MethodHead) {
		return nil
	}
	if _, err := w.Write(e.Body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}
