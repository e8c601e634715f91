package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
// Rendering errors are handled by the framework's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// Render calls f, so a Response satisfies Renderer.
func (f Response) Render(w http.ResponseWriter, r *http.Request) error {
	return f(w, r)
}

// Renderer is a concrete, transport-level response ready to be written.
// Values implementing it pass through response normalization untouched.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Responder is implemented by values that decide their own response based on the
// request, such as a redirect that switches to a protocol header for fragment
// requests. The returned value is normalized in place of the receiver.
type Responder interface {
	Respond(r *http.Request) any
}

// NotFounder is implemented by file-backed responses that can report a missing
// backing file before anything is written.
type NotFounder interface {
	Exists() bool
	Path() string
}

// Middleware wraps a net/http handler with cross-cutting behavior.
type Middleware func(next http.Handler) http.Handler
