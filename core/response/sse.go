package response

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/markup"
)

// DefaultSSEKeepAlive is how often an idle stream sends a comment line.
const DefaultSSEKeepAlive = 30 * time.Second

type eventStream struct {
	name      string
	id        func(data any) string
	retry     time.Duration
	keepAlive time.Duration
	onError   func(context.Context, error)
}

// EventOption configures an EventStream.
type EventOption func(*eventStream)

// WithEventName sets the event field of every event.
func WithEventName(name string) EventOption {
	return func(s *eventStream) { s.name = name }
}

// WithEventID derives the id field from each event's data. An empty id is
// omitted.
func WithEventID(fn func(data any) string) EventOption {
	return func(s *eventStream) { s.id = fn }
}

// WithRetry tells the client how long to wait before reconnecting.
func WithRetry(d time.Duration) EventOption {
	return func(s *eventStream) { s.retry = d }
}

// WithKeepAlive sets the idle interval between keep-alive comments.
func WithKeepAlive(d time.Duration) EventOption {
	return func(s *eventStream) { s.keepAlive = d }
}

// WithoutKeepAlive disables keep-alive comments.
func WithoutKeepAlive() EventOption {
	return func(s *eventStream) { s.keepAlive = 0 }
}

// WithStreamErrorHandler receives write and encoding failures. The stream ends
// on a write failure and skips the event on an encoding failure.
func WithStreamErrorHandler(fn func(context.Context, error)) EventOption {
	return func(s *eventStream) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// EventStream creates a Server-Sent Events response from a channel of data.
// Markup values are rendered to HTML, strings and bytes are sent as is, and
// anything else is encoded as JSON. Multi-line data is split across data lines.
// The stream ends when events is closed or the client goes away.
func EventStream(events <-chan any, opts ...EventOption) handler.Response {
	s := &eventStream{keepAlive: DefaultSSEKeepAlive, onError: func(context.Context, error) {}}
	for _, opt := range opts {
		opt(s)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		flusher, ok := w.(http.Flusher)
		if !ok {
			return ErrInternalServerError.WithError(fmt.Errorf("event stream: %T cannot flush", w))
		}
		ctx := r.Context()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if s.retry > 0 {
			if _, err := fmt.Fprintf(w, "retry: %d\n\n", s.retry.Milliseconds()); err != nil {
				s.onError(ctx, err)
				return nil
			}
		}
		flusher.Flush()

		var tick <-chan time.Time
		if s.keepAlive > 0 {
			ticker := time.NewTicker(s.keepAlive)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
				if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
					s.onError(ctx, err)
					return nil
				}
				flusher.Flush()
			case data, ok := <-events:
				if !ok {
					return nil
				}
				var id string
				if s.id != nil {
					id = s.id(data)
				}
				msg, err := formatEvent(data, s.name, id)
				if err != nil {
					s.onError(ctx, err)
					continue
				}
				if _, err := io.WriteString(w, msg); err != nil {
					s.onError(ctx, err)
					return nil
				}
				flusher.Flush()
			}
		}
	}
}

// SSEMessage formats a single event as it appears on the wire. An empty event
// name defaults to "message".
func SSEMessage(data any, event string) (string, error) {
	if event == "" {
		event = "message"
	}
	return formatEvent(data, event, "")
}

func formatEvent(data any, event, id string) (string, error) {
	text, err := eventData(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if event != "" {
		sb.WriteString("event: " + event + "\n")
	}
	if id != "" {
		sb.WriteString("id: " + id + "\n")
	}
	for line := range strings.SplitSeq(text, "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

func eventData(data any) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	if markup.IsMarkup(data) {
		return markup.String(data), nil
	}
	b, err := EncodeJSON(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
