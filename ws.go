package hyperkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/hyperkit/core/binder"
	"github.com/dmitrymomot/hyperkit/core/coerce"
	"github.com/dmitrymomot/hyperkit/core/logger"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
	"github.com/dmitrymomot/hyperkit/pkg/broadcast"
)

// headersKey is the message field carrying the client's request headers.
const headersKey = "HEADERS"

// SendFunc pushes a value to a WebSocket client. Markup is rendered to text.
type SendFunc func(v any) error

// Socket is an open WebSocket connection. Writes are serialized, so Send is
// safe to call from several goroutines.
type Socket struct {
	conn   *websocket.Conn
	req    *Request
	indent bool
	mu     sync.Mutex
}

// Send renders v and writes it as a text message. Empty values are skipped.
func (s *Socket) Send(v any) error {
	if isEmpty(v) {
		return nil
	}
	var text string
	switch x := v.(type) {
	case string:
		text = x
	case []byte:
		text = string(x)
	default:
		text = markup.String(markup.Expand(v), markup.WithIndent(s.indent))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Request returns the upgrade request.
func (s *Socket) Request() *Request { return s.req }

// Close sends a normal close frame and closes the connection.
func (s *Socket) Close() error {
	s.mu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.mu.Unlock()
	return s.conn.Close()
}

type wsRoute struct {
	recv       *Handler
	connect    *Handler
	disconnect *Handler
}

// WSOption configures a WebSocket route.
type WSOption func(*wsRoute)

// WithConnect runs h once the connection is accepted.
func WithConnect(h *Handler) WSOption {
	return func(r *wsRoute) { r.connect = h }
}

// WithDisconnect runs h after the client goes away.
func WithDisconnect(h *Handler) WSOption {
	return func(r *wsRoute) { r.disconnect = h }
}

// WS registers a WebSocket route. recv runs for every message; the message is a
// JSON object whose fields fill its parameters, with the reserved HEADERS field
// acting as request headers. Whatever a handler returns is sent back as text.
func (a *App) WS(path string, recv *Handler, opts ...WSOption) *Handler {
	if recv == nil {
		recv = Fn(func() {})
	}
	route := &wsRoute{recv: recv}
	for _, opt := range opts {
		opt(route)
	}

	recv.path = path
	a.router.Handle(path, a.wsEndpoint(route)).Methods(http.MethodGet).Name(recv.RouteName())
	return recv
}

// SetupWS registers recv on "/ws" and returns a function broadcasting to every
// connected client.
func (a *App) SetupWS(recv *Handler) SendFunc {
	if a.hub == nil {
		a.hub = broadcast.NewMemoryBroadcaster[string](16)
	}
	hub := a.hub

	connect := Fn(func(ctx context.Context, sock *Socket) {
		sub := hub.Subscribe(ctx)
		go func() {
			for msg := range sub.Receive(ctx) {
				if err := sock.Send(msg.Data); err != nil {
					a.logger.DebugContext(ctx, "broadcast delivery failed", logger.Error(err))
					return
				}
			}
		}()
	}, "")
	a.WS("/ws", recv, WithConnect(connect))

	return func(v any) error {
		if isEmpty(v) {
			return nil
		}
		text := markup.String(markup.Expand(v), markup.WithIndent(a.cfg.Indent))
		return hub.Broadcast(context.Background(), broadcast.Message[string]{Data: text})
	}
}

func (a *App) wsEndpoint(route *wsRoute) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &responseWriter{ResponseWriter: w}
		req := a.newRequest(ww, r, route.recv.RouteName(), "websocket")

		conn, err := a.upgrader.Upgrade(ww, req.Request, nil)
		if err != nil {
			// The upgrader has already answered the client.
			a.logger.DebugContext(req.Context(), "websocket upgrade failed",
				logger.Error(err),
				logger.Path(req.URL.Path),
			)
			return
		}
		sock := &Socket{conn: conn, req: req, indent: a.cfg.Indent}
		defer conn.Close()

		if err := a.dispatchWS(sock, route.connect, nil); err != nil {
			a.closeWS(sock, err)
			return
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					a.logger.DebugContext(req.Context(), "websocket read failed", logger.Error(err))
				}
				break
			}

			data := map[string]any{}
			if len(msg) > 0 {
				if err := json.Unmarshal(msg, &data); err != nil {
					a.closeWS(sock, fmt.Errorf("decode message: %w", err))
					return
				}
			}
			if err := a.dispatchWS(sock, route.recv, data); err != nil {
				a.closeWS(sock, err)
				return
			}
		}

		if err := a.dispatchWS(sock, route.disconnect, nil); err != nil {
			a.logger.ErrorContext(req.Context(), "websocket disconnect handler failed", logger.Error(err))
		}
	})
}

// closeWS logs err and closes the connection with an internal error frame.
func (a *App) closeWS(sock *Socket, err error) {
	a.logger.ErrorContext(sock.req.Context(), "websocket handler failed",
		logger.Error(err),
		logger.Path(sock.req.URL.Path),
		logger.Route(sock.req.route),
	)
	sock.mu.Lock()
	_ = sock.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal error"))
	sock.mu.Unlock()
}

// dispatchWS runs h for one lifecycle event and sends back its result.
func (a *App) dispatchWS(sock *Socket, h *Handler, data map[string]any) error {
	if h == nil {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}

	hdrs := map[string]any{}
	if raw, ok := data[headersKey].(map[string]any); ok {
		for k, v := range raw {
			hdrs[strings.ReplaceAll(strings.ToLower(k), "-", "_")] = v
		}
	}
	delete(data, headersKey)

	args, err := a.resolveWS(sock, h, data, hdrs)
	if err != nil {
		return err
	}
	out, err := a.invoke(sock.req.Context(), h, args)
	if err != nil {
		return err
	}
	return sock.Send(out)
}

// resolveWS fills the parameters of h from a message. Plain parameters are
// looked up in the message, then the headers, then their default.
func (a *App) resolveWS(sock *Socket, h *Handler, data, hdrs map[string]any) ([]reflect.Value, error) {
	req := sock.req
	args := make([]reflect.Value, h.argc)
	if h.async {
		args[0] = reflect.ValueOf(req.Context())
	}

	for _, p := range h.params {
		v, err := a.resolveWSParam(sock, p, data, hdrs)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.name, err)
		}
		args[p.index] = valueOrZero(v, p.typ.Go)
	}
	return args, nil
}

func (a *App) resolveWSParam(sock *Socket, p paramSpec, data, hdrs map[string]any) (reflect.Value, error) {
	req := sock.req
	switch p.special {
	case specialContext:
		return reflect.ValueOf(req.Context()), nil
	case specialRequest:
		return reflect.ValueOf(req), nil
	case specialHTTPRequest:
		return reflect.ValueOf(req.Request), nil
	case specialHTMX:
		return reflect.ValueOf(htmxFromMap(hdrs)), nil
	case specialApp:
		return reflect.ValueOf(a), nil
	case specialScope:
		return reflect.ValueOf(req.Scope()), nil
	case specialSocket:
		return reflect.ValueOf(sock), nil
	case specialSend:
		return reflect.ValueOf(SendFunc(sock.Send)), nil
	case specialError:
		return reflect.Value{}, nil
	}

	if p.typ.Effective().Kind == coerce.Record {
		if p.typ.Go.Kind() == reflect.Map {
			return coerce.Convert(data, p.typ.Go)
		}
		return binder.Record(p.typ.Go, binder.Values(data), nil)
	}

	name := strings.ToLower(p.name)
	if !p.annotated() {
		switch {
		case name == "ws":
			return reflect.ValueOf(sock), nil
		case name == "scope":
			return reflect.ValueOf(req.Scope()), nil
		case name == "data":
			return reflect.ValueOf(data), nil
		case name == "htmx":
			return reflect.ValueOf(htmxFromMap(hdrs)), nil
		case name == "app":
			return reflect.ValueOf(a), nil
		case name == "send":
			return reflect.ValueOf(SendFunc(sock.Send)), nil
		case name != "" && strings.HasPrefix("session", name):
			return reflect.ValueOf(req.Session()), nil
		}
	}

	raw, ok := data[p.name]
	if !ok || raw == nil {
		raw, ok = hdrs[p.name]
	}
	if !ok || raw == nil {
		if p.hasDef {
			return p.def, nil
		}
		return reflect.Value{}, nil
	}
	if items, isList := raw.([]any); isList && p.annotated() && p.typ.Effective().Kind != coerce.List {
		return coerceEach(p, items)
	}
	return coerce.Coerce(p.typ, raw)
}

// coerceEach coerces every element of a list sent for a single-valued
// parameter. Any bad element fails; the last element is bound.
func coerceEach(p paramSpec, items []any) (reflect.Value, error) {
	last := reflect.Zero(p.typ.Go)
	for i, item := range items {
		v, err := coerce.Coerce(p.typ, item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%s[%d]: %w", p.name, i, err)
		}
		last = v
	}
	return last, nil
}

// htmxFromMap reads the HTMX header bundle from normalized header names.
func htmxFromMap(hdrs map[string]any) response.HTMXHeaders {
	get := func(k string) string {
		if v, ok := hdrs[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	return response.HTMXHeaders{
		Boosted:               get("hx_boosted"),
		CurrentURL:            get("hx_current_url"),
		HistoryRestoreRequest: get("hx_history_restore_request"),
		Prompt:                get("hx_prompt"),
		Request:               get("hx_request"),
		Target:                get("hx_target"),
		TriggerName:           get("hx_trigger_name"),
		Trigger:               get("hx_trigger"),
	}
}
