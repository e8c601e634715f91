package response

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketOption configures the upgrader used by WebSocket routes.
type WebSocketOption func(*websocket.Upgrader)

// NewUpgrader builds a websocket.Upgrader with 1KB buffers and the given options.
func NewUpgrader(opts ...WebSocketOption) *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func WithWSReadBuffer(size int) WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.ReadBufferSize = size
	}
}

func WithWSWriteBuffer(size int) WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.WriteBufferSize = size
	}
}

func WithWSHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.HandshakeTimeout = timeout
	}
}

func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.CheckOrigin = fn
	}
}

func WithWSAllowAnyOrigin() WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

func WithWSSubprotocols(protocols ...string) WebSocketOption {
	return func(u *websocket.Upgrader) {
		u.Subprotocols = protocols
	}
}
