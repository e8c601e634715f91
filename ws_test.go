package hyperkit_test

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
)

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestWebSocket(t *testing.T) {
	t.Parallel()

	disconnected := make(chan string, 1)

	app := newApp(t)
	app.WS("/chat", hyperkit.Fn(func(msg, target string, hx response.HTMXHeaders) string {
		return fmt.Sprintf("%s:%s:%s", msg, target, hx.Target)
	}, "msg", "hx_target", ""))
	app.WS("/markup", hyperkit.Fn(func(msg string) any {
		return markup.Div(markup.Attr("id", "out"), msg)
	}, "msg"))
	app.WS("/lifecycle",
		hyperkit.Fn(func(n int) string { return fmt.Sprint(n * 2) }, "n"),
		hyperkit.WithConnect(hyperkit.Fn(func(s hyperkit.Scope) string { return "welcome " + s.Type }, "")),
		hyperkit.WithDisconnect(hyperkit.Fn(func(s hyperkit.Scope) { disconnected <- s.Path }, "")),
	)
	app.WS("/send", hyperkit.Fn(func(send hyperkit.SendFunc, msg string) (string, error) {
		if err := send("first " + msg); err != nil {
			return "", err
		}
		return "second " + msg, nil
	}, "", "msg"))
	app.WS("/data", hyperkit.Fn(func(data any, missing string) string {
		return fmt.Sprintf("%d|%q", len(data.(map[string]any)), missing)
	}, "data", hyperkit.P("missing").Default("")))
	app.WS("/fail", hyperkit.Fn(func() error { return errors.New("boom") }))
	app.WS("/list", hyperkit.Fn(func(n int, ns []int) string {
		return fmt.Sprintf("%d|%v", n, ns)
	}, hyperkit.P("n").Default(0), hyperkit.P("ns").Default([]int{})))

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	t.Run("message_and_headers", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/chat")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"hi","HEADERS":{"HX-Target":"x"}}`)))
		assert.Equal(t, "hi:x:x", readText(t, conn))
	})

	t.Run("markup_is_rendered", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/markup")
		require.NoError(t, conn.WriteJSON(map[string]any{"msg": "hello"}))
		assert.Equal(t, `<div id="out">hello</div>`, readText(t, conn))
	})

	t.Run("lifecycle", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/lifecycle")
		assert.Equal(t, "welcome websocket", readText(t, conn))

		require.NoError(t, conn.WriteJSON(map[string]any{"n": 21}))
		assert.Equal(t, "42", readText(t, conn))
		require.NoError(t, conn.WriteJSON(map[string]any{"n": "4"}))
		assert.Equal(t, "8", readText(t, conn))

		require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
		select {
		case path := <-disconnected:
			assert.Equal(t, "/lifecycle", path)
		case <-time.After(5 * time.Second):
			t.Fatal("disconnect handler did not run")
		}
	})

	t.Run("send_param", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/send")
		require.NoError(t, conn.WriteJSON(map[string]any{"msg": "x"}))
		assert.Equal(t, "first x", readText(t, conn))
		assert.Equal(t, "second x", readText(t, conn))
	})

	t.Run("data_excludes_headers", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/data")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"a":1,"HEADERS":{"X-Y":"z"}}`)))
		assert.Equal(t, `1|""`, readText(t, conn))
	})

	t.Run("list_values", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/list")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"n":["1","2"],"ns":["3",4]}`)))
		assert.Equal(t, "2|[3 4]", readText(t, conn))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"n":[]}`)))
		assert.Equal(t, "0|[]", readText(t, conn))
	})

	t.Run("bad_list_element_closes", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/list")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"n":["x","2"]}`)))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	})

	t.Run("handler_error_closes", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/fail")
		require.NoError(t, conn.WriteJSON(map[string]any{}))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	})

	t.Run("invalid_json_closes", func(t *testing.T) {
		t.Parallel()
		conn := dialWS(t, srv, "/chat")
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	})
}

func TestSetupWS(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	send := app.SetupWS(hyperkit.Fn(func(ping string) string { return "pong" }, "ping"))

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	clients := []*websocket.Conn{dialWS(t, srv, "/ws"), dialWS(t, srv, "/ws")}
	for _, c := range clients {
		// A reply means the connect handler, which subscribes, has finished.
		require.NoError(t, c.WriteJSON(map[string]any{"ping": 1}))
		require.Equal(t, "pong", readText(t, c))
	}

	require.NoError(t, send(markup.P("news")))
	for _, c := range clients {
		assert.Equal(t, "<p>news</p>", readText(t, c))
	}

	assert.NoError(t, send(nil))
	assert.NoError(t, app.Shutdown(t.Context()))
}
