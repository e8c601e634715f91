package response_test

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
)

func TestEnvelopeRender(t *testing.T) {
	t.Parallel()

	t.Run("writes_status_headers_and_body", func(t *testing.T) {
		t.Parallel()
		env := response.HTMLWithStatus("<p>x</p>", http.StatusCreated).
			WithHeaders(response.Header("X-Test", "1"), response.Header("Set-Cookie", "a=1"), response.Header("Set-Cookie", "b=2"))

		w := httptest.NewRecorder()
		require.NoError(t, env.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "<p>x</p>", w.Body.String())
		assert.Equal(t, response.ContentTypeHTML, w.Header().Get("Content-Type"))
		assert.Equal(t, "1", w.Header().Get("X-Test"))
		assert.Equal(t, []string{"a=1", "b=2"}, w.Header().Values("Set-Cookie"))
	})

	t.Run("no_content_has_no_body", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.NoContent().Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("later_header_replaces_earlier", func(t *testing.T) {
		t.Parallel()
		env := response.String("x").WithHeaders(response.Header("Vary", "a"), response.Header("Vary", "b"))
		assert.Equal(t, []string{"b"}, env.Header.Values("Vary"))
	})
}

func TestSnakeToHyphens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Current-Url", response.SnakeToHyphens("current_url"))
	assert.Equal(t, "Accept", response.SnakeToHyphens("accept"))
	assert.Equal(t, "X-Request-Id", response.SnakeToHyphens("x_request_id"))
}

func TestHXHeaders(t *testing.T) {
	t.Parallel()

	t.Run("field_naming", func(t *testing.T) {
		t.Parallel()
		h := response.HXHeader("trigger_after_settle", "done")
		assert.Equal(t, "HX-Trigger-After-Settle", h.Key)
		assert.Equal(t, "done", h.Value)
	})

	t.Run("options", func(t *testing.T) {
		t.Parallel()
		env := response.String("").WithHeaders(response.HX(
			response.PushURL("/next"),
			response.Reswap("outerHTML", "swap:1s"),
			response.TriggerEvent("saved", map[string]any{"id": 1}),
			response.Refresh(),
		)...)

		assert.Equal(t, "/next", env.Header.Get(response.HeaderHXPushURL))
		assert.Equal(t, "outerHTML swap:1s", env.Header.Get(response.HeaderHXReswap))
		assert.Equal(t, `{"saved":{"id":1}}`, env.Header.Get(response.HeaderHXTrigger))
		assert.Equal(t, "true", env.Header.Get(response.HeaderHXRefresh))
	})

	t.Run("with_htmx_wraps_renderer", func(t *testing.T) {
		t.Parallel()
		resp := response.WithHTMX(response.HTML("<div></div>"), response.Retarget("#main"))
		w := httptest.NewRecorder()
		require.NoError(t, resp(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, "#main", w.Header().Get(response.HeaderHXRetarget))
		assert.Equal(t, "<div></div>", w.Body.String())
	})
}

func TestHTMXRequestHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, response.IsHTMXRequest(req))

	req.Header.Set(response.HeaderHXRequest, "")
	req.Header.Set(response.HeaderHXTarget, "list")
	req.Header.Set(response.HeaderHXCurrentURL, "http://x/y")
	assert.True(t, response.IsHTMXRequest(req), "presence is enough")
	assert.False(t, response.IsHistoryRestore(req))

	h := response.GetHTMXHeaders(req)
	assert.Equal(t, "list", h.Target)
	assert.Equal(t, "http://x/y", h.CurrentURL)
	assert.Empty(t, h.Prompt)
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("htmx_request_gets_header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(response.HeaderHXRequest, "true")

		out := response.Redirect("/done").Respond(req)
		h, ok := out.(response.HTTPHeader)
		require.True(t, ok)
		assert.Equal(t, "HX-Redirect", h.Key)
		assert.Equal(t, "/done", h.Value)
	})

	t.Run("plain_request_gets_303", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", nil)

		out := response.Redirect("/done").Respond(req)
		r, ok := out.(handler.Renderer)
		require.True(t, ok)

		w := httptest.NewRecorder()
		require.NoError(t, r.Render(w, req))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/done", w.Header().Get("Location"))
	})
}

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	f := response.File(path)
	assert.True(t, f.Exists())
	assert.Equal(t, path, f.Path())

	w := httptest.NewRecorder()
	require.NoError(t, f.Render(w, httptest.NewRequest(http.MethodGet, "/hello.txt", nil)))
	assert.Equal(t, "hello", w.Body.String())

	missing := response.File(filepath.Join(dir, "nope.txt"))
	assert.False(t, missing.Exists())
	assert.False(t, response.File(dir).Exists(), "directories are not files")

	dl := response.Download(path, "")
	w = httptest.NewRecorder()
	require.NoError(t, dl.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, `attachment; filename="hello.txt"`, w.Header().Get("Content-Disposition"))
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("compact_without_html_escaping", func(t *testing.T) {
		t.Parallel()
		data, err := response.EncodeJSON(map[string]any{"a": "<b>", "n": 1})
		require.NoError(t, err)
		assert.Equal(t, `{"a":"<b>","n":1}`, string(data))
	})

	t.Run("nan_rejected", func(t *testing.T) {
		t.Parallel()
		_, err := response.EncodeJSON(map[string]any{"x": math.NaN()})
		assert.ErrorIs(t, err, response.ErrUnsupportedNumber)

		_, err = response.EncodeJSON(map[string]float64{"x": math.Inf(1)})
		assert.ErrorIs(t, err, response.ErrUnsupportedNumber)
	})

	t.Run("unsupported_leaves_stringified", func(t *testing.T) {
		t.Parallel()
		data, err := response.EncodeJSON(map[string]any{"c": complex(1, 2)})
		require.NoError(t, err)
		assert.Equal(t, `{"c":"(1+2i)"}`, string(data))
	})
}

func TestClass(t *testing.T) {
	t.Parallel()

	env, err := response.JSONClass.Build(map[string]any{"ok": true}, http.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, env.Status)
	assert.Equal(t, response.ContentTypeJSON, env.ContentType)
	assert.JSONEq(t, `{"ok":true}`, string(env.Body))

	env, err = response.TextClass.Build(markup.P("x"), 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "<p>x</p>", string(env.Body))

	assert.True(t, response.Class{}.IsZero())
	assert.False(t, response.HTMLClass.IsZero())
}

type teapotErr struct{}

func (teapotErr) Error() string   { return "short and stout" }
func (teapotErr) StatusCode() int { return http.StatusTeapot }

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	t.Run("http_error_kept", func(t *testing.T) {
		t.Parallel()
		err := response.NewHTTPError(http.StatusBadRequest, "Missing required field: age")
		got := response.AsHTTPError(err)
		assert.Equal(t, http.StatusBadRequest, got.Status)
		assert.Equal(t, "bad_request", got.Code)
		assert.Equal(t, "Missing required field: age", got.Message)
	})

	t.Run("status_code_interface", func(t *testing.T) {
		t.Parallel()
		got := response.AsHTTPError(teapotErr{})
		assert.Equal(t, http.StatusTeapot, got.Status)
		assert.ErrorIs(t, got, teapotErr{})
	})

	t.Run("plain_error_is_500", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		got := response.AsHTTPError(cause)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, "boom", got.Details["cause"])
		assert.Nil(t, response.ErrInternalServerError.Details, "predefined errors stay untouched")
	})

	t.Run("error_handler_writes_plain_text", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		response.ErrorHandler(w, httptest.NewRequest(http.MethodGet, "/", nil), response.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not Found\n", w.Body.String())
	})
}

func TestEventStream(t *testing.T) {
	t.Parallel()

	events := make(chan any, 2)
	events <- markup.Div("one\ntwo")
	events <- map[string]any{"n": 1}
	close(events)

	w := httptest.NewRecorder()
	resp := response.EventStream(events, response.WithEventName("update"), response.WithoutKeepAlive())
	require.NoError(t, resp(w, httptest.NewRequest(http.MethodGet, "/events", nil)))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: update\ndata: <div>one\ndata: two</div>\n\n")
	assert.Contains(t, body, "data: {\"n\":1}\n\n")

	events = make(chan any, 1)
	events <- "ping"
	close(events)

	w = httptest.NewRecorder()
	resp = response.EventStream(events,
		response.WithRetry(2*time.Second),
		response.WithEventID(func(any) string { return "7" }),
		response.WithoutKeepAlive(),
	)
	require.NoError(t, resp(w, httptest.NewRequest(http.MethodGet, "/events", nil)))
	assert.Equal(t, "retry: 2000\n\nid: 7\ndata: ping\n\n", w.Body.String())
}

func TestSSEMessage(t *testing.T) {
	t.Parallel()

	msg, err := response.SSEMessage(markup.P("hi"), "")
	require.NoError(t, err)
	assert.Equal(t, "event: message\ndata: <p>hi</p>\n\n", msg)
}

func TestWithCache(t *testing.T) {
	t.Parallel()

	assert.Nil(t, response.WithCache(nil, time.Minute))

	t.Run("max_age", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.WithCache(response.String("x"), 90*time.Second).
			Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, "public, max-age=90", w.Header().Get("Cache-Control"))
		expires, err := http.ParseTime(w.Header().Get("Expires"))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(90*time.Second), expires, 5*time.Second)
		assert.Equal(t, "x", w.Body.String())
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		require.NoError(t, response.WithCache(response.String("x"), 0).
			Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.Empty(t, w.Header().Get("Expires"))
	})
}
