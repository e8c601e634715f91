package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit/middleware"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	capture := func(got *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*got, _ = middleware.GetRequestID(r.Context())
		})
	}

	t.Run("generates_uuid", func(t *testing.T) {
		t.Parallel()
		var id string
		w := httptest.NewRecorder()
		middleware.RequestID()(capture(&id)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps_existing", func(t *testing.T) {
		t.Parallel()
		var id string
		mw := middleware.RequestIDWithConfig(middleware.RequestIDConfig{UseExisting: true, HeaderName: "X-Trace"})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Trace", "abc")
		w := httptest.NewRecorder()
		mw(capture(&id)).ServeHTTP(w, r)

		assert.Equal(t, "abc", id)
		assert.Equal(t, "abc", w.Header().Get("X-Trace"))
	})

	t.Run("ignores_existing_by_default", func(t *testing.T) {
		t.Parallel()
		var id string
		mw := middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: func() string { return "gen" }})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "client")
		mw(capture(&id)).ServeHTTP(httptest.NewRecorder(), r)

		assert.Equal(t, "gen", id)
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		var id string
		mw := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Skip: func(r *http.Request) bool { return r.URL.Path == "/health" },
		})
		w := httptest.NewRecorder()
		mw(capture(&id)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Empty(t, id)
		assert.Empty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestLogging(t *testing.T) {
	t.Parallel()

	newLogger := func() (*slog.Logger, *bytes.Buffer) {
		var buf bytes.Buffer
		return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
	}

	t.Run("records_status_and_size", func(t *testing.T) {
		t.Parallel()
		log, buf := newLogger()
		h := middleware.RequestID()(middleware.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("hello"))
		})))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items?x=1", nil))

		out := buf.String()
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, "status_code=201")
		assert.Contains(t, out, "bytes_out=5")
		assert.Contains(t, out, "path=/items")
		assert.Contains(t, out, `query="x=1"`)
		assert.Contains(t, out, "request_id="+w.Header().Get("X-Request-ID"))
	})

	t.Run("levels_by_status", func(t *testing.T) {
		t.Parallel()
		for status, level := range map[int]string{404: "level=WARN", 503: "level=ERROR"} {
			log, buf := newLogger()
			h := middleware.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Contains(t, buf.String(), level)
		}
	})

	t.Run("redacts_sensitive_headers", func(t *testing.T) {
		t.Parallel()
		log, buf := newLogger()
		h := middleware.LoggingWithConfig(middleware.LoggingConfig{Logger: log, LogHeaders: true})(http.NotFoundHandler())
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer secret")
		r.Header.Set("Accept", "text/html")
		h.ServeHTTP(httptest.NewRecorder(), r)

		assert.NotContains(t, buf.String(), "secret")
		assert.Contains(t, buf.String(), "request_headers.Authorization=[REDACTED]")
		assert.Contains(t, buf.String(), "request_headers.Accept=text/html")
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		log, buf := newLogger()
		h := middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: log,
			Skip:   func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/metrics") },
		})(http.NotFoundHandler())
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Empty(t, buf.String())
	})

	t.Run("hijack_unsupported_by_recorder", func(t *testing.T) {
		t.Parallel()
		log, _ := newLogger()
		var hijackErr error
		h := middleware.Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			_, _, hijackErr = hj.Hijack()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, hijackErr, http.ErrNotSupported)
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("balanced", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		middleware.SecurityHeaders()(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "https://unpkg.com")
		assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Cross-Origin-Embedder-Policy"))
	})

	t.Run("development_drops_hsts", func(t *testing.T) {
		t.Parallel()
		cfg := middleware.StrictSecurity
		cfg.IsDevelopment = true
		cfg.CustomHeaders = map[string]string{"X-App": "demo"}
		w := httptest.NewRecorder()
		middleware.SecurityHeadersWithConfig(cfg)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "demo", w.Header().Get("X-App"))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		cfg := middleware.DevelopmentSecurity
		cfg.Skip = func(*http.Request) bool { return true }
		w := httptest.NewRecorder()
		middleware.SecurityHeadersWithConfig(cfg)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, w.Header())
	})
}
