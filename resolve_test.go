package hyperkit_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/response"
)

func formRequest(method, target string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestResolveSources(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.Route("/items/{name}", hyperkit.Fn(func(name string) string { return name }, "name"))
	app.Route("/lookup", hyperkit.Fn(func(name string) string { return name }, "name"))
	app.Get("/agent", hyperkit.Fn(func(ua string) string { return ua }, "user_agent"))

	t.Run("path_wins", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/items/path?name=query", url.Values{"name": {"body"}})
		r.AddCookie(&http.Cookie{Name: "name", Value: "cookie"})
		r.Header.Set("Name", "header")
		assert.Equal(t, "path", serve(app, r).Body.String())
	})

	t.Run("cookie_before_header", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/lookup?name=query", url.Values{"name": {"body"}})
		r.AddCookie(&http.Cookie{Name: "name", Value: "cookie"})
		r.Header.Set("Name", "header")
		assert.Equal(t, "cookie", serve(app, r).Body.String())
	})

	t.Run("header_before_query", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/lookup?name=query", url.Values{"name": {"body"}})
		r.Header.Set("Name", "header")
		assert.Equal(t, "header", serve(app, r).Body.String())
	})

	t.Run("query_before_body", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/lookup?name=query", url.Values{"name": {"body"}})
		assert.Equal(t, "query", serve(app, r).Body.String())
	})

	t.Run("body_last", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/lookup", url.Values{"name": {"body"}})
		assert.Equal(t, "body", serve(app, r).Body.String())
	})

	t.Run("json_body", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/lookup", strings.NewReader(`{"name":"json"}`))
		r.Header.Set("Content-Type", "application/json")
		assert.Equal(t, "json", serve(app, r).Body.String())
	})

	t.Run("header_name_is_hyphenated", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/agent", nil)
		r.Header.Set("User-Agent", "agent/1.0")
		assert.Equal(t, "agent/1.0", serve(app, r).Body.String())
	})

	t.Run("missing_required_field", func(t *testing.T) {
		t.Parallel()
		w := serve(app, httptest.NewRequest(http.MethodGet, "/lookup", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Missing required field: name")
	})

	t.Run("empty_query_list_is_absent", func(t *testing.T) {
		t.Parallel()
		w := serve(app, httptest.NewRequest(http.MethodGet, "/lookup?other=1", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResolveCoercion(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.Get("/ints", hyperkit.Fn(func(n []int) string { return fmt.Sprint(n) }, "n"))
	app.Get("/age", hyperkit.Fn(func(age int) string { return fmt.Sprint(age + 1) }, "age"))
	app.Get("/flag", hyperkit.Fn(func(on bool) string { return fmt.Sprint(on) }, "on"))
	app.Get("/opt", hyperkit.Fn(func(page *int) string {
		if page == nil {
			return "nil"
		}
		return fmt.Sprint(*page)
	}, hyperkit.P("page").Default(7)))
	app.Get("/when", hyperkit.Fn(func(d time.Time) string { return d.Format(time.DateOnly) }, "d"))
	app.Get("/id", hyperkit.Fn(func(id uuid.UUID) string { return id.String() }, "id"))
	app.Get("/defaults", hyperkit.Fn(func(q string, limit int) string {
		return fmt.Sprintf("%s/%d", q, limit)
	}, hyperkit.P("q").Default("all"), hyperkit.P("limit").Default(10)))

	cases := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"list_elementwise", "/ints?n=1&n=2&n=3", http.StatusOK, "[1 2 3]"},
		{"scalar_into_list", "/ints?n=5", http.StatusOK, "[5]"},
		{"int", "/age?age=41", http.StatusOK, "42"},
		{"last_value_wins", "/age?age=1&age=9", http.StatusOK, "10"},
		{"bool_words", "/flag?on=yes", http.StatusOK, "true"},
		{"bool_false", "/flag?on=0", http.StatusOK, "false"},
		{"optional_default", "/opt", http.StatusOK, "7"},
		{"optional_value", "/opt?page=3", http.StatusOK, "3"},
		{"date", "/when?d=2024-03-05", http.StatusOK, "2024-03-05"},
		{"date_loose", "/when?d=March%205,%202024", http.StatusOK, "2024-03-05"},
		{"uuid", "/id?id=6ba7b810-9dad-11d1-80b4-00c04fd430c8", http.StatusOK, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"defaults", "/defaults", http.StatusOK, "all/10"},
		{"default_overridden", "/defaults?limit=3", http.StatusOK, "all/3"},
		{"bad_int_is_not_found", "/age?age=abc", http.StatusNotFound, "404 Not Found"},
		{"bad_uuid_is_not_found", "/id?id=nope", http.StatusNotFound, "404 Not Found"},
		{"bad_list_item", "/ints?n=1&n=x", http.StatusNotFound, "404 Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := serve(app, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.body, w.Body.String())
		})
	}
}

type signup struct {
	Email string   `form:"email" validate:"required,email"`
	Age   int      `form:"age"`
	Tags  []string `form:"tags"`
	Ref   string   `json:"ref"`
}

func TestResolveRecords(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.Post("/signup", hyperkit.Fn(func(s signup) string {
		return fmt.Sprintf("%s|%d|%v|%s", s.Email, s.Age, s.Tags, s.Ref)
	}))
	app.Post("/ptr", hyperkit.Fn(func(s *signup) string { return s.Email }))
	app.Post("/map", hyperkit.Fn(func(m map[string]any) string { return fmt.Sprint(len(m)) }, "data"))
	app.Post("/ints", hyperkit.Fn(func(m map[string]int) string { return fmt.Sprint(m["a"] + m["b"]) }, "data"))

	t.Run("form_struct", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/signup?ref=ad", url.Values{
			"email": {"a@b.co"}, "age": {"30"}, "tags": {"x", "y"}, "unknown": {"1"},
		})
		assert.Equal(t, "a@b.co|30|[x y]|ad", serve(app, r).Body.String())
	})

	t.Run("query_overrides_body", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/signup?age=5", url.Values{"email": {"a@b.co"}, "age": {"30"}})
		assert.Equal(t, "a@b.co|5|[]|", serve(app, r).Body.String())
	})

	t.Run("json_struct_pointer", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/ptr", strings.NewReader(`{"email":"j@s.on"}`))
		r.Header.Set("Content-Type", "application/json")
		assert.Equal(t, "j@s.on", serve(app, r).Body.String())
	})

	t.Run("validation_failure", func(t *testing.T) {
		t.Parallel()
		w := serve(app, formRequest(http.MethodPost, "/signup", url.Values{"email": {"nope"}}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Validation failed")
	})

	t.Run("record_coercion_failure", func(t *testing.T) {
		t.Parallel()
		w := serve(app, formRequest(http.MethodPost, "/signup", url.Values{"email": {"a@b.co"}, "age": {"old"}}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("typed_map", func(t *testing.T) {
		t.Parallel()
		r := formRequest(http.MethodPost, "/ints", url.Values{"a": {"2"}, "b": {"3"}})
		assert.Equal(t, "5", serve(app, r).Body.String())
	})

	t.Run("tiny_multipart_is_empty", func(t *testing.T) {
		t.Parallel()
		boundary := "xyz"
		r := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader(strings.Repeat("-", len(boundary)+6)))
		r.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
		w := serve(app, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Body.String())
	})

	t.Run("multipart_without_boundary", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader("irrelevant"))
		r.Header.Set("Content-Type", "multipart/form-data")
		w := serve(app, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid form-data: no boundary")
	})
}

func TestResolveUploads(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	app.Post("/upload", hyperkit.Fn(func(file *multipart.FileHeader, title string) string {
		return fmt.Sprintf("%s:%s:%d", title, file.Filename, file.Size)
	}, "file", "title"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "report"))
	fw, err := mw.CreateFormFile("file", "../../etc/data.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	assert.Equal(t, "report:data.txt:5", serve(app, r).Body.String())
}

func TestResolveSpecials(t *testing.T) {
	t.Parallel()

	app := newApp(t, hyperkit.WithHdrs("<!-- head -->"))
	app.Get("/typed", hyperkit.Fn(func(ctx context.Context, r *http.Request, hx response.HTMXHeaders, a *hyperkit.App, s hyperkit.Scope) string {
		return fmt.Sprintf("%v|%s|%s|%v|%s|%s", ctx != nil, r.URL.Path, hx.Target, a != nil, s.Type, s.Route)
	}, "", "", "", ""))
	app.Get("/names", hyperkit.Fn(func(req, htmx, app, scope, hdrs any) string {
		_, isReq := req.(*hyperkit.Request)
		hx, _ := htmx.(response.HTMXHeaders)
		_, isApp := app.(*hyperkit.App)
		sc, _ := scope.(hyperkit.Scope)
		h, _ := hdrs.([]any)
		return fmt.Sprintf("%v|%s|%v|%s|%d", isReq, hx.Request, isApp, sc.Method, len(h))
	}, "req", "htmx", "app", "scope", "hdrs"))
	app.Post("/body", hyperkit.Fn(func(body any) string { return body.(string) }, "body"))
	app.Get("/unknown", hyperkit.Fn(func(mystery, resp any) string {
		return fmt.Sprintf("%v|%v", mystery == nil, resp == nil)
	}, "mystery", "resp"))
	app.Get("/raw", hyperkit.Fn(func(tag any) string { return fmt.Sprint(tag) }, hyperkit.P("tag").Default("none")))

	t.Run("typed", func(t *testing.T) {
		t.Parallel()
		r := htmxRequest(http.MethodGet, "/typed")
		r.Header.Set(response.HeaderHXTarget, "#main")
		assert.Equal(t, "true|/typed|#main|true|http|typed", serve(app, r).Body.String())
	})

	t.Run("names", func(t *testing.T) {
		t.Parallel()
		w := serve(app, htmxRequest(http.MethodGet, "/names"))
		assert.Equal(t, "true|true|true|GET|1", w.Body.String())
	})

	t.Run("raw_body", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodPost, "/body", strings.NewReader("plain text"))
		r.Header.Set("Content-Type", "text/plain")
		assert.Equal(t, "plain text", serve(app, r).Body.String())
	})

	t.Run("unrecognized_names_resolve_to_nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "true|true", serve(app, httptest.NewRequest(http.MethodGet, "/unknown", nil)).Body.String())
	})

	t.Run("untyped_value_is_not_coerced", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "none", serve(app, httptest.NewRequest(http.MethodGet, "/raw", nil)).Body.String())
		assert.Equal(t, "[a b]", serve(app, httptest.NewRequest(http.MethodGet, "/raw?tag=a&tag=b", nil)).Body.String())
	})
}

func TestResolveBodyLimit(t *testing.T) {
	t.Parallel()

	cfg := hyperkit.DefaultConfig()
	cfg.MaxBodySize = 8
	app := newApp(t, hyperkit.WithConfig(cfg), hyperkit.WithSecretKey("k"), hyperkit.WithDefaultHdrs(false))
	app.Post("/", hyperkit.Fn(func(name string) string { return name }, "name"))

	w := serve(app, formRequest(http.MethodPost, "/", url.Values{"name": {"a very long value"}}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
