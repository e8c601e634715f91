package simple

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/hyperkit"
	"github.com/dmitrymomot/hyperkit/core/handler"
	"github.com/dmitrymomot/hyperkit/core/health"
	"github.com/dmitrymomot/hyperkit/core/markup"
	"github.com/dmitrymomot/hyperkit/core/response"
	"github.com/dmitrymomot/hyperkit/core/session"
)

const wsExtensionSrc = "https://unpkg.com/htmx-ext-ws@2.0.3/ws.js"

type todoForm struct {
	Title string `form:"title" json:"title" validate:"required,max=200"`
}

func (app *App) routes() {
	web := app.web

	web.Get("/", hyperkit.Fn(app.index, "session").Name("index"))
	web.Post("/increment", hyperkit.Fn(app.increment, "session").Name("increment"))
	web.Post("/todos", hyperkit.Fn(app.addTodo, "").Name("add_todo"))
	web.Put("/todos/{id}", hyperkit.Fn(app.toggleTodo, "id").Name("toggle_todo"))
	web.Delete("/todos/{id}", hyperkit.Fn(app.deleteTodo, "id").Name("delete_todo"))

	web.Get("/health/live", hyperkit.Fn(health.Liveness).Name("health_live"))
	web.Get("/health/ready", hyperkit.Fn(health.Readiness(app.logger)).Name("health_ready"))
	web.Get("/metrics", hyperkit.Fn(app.metrics).Name("metrics"))

	app.notify = web.SetupWS(hyperkit.Fn(echo, "msg"))
}

func (app *App) index(sess session.Values) []any {
	items := make([]any, 0)
	for _, t := range app.todos.list() {
		items = append(items, todoItem(t))
	}

	return []any{
		markup.Title(app.config.AppName),
		markup.Main(
			markup.El("h1", app.config.AppName),
			markup.P(
				"Clicks: ", counter(intValue(sess["count"])), " ",
				markup.Button(
					markup.Attr("post", "increment"),
					markup.Attr("hx_target", "#count"),
					markup.Attr("hx_swap", "outerHTML"),
					"+1",
				),
			),
			markup.Form(
				markup.Attr("post", "add_todo"),
				markup.Attr("hx_target", "#todos"),
				markup.Attr("hx_swap", "beforeend"),
				markup.Input(markup.Attr("name", "title"), markup.Attr("required", true)),
				markup.Button("Add"),
			),
			markup.Ul(markup.Attr("id", "todos"), items),
			markup.Div(
				markup.Attr("hx_ext", "ws"),
				markup.Attr("ws_connect", "/ws"),
				markup.Div(markup.Attr("id", "notifications")),
			),
		),
	}
}

func (app *App) increment(sess session.Values) *markup.Node {
	n := intValue(sess["count"]) + 1
	sess["count"] = n
	return counter(n)
}

func (app *App) addTodo(ctx context.Context, form todoForm) []any {
	t := app.todos.add(form.Title)
	return []any{
		todoItem(t),
		response.HX(response.TriggerEvent("todo-added", map[string]any{"id": t.ID})),
		response.Background("announce_todo", func(ctx context.Context) error {
			app.logger.InfoContext(ctx, "todo added", slog.Int("id", t.ID))
			return app.notify(notification("Added: " + t.Title))
		}),
	}
}

func (app *App) toggleTodo(id int) (*markup.Node, error) {
	t, ok := app.todos.toggle(id)
	if !ok {
		return nil, response.ErrNotFound
	}
	return todoItem(t), nil
}

func (app *App) deleteTodo(id int) (string, error) {
	if !app.todos.remove(id) {
		return "", response.ErrNotFound
	}
	return "", nil
}

func (app *App) metrics() handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		app.web.MetricsHandler().ServeHTTP(w, r)
		return nil
	}
}

// echo answers messages sent over the notification socket.
func echo(msg string) any {
	if msg == "" {
		return nil
	}
	return notification("You said: " + msg)
}

func notFoundPage(r *http.Request, err error) []any {
	return []any{
		markup.Title("Not found"),
		markup.Main(markup.P("Nothing lives at " + r.URL.Path)),
	}
}

func counter(n int) *markup.Node {
	return markup.Span(markup.Attr("id", "count"), strconv.Itoa(n))
}

func notification(text string) *markup.Node {
	return markup.Div(
		markup.Attr("id", "notifications"),
		markup.Attr("hx_swap_oob", "true"),
		text,
	)
}

func todoItem(t Todo) *markup.Node {
	id := fmt.Sprintf("todo-%d", t.ID)
	label := "Done"
	var cls any
	if t.Done {
		label = "Undo"
		cls = "done"
	}
	ref := map[string]any{"id": t.ID}
	return markup.Li(
		markup.Attr("id", id),
		markup.Attr("cls", cls),
		markup.Span(t.Title),
		markup.Button(
			markup.Attr("put", hyperkit.URI("toggle_todo", ref)),
			markup.Attr("hx_target", "#"+id),
			markup.Attr("hx_swap", "outerHTML"),
			label,
		),
		markup.Button(
			markup.Attr("delete", hyperkit.URI("delete_todo", ref)),
			markup.Attr("hx_target", "#"+id),
			markup.Attr("hx_swap", "outerHTML"),
			"Delete",
		),
	)
}

// intValue reads a session counter. Values that went through the cookie come
// back as float64.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
