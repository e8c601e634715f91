// Package hyperkit is a hypermedia web toolkit: plain Go functions become
// routes, their arguments are filled from the request, and whatever they
// return becomes a response.
//
// # Handlers
//
// Fn analyzes a function once and pairs its arguments with parameter names:
//
//	app := hyperkit.MustNew(hyperkit.WithSecretKey(os.Getenv("SECRET")))
//
//	app.Get("/users/{id}", hyperkit.Fn(func(id int, tab *string) any {
//		return markup.Div(markup.Attr("id", "user"), fmt.Sprint(id))
//	}, "id", hyperkit.P("tab").Default("posts")))
//
// Each named argument is looked up in path variables, cookies, headers (the
// name converted to Hyphenated-Title-Case), the query string and finally the
// decoded body, and coerced to the argument type. A missing value without a
// default answers 400; a value that does not parse answers 404.
//
// Arguments of framework types need no name: *Request, *http.Request, *App,
// response.HTMXHeaders, Scope, context.Context and error. Struct and
// map[string]T arguments are built from the whole body merged with the query.
// Untyped (any) arguments match special names such as "session", "htmx" or
// "hdrs".
//
// A function whose first argument is context.Context runs on the request
// goroutine. All others run through a bounded worker pool.
//
// # Responses
//
// Results are normalized: concrete responses (handler.Renderer) pass through;
// markup is rendered as a full page, or as a fragment for HTMX requests;
// strings are HTML; maps are JSON. response.HTTPHeader and response.Task
// values returned alongside the content become headers and background tasks.
//
// Client-action attributes on nodes (get, post, put, delete, patch, link) are
// rewritten to hx-* attributes or href, resolving route names through the
// router:
//
//	markup.Button(markup.Attr("get", hyperkit.URI("show", map[string]any{"id": 3})), "Open")
//
// # Interceptors
//
// WithBefore runs handlers ahead of every route. A non-empty result ends the
// chain and replaces the route's response. WithAfter handlers always run and
// receive the response so far in their first parameter.
//
// # WebSockets
//
// WS registers a route whose handler runs for each JSON message received. The
// HEADERS field of a message stands in for request headers. SetupWS adds a
// "/ws" route and returns a function broadcasting to every client.
package hyperkit
