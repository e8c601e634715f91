// Package response provides the concrete responses a handler can return: HTML,
// text and JSON envelopes, request-aware redirects, files, Server-Sent Events,
// HTMX response headers, background tasks and structured HTTP errors.
//
// # Envelopes
//
// An Envelope is a materialized response with status, content type, body,
// headers and background tasks:
//
//	env := response.HTML("<p>saved</p>").
//		WithHeaders(response.HX(response.TriggerEvent("saved", nil))...).
//		WithTasks(response.Background("audit", writeAuditLog))
//
// Envelope, handler.Response and the other types in this package implement
// handler.Renderer and pass through normalization unchanged.
//
// # Headers returned with content
//
// HTTPHeader values can be returned next to markup. They are applied to the
// final response; Set-Cookie values accumulate, other keys replace:
//
//	return []any{response.Header("X-Test", "1"), markup.P("hi")}
//
// HX builds HTMX response headers from options, HXHeader builds a single one
// from its snake_case field name:
//
//	response.HXHeader("trigger_after_settle", `{"done":true}`) // HX-Trigger-After-Settle
//
// # Redirects
//
// Redirect returns a handler.Responder. For HTMX requests it becomes an
// HX-Redirect header; otherwise a 303 See Other:
//
//	return response.Redirect("/login")
//
// # Classes
//
// HTMLClass, TextClass and JSONClass force a serialization for a route and
// skip page negotiation.
//
// # Errors
//
// HTTPError carries a status, a machine-readable code and a message. AsHTTPError
// maps any error to one, honoring a StatusCode() method when present.
package response
