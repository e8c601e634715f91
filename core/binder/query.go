package binder

import "net/http"

// Query returns the request's query string as Values, collapsing repeated keys with Item.
func Query(r *http.Request) Values {
	return FromURLValues(r.URL.Query())
}
