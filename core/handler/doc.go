// Package handler defines the response abstractions shared by the framework and
// its response constructors.
//
// A Response is a plain function that writes headers, status and body:
//
//	var hello handler.Response = func(w http.ResponseWriter, r *http.Request) error {
//		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
//		_, err := w.Write([]byte("hello"))
//		return err
//	}
//
// Anything implementing Renderer (including Response itself) is treated as an
// already concrete response. Responder lets a value pick its own response from the
// request, and NotFounder lets file responses fail with 404 before rendering.
package handler
