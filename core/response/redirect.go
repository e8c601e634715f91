package response

import (
	"net/http"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// Redirector is a redirect that picks its form from the request: HTMX requests
// get an HX-Redirect header, everything else a 303 See Other.
type Redirector struct {
	Location string
}

var _ handler.Responder = Redirector{}

// Redirect returns a request-aware redirect to loc.
func Redirect(loc string) Redirector {
	return Redirector{Location: loc}
}

// Respond implements handler.Responder.
func (rd Redirector) Respond(r *http.Request) any {
	if IsHTMXRequest(r) {
		return HXHeader("redirect", rd.Location)
	}
	return RedirectSeeOther(rd.Location)
}

// RedirectSeeOther creates a 303 See Other response.
func RedirectSeeOther(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectWithStatus creates a redirect with a custom status code.
// Statuses outside the 3xx range fall back to 302.
// For HTMX requests, it uses HX-Location header with 200 OK status.
func RedirectWithStatus(url string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if r.Header.Get(HeaderHXRequest) == "true" {
			w.Header().Set(HeaderHXLocation, url)
			w.WriteHeader(http.StatusOK)
			return nil
		}

		if status < 300 || status >= 400 {
			status = http.StatusFound
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}
