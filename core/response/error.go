package response

import (
	"net/http"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// Error returns a response that propagates err to the framework's error handling
// when rendered.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
