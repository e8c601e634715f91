package hyperkit

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/hyperkit/core/binder"
	"github.com/dmitrymomot/hyperkit/core/coerce"
	"github.com/dmitrymomot/hyperkit/core/response"
)

var (
	ErrMissingField   = errors.New("missing required field")
	ErrFileNotFound   = errors.New("file not found")
	ErrRouteNotFound  = errors.New("route not found")
	ErrInvalidHandler = errors.New("invalid handler")
	ErrInvalidURI     = errors.New("invalid route reference")
	ErrNoSessionKey   = errors.New("session secret key unavailable")
)

// errMissingField is the 400 raised when a required parameter resolves to nothing.
func errMissingField(name string) error {
	return response.NewHTTPError(http.StatusBadRequest, "Missing required field: "+name).
		WithError(fmt.Errorf("%w: %s", ErrMissingField, name))
}

// errNotFound is the deliberately opaque 404 raised for coercion failures and
// missing files. The message is the request path or file path.
func errNotFound(message string, cause error) error {
	return response.NewHTTPError(http.StatusNotFound, message).WithError(cause)
}

// bodyError maps body decoding failures onto client errors. Coercion failures
// inside a record stay opaque like any other coercion failure.
func bodyError(path string, err error) error {
	var verr *binder.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]any, len(verr.Fields))
		for _, f := range verr.Fields {
			details[f.Field] = f.Message
		}
		return response.NewHTTPError(http.StatusBadRequest, "Validation failed").
			WithDetails(details).
			WithError(err)
	case errors.Is(err, coerce.ErrCoercion):
		return errNotFound(path, err)
	case errors.Is(err, binder.ErrNoBoundary):
		return response.NewHTTPError(http.StatusBadRequest, "Invalid form-data: no boundary").WithError(err)
	case errors.Is(err, binder.ErrUnsupportedMediaType):
		return response.NewHTTPError(http.StatusUnsupportedMediaType, http.StatusText(http.StatusUnsupportedMediaType)).WithError(err)
	}
	return response.NewHTTPError(http.StatusBadRequest, http.StatusText(http.StatusBadRequest)).WithError(err)
}
