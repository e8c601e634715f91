package response

import (
	"errors"
	"net/http"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// AsHTTPError converts any error to an HTTPError. An HTTPError in the chain is
// returned as is; otherwise the status comes from a StatusCode method, defaulting
// to 500, and err is attached as the cause.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	baseErr, ok := httpErrorsByStatus[status]
	if !ok {
		baseErr = NewHTTPError(status, http.StatusText(status))
	}
	return baseErr.WithError(err)
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	return AsHTTPError(err).Status
}

// ErrorHandler is the default error handler that returns plain text errors.
func ErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := AsHTTPError(err)
	http.Error(w, httpErr.Error(), httpErr.Status)
}

// JSONErrorHandler returns errors as JSON responses.
func JSONErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := AsHTTPError(err)
	if renderErr := JSONWithStatus(httpErr, httpErr.Status)(w, r); renderErr != nil {
		http.Error(w, httpErr.Error(), httpErr.Status)
	}
}
