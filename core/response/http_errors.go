package response

import (
	"maps"
	"net/http"
)

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context

	cause error
}

// NewHTTPError creates an error with the given status and message. The code is
// taken from the predefined error for that status.
func NewHTTPError(status int, message string) HTTPError {
	code := "internal_server_error"
	if base, ok := httpErrorsByStatus[status]; ok {
		code = base.Code
	}
	return HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// Unwrap returns the cause attached with WithError.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error with an error cause.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	maps.Copy(details, e.Details)
	details["cause"] = err.Error()
	e.Details = details
	e.cause = err
	return e
}

func predefined(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	// 4xx Client Errors
	ErrBadRequest            = predefined(http.StatusBadRequest, "bad_request")
	ErrUnauthorized          = predefined(http.StatusUnauthorized, "unauthorized")
	ErrForbidden             = predefined(http.StatusForbidden, "forbidden")
	ErrNotFound              = predefined(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed      = predefined(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrNotAcceptable         = predefined(http.StatusNotAcceptable, "not_acceptable")
	ErrConflict              = predefined(http.StatusConflict, "conflict")
	ErrRequestEntityTooLarge = predefined(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	ErrUnsupportedMediaType  = predefined(http.StatusUnsupportedMediaType, "unsupported_media_type")
	ErrUnprocessableEntity   = predefined(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests       = predefined(http.StatusTooManyRequests, "too_many_requests")

	// 5xx Server Errors
	ErrInternalServerError = predefined(http.StatusInternalServerError, "internal_server_error")
	ErrNotImplemented      = predefined(http.StatusNotImplemented, "not_implemented")
	ErrBadGateway          = predefined(http.StatusBadGateway, "bad_gateway")
	ErrServiceUnavailable  = predefined(http.StatusServiceUnavailable, "service_unavailable")
	ErrGatewayTimeout      = predefined(http.StatusGatewayTimeout, "gateway_timeout")
)

// httpErrorsByStatus maps HTTP status codes to their corresponding HTTPError values
var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusNotAcceptable:         ErrNotAcceptable,
	http.StatusConflict:              ErrConflict,
	http.StatusRequestEntityTooLarge: ErrRequestEntityTooLarge,
	http.StatusUnsupportedMediaType:  ErrUnsupportedMediaType,
	http.StatusUnprocessableEntity:   ErrUnprocessableEntity,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusNotImplemented:        ErrNotImplemented,
	http.StatusBadGateway:            ErrBadGateway,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}
