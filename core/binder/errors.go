package binder

import "errors"

var (
	// ErrUnsupportedMediaType indicates a JSON body whose top level is not an object.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFailedToParseJSON indicates the request body contains invalid JSON.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")

	// ErrFailedToParseForm indicates URL-encoded or multipart data could not be parsed.
	ErrFailedToParseForm = errors.New("failed to parse form data")

	// ErrNoBoundary indicates a multipart request without a usable boundary parameter.
	ErrNoBoundary = errors.New("invalid form-data: no boundary")

	// ErrInvalidRecord indicates the target type cannot be built from a body.
	ErrInvalidRecord = errors.New("target is not a record type")

	// ErrValidation indicates a record was decoded but failed its validate tags.
	ErrValidation = errors.New("validation failed")
)
