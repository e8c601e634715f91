package coerce

import "errors"

var (
	// ErrCoercion indicates a raw value could not be converted to the declared type.
	ErrCoercion = errors.New("type coercion failed")

	// ErrUnsupportedType indicates the declared type has no string parser.
	ErrUnsupportedType = errors.New("unsupported coercion target")
)
