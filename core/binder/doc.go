// Package binder decodes request bodies into flat value maps and builds record
// types from them.
//
// # Decoding
//
// DecodeBody inspects the Content-Type header:
//
//   - application/json bodies are decoded as a JSON object
//   - multipart/form-data bodies must carry a boundary; a body whose Content-Length
//     does not exceed the boundary framing is returned as an empty form
//   - everything else is parsed as URL-encoded form data
//
// Repeated fields collapse to a single value when submitted once and stay a
// []string otherwise (see Item). Uploaded files are stored as *multipart.FileHeader
// values with sanitized file names.
//
//	values, err := binder.DecodeBody(r, binder.DefaultMaxMemory)
//	if errors.Is(err, binder.ErrNoBoundary) {
//		// 400
//	}
//
// # Records
//
// Record builds a struct or string-keyed map from decoded values, merging the query
// string on top and coercing each field with the coerce package:
//
//	type Signup struct {
//		Email string   `form:"email" validate:"required,email"`
//		Age   int      `form:"age"`
//		Tags  []string `form:"tags"`
//	}
//
//	v, err := binder.Record(reflect.TypeFor[Signup](), values, binder.Query(r))
//
// Struct records are validated with go-playground/validator; failures are returned
// as *ValidationError, which matches ErrValidation.
package binder
