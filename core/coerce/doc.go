// Package coerce converts raw request data (strings and lists of strings) into the
// Go type a handler declares for a parameter.
//
// Types are classified once with Analyze, typically when a route is registered:
//
//	t := coerce.Analyze(reflect.TypeFor[[]int]())
//	v, err := coerce.Coerce(t, []string{"1", "2", "3"}) // []int{1, 2, 3}
//
// Classification rules:
//
//   - any (empty interface) is Unannotated: values pass through untouched.
//   - *T is Optional: the effective target is T, absent input stays nil.
//   - []T is List: every element is coerced to T.
//   - bool, integers, floats, string, []byte, time.Time and any type whose pointer
//     implements encoding.TextUnmarshaler (uuid.UUID, netip.Addr, ...) are Primitive.
//   - structs and maps with string keys are Record (body-shaped).
//   - *multipart.FileHeader is Passthrough (upload marker).
//
// Scalar targets receiving a list use the last element, so repeated form fields
// follow last-value-wins. Values that are neither strings nor lists are assumed to be
// typed already and are only converted (numeric widening, JSON re-decoding).
package coerce
