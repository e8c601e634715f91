package coerce

import (
	"encoding"
	"mime/multipart"
	"reflect"
	"time"
)

// Kind is the closed set of shapes a declared parameter type can take.
type Kind uint8

const (
	// Unannotated marks parameters declared as any.
	Unannotated Kind = iota
	// Primitive marks scalar types with a string parser.
	Primitive
	// List marks slice types; Elem describes the element.
	List
	// Optional marks pointer types; Elem describes the pointee.
	Optional
	// Record marks structs and string-keyed maps, which are decoded from the body.
	Record
	// Passthrough marks types that accept already-typed values only.
	Passthrough
)

func (k Kind) String() string {
	switch k {
	case Unannotated:
		return "unannotated"
	case Primitive:
		return "primitive"
	case List:
		return "list"
	case Optional:
		return "optional"
	case Record:
		return "record"
	case Passthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Type is the analyzed form of a declared Go type.
type Type struct {
	Kind Kind
	Go   reflect.Type
	Elem *Type
}

// Effective returns the type coercion actually targets: the element of an
// Optional, otherwise the type itself.
func (t Type) Effective() Type {
	if t.Kind == Optional && t.Elem != nil {
		return t.Elem.Effective()
	}
	return t
}

var (
	anyType         = reflect.TypeFor[any]()
	timeType        = reflect.TypeFor[time.Time]()
	bytesType       = reflect.TypeFor[[]byte]()
	fileHeaderType  = reflect.TypeFor[*multipart.FileHeader]()
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Analyze classifies t. A nil type is treated as unannotated.
func Analyze(t reflect.Type) Type {
	if t == nil || t == anyType {
		return Type{Kind: Unannotated, Go: anyType}
	}

	switch t.Kind() {
	case reflect.Pointer:
		if t == fileHeaderType {
			return Type{Kind: Passthrough, Go: t}
		}
		elem := Analyze(t.Elem())
		return Type{Kind: Optional, Go: t, Elem: &elem}
	case reflect.Interface:
		return Type{Kind: Passthrough, Go: t}
	}

	if t == timeType || reflect.PointerTo(t).Implements(textUnmarshaler) {
		return Type{Kind: Primitive, Go: t}
	}

	switch t.Kind() {
	case reflect.Slice:
		if t == bytesType {
			return Type{Kind: Primitive, Go: t}
		}
		elem := Analyze(t.Elem())
		return Type{Kind: List, Go: t, Elem: &elem}
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Type{Kind: Primitive, Go: t}
	case reflect.Struct:
		return Type{Kind: Record, Go: t}
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return Type{Kind: Record, Go: t}
		}
	}

	return Type{Kind: Passthrough, Go: t}
}

// IsRecord reports whether t is body-shaped.
func IsRecord(t reflect.Type) bool {
	return t != nil && Analyze(t).Kind == Record
}
