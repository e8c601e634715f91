package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrymomot/hyperkit/core/coerce"
)

// Record builds a value of type t from a decoded body.
//
// Query values are merged over body values first. For a struct, each submitted key
// that names a field is coerced to that field's type and unknown keys are dropped.
// Field names come from the `form` tag, then the `json` tag, then the lowercased
// Go field name; a tag of "-" skips the field. For a map[string]T every key is kept
// and coerced to T. Pointer types are built and returned as pointers.
//
// Structs are checked against their `validate` tags once populated.
func Record(t reflect.Type, body, query Values) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, ErrInvalidRecord
	}
	if t.Kind() == reflect.Pointer {
		v, err := Record(t.Elem(), body, query)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(v)
		return ptr, nil
	}

	data := make(Values, len(body)+len(query))
	for k, v := range body {
		data[k] = v
	}
	for k, v := range query {
		data[k] = v
	}

	switch t.Kind() {
	case reflect.Struct:
		return buildStruct(t, data)
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return buildMap(t, data)
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: %s", ErrInvalidRecord, t)
}

func buildStruct(t reflect.Type, data Values) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf)
		if skip {
			continue
		}
		raw, ok := data[name]
		if !ok {
			continue
		}
		v, err := coerce.Coerce(coerce.Analyze(sf.Type), raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", name, err)
		}
		out.Field(i).Set(v)
	}

	if err := Validate(out.Addr().Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func buildMap(t reflect.Type, data Values) (reflect.Value, error) {
	elem := coerce.Analyze(t.Elem())
	out := reflect.MakeMapWithSize(t, len(data))
	for k, raw := range data {
		v, err := coerce.Coerce(elem, raw)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", k, err)
		}
		if !v.IsValid() {
			v = reflect.Zero(t.Elem())
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), v)
	}
	return out, nil
}

// fieldName extracts the submitted key for a struct field.
func fieldName(sf reflect.StructField) (string, bool) {
	for _, tagName := range []string{"form", "json"} {
		tag := sf.Tag.Get(tagName)
		if tag == "" {
			continue
		}
		if tag == "-" {
			return "", true
		}
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name, false
		}
	}
	return strings.ToLower(sf.Name), false
}
