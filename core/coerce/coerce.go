package coerce

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Coerce converts raw into a value of t.Go.
//
// raw is typically a string, a []string or a []any decoded from JSON. Anything else
// is treated as already typed and only converted. A nil raw yields the zero value.
func Coerce(t Type, raw any) (reflect.Value, error) {
	if t.Go == nil {
		t = Analyze(nil)
	}

	switch t.Kind {
	case Unannotated:
		if raw == nil {
			return reflect.Zero(t.Go), nil
		}
		return reflect.ValueOf(raw), nil
	}

	if raw != nil && reflect.TypeOf(raw).AssignableTo(t.Go) {
		return reflect.ValueOf(raw), nil
	}

	switch t.Kind {
	case Optional:
		if raw == nil {
			return reflect.Zero(t.Go), nil
		}
		v, err := Coerce(*t.Elem, raw)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Go.Elem())
		ptr.Elem().Set(v)
		return ptr, nil

	case List:
		return coerceList(t, raw)
	}

	items, isList := listItems(raw)
	if isList {
		if len(items) == 0 {
			return reflect.Zero(t.Go), nil
		}
		raw = items[len(items)-1]
	}

	s, ok := raw.(string)
	if !ok {
		return Convert(raw, t.Go)
	}
	return parseString(t, s)
}

// coerceList coerces every element of raw to the list's element type.
// A scalar raw value becomes a one-element list.
func coerceList(t Type, raw any) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t.Go), nil
	}
	items, isList := listItems(raw)
	if !isList {
		items = []any{raw}
	}

	out := reflect.MakeSlice(t.Go, 0, len(items))
	for i, item := range items {
		v, err := Coerce(*t.Elem, item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}

// listItems reports whether raw is a list and returns its elements.
func listItems(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case []any:
		return v, true
	}
	return nil, false
}

// parseString runs the primitive parser table against s.
func parseString(t Type, s string) (reflect.Value, error) {
	target := t.Go
	fail := func(err error) (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w: %q to %s: %v", ErrCoercion, s, target, err)
	}

	if target == timeType {
		d, err := ParseDate(s)
		if err != nil {
			return fail(err)
		}
		return reflect.ValueOf(d), nil
	}

	if reflect.PointerTo(target).Implements(textUnmarshaler) {
		ptr := reflect.New(target)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return fail(err)
		}
		return ptr.Elem(), nil
	}

	if target == bytesType {
		return reflect.ValueOf([]byte(s)), nil
	}

	v := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.String:
		v.SetString(s)

	case reflect.Bool:
		b, err := ParseBool(s)
		if err != nil {
			return fail(err)
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := ParseInt(s)
		if err != nil {
			return fail(err)
		}
		if v.OverflowInt(n) {
			return fail(fmt.Errorf("value overflows %s", target))
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := ParseInt(s)
		if err != nil {
			return fail(err)
		}
		if n < 0 || v.OverflowUint(uint64(n)) {
			return fail(fmt.Errorf("value out of range for %s", target))
		}
		v.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, target.Bits())
		if err != nil {
			return fail(fmt.Errorf("invalid float value %q", s))
		}
		v.SetFloat(f)

	default:
		// Upload markers and other pass-through targets accept an empty field as absent.
		if s == "" {
			return v, nil
		}
		return fail(ErrUnsupportedType)
	}

	return v, nil
}

// Convert adapts an already-typed value to t: direct assignment, numeric
// conversion, pointer wrapping, and finally a JSON round trip for nested data such
// as objects decoded from a JSON body.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if t.Kind() == reflect.Pointer && rv.Kind() != reflect.Pointer {
		inner, err := Convert(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	}

	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		if isInteger(t.Kind()) && isFloat(rv.Kind()) {
			f := rv.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%w: %v is not an integer", ErrCoercion, v)
			}
		}
		return rv.Convert(t), nil
	}

	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %T to %s: %v", ErrCoercion, v, t, err)
	}
	out := reflect.New(t)
	if err := json.Unmarshal(data, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %T to %s: %v", ErrCoercion, v, t, err)
	}
	return out.Elem(), nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || isFloat(k)
}
