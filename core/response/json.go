package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// ErrUnsupportedNumber is returned when a value contains NaN or an infinity.
var ErrUnsupportedNumber = errors.New("NaN and infinite numbers are not valid JSON")

// EncodeJSON serializes v compactly without HTML escaping. NaN and infinities are
// rejected; leaves that encoding/json cannot represent (funcs, channels, complex
// numbers) are written as their fmt.Sprint text.
func EncodeJSON(v any) ([]byte, error) {
	safe, err := jsonSafe(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(safe); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func jsonSafe(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, json.Number, json.RawMessage:
		return v, nil
	case float64:
		return checkFloat(x)
	case float32:
		if _, err := checkFloat(float64(x)); err != nil {
			return nil, err
		}
		return x, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			s, err := jsonSafe(item)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			s, err := jsonSafe(item)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}

	if _, err := json.Marshal(v); err != nil {
		var unsupportedValue *json.UnsupportedValueError
		if errors.As(err, &unsupportedValue) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedNumber, err)
		}
		return fmt.Sprint(v), nil
	}
	return v, nil
}

func checkFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrUnsupportedNumber
	}
	return f, nil
}

// JSONEnvelope encodes v into an application/json envelope.
func JSONEnvelope(v any, status int) (*Envelope, error) {
	data, err := EncodeJSON(v)
	if err != nil {
		return nil, err
	}
	return NewEnvelope(data, ContentTypeJSON, status), nil
}

// JSON creates an application/json response with 200 OK status.
func JSON(v any) handler.Response {
	return JSONWithStatus(v, http.StatusOK)
}

// JSONWithStatus creates an application/json response with custom status code.
// A zero status means 204 for nil data and 200 otherwise.
func JSONWithStatus(v any, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status == 0 {
			if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
				status = http.StatusNoContent
			} else {
				status = http.StatusOK
			}
		}
		env, err := JSONEnvelope(v, status)
		if err != nil {
			return err
		}
		return env.Render(w, r)
	}
}
