package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/noders-team/go-jsonmapper/pkg/types"
)

var ErrInvalidJSON = errors.New("invalid JSON")

// DecodeError is returned when raw JSON text cannot be decoded.
type DecodeError struct {
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON %q: %v", e.Input, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode converts JSON text into a decoded value tree. Objects become
// *types.Object with their keys in document order and numbers are kept as
// json.Number so integers beyond float64 precision survive.
func Decode(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &DecodeError{Input: preview(data), Err: ErrInvalidJSON}
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

func DecodeString(s string) (any, error) {
	return Decode([]byte(s))
}

func fromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	}

	if r.IsArray() {
		items := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromResult(value))
			return true
		})
		return items
	}

	obj := types.NewObject()
	r.ForEach(func(key, value gjson.Result) bool {
		obj.Set(key.String(), fromResult(value))
		return true
	})
	return obj
}

// Encode renders a decoded value tree back to JSON, keeping object key order.
func Encode(value any, indent bool) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	if !indent {
		return data, nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return out.Bytes(), nil
}

func preview(data []byte) string {
	const limit = 64
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
