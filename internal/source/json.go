package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// jsonObject is one array element decoded with json.Number for numbers.
type jsonObject map[string]any

// decodeJSON reads a top-level JSON array and parses each element.
// Elements that are not objects become Invalid records, not source errors.
func decodeJSON[T any](parse func(jsonObject) (T, error)) func(io.Reader) ([]Result[T], error) {
	return func(r io.Reader) ([]Result[T], error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var elems []json.RawMessage
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("expected a JSON array: %w", lmsseed.ErrSourceMalformed)
		}
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("expected a JSON array: %v: %w", err, lmsseed.ErrSourceMalformed)
		}

		out := make([]Result[T], 0, len(elems))
		for i, raw := range elems {
			res := Result[T]{Pos: i}
			obj, err := objectOf(raw)
			if err != nil {
				res.Err = err
			} else {
				res.Row, res.Err = parse(obj)
			}
			out = append(out, res)
		}
		return out, nil
	}
}

func objectOf(raw json.RawMessage) (jsonObject, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &FieldError{Problem: Invalid, Value: preview(trimmed)}
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var obj jsonObject
	if err := dec.Decode(&obj); err != nil {
		return nil, &FieldError{Problem: Invalid, Value: preview(trimmed)}
	}
	return obj, nil
}

// id reads an integer field. Integral JSON numbers and numeric strings are
// accepted; null, absent, fractional and other values are rejected.
func (o jsonObject) id(key string) (int64, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return 0, &FieldError{Field: key, Problem: Missing}
	}
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		if f, err := t.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f), nil
		}
		return 0, &FieldError{Field: key, Problem: NotInteger, Value: t.String()}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, &FieldError{Field: key, Problem: Missing}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &FieldError{Field: key, Problem: NotInteger, Value: t}
		}
		return n, nil
	default:
		return 0, &FieldError{Field: key, Problem: NotInteger, Value: fmt.Sprint(t)}
	}
}

// text reads an optional string field; absent or null yields def.
func (o jsonObject) text(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: key, Problem: Invalid, Value: fmt.Sprint(v)}
	}
	return s, nil
}

func preview(b []byte) string {
	const max = 40
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
