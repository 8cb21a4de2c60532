package ingest

import (
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// coalesce stores v under key. A second value for the same key turns the
// entry into a list; further values are appended to it.
func coalesce(m map[string]any, key string, v any) {
	existing, ok := m[key]
	if !ok {
		m[key] = v
		return
	}
	if list, ok := existing.([]any); ok {
		m[key] = append(list, v)
		return
	}
	m[key] = []any{existing, v}
}

// lossyUTF8 decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func lossyUTF8(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// jsonSafe replaces values encoding/json refuses to serialize (NaN and
// infinities) with their textual form, recursing into maps and slices.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Sprint(t)
		}
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return fmt.Sprint(t)
		}
	case map[string]any:
		for k, e := range t {
			t[k] = jsonSafe(e)
		}
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = jsonSafe(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = jsonSafe(e)
		}
	}
	return v
}
