package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawRecord is an untouched provider payload, decoded from JSON.
type RawRecord map[string]any

// Lookup resolves a field by name, descending into nested objects for dotted paths
// such as "payer.document". Missing paths return (nil, false).
func (r RawRecord) Lookup(path string) (any, bool) {
	if r == nil || path == "" {
		return nil, false
	}
	if v, ok := r[path]; ok {
		return v, true
	}

	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the trimmed textual form of a field, or "" when the field is
// missing, null, or not a scalar.
func (r RawRecord) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	return ScalarString(v)
}

// Clone returns a shallow copy so callers never share the source map.
func (r RawRecord) Clone() RawRecord {
	if r == nil {
		return nil
	}
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ScalarString renders JSON scalars as text. Objects and arrays render as "".
func ScalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return ""
	}
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case RawRecord:
		return obj, true
	default:
		return nil, false
	}
}
