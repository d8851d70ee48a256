package dia

import "fmt"

// The helpers below extract a scalar out of a decoded Avro value tree.
// A nullable union field decodes to either nil or the bare Go value of
// its non-null branch; the opt* helpers return a nil pointer for the
// former. Numeric widths are never widened: Avro "float" decodes to
// float32, and Avro "int" (which the generic decoder yields as a Go
// int) is stored as int32, matching the canonical model's own widths.

func reqInt64(m map[string]any, key string) (int64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	i, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("field %q: expected int64, got %T", key, v)
	}
	return i, nil
}

func reqInt32(m map[string]any, key string) (int32, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	switch i := v.(type) {
	case int32:
		return i, nil
	case int:
		return int32(i), nil
	}
	return 0, fmt.Errorf("field %q: expected int32, got %T", key, v)
}

func reqFloat64(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q: expected float64, got %T", key, v)
	}
	return f, nil
}

func reqFloat32(m map[string]any, key string) (float32, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	f, ok := v.(float32)
	if !ok {
		return 0, fmt.Errorf("field %q: expected float32, got %T", key, v)
	}
	return f, nil
}

func reqString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

func reqMap(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing required field %q", key)
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected record, got %T", key, v)
	}
	return sub, nil
}

// reqMapOpt is reqMap for a field that is itself optional (e.g.
// diaObject): ok is false when the field is absent or null, which is
// not an error.
func reqMapOpt(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	sub, ok := v.(map[string]any)
	return sub, ok
}

func optArray(m map[string]any, key string) ([]any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

func optInt64(m map[string]any, key string) *int64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if i, ok := v.(int64); ok {
		return &i
	}
	return nil
}

func optInt32(m map[string]any, key string) *int32 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch i := v.(type) {
	case int32:
		return &i
	case int:
		n := int32(i)
		return &n
	}
	return nil
}

func optFloat64(m map[string]any, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func optFloat32(m map[string]any, key string) *float32 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if f, ok := v.(float32); ok {
		return &f
	}
	return nil
}

func optString(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optBool(m map[string]any, key string) *bool {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

func optBytes(m map[string]any, key string) []byte {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		return b
	}
	return nil
}
