package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingField = errors.New("missing field")
	ErrFieldType    = errors.New("wrong field type")
)

// Record is one raw persisted entity: field name to JSON-compatible value.
// Absent optional values are stored as an explicit nil.
type Record map[string]any

func (r Record) typeError(key string, v any, want string) error {
	return fmt.Errorf("field %q: %w: want %s, got %T", key, ErrFieldType, want, v)
}

// Str returns a required string field.
func (r Record) Str(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", fmt.Errorf("field %q: %w", key, ErrMissingField)
	}
	s, ok := v.(string)
	if !ok {
		return "", r.typeError(key, v, "string")
	}
	return s, nil
}

// OptStr returns an optional string field; missing and null both give nil.
func (r Record) OptStr(key string) (*string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		return &s, nil
	case *string:
		return s, nil
	}
	return nil, r.typeError(key, v, "string")
}

// Float returns a required numeric field.
func (r Record) Float(key string) (float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("field %q: %w", key, ErrMissingField)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, r.typeError(key, v, "number")
	}
	return f, nil
}

// OptFloat returns an optional numeric field; missing and null both give nil.
func (r Record) OptFloat(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	if p, ok := v.(*float64); ok {
		return p, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, r.typeError(key, v, "number")
	}
	return &f, nil
}

// Strings returns a list of strings; missing and null both give nil.
func (r Record) Strings(key string) ([]string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field %q[%d]: %w: want string, got %T", key, i, ErrFieldType, item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, r.typeError(key, v, "list of strings")
}

// Sub returns a nested object. ok is false when the field is missing or null.
func (r Record) Sub(key string) (sub Record, ok bool, err error) {
	v, present := r[key]
	if !present || v == nil {
		return nil, false, nil
	}
	switch m := v.(type) {
	case Record:
		return m, true, nil
	case map[string]any:
		return Record(m), true, nil
	}
	return nil, false, r.typeError(key, v, "object")
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
