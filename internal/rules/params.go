package rules

import (
	"fmt"
	"math"
	"sort"
)

// Params holds a rule's kind-specific parameters as decoded from YAML or JSON.
type Params map[string]any

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns a required non-empty string parameter.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %s", key, typeName(v))
	}
	if s == "" {
		return "", fmt.Errorf("parameter %q must not be empty", key)
	}
	return s, nil
}

// Bool returns an optional boolean parameter.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q must be a boolean, got %s", key, typeName(v))
	}
	return b, nil
}

// Int returns an optional non-negative integer parameter. The second result
// reports whether the parameter was set.
func (p Params) Int(key string) (int, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case uint64:
		n = int(t)
	case float64:
		if t != math.Trunc(t) {
			return 0, false, fmt.Errorf("parameter %q must be an integer, got %v", key, t)
		}
		n = int(t)
	default:
		return 0, false, fmt.Errorf("parameter %q must be an integer, got %s", key, typeName(v))
	}
	if n < 0 {
		return 0, false, fmt.Errorf("parameter %q must not be negative", key)
	}
	return n, true, nil
}

// Strings returns a string-list parameter. When required, the list must be
// present and non-empty.
func (p Params) Strings(key string, required bool) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("missing required parameter %q", key)
		}
		return nil, nil
	}
	var out []string
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q item %d must be a string, got %s", key, i, typeName(item))
			}
			out = append(out, s)
		}
	default:
		return nil, fmt.Errorf("parameter %q must be a list of strings, got %s", key, typeName(v))
	}
	if required && len(out) == 0 {
		return nil, fmt.Errorf("parameter %q must not be empty", key)
	}
	return out, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
