package interpret

import (
	"fmt"
	"strings"
)

// StructuredInterpreter reads intent from a key/value description:
//
//	role: product manager
//	task: break down ideas into user stories
//	structure: table
//	subject: products
//	fields: [name, price]
//	directives: [list, users, emails]
//
// Entries of "directives" that are structural words become hints; the rest
// are field requests. Other keys are ignored.
type StructuredInterpreter struct{}

// Extract implements Interpreter. Input must be map[string]any or map[string]string.
func (StructuredInterpreter) Extract(input any) (*Intent, error) {
	var m map[string]any
	switch v := input.(type) {
	case map[string]any:
		m = v
	case map[string]string:
		m = make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
	default:
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedInput, input)
	}

	intent := &Intent{}
	problem := func(key, format string, args ...any) {
		intent.Problems = append(intent.Problems, Conflict{
			Kind:   "input",
			Values: []string{key},
			Reason: fmt.Sprintf(format, args...),
		})
	}

	if v, ok := m["role"]; ok {
		vals, err := stringList(v, false)
		if err != nil {
			problem("role", "role: %v", err)
		}
		intent.Roles = vals
	}
	if v, ok := m["task"]; ok {
		vals, err := stringList(v, false)
		if err != nil {
			problem("task", "task: %v", err)
		}
		intent.Tasks = vals
	}
	if v, ok := m["structure"]; ok {
		vals, err := stringList(v, false)
		if err != nil {
			problem("structure", "structure: %v", err)
		}
		for _, s := range vals {
			h, ok := CanonicalHint(s)
			if !ok {
				problem("structure", "unknown structure %q", s)
				continue
			}
			intent.Hints = append(intent.Hints, h)
		}
	}
	if v, ok := m["subject"]; ok {
		vals, err := stringList(v, false)
		if err != nil {
			problem("subject", "subject: %v", err)
		}
		intent.Subjects = vals
	}
	if v, ok := m["fields"]; ok {
		vals, err := stringList(v, true)
		if err != nil {
			problem("fields", "fields: %v", err)
		}
		intent.Attributes = append(intent.Attributes, vals...)
	}
	if v, ok := m["directives"]; ok {
		vals, err := stringList(v, true)
		if err != nil {
			problem("directives", "directives: %v", err)
		}
		for _, d := range vals {
			if h, ok := CanonicalHint(d); ok {
				intent.Hints = append(intent.Hints, h)
				continue
			}
			intent.Attributes = append(intent.Attributes, d)
		}
	}
	return intent, nil
}

// stringList accepts a string, a list of strings, or nil.
// With split set, a string holding commas becomes several values.
func stringList(v any, split bool) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if !split {
			return []string{strings.TrimSpace(t)}, nil
		}
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("item %d must be a string, got %T", i, e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("must be a string or list of strings, got %T", v)
}
