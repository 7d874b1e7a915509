package textquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"gopkg.in/yaml.v3"
)

// JQQuery is a compiled jq program.
type JQQuery struct {
	code   *gojq.Code
	source string
}

// CompileJQ parses and compiles a jq expression.
func CompileJQ(expression string) (*JQQuery, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return &JQQuery{code: code, source: expression}, nil
}

// String returns the expression source.
func (q *JQQuery) String() string { return q.source }

// Select runs the program over body, decoded as JSON or else YAML.
// Runtime errors are collected per output rather than aborting the run.
func (q *JQQuery) Select(body []byte, maxResults int) (*Result, error) {
	input, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return q.Run(input, maxResults), nil
}

// Run executes the program against an already-decoded value.
func (q *JQQuery) Run(input any, maxResults int) *Result {
	var (
		values []any
		errs   []string
	)
	iter := q.code.Run(input)
	for {
		if maxResults > 0 && len(values) >= maxResults {
			break
		}
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			errs = append(errs, formatJQError(err))
			continue
		}
		if v == nil {
			continue
		}
		values = append(values, v)
	}
	return newResult(ModeJQ, values, errs)
}

// Decode reads body as JSON, falling back to YAML, and returns a value in
// canonical JSON form.
func Decode(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		return v, nil
	}
	if err := yaml.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("document is neither JSON nor YAML: %w", err)
	}
	return normalizeYAML(v), nil
}

// normalizeYAML converts yaml.v3 output to JSON-compatible types: integer
// scalars become float64 and non-string map keys are stringified.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeYAML(v)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}

// formatJQError decorates common gojq runtime errors with a hint.
// Runtime errors carry no typed wrapper, so the hints come from the message.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		hint = " (the path may not exist in this document)"
	case strings.Contains(msg, "cannot index") && strings.Contains(msg, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	return msg + hint
}
