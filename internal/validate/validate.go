// Package validate checks data instances against an indexed schema tree.
package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/jsoncompact"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Validator compares instances with a schema tree.
type Validator struct {
	compact *jsoncompact.Options
}

// Option configures a Validator.
type Option func(*Validator)

// WithCompaction sets how offending values are shortened in reports.
func WithCompaction(opts *jsoncompact.Options) Option {
	return func(v *Validator) {
		v.compact = opts
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{compact: jsoncompact.DefaultOptions()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks data against tree with default settings.
func Validate(data any, tree *schema.Tree) []types.ValidationError {
	return New().Validate(data, tree)
}

// Validate reports every mismatch between data and tree in depth-first
// schema order. An empty result means data conforms.
func (v *Validator) Validate(data any, tree *schema.Tree) []types.ValidationError {
	value, err := types.ToAny(data)
	if err != nil {
		return []types.ValidationError{{
			ExpectedKind: types.KindObject,
			Present:      true,
			Message:      fmt.Sprintf("instance cannot be represented as JSON: %v", err),
		}}
	}
	w := &walker{compact: v.compact}
	w.check(tree.Root, "", value, true)
	return w.errs
}

type walker struct {
	compact *jsoncompact.Options
	errs    []types.ValidationError
}

func (w *walker) fail(n *schema.Node, path string, value any, present bool, format string, args ...any) {
	e := types.ValidationError{
		Path:         path,
		ExpectedKind: n.Kind,
		Present:      present,
		Message:      fmt.Sprintf(format, args...),
	}
	if n.Kind == types.KindScalar {
		e.ExpectedType = n.Type
	}
	if present && value != nil {
		e.Actual = jsoncompact.CompactValue(value, w.compact)
	}
	w.errs = append(w.errs, e)
}

// check validates value against n. path is the indexed instance path, so
// elements below an array carry their position ("items.2.price").
func (w *walker) check(n *schema.Node, path string, value any, present bool) {
	if !present {
		if n.Required {
			w.fail(n, path, nil, false, "missing required %s", expected(n))
		}
		return
	}
	if value == nil {
		if !acceptsNull(n) {
			w.fail(n, path, nil, true, "null is not allowed, expected %s", expected(n))
		}
		return
	}

	switch n.Kind {
	case types.KindScalar:
		if !scalarMatches(n.Type, value) {
			w.fail(n, path, value, true, "expected %s, got %s", expected(n), describe(value))
		}

	case types.KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			w.fail(n, path, value, true, "expected object, got %s", describe(value))
			return
		}
		for _, c := range n.Children {
			cv, has := obj[c.Name]
			w.check(c, join(path, c.Name), cv, has)
		}
		if n.Closed {
			for _, k := range unknownKeys(n, obj) {
				w.fail(n, join(path, k), obj[k], true, "unknown key %q is not allowed", k)
			}
		}

	case types.KindArray:
		list, ok := value.([]any)
		if !ok {
			w.fail(n, path, value, true, "expected array, got %s", describe(value))
			return
		}
		elem := n.Elem()
		for i, item := range list {
			w.check(elem, join(path, strconv.Itoa(i)), item, true)
		}
	}
}

func acceptsNull(n *schema.Node) bool {
	return n.Nullable || n.Type == schema.TypeNull || n.Type == schema.TypeAny
}

func unknownKeys(n *schema.Node, obj map[string]any) []string {
	declared := make(map[string]bool, len(n.Children))
	for _, c := range n.Children {
		declared[c.Name] = true
	}
	var out []string
	for k := range obj {
		if !declared[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func scalarMatches(typ string, value any) bool {
	switch typ {
	case schema.TypeAny:
		return true
	case schema.TypeNull:
		return value == nil
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case schema.TypeNumber:
		_, ok := value.(float64)
		return ok
	case schema.TypeInteger:
		f, ok := value.(float64)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	}
	return false
}

func expected(n *schema.Node) string {
	if n.Kind == types.KindScalar {
		return n.Type
	}
	return string(n.Kind)
}

func describe(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if val == math.Trunc(val) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func join(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + "." + seg
}
