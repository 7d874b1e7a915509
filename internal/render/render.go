// Package render substitutes data into composed templates.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// RenderError reports a contract violation: the data does not have the
// shape the template needs. Validated data never causes one for a
// template composed against the same schema.
type RenderError struct {
	Path   string // Indexed data path, e.g. "products.2.price"
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: %s: %s", e.Path, e.Reason)
}

// Render renders t with data. data is normalized to its JSON form first,
// so structs and typed maps are accepted. Rendering is pure.
func Render(t *template.Template, data any) (string, error) {
	root, err := types.ToAny(data)
	if err != nil {
		return "", &RenderError{Reason: fmt.Sprintf("data is not JSON-representable: %v", err)}
	}
	var b strings.Builder
	if err := renderNodes(&b, t.Nodes, root, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNodes(b *strings.Builder, nodes []*template.Node, scope any, prefix string) error {
	for _, n := range nodes {
		switch n.Kind {
		case template.KindLiteral:
			b.WriteString(n.Text)

		case template.KindVariable:
			v, ok := lookup(scope, n.Path)
			if !ok {
				return &RenderError{Path: join(prefix, n.Path), Reason: "missing value"}
			}
			b.WriteString(Format(v))

		case template.KindLoop:
			v, ok := lookup(scope, n.Path)
			if !ok {
				return &RenderError{Path: join(prefix, n.Path), Reason: "missing collection"}
			}
			items, isSeq := v.([]any)
			if !isSeq {
				return &RenderError{Path: join(prefix, n.Path), Reason: fmt.Sprintf("loop target is %s, not a sequence", describe(v))}
			}
			base := join(prefix, n.Path)
			for i, item := range items {
				if err := renderNodes(b, n.Body, item, base+"."+strconv.Itoa(i)); err != nil {
					return err
				}
			}

		case template.KindConditional:
			v, ok := lookup(scope, n.Path)
			branch := n.Else
			if ok && Truthy(v) {
				branch = n.Body
			}
			if err := renderNodes(b, branch, scope, prefix); err != nil {
				return err
			}

		case template.KindSection:
			b.WriteString(template.SectionHeading)
			b.WriteString(n.Label)
			b.WriteByte('\n')
			if err := renderNodes(b, n.Body, scope, prefix); err != nil {
				return err
			}

		default:
			return &RenderError{Path: prefix, Reason: fmt.Sprintf("unknown node kind %q", n.Kind)}
		}
	}
	return nil
}

// lookup resolves a dotted path against a JSON value. A present null
// resolves to (nil, true).
func lookup(scope any, path string) (any, bool) {
	if path == template.ElementPath {
		return scope, true
	}
	cur := scope
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Format returns the text form of a JSON value: strings verbatim, integral
// numbers without a fraction, null as empty, containers as compact JSON.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Truthy reports whether a conditional takes its then-branch: false, null,
// the empty string and empty containers are falsy. Numbers, zero included,
// are truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}

func join(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == template.ElementPath:
		return prefix
	}
	return prefix + "." + path
}
