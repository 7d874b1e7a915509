package template

import (
	"fmt"
	"strings"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// PathError reports a template path that does not resolve against a schema.
type PathError struct {
	Path   string // Absolute schema path, loop prefixes included
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("template: %s: %s", e.Path, e.Reason)
}

// Check verifies that every variable, loop and conditional path in t
// resolves against tree. Loop targets must be arrays; paths in a loop body
// resolve against the array's element schema. All failures are returned.
func Check(t *Template, tree *schema.Tree) []*PathError {
	var errs []*PathError
	check(t.Nodes, tree.Root, "", &errs)
	return errs
}

func check(nodes []*Node, scope *schema.Node, prefix string, errs *[]*PathError) {
	for _, n := range nodes {
		switch n.Kind {
		case KindVariable:
			if _, err := resolve(scope, prefix, n.Path); err != nil {
				*errs = append(*errs, err)
			}
		case KindConditional:
			if _, err := resolve(scope, prefix, n.Path); err != nil {
				*errs = append(*errs, err)
			}
			check(n.Body, scope, prefix, errs)
			check(n.Else, scope, prefix, errs)
		case KindLoop:
			target, err := resolve(scope, prefix, n.Path)
			if err != nil {
				*errs = append(*errs, err)
				continue
			}
			if target.Kind != types.KindArray {
				*errs = append(*errs, &PathError{Path: absolute(prefix, n.Path), Reason: fmt.Sprintf("loop target is %s, not array", target.Kind)})
				continue
			}
			check(n.Body, target.Elem(), absolute(prefix, n.Path), errs)
		case KindSection:
			check(n.Body, scope, prefix, errs)
		}
	}
}

// resolve walks path from scope through object properties.
// Arrays may only be entered by a loop, so a path may end at an array but
// never pass through one.
func resolve(scope *schema.Node, prefix, path string) (*schema.Node, *PathError) {
	if path == ElementPath {
		return scope, nil
	}
	cur := scope
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		if cur.Kind != types.KindObject {
			return nil, &PathError{
				Path:   absolute(prefix, strings.Join(segs[:i+1], ".")),
				Reason: fmt.Sprintf("cannot address %q inside %s", seg, cur.Kind),
			}
		}
		var next *schema.Node
		for _, c := range cur.Children {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil, &PathError{Path: absolute(prefix, strings.Join(segs[:i+1], ".")), Reason: "unresolved path"}
		}
		cur = next
	}
	return cur, nil
}

func absolute(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == ElementPath:
		return prefix
	}
	return prefix + "." + path
}
