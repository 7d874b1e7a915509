// Package compose builds templates from directives and an indexed schema.
package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/usestring/promptlib-mcp/internal/lexicon"
	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Composition failure reasons.
const (
	ReasonUnresolved = "unresolved"
	ReasonAmbiguous  = "ambiguous"
	ReasonInvalid    = "invalid template"
)

// CompositionError reports a field request or template path that does not
// bind to the schema.
type CompositionError struct {
	Path       string
	Reason     string
	Candidates []string // Matching paths when Reason is ambiguous
	Detail     string
}

func (e *CompositionError) Error() string {
	msg := fmt.Sprintf("compose: %s: %s", e.Path, e.Reason)
	if len(e.Candidates) > 0 {
		msg += " (" + strings.Join(e.Candidates, ", ") + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Placeholder texts.
const (
	NotProvided  = "_not provided_"
	EmptySection = "_Add content for this section._\n"
)

// Compose builds a template from directives against tree. The decision is
// ordered and the first match wins: a table hint over an array of objects
// yields an HTML table, a list hint over an array yields an HTML list, and
// anything else yields sections from the layout catalog.
// Compose is deterministic and does not retain its inputs.
func Compose(directives []types.Directive, tree *schema.Tree) (*template.Template, error) {
	c := &composer{tree: tree, vocab: lexicon.New(tree), labels: newLabeler()}
	return c.compose(directives)
}

type composer struct {
	tree   *schema.Tree
	vocab  *lexicon.Index
	labels *labeler
}

type request struct {
	role, task string
	hint       string
	hintPath   string
	fields     []*schema.Node // resolved, deduplicated, schema order
}

func (c *composer) compose(directives []types.Directive) (*template.Template, error) {
	req, err := c.collect(directives)
	if err != nil {
		return nil, err
	}

	var (
		nodes  []*template.Node
		layout string
	)
	title := c.labels.heading(req.role, req.task)
	target := c.hintTarget(req)

	switch {
	case req.hint == types.StructureTable && target != nil && target.IsArrayOfObjects():
		layout = types.StructureTable
		nodes = append([]*template.Node{template.Literal(title)}, c.table(target, req.fields)...)
		nodes = append(nodes, c.extras(target, req.fields)...)
	case req.hint == types.StructureList && target != nil && target.Kind == types.KindArray:
		layout = types.StructureList
		nodes = append([]*template.Node{template.Literal(title)}, c.list(target, req.fields)...)
		nodes = append(nodes, c.extras(target, req.fields)...)
	default:
		l := Classify(req.role, req.task)
		layout = "sections:" + l.Category
		nodes = append([]*template.Node{template.Literal(title)}, c.sections(l, req.fields)...)
	}

	tmpl := &template.Template{
		Role:         req.role,
		Task:         req.task,
		Layout:       layout,
		SchemaDigest: c.tree.Digest(),
		Nodes:        template.Seq(nodes...),
	}
	if errs := template.Check(tmpl, c.tree); len(errs) > 0 {
		return nil, &CompositionError{Path: errs[0].Path, Reason: ReasonInvalid, Detail: errs[0].Reason}
	}
	return tmpl, nil
}

// collect splits directives and resolves every field request.
func (c *composer) collect(directives []types.Directive) (*request, error) {
	req := &request{}
	seen := make(map[string]bool)
	for _, d := range directives {
		switch d.Kind {
		case types.DirectiveRole:
			if req.role == "" {
				req.role = d.Value
			}
		case types.DirectiveTask:
			if req.task == "" {
				req.task = d.Value
			}
		case types.DirectiveStructureHint:
			// An array-typed hint beats section; the first array-typed hint wins.
			if req.hint == "" || (!types.IsArrayTyped(req.hint) && types.IsArrayTyped(d.Value)) {
				req.hint, req.hintPath = d.Value, d.Path
			}
		case types.DirectiveFieldRequest:
			n, err := c.resolveField(d)
			if err != nil {
				return nil, err
			}
			if !seen[n.Path] {
				seen[n.Path] = true
				req.fields = append(req.fields, n)
			}
		default:
			return nil, &CompositionError{Path: d.Value, Reason: ReasonInvalid, Detail: fmt.Sprintf("unknown directive kind %q", d.Kind)}
		}
	}
	if req.hintPath != "" {
		if _, ok := c.tree.Lookup(req.hintPath); !ok {
			return nil, &CompositionError{Path: req.hintPath, Reason: ReasonUnresolved}
		}
	}
	sort.SliceStable(req.fields, func(i, j int) bool {
		return c.tree.Ordinal(req.fields[i].Path) < c.tree.Ordinal(req.fields[j].Path)
	})
	return req, nil
}

func (c *composer) resolveField(d types.Directive) (*schema.Node, error) {
	if d.Path != "" {
		n, ok := c.tree.Lookup(d.Path)
		if !ok {
			return nil, &CompositionError{Path: d.Path, Reason: ReasonUnresolved}
		}
		return n, nil
	}
	candidates := c.vocab.Lookup(d.Value)
	switch len(candidates) {
	case 0:
		return nil, &CompositionError{Path: d.Value, Reason: ReasonUnresolved}
	case 1:
		n, _ := c.tree.Lookup(candidates[0])
		return n, nil
	}
	return nil, &CompositionError{Path: d.Value, Reason: ReasonAmbiguous, Candidates: candidates}
}

// hintTarget picks the array an array-typed hint applies to: the hint's own
// path, else a requested array, else the array holding the requested fields,
// else the first suitable array in schema order.
func (c *composer) hintTarget(req *request) *schema.Node {
	if !types.IsArrayTyped(req.hint) {
		return nil
	}
	if req.hintPath != "" {
		n, _ := c.tree.Lookup(req.hintPath)
		if !c.addressable(n) {
			return nil
		}
		return n
	}
	for _, f := range req.fields {
		if f.Kind == types.KindArray && c.addressable(f) {
			return f
		}
	}
	for _, f := range req.fields {
		if a := c.enclosingArray(f.Path); a != nil && c.addressable(a) {
			return a
		}
	}
	for _, n := range c.tree.Nodes() {
		if n.Kind != types.KindArray || !c.addressable(n) {
			continue
		}
		if req.hint == types.StructureList || n.IsArrayOfObjects() {
			return n
		}
	}
	return nil
}

// addressable reports whether n can be reached from the root without
// passing through an array.
func (c *composer) addressable(n *schema.Node) bool {
	return n != nil && c.enclosingArray(n.Path) == nil
}

// enclosingArray returns the nearest array ancestor of path.
func (c *composer) enclosingArray(path string) *schema.Node {
	for {
		owner, ok := c.tree.Container(path)
		if !ok {
			return nil
		}
		if owner.Kind == types.KindArray {
			return owner
		}
		path = owner.Path
	}
}

// outermostArray returns the highest array ancestor of path, or nil.
func (c *composer) outermostArray(path string) *schema.Node {
	var found *schema.Node
	for {
		owner, ok := c.tree.Container(path)
		if !ok {
			return found
		}
		if owner.Kind == types.KindArray {
			found = owner
		}
		path = owner.Path
	}
}

// extras renders requested fields that live outside the structured target,
// so that no resolved request is dropped.
func (c *composer) extras(target *schema.Node, fields []*schema.Node) []*template.Node {
	var rest []*schema.Node
	for _, f := range fields {
		if f == target || strings.HasPrefix(f.Path, target.Path+".") {
			continue
		}
		rest = append(rest, f)
	}
	var out []*template.Node
	for _, b := range c.group(rest) {
		out = append(out, c.bindTop(b, 3)...)
	}
	if len(out) == 0 {
		return nil
	}
	return append([]*template.Node{template.Literal("\n")}, out...)
}
