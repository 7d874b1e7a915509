package compose

import (
	"strings"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// binding is one schema node placed in a section. For arrays and objects,
// subset limits which element or object properties are shown; nil shows all.
type binding struct {
	node   *schema.Node
	subset map[string]bool
}

// group folds requested fields into bindings. A field inside an array is
// represented by its outermost array, narrowed to the requested properties,
// since array contents are only reachable through a loop.
func (c *composer) group(fields []*schema.Node) []binding {
	var out []binding
	index := make(map[string]int)
	for _, f := range fields {
		node, sub := f, ""
		if a := c.outermostArray(f.Path); a != nil {
			node = a
			sub, _, _ = strings.Cut(strings.TrimPrefix(f.Path, a.Path+"."), ".")
		}
		i, ok := index[node.Path]
		if !ok {
			i = len(out)
			index[node.Path] = i
			out = append(out, binding{node: node})
			if sub != "" {
				out[i].subset = make(map[string]bool)
			}
		}
		switch {
		case sub == "":
			out[i].subset = nil
		case out[i].subset != nil:
			out[i].subset[sub] = true
		}
	}
	return out
}

func (c *composer) bindTop(b binding, level int) []*template.Node {
	return c.bind(c.tree.Root, b.node.Path, "", b.node, c.labels.label(b.node.Path), level, b.subset)
}

// bind renders schema node n, addressed by rel from scope. Optional nodes on
// the path below the already-guarded prefix are wrapped in conditionals.
func (c *composer) bind(scope *schema.Node, rel, guarded string, n *schema.Node, label string, level int, subset map[string]bool) []*template.Node {
	heading := strings.Repeat("#", min(level, 6)) + " " + label + "\n"
	missing := []*template.Node{template.Literal("- " + label + ": " + NotProvided + "\n")}

	switch n.Kind {
	case types.KindObject:
		if len(n.Children) == 0 {
			break
		}
		body := []*template.Node{template.Literal(heading)}
		for _, ch := range n.Children {
			if subset != nil && !subset[ch.Name] {
				continue
			}
			body = append(body, c.bind(scope, join(rel, ch.Name), rel, ch, c.labels.label(ch.Name), level+1, nil)...)
		}
		return guard(scope, rel, guarded, body, missing)

	case types.KindArray:
		elem := n.Elem()
		var loop *template.Node
		head := heading
		switch elem.Kind {
		case types.KindObject:
			var inner []*template.Node
			for _, ch := range elem.Children {
				if subset != nil && !subset[ch.Name] {
					continue
				}
				inner = append(inner, c.bind(elem, ch.Name, "", ch, c.labels.label(ch.Name), level+1, nil)...)
			}
			inner = append(inner, template.Literal("\n"))
			loop = template.Loop(rel, template.StyleBlock, guard(elem, template.ElementPath, "", inner, nil)...)
		case types.KindArray:
			inner := c.bind(elem, template.ElementPath, "", elem, label, level+1, nil)
			loop = template.Loop(rel, template.StyleBlock, inner...)
		default:
			head = "- " + label + ":\n"
			item := []*template.Node{template.Literal("  - "), template.Var(template.ElementPath), template.Literal("\n")}
			loop = template.Loop(rel, template.StyleListItem, item...)
		}
		return guard(scope, rel, guarded, []*template.Node{template.Literal(head), loop}, missing)
	}

	line := []*template.Node{template.Literal("- " + label + ": "), template.Var(rel), template.Literal("\n")}
	return guard(scope, rel, guarded, line, missing)
}

// guard wraps body in a conditional for every optional node on rel below
// the guarded prefix, outermost first. A nullable scope guards ".".
func guard(scope *schema.Node, rel, guarded string, body, placeholder []*template.Node) []*template.Node {
	if rel == template.ElementPath {
		if scope.Nullable {
			return []*template.Node{template.Cond(template.ElementPath, body, placeholder)}
		}
		return body
	}

	skip := 0
	if guarded != "" {
		skip = strings.Count(guarded, ".") + 1
	}
	segs := strings.Split(rel, ".")
	var prefixes []string
	cur := scope
	for i, seg := range segs {
		cur = child(cur, seg)
		if cur == nil {
			break
		}
		if i >= skip && cur.Optional() {
			prefixes = append(prefixes, strings.Join(segs[:i+1], "."))
		}
	}
	out := body
	for i := len(prefixes) - 1; i >= 0; i-- {
		out = []*template.Node{template.Cond(prefixes[i], out, placeholder)}
	}
	return out
}

func child(n *schema.Node, name string) *schema.Node {
	if n.Kind != types.KindObject {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func join(rel, name string) string {
	if rel == "" || rel == template.ElementPath {
		return name
	}
	return rel + "." + name
}

// sections distributes bindings over the layout: requested fields, else
// every top-level property, each placed by name affinity in schema order.
func (c *composer) sections(l Layout, fields []*schema.Node) []*template.Node {
	var bindings []binding
	if len(fields) > 0 {
		bindings = c.group(fields)
	} else {
		for _, n := range c.tree.TopLevel() {
			bindings = append(bindings, binding{node: n})
		}
	}

	bodies := make(map[string][]*template.Node, len(l.Sections))
	for _, b := range bindings {
		label := l.assign(b.node.Name)
		bodies[label] = append(bodies[label], c.bindTop(b, 3)...)
	}

	var out []*template.Node
	for _, s := range l.Sections {
		body := bodies[s.Label]
		if len(body) == 0 {
			body = []*template.Node{template.Literal(EmptySection)}
		}
		body = append(body, template.Literal("\n"))
		out = append(out, template.Section(s.Label, body...))
	}
	return out
}

// columns lists the element-relative paths a table or list shows: requested
// fields under target in schema order, else every scalar property, else
// every property, else the element itself. A column never descends into a
// nested array; it stops at the array and shows it whole.
func (c *composer) columns(target *schema.Node, fields []*schema.Node) []string {
	elem := target.Elem()
	prefix := target.Path + "."
	var cols []string
	seen := make(map[string]bool)
	for _, f := range fields {
		rel, ok := strings.CutPrefix(f.Path, prefix)
		if !ok {
			continue
		}
		rel = stopAtArray(elem, rel)
		if !seen[rel] {
			seen[rel] = true
			cols = append(cols, rel)
		}
	}
	if len(cols) > 0 {
		return cols
	}
	for _, ch := range elem.ScalarFields() {
		cols = append(cols, ch.Name)
	}
	if len(cols) > 0 {
		return cols
	}
	for _, ch := range elem.Children {
		cols = append(cols, ch.Name)
	}
	if len(cols) == 0 {
		cols = []string{template.ElementPath}
	}
	return cols
}

func stopAtArray(scope *schema.Node, rel string) string {
	segs := strings.Split(rel, ".")
	cur := scope
	for i, seg := range segs {
		cur = child(cur, seg)
		if cur == nil || cur.Kind == types.KindArray {
			return strings.Join(segs[:i+1], ".")
		}
	}
	return rel
}

func (c *composer) columnLabel(col string) string {
	if col == template.ElementPath {
		return "Value"
	}
	return c.labels.label(col)
}

// cell renders one column value inside a loop body over elem.
func cell(elem *schema.Node, col string) []*template.Node {
	return guard(elem, col, "", []*template.Node{template.Var(col)}, nil)
}

func (c *composer) table(target *schema.Node, fields []*schema.Node) []*template.Node {
	elem := target.Elem()
	cols := c.columns(target, fields)

	var head strings.Builder
	head.WriteString("<table>\n  <thead>\n    <tr>")
	for _, col := range cols {
		head.WriteString("<th>" + c.columnLabel(col) + "</th>")
	}
	head.WriteString("</tr>\n  </thead>\n  <tbody>\n")

	row := []*template.Node{template.Literal("    <tr>")}
	for _, col := range cols {
		row = append(row, template.Literal("<td>"))
		row = append(row, cell(elem, col)...)
		row = append(row, template.Literal("</td>"))
	}
	row = append(row, template.Literal("</tr>\n"))

	body := []*template.Node{
		template.Literal(head.String()),
		template.Loop(target.Path, template.StyleTableRow, guard(elem, template.ElementPath, "", row, nil)...),
		template.Literal("  </tbody>\n</table>\n"),
	}
	return guard(c.tree.Root, target.Path, "", body, []*template.Node{template.Literal(NotProvided + "\n")})
}

// separator emits " - " when any of the earlier columns has a value.
func separator(elem *schema.Node, earlier []string) []*template.Node {
	if len(earlier) == 0 {
		return nil
	}
	last := len(earlier) - 1
	return guard(elem, earlier[last], "", []*template.Node{template.Literal(" - ")}, separator(elem, earlier[:last]))
}

func (c *composer) list(target *schema.Node, fields []*schema.Node) []*template.Node {
	elem := target.Elem()

	var item []*template.Node
	if elem.Kind == types.KindObject {
		cols := c.columns(target, fields)
		for i, col := range cols {
			body := append(separator(elem, cols[:i]), template.Var(col))
			item = append(item, guard(elem, col, "", body, nil)...)
		}
	} else {
		item = []*template.Node{template.Var(template.ElementPath)}
	}

	li := append([]*template.Node{template.Literal("  <li>")}, item...)
	li = append(li, template.Literal("</li>\n"))

	body := []*template.Node{
		template.Literal("<ul>\n"),
		template.Loop(target.Path, template.StyleListItem, guard(elem, template.ElementPath, "", li, nil)...),
		template.Literal("</ul>\n"),
	}
	return guard(c.tree.Root, target.Path, "", body, []*template.Node{template.Literal(NotProvided + "\n")})
}
