// Package template defines the composed template tree and its checks.
package template

// NodeKind tags a template node variant.
type NodeKind string

// Node kinds.
const (
	KindLiteral     NodeKind = "literal"
	KindVariable    NodeKind = "variable"
	KindLoop        NodeKind = "loop"
	KindConditional NodeKind = "conditional"
	KindSection     NodeKind = "section"
)

// LoopStyle tells a renderer or reader how loop iterations are laid out.
type LoopStyle string

// Loop styles.
const (
	StyleTableRow LoopStyle = "table-row"
	StyleListItem LoopStyle = "list-item"
	StyleBlock    LoopStyle = "block"
)

// ElementPath addresses the current loop element itself.
const ElementPath = "."

// Node is one element of a template tree. Which fields are meaningful
// depends on Kind:
//
//	literal      Text
//	variable     Path
//	loop         Path, Style, Body (paths in Body are relative to the element)
//	conditional  Path, Body (then), Else
//	section      Label, Body
type Node struct {
	Kind  NodeKind  `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Path  string    `json:"path,omitempty"`
	Style LoopStyle `json:"style,omitempty"`
	Label string    `json:"label,omitempty"`
	Body  []*Node   `json:"body,omitzero"`
	Else  []*Node   `json:"else,omitzero"`
}

// Literal emits text verbatim.
func Literal(text string) *Node {
	return &Node{Kind: KindLiteral, Text: text}
}

// Var emits the value at path.
func Var(path string) *Node {
	return &Node{Kind: KindVariable, Path: path}
}

// Loop renders body once per element of the sequence at path.
func Loop(path string, style LoopStyle, body ...*Node) *Node {
	return &Node{Kind: KindLoop, Path: path, Style: style, Body: coalesce(body)}
}

// Cond renders then when the value at path is truthy, otherwise els.
func Cond(path string, then, els []*Node) *Node {
	return &Node{Kind: KindConditional, Path: path, Body: coalesce(then), Else: coalesce(els)}
}

// Section groups body under a heading label.
func Section(label string, body ...*Node) *Node {
	return &Node{Kind: KindSection, Label: label, Body: coalesce(body)}
}

// coalesce merges adjacent literals and drops empty ones.
func coalesce(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Kind == KindLiteral {
			if n.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Kind == KindLiteral {
				out[last] = Literal(out[last].Text + n.Text)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// Seq coalesces a node sequence built piecewise.
func Seq(nodes ...*Node) []*Node {
	return coalesce(nodes)
}
