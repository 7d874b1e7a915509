// Package schema indexes hierarchical schema descriptions into an addressable node tree.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Scalar type names.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
	TypeAny     = "any"
)

// Node is one element of an indexed schema.
// Nodes are immutable once the owning Tree is built.
type Node struct {
	Path        string
	Name        string
	Kind        types.SchemaKind
	Type        string // scalar type; empty for objects and arrays
	Required    bool
	Nullable    bool
	Closed      bool // object rejects keys it does not declare
	Element     bool // synthetic element child of an array; shares the array's path
	Description string
	Children    []*Node
}

// Elem returns the element schema of an array node, or nil.
func (n *Node) Elem() *Node {
	if n.Kind != types.KindArray || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Fields returns the property nodes of an object, or of an array's object element.
func (n *Node) Fields() []*Node {
	switch n.Kind {
	case types.KindObject:
		return n.Children
	case types.KindArray:
		if e := n.Elem(); e != nil && e.Kind == types.KindObject {
			return e.Children
		}
	}
	return nil
}

// ScalarFields returns the direct scalar properties in schema order.
func (n *Node) ScalarFields() []*Node {
	var out []*Node
	for _, c := range n.Fields() {
		if c.Kind == types.KindScalar {
			out = append(out, c)
		}
	}
	return out
}

// IsArrayOfObjects reports whether n is an array whose elements are objects.
func (n *Node) IsArrayOfObjects() bool {
	e := n.Elem()
	return e != nil && e.Kind == types.KindObject
}

// IsArrayOfScalars reports whether n is an array whose elements are scalars.
func (n *Node) IsArrayOfScalars() bool {
	e := n.Elem()
	return e != nil && e.Kind == types.KindScalar
}

// Optional reports whether a value for n may be absent or null.
func (n *Node) Optional() bool {
	return !n.Required || n.Nullable
}

// Tree is an indexed schema: the node tree plus a flat path index.
// A Tree is read-only and safe for concurrent use.
type Tree struct {
	Root *Node

	index    map[string]*Node
	order    []string
	ordinals map[string]int
	digest   string
}

func newTree(root *Node) (*Tree, error) {
	t := &Tree{
		Root:     root,
		index:    make(map[string]*Node),
		ordinals: make(map[string]int),
	}
	var err error
	walk(root, func(n *Node) bool {
		if n == root || n.Element {
			return true
		}
		if _, dup := t.index[n.Path]; dup {
			err = &SchemaError{Path: n.Path, Reason: "duplicate path"}
			return false
		}
		t.ordinals[n.Path] = len(t.order)
		t.index[n.Path] = n
		t.order = append(t.order, n.Path)
		return true
	})
	if err != nil {
		return nil, err
	}
	t.digest = computeDigest(root)
	return t, nil
}

// Lookup returns the addressable node at path.
func (t *Tree) Lookup(path string) (*Node, bool) {
	n, ok := t.index[path]
	return n, ok
}

// Paths returns every addressable path in schema order.
func (t *Tree) Paths() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Nodes returns every addressable node in schema order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.order))
	for i, p := range t.order {
		out[i] = t.index[p]
	}
	return out
}

// Ordinal returns the schema-order position of path, or -1.
func (t *Tree) Ordinal(path string) int {
	if i, ok := t.ordinals[path]; ok {
		return i
	}
	return -1
}

// TopLevel returns the root's direct properties.
func (t *Tree) TopLevel() []*Node {
	return t.Root.Children
}

// Len returns the number of addressable paths.
func (t *Tree) Len() int {
	return len(t.order)
}

// Digest identifies the tree's structure. Equal digests mean equal trees.
func (t *Tree) Digest() string {
	return t.digest
}

// Walk visits nodes depth-first in schema order, synthetic elements included.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	walk(t.Root, fn)
}

// Container returns the nearest array or object node that owns path.
func (t *Tree) Container(path string) (*Node, bool) {
	for {
		i := strings.LastIndexByte(path, '.')
		if i < 0 {
			return nil, false
		}
		path = path[:i]
		if n, ok := t.index[path]; ok {
			return n, true
		}
	}
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

func computeDigest(root *Node) string {
	h := sha256.New()
	walk(root, func(n *Node) bool {
		fmt.Fprintf(h, "%s|%s|%s|%s|%t|%t|%t|%t\n",
			n.Path, n.Name, n.Kind, n.Type, n.Required, n.Nullable, n.Closed, n.Element)
		return true
	})
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
