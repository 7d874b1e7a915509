// Package lexicon maps natural-language terms onto schema paths.
package lexicon

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Index is an inverted index from name tokens to schema nodes.
// Node ordinals are bitmap members, so iteration yields schema order.
// An Index is read-only once built and safe for concurrent use.
type Index struct {
	tree *schema.Tree

	idxName  map[string]*roaring.Bitmap // full normalized name
	idxToken map[string]*roaring.Bitmap // individual name tokens
	paths    []string                   // ordinal -> path
}

// New indexes every addressable node of tree by its name.
func New(tree *schema.Tree) *Index {
	idx := &Index{
		tree:     tree,
		idxName:  make(map[string]*roaring.Bitmap),
		idxToken: make(map[string]*roaring.Bitmap),
		paths:    tree.Paths(),
	}
	for i, p := range idx.paths {
		n, _ := tree.Lookup(p)
		toks := Tokenize(n.Name)
		if len(toks) == 0 {
			continue
		}
		addToBitmap(idx.idxName, strings.Join(toks, " "), uint32(i))
		for _, tok := range toks {
			addToBitmap(idx.idxToken, tok, uint32(i))
		}
	}
	return idx
}

func addToBitmap(m map[string]*roaring.Bitmap, key string, id uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(id)
}

// Tree returns the indexed schema.
func (idx *Index) Tree() *schema.Tree {
	return idx.tree
}

// Lookup returns the schema paths whose name matches term, in schema order.
// A term equal to a full path matches that path alone. Otherwise a whole-name
// match wins; failing that, every node whose name carries all of the term's
// tokens matches. Matching is case and plural insensitive.
func (idx *Index) Lookup(term string) []string {
	if _, ok := idx.tree.Lookup(term); ok {
		return []string{term}
	}
	toks := Tokenize(term)
	if len(toks) == 0 {
		return nil
	}
	if bm, ok := idx.idxName[strings.Join(toks, " ")]; ok {
		return idx.resolve(bm)
	}

	var result *roaring.Bitmap
	for _, tok := range toks {
		bm, ok := idx.idxToken[tok]
		if !ok {
			return nil
		}
		if result == nil {
			result = bm.Clone()
			continue
		}
		result = roaring.And(result, bm)
		if result.IsEmpty() {
			return nil
		}
	}
	return idx.resolve(result)
}

// LookupWithin is Lookup restricted to descendants of container.
func (idx *Index) LookupWithin(term, container string) []string {
	var out []string
	prefix := container + "."
	for _, p := range idx.Lookup(term) {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

func (idx *Index) resolve(bm *roaring.Bitmap) []string {
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.paths[it.Next()])
	}
	return out
}

// Kind returns the kind of the node at path.
func (idx *Index) Kind(path string) (types.SchemaKind, bool) {
	n, ok := idx.tree.Lookup(path)
	if !ok {
		return "", false
	}
	return n.Kind, true
}

// Leaves returns the scalar fields directly under a container path, in schema order.
// For an array of scalars the array path itself is its only leaf.
func (idx *Index) Leaves(path string) []string {
	n, ok := idx.tree.Lookup(path)
	if !ok {
		return nil
	}
	if n.IsArrayOfScalars() {
		return []string{n.Path}
	}
	var out []string
	for _, c := range n.ScalarFields() {
		out = append(out, c.Path)
	}
	return out
}
