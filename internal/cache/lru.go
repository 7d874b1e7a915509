// Package cache keeps recently indexed schemas and composed templates so
// that later tool calls can refer to them by digest or ID.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/internal/template"
)

// Store is a thread-safe LRU keyed by string.
type Store[T any] struct {
	cache *lru.Cache[string, T]
}

// New creates a store holding at most maxItems values.
func New[T any](maxItems int) (*Store[T], error) {
	c, err := lru.New[string, T](maxItems)
	if err != nil {
		return nil, err
	}
	return &Store[T]{cache: c}, nil
}

// Get returns the value for key and marks it recently used.
func (s *Store[T]) Get(key string) (T, bool) {
	return s.cache.Get(key)
}

// Put adds or replaces the value for key.
func (s *Store[T]) Put(key string, v T) {
	s.cache.Add(key, v)
}

// Keys returns the keys from oldest to newest.
func (s *Store[T]) Keys() []string {
	return s.cache.Keys()
}

// Len returns the current number of items.
func (s *Store[T]) Len() int {
	return s.cache.Len()
}

// SchemaStore holds indexed schema trees by digest.
type SchemaStore struct {
	*Store[*schema.Tree]
}

// NewSchemaStore creates a schema store of the given capacity.
func NewSchemaStore(maxItems int) (*SchemaStore, error) {
	s, err := New[*schema.Tree](maxItems)
	if err != nil {
		return nil, err
	}
	return &SchemaStore{Store: s}, nil
}

// Add stores tree under its digest and returns the digest.
func (s *SchemaStore) Add(tree *schema.Tree) string {
	d := tree.Digest()
	s.Put(d, tree)
	return d
}

// TemplateStore holds composed templates by ID.
type TemplateStore struct {
	*Store[*template.Template]
}

// NewTemplateStore creates a template store of the given capacity.
func NewTemplateStore(maxItems int) (*TemplateStore, error) {
	s, err := New[*template.Template](maxItems)
	if err != nil {
		return nil, err
	}
	return &TemplateStore{Store: s}, nil
}

// Add stores t under its ID and returns the ID.
func (s *TemplateStore) Add(t *template.Template) string {
	id := t.ID()
	s.Put(id, t)
	return id
}
