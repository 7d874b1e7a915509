package jsonschema

import (
	"github.com/invopop/jsonschema"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// FromTree converts an indexed schema back into a JSON Schema document.
// Properties keep index order and nullable nodes become anyOf [T, null],
// so that indexing the result yields an equivalent tree.
func FromTree(tree *schema.Tree) *jsonschema.Schema {
	s := fromNode(tree.Root)
	s.Version = Draft
	return s
}

func fromNode(n *schema.Node) *jsonschema.Schema {
	var s *jsonschema.Schema
	switch n.Kind {
	case types.KindObject:
		s = &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, c := range n.Children {
			s.Properties.Set(c.Name, fromNode(c))
			if c.Required {
				s.Required = append(s.Required, c.Name)
			}
		}
		if n.Closed {
			s.AdditionalProperties = jsonschema.FalseSchema
		}
	case types.KindArray:
		s = &jsonschema.Schema{Type: "array"}
		if elem := n.Elem(); elem != nil {
			s.Items = fromNode(elem)
		}
	default:
		switch n.Type {
		case schema.TypeAny:
			s = &jsonschema.Schema{}
		case schema.TypeNull:
			return &jsonschema.Schema{Type: "null", Description: n.Description}
		default:
			s = &jsonschema.Schema{Type: n.Type}
		}
	}

	if n.Nullable {
		s = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{s, {Type: "null"}}}
	}
	if n.Description != "" {
		s.Description = n.Description
	}
	return s
}
