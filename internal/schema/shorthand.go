package schema

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// scalarAliases maps shorthand type names to scalar types.
var scalarAliases = map[string]string{
	"string":  TypeString,
	"str":     TypeString,
	"text":    TypeString,
	"number":  TypeNumber,
	"float":   TypeNumber,
	"double":  TypeNumber,
	"integer": TypeInteger,
	"int":     TypeInteger,
	"boolean": TypeBoolean,
	"bool":    TypeBoolean,
	"null":    TypeNull,
	"any":     TypeAny,
}

// buildShorthand indexes the compact form:
//
//	user:
//	  name: string
//	  nickname?: string
//	  tags: [string]
//	  orders: [{id: integer, total: number}]
func buildShorthand(node *yaml.Node) (*Node, error) {
	root := &Node{Kind: types.KindObject, Required: true}
	children, err := shorthandProperties(node, "")
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

func shorthandProperties(node *yaml.Node, parent string) ([]*Node, error) {
	var children []*Node
	err := pairs(node, parent, func(key string, value *yaml.Node) error {
		name, required := strings.CutSuffix(key, "?")
		required = !required
		if name == "" {
			return schemaErr(parent, "empty property name")
		}
		child, err := shorthandNode(value, joinPath(parent, name), name)
		if err != nil {
			return err
		}
		child.Required = required
		children = append(children, child)
		return nil
	})
	return children, err
}

func shorthandNode(value *yaml.Node, path, name string) (*Node, error) {
	switch value.Kind {
	case yaml.MappingNode:
		n := &Node{Path: path, Name: name, Kind: types.KindObject}
		children, err := shorthandProperties(value, path)
		if err != nil {
			return nil, err
		}
		n.Children = children
		return n, nil

	case yaml.SequenceNode:
		if len(value.Content) != 1 {
			return nil, schemaErr(path, "array shorthand needs exactly one element schema, got %d", len(value.Content))
		}
		elem, err := shorthandNode(value.Content[0], path, name)
		if err != nil {
			return nil, err
		}
		elem.Element = true
		elem.Required = true
		return &Node{Path: path, Name: name, Kind: types.KindArray, Children: []*Node{elem}}, nil

	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return nil, schemaErr(path, "unknown element kind %q", value.Value)
		}
		t, ok := scalarAliases[strings.ToLower(strings.TrimSpace(value.Value))]
		if !ok {
			return nil, schemaErr(path, "unknown element kind %q", value.Value)
		}
		return &Node{Path: path, Name: name, Kind: types.KindScalar, Type: t, Nullable: t == TypeNull}, nil

	case yaml.AliasNode:
		return nil, schemaErr(path, "cyclic or aliased reference is not supported")

	default:
		return nil, schemaErr(path, "unknown element kind")
	}
}
