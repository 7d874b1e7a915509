package schema

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// SchemaError reports a schema source that cannot be indexed.
type SchemaError struct {
	Path   string // Offending schema path, empty for the root
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	if e.Path == "" {
		return "schema: " + msg
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, msg)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaErr(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Index builds a Tree from an already-parsed schema source, detecting its format.
//
// src may be a *yaml.Node or a generic value (map[string]any, []any, string).
// Generic maps carry no key order, so their properties are indexed in sorted
// key order; pass a *yaml.Node (or use Parse) to keep declaration order.
func Index(src any) (*Tree, error) {
	return IndexFormat(src, types.FormatAuto)
}

// IndexFormat is Index with an explicit source format.
func IndexFormat(src any, format types.SchemaFormat) (*Tree, error) {
	if data, ok := src.([]byte); ok {
		return Parse(data, format)
	}
	if format == types.FormatGoStruct {
		s, ok := src.(string)
		if !ok {
			return nil, schemaErr("", "go_struct source must be a string")
		}
		return parseGoStruct(s)
	}
	node, err := toNode(src)
	if err != nil {
		return nil, err
	}
	return indexNode(node, format)
}

// Parse decodes a JSON, YAML or Go struct schema source and indexes it.
func Parse(data []byte, format types.SchemaFormat) (*Tree, error) {
	if format == "" || format == types.FormatAuto {
		if looksLikeGoSource(data) {
			format = types.FormatGoStruct
		}
	}
	if format == types.FormatGoStruct {
		return parseGoStruct(string(data))
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Reason: "source is not valid JSON or YAML", Err: err}
	}
	return indexNode(&doc, format)
}

func indexNode(node *yaml.Node, format types.SchemaFormat) (*Tree, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, schemaErr("", "empty schema source")
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, schemaErr("", "root schema must describe an object")
	}

	if format == "" || format == types.FormatAuto {
		format = detectFormat(node)
	}

	var (
		root *Node
		err  error
	)
	switch format {
	case types.FormatJSONSchema:
		root, err = buildJSONSchema(node)
	case types.FormatShorthand:
		root, err = buildShorthand(node)
	default:
		return nil, schemaErr("", "unknown schema format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return newTree(root)
}

// detectFormat distinguishes a JSON Schema document from shorthand.
// A shorthand schema cannot declare "properties" as a mapping alongside a
// "type": "object" marker, nor a "$schema" key, so those are decisive.
func detectFormat(node *yaml.Node) types.SchemaFormat {
	if v := mappingValue(node, "$schema"); v != nil {
		return types.FormatJSONSchema
	}
	if v := mappingValue(node, "properties"); v != nil && v.Kind == yaml.MappingNode {
		if t := mappingValue(node, "type"); t == nil || t.Value == "object" {
			return types.FormatJSONSchema
		}
	}
	if t := mappingValue(node, "type"); t != nil && t.Kind == yaml.ScalarNode && t.Value == "object" {
		return types.FormatJSONSchema
	}
	return types.FormatShorthand
}

func looksLikeGoSource(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte("type ")) || bytes.HasPrefix(trimmed, []byte("package "))
}

func toNode(src any) (*yaml.Node, error) {
	switch v := src.(type) {
	case *yaml.Node:
		return v, nil
	case nil:
		return nil, schemaErr("", "schema source is empty")
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, schemaErr("", "schema source is empty")
		}
		return nil, schemaErr("", "schema source must be an object, got a string")
	}
	var n yaml.Node
	if err := n.Encode(src); err != nil {
		return nil, &SchemaError{Reason: "schema source cannot be represented", Err: err}
	}
	return &n, nil
}

// checkSegment rejects property names containing the path separator.
func checkSegment(parent, name string) error {
	if strings.Contains(name, ".") {
		return schemaErr(parent, "property name %q must not contain '.'", name)
	}
	return nil
}

// mappingValue returns the value node for key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// pairs iterates a mapping node's key/value pairs, rejecting duplicate keys
// and keys that would not survive as one dotted path segment.
func pairs(node *yaml.Node, path string, fn func(key string, value *yaml.Node) error) error {
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i]
		if k.Kind != yaml.ScalarNode {
			return schemaErr(path, "mapping keys must be strings")
		}
		if err := checkSegment(path, k.Value); err != nil {
			return err
		}
		if seen[k.Value] {
			return schemaErr(joinPath(path, k.Value), "duplicate key %q (line %d)", k.Value, k.Line)
		}
		seen[k.Value] = true
		if err := fn(k.Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
