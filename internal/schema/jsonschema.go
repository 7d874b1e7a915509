package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// printer is a default English printer for localized compiler messages.
var printer = message.NewPrinter(language.English)

// buildJSONSchema indexes a JSON Schema document. The document is compiled
// first so that structurally invalid schemas are rejected with the
// compiler's own diagnostics before the tree walk starts.
func buildJSONSchema(doc *yaml.Node) (*Node, error) {
	if err := compileCheck(doc); err != nil {
		return nil, err
	}

	b := &jsonSchemaBuilder{doc: doc, active: make(map[string]bool)}
	root, err := b.build(doc, "", "")
	if err != nil {
		return nil, err
	}
	if root.Kind != types.KindObject {
		return nil, schemaErr("", "root schema must describe an object, got %s", root.Kind)
	}
	root.Required = true
	root.Nullable = false
	return root, nil
}

// compileCheck runs the document through the JSON Schema compiler.
func compileCheck(doc *yaml.Node) error {
	var generic any
	if err := doc.Decode(&generic); err != nil {
		return &SchemaError{Reason: "schema source cannot be decoded", Err: err}
	}
	raw, err := json.Marshal(generic)
	if err != nil {
		return &SchemaError{Reason: "schema source cannot be represented as JSON", Err: err}
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &SchemaError{Reason: "schema source is not valid JSON", Err: err}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", value); err != nil {
		return &SchemaError{Reason: "adding schema resource", Err: err}
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return compileError(err)
	}
	return nil
}

// compileError flattens compiler diagnostics into a single SchemaError.
func compileError(err error) error {
	var verr *jsonschema.ValidationError
	var sverr *jsonschema.SchemaValidationError
	if errors.As(err, &sverr) {
		verr, _ = sverr.Err.(*jsonschema.ValidationError)
	} else {
		errors.As(err, &verr)
	}
	if verr == nil {
		return &SchemaError{Reason: "invalid JSON Schema", Err: err}
	}

	byPath := make(map[string][]string)
	collectErrors(verr, byPath)

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var msgs []string
	for _, p := range paths {
		seen := make(map[string]bool)
		for _, m := range byPath[p] {
			if seen[m] {
				continue
			}
			seen[m] = true
			if p != "" {
				m = p + ": " + m
			}
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return &SchemaError{Reason: "invalid JSON Schema", Err: err}
	}
	first := ""
	if len(paths) > 0 {
		first = strings.ReplaceAll(strings.TrimPrefix(paths[0], "/"), "/", ".")
	}
	return &SchemaError{Path: first, Reason: "invalid JSON Schema: " + strings.Join(msgs, "; ")}
}

// collectErrors gathers leaf compiler errors keyed by instance location.
func collectErrors(err *jsonschema.ValidationError, byPath map[string][]string) {
	loc := ""
	if len(err.InstanceLocation) > 0 {
		loc = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[loc] = append(byPath[loc], msg)
		}
	}
	for _, cause := range err.Causes {
		collectErrors(cause, byPath)
	}
}

type jsonSchemaBuilder struct {
	doc    *yaml.Node
	active map[string]bool // $ref targets on the current descent
}

func (b *jsonSchemaBuilder) build(node *yaml.Node, path, name string) (*Node, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case "true":
			return &Node{Path: path, Name: name, Kind: types.KindScalar, Type: TypeAny}, nil
		case "false":
			return nil, schemaErr(path, "schema false admits no value")
		}
		return nil, schemaErr(path, "schema must be an object or boolean")
	}
	if node.Kind != yaml.MappingNode {
		return nil, schemaErr(path, "schema must be an object or boolean")
	}

	if ref := mappingValue(node, "$ref"); ref != nil {
		return b.buildRef(ref.Value, node, path, name)
	}

	n := &Node{Path: path, Name: name}
	if d := mappingValue(node, "description"); d != nil {
		n.Description = d.Value
	}

	typeNames, nullable, err := schemaTypes(node, path)
	if err != nil {
		return nil, err
	}

	if len(typeNames) == 0 {
		if v, ok, err := b.buildVariants(node, path, name); err != nil {
			return nil, err
		} else if ok {
			if n.Description != "" && v.Description == "" {
				v.Description = n.Description
			}
			return v, nil
		}
	}

	n.Nullable = nullable
	switch {
	case len(typeNames) > 1:
		n.Kind, n.Type = types.KindScalar, TypeAny
	case len(typeNames) == 1:
		switch t := typeNames[0]; t {
		case "object":
			n.Kind = types.KindObject
		case "array":
			n.Kind = types.KindArray
		case TypeString, TypeNumber, TypeInteger, TypeBoolean:
			n.Kind, n.Type = types.KindScalar, t
		default:
			return nil, schemaErr(path, "unknown element kind %q", t)
		}
	case nullable:
		n.Kind, n.Type = types.KindScalar, TypeNull
	case mappingValue(node, "properties") != nil:
		n.Kind = types.KindObject
	case mappingValue(node, "items") != nil:
		n.Kind = types.KindArray
	default:
		n.Kind, n.Type = types.KindScalar, TypeAny
	}

	switch n.Kind {
	case types.KindObject:
		if err := b.buildObject(node, n); err != nil {
			return nil, err
		}
	case types.KindArray:
		if err := b.buildArray(node, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// schemaTypes reads "type" into non-null type names plus a nullable flag.
func schemaTypes(node *yaml.Node, path string) ([]string, bool, error) {
	t := mappingValue(node, "type")
	if t == nil {
		return nil, false, nil
	}
	var names []string
	switch t.Kind {
	case yaml.ScalarNode:
		names = []string{t.Value}
	case yaml.SequenceNode:
		for _, c := range t.Content {
			names = append(names, c.Value)
		}
	default:
		return nil, false, schemaErr(path, "type must be a string or list")
	}

	var out []string
	nullable := false
	for _, name := range names {
		if name == TypeNull {
			nullable = true
			continue
		}
		out = append(out, name)
	}
	return out, nullable, nil
}

// buildVariants handles anyOf/oneOf unions. A union of one concrete variant and
// null collapses to that variant marked nullable; anything wider is "any".
func (b *jsonSchemaBuilder) buildVariants(node *yaml.Node, path, name string) (*Node, bool, error) {
	for _, key := range []string{"anyOf", "oneOf"} {
		list := mappingValue(node, key)
		if list == nil || list.Kind != yaml.SequenceNode {
			continue
		}
		var variants []*yaml.Node
		nullable := false
		for _, v := range list.Content {
			if t := mappingValue(v, "type"); t != nil && t.Kind == yaml.ScalarNode && t.Value == TypeNull {
				nullable = true
				continue
			}
			variants = append(variants, v)
		}
		if len(variants) == 1 {
			n, err := b.build(variants[0], path, name)
			if err != nil {
				return nil, false, err
			}
			n.Nullable = n.Nullable || nullable
			return n, true, nil
		}
		if len(variants) == 0 && nullable {
			return &Node{Path: path, Name: name, Kind: types.KindScalar, Type: TypeNull, Nullable: true}, true, nil
		}
		return &Node{Path: path, Name: name, Kind: types.KindScalar, Type: TypeAny, Nullable: nullable}, true, nil
	}
	return nil, false, nil
}

func (b *jsonSchemaBuilder) buildObject(node *yaml.Node, n *Node) error {
	required := make(map[string]bool)
	if req := mappingValue(node, "required"); req != nil {
		if req.Kind != yaml.SequenceNode {
			return schemaErr(n.Path, "required must be a list")
		}
		for _, r := range req.Content {
			required[r.Value] = true
		}
	}
	if ap := mappingValue(node, "additionalProperties"); ap != nil && ap.Kind == yaml.ScalarNode && ap.Value == "false" {
		n.Closed = true
	}

	props := mappingValue(node, "properties")
	if props == nil {
		return nil
	}
	if props.Kind != yaml.MappingNode {
		return schemaErr(n.Path, "properties must be an object")
	}
	return pairs(props, n.Path, func(key string, value *yaml.Node) error {
		child, err := b.build(value, joinPath(n.Path, key), key)
		if err != nil {
			return err
		}
		child.Required = required[key]
		n.Children = append(n.Children, child)
		return nil
	})
}

func (b *jsonSchemaBuilder) buildArray(node *yaml.Node, n *Node) error {
	if mappingValue(node, "prefixItems") != nil {
		return schemaErr(n.Path, "tuple arrays are not supported")
	}
	items := mappingValue(node, "items")
	var elem *Node
	switch {
	case items == nil:
		elem = &Node{Kind: types.KindScalar, Type: TypeAny}
	case items.Kind == yaml.SequenceNode:
		return schemaErr(n.Path, "tuple arrays are not supported")
	default:
		var err error
		elem, err = b.build(items, n.Path, n.Name)
		if err != nil {
			return err
		}
	}
	elem.Path, elem.Name = n.Path, n.Name
	elem.Element = true
	elem.Required = true
	n.Children = []*Node{elem}
	return nil
}

func (b *jsonSchemaBuilder) buildRef(ref string, node *yaml.Node, path, name string) (*Node, error) {
	if b.active[ref] {
		return nil, schemaErr(path, "cyclic reference %q", ref)
	}
	target, err := b.resolve(ref, path)
	if err != nil {
		return nil, err
	}
	b.active[ref] = true
	defer delete(b.active, ref)

	n, err := b.build(target, path, name)
	if err != nil {
		return nil, err
	}
	if d := mappingValue(node, "description"); d != nil {
		n.Description = d.Value
	}
	return n, nil
}

// resolve follows a document-local JSON pointer reference.
func (b *jsonSchemaBuilder) resolve(ref, path string) (*yaml.Node, error) {
	if ref == "#" {
		return b.doc, nil
	}
	pointer, ok := strings.CutPrefix(ref, "#/")
	if !ok {
		return nil, schemaErr(path, "only document-local references are supported, got %q", ref)
	}
	cur := b.doc
	for _, seg := range strings.Split(pointer, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		cur = mappingValue(cur, seg)
		if cur == nil {
			return nil, schemaErr(path, "unresolved reference %q", ref)
		}
	}
	return cur, nil
}
