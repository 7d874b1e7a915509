package schema

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// parseGoStruct indexes Go struct declarations. The first struct declared is
// the root; other declarations in the source resolve named field types.
//
// Example input:
//
//	type Response struct {
//	    Status string `json:"status"`
//	    Items  []Item `json:"items"`
//	}
//	type Item struct {
//	    ID   int     `json:"id"`
//	    Note *string `json:"note,omitempty"`
//	}
func parseGoStruct(src string) (*Tree, error) {
	body := strings.TrimSpace(src)
	if !strings.HasPrefix(body, "package ") {
		body = "package p\n\n" + body
	}
	file, err := parser.ParseFile(token.NewFileSet(), "schema.go", body, parser.SkipObjectResolution)
	if err != nil {
		return nil, &SchemaError{Reason: "invalid Go struct source", Err: err}
	}

	p := &goParser{decls: make(map[string]ast.Expr), active: make(map[string]bool)}
	var rootName string
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			p.decls[ts.Name.Name] = ts.Type
			if _, isStruct := ts.Type.(*ast.StructType); isStruct && rootName == "" {
				rootName = ts.Name.Name
			}
		}
	}
	if rootName == "" {
		return nil, schemaErr("", "no struct definitions found")
	}

	p.active[rootName] = true
	children, err := p.fields(p.decls[rootName].(*ast.StructType), "")
	if err != nil {
		return nil, err
	}
	root := &Node{Kind: types.KindObject, Required: true, Children: children}
	return newTree(root)
}

type goParser struct {
	decls  map[string]ast.Expr
	active map[string]bool // named structs on the current descent
}

func (p *goParser) fields(st *ast.StructType, parent string) ([]*Node, error) {
	var out []*Node
	for _, f := range st.Fields.List {
		name, opts := jsonTag(f)
		if name == "-" {
			continue
		}

		if len(f.Names) == 0 {
			// Embedded struct without a json name is inlined.
			if ident := embeddedIdent(f.Type); ident != "" && name == "" {
				if inner, ok := p.decls[ident].(*ast.StructType); ok {
					if p.active[ident] {
						return nil, schemaErr(parent, "cyclic struct reference %q", ident)
					}
					p.active[ident] = true
					nested, err := p.fields(inner, parent)
					delete(p.active, ident)
					if err != nil {
						return nil, err
					}
					out = append(out, nested...)
					continue
				}
			}
			goName := embeddedIdent(f.Type)
			if goName == "" || !ast.IsExported(goName) {
				continue
			}
			n, err := p.fieldNode(f.Type, parent, firstNonEmpty(name, goName), opts)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
			continue
		}

		for _, ident := range f.Names {
			if !ast.IsExported(ident.Name) {
				continue
			}
			n, err := p.fieldNode(f.Type, parent, firstNonEmpty(name, ident.Name), opts)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

func (p *goParser) fieldNode(expr ast.Expr, parent, name string, opts string) (*Node, error) {
	if err := checkSegment(parent, name); err != nil {
		return nil, err
	}
	n, err := p.typeNode(expr, joinPath(parent, name), name)
	if err != nil {
		return nil, err
	}
	n.Required = !hasOption(opts, "omitempty") && !hasOption(opts, "omitzero")
	return n, nil
}

func (p *goParser) typeNode(expr ast.Expr, path, name string) (*Node, error) {
	scalar := func(t string) (*Node, error) {
		return &Node{Path: path, Name: name, Kind: types.KindScalar, Type: t}, nil
	}

	switch t := expr.(type) {
	case *ast.StarExpr:
		n, err := p.typeNode(t.X, path, name)
		if err != nil {
			return nil, err
		}
		n.Nullable = true
		return n, nil

	case *ast.ParenExpr:
		return p.typeNode(t.X, path, name)

	case *ast.Ident:
		switch t.Name {
		case "string":
			return scalar(TypeString)
		case "bool":
			return scalar(TypeBoolean)
		case "int", "int8", "int16", "int32", "int64",
			"uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte", "rune":
			return scalar(TypeInteger)
		case "float32", "float64":
			return scalar(TypeNumber)
		case "any", "error":
			return scalar(TypeAny)
		}
		decl, ok := p.decls[t.Name]
		if !ok {
			return nil, schemaErr(path, "unknown element kind %q", t.Name)
		}
		if p.active[t.Name] {
			return nil, schemaErr(path, "cyclic struct reference %q", t.Name)
		}
		p.active[t.Name] = true
		defer delete(p.active, t.Name)
		return p.typeNode(decl, path, name)

	case *ast.StructType:
		children, err := p.fields(t, path)
		if err != nil {
			return nil, err
		}
		return &Node{Path: path, Name: name, Kind: types.KindObject, Children: children}, nil

	case *ast.ArrayType:
		if id, ok := t.Elt.(*ast.Ident); ok && id.Name == "byte" {
			return scalar(TypeString) // encoding/json writes []byte as base64
		}
		elem, err := p.typeNode(t.Elt, path, name)
		if err != nil {
			return nil, err
		}
		elem.Element = true
		elem.Required = true
		return &Node{Path: path, Name: name, Kind: types.KindArray, Children: []*Node{elem}}, nil

	case *ast.MapType, *ast.InterfaceType:
		return scalar(TypeAny)

	case *ast.SelectorExpr:
		pkg, _ := t.X.(*ast.Ident)
		qualified := t.Sel.Name
		if pkg != nil {
			qualified = pkg.Name + "." + t.Sel.Name
		}
		switch qualified {
		case "time.Time":
			return scalar(TypeString)
		case "time.Duration":
			return scalar(TypeInteger)
		}
		return scalar(TypeAny)
	}
	return nil, schemaErr(path, "unsupported Go type %T", expr)
}

func jsonTag(f *ast.Field) (name, opts string) {
	if f.Tag == nil {
		return "", ""
	}
	raw, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return "", ""
	}
	tag := reflect.StructTag(raw).Get("json")
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

func embeddedIdent(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedIdent(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return ""
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
