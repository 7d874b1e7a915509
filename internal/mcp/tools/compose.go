package tools

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/compose"
	"github.com/usestring/promptlib-mcp/internal/interpret"
	"github.com/usestring/promptlib-mcp/internal/lexicon"
	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// InterpretInput is the input for promptlib_interpret.
type InterpretInput struct {
	Text         string         `json:"text,omitempty" jsonschema:"Free-text request, e.g. 'As a product manager, give me a table of products with name and price'"`
	Fields       map[string]any `json:"fields,omitempty" jsonschema:"Structured request with keys role, task, structure, subject, fields, directives. Either text or fields is required."`
	SchemaDigest string         `json:"schema_digest,omitempty" jsonschema:"Digest from promptlib_index_schema; binds field requests to schema paths"`
	Schema       any            `json:"schema,omitempty" jsonschema:"Inline schema source, used when schema_digest is empty"`
	Format       string         `json:"format,omitempty" jsonschema:"Inline schema format: auto (default), json_schema, shorthand or go_struct"`
}

// InterpretOutput is the output for promptlib_interpret.
type InterpretOutput struct {
	Directives   []types.Directive `json:"directives,omitzero"`
	SchemaDigest string            `json:"schema_digest,omitempty"`
}

// ToolInterpret extracts composition directives from a request.
func ToolInterpret(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InterpretInput) (*sdkmcp.CallToolResult, InterpretOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InterpretInput) (*sdkmcp.CallToolResult, InterpretOutput, error) {
		var tree *schema.Tree
		if input.SchemaDigest != "" || input.Schema != nil {
			var err error
			tree, err = d.ResolveSchema(input.SchemaDigest, input.Schema, input.Format)
			if err != nil {
				return nil, InterpretOutput{}, err
			}
		}
		directives, err := d.interpret(input.Text, input.Fields, tree)
		if err != nil {
			return nil, InterpretOutput{}, err
		}
		out := InterpretOutput{Directives: directives}
		if tree != nil {
			out.SchemaDigest = tree.Digest()
		}
		return nil, out, nil
	}
}

// interpret runs the interpreter on whichever request shape is present.
func (d *Deps) interpret(text string, fields map[string]any, tree *schema.Tree) ([]types.Directive, error) {
	var input any
	switch {
	case text != "" && fields != nil:
		return nil, ErrInvalidInput("provide either text or fields, not both")
	case text != "":
		if err := d.checkSize("text", text); err != nil {
			return nil, err
		}
		input = text
	case fields != nil:
		input = fields
	default:
		return nil, ErrInvalidInput("either text or fields is required")
	}

	var vocab interpret.Vocabulary
	if tree != nil {
		vocab = lexicon.New(tree)
	}
	directives, err := interpret.Interpret(input, vocab)
	if err != nil {
		return nil, WrapError(err)
	}
	return directives, nil
}

// ComposeTemplateInput is the input for promptlib_compose_template.
type ComposeTemplateInput struct {
	SchemaDigest string            `json:"schema_digest,omitempty" jsonschema:"Digest from promptlib_index_schema"`
	Schema       any               `json:"schema,omitempty" jsonschema:"Inline schema source, used when schema_digest is empty"`
	Format       string            `json:"format,omitempty" jsonschema:"Inline schema format: auto (default), json_schema, shorthand or go_struct"`
	Directives   []types.Directive `json:"directives,omitempty" jsonschema:"Directives from promptlib_interpret. When empty, text or fields is interpreted first."`
	Text         string            `json:"text,omitempty" jsonschema:"Free-text request to interpret when directives are not given"`
	Fields       map[string]any    `json:"fields,omitempty" jsonschema:"Structured request to interpret when directives are not given"`
}

// ComposeTemplateOutput is the output for promptlib_compose_template.
type ComposeTemplateOutput struct {
	TemplateID   string             `json:"template_id"`
	Layout       string             `json:"layout"`
	SchemaDigest string             `json:"schema_digest"`
	Source       string             `json:"source"`
	Directives   []types.Directive  `json:"directives,omitzero"`
	Resource     *types.ResourceRef `json:"resource,omitempty"`
}

// ToolComposeTemplate composes a template against a schema and caches it.
func ToolComposeTemplate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ComposeTemplateInput) (*sdkmcp.CallToolResult, ComposeTemplateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ComposeTemplateInput) (*sdkmcp.CallToolResult, ComposeTemplateOutput, error) {
		tree, err := d.ResolveSchema(input.SchemaDigest, input.Schema, input.Format)
		if err != nil {
			return nil, ComposeTemplateOutput{}, err
		}

		directives := input.Directives
		if len(directives) == 0 && (input.Text != "" || input.Fields != nil) {
			directives, err = d.interpret(input.Text, input.Fields, tree)
			if err != nil {
				return nil, ComposeTemplateOutput{}, err
			}
		}

		tmpl, err := compose.Compose(directives, tree)
		if err != nil {
			return nil, ComposeTemplateOutput{}, WrapError(err)
		}
		id := d.Templates.Add(tmpl)
		slog.Debug("template composed",
			slog.String("template_id", id),
			slog.String("layout", tmpl.Layout),
			slog.Int("directives", len(directives)),
		)

		return nil, ComposeTemplateOutput{
			TemplateID:   id,
			Layout:       tmpl.Layout,
			SchemaDigest: tmpl.SchemaDigest,
			Source:       tmpl.Source(),
			Directives:   directives,
			Resource:     TemplateResource(id),
		}, nil
	}
}
