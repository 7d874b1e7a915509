package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/render"
	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// ValidateDataInput is the input for promptlib_validate_data.
type ValidateDataInput struct {
	SchemaDigest string `json:"schema_digest,omitempty" jsonschema:"Digest from promptlib_index_schema"`
	Schema       any    `json:"schema,omitempty" jsonschema:"Inline schema source, used when schema_digest is empty"`
	Format       string `json:"format,omitempty" jsonschema:"Inline schema format: auto (default), json_schema, shorthand or go_struct"`
	Data         any    `json:"data" jsonschema:"Data instance to check against the schema"`
}

// ValidateDataOutput is the output for promptlib_validate_data.
type ValidateDataOutput struct {
	Valid        bool                    `json:"valid"`
	Errors       []types.ValidationError `json:"errors,omitzero"`
	SchemaDigest string                  `json:"schema_digest"`
}

// ToolValidateData checks a data instance against a schema and reports
// every mismatch.
func ToolValidateData(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateDataInput) (*sdkmcp.CallToolResult, ValidateDataOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateDataInput) (*sdkmcp.CallToolResult, ValidateDataOutput, error) {
		tree, err := d.ResolveSchema(input.SchemaDigest, input.Schema, input.Format)
		if err != nil {
			return nil, ValidateDataOutput{}, err
		}
		report := types.NewValidationReport(d.Validator.Validate(input.Data, tree))
		return nil, ValidateDataOutput{
			Valid:        report.Valid,
			Errors:       report.Errors,
			SchemaDigest: tree.Digest(),
		}, nil
	}
}

// RenderTemplateInput is the input for promptlib_render_template.
type RenderTemplateInput struct {
	TemplateID string `json:"template_id,omitempty" jsonschema:"ID from promptlib_compose_template"`
	Template   any    `json:"template,omitempty" jsonschema:"Encoded template tree (as served by the template resource), used when template_id is empty"`
	Data       any    `json:"data" jsonschema:"Data to render"`
	Validate   *bool  `json:"validate,omitempty" jsonschema:"Validate data against the template's schema first when it is cached (default: true)"`
}

// RenderTemplateOutput is the output for promptlib_render_template.
type RenderTemplateOutput struct {
	Text       string                  `json:"text,omitempty"`
	Rendered   bool                    `json:"rendered"`
	Errors     []types.ValidationError `json:"errors,omitzero"`
	TemplateID string                  `json:"template_id"`
}

// ToolRenderTemplate fills a template with data. Data that fails validation
// is reported instead of rendered.
func ToolRenderTemplate(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RenderTemplateInput) (*sdkmcp.CallToolResult, RenderTemplateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RenderTemplateInput) (*sdkmcp.CallToolResult, RenderTemplateOutput, error) {
		tmpl, err := d.templateFor(input.TemplateID, input.Template)
		if err != nil {
			return nil, RenderTemplateOutput{}, err
		}
		id := tmpl.ID()

		if input.Validate == nil || *input.Validate {
			if tree, ok := d.Schemas.Get(tmpl.SchemaDigest); ok {
				if errs := d.Validator.Validate(input.Data, tree); len(errs) > 0 {
					return nil, RenderTemplateOutput{Errors: errs, TemplateID: id}, nil
				}
			}
		}

		text, err := render.Render(tmpl, input.Data)
		if err != nil {
			return nil, RenderTemplateOutput{}, WrapError(err)
		}
		slog.Debug("template rendered", slog.String("template_id", id), slog.Int("bytes", len(text)))
		return nil, RenderTemplateOutput{Text: text, Rendered: true, TemplateID: id}, nil
	}
}

// templateFor returns the cached template for id, or decodes an inline one.
func (d *Deps) templateFor(id string, inline any) (*template.Template, error) {
	if id != "" || inline == nil {
		return d.ResolveTemplate(id)
	}
	var raw []byte
	switch v := inline.(type) {
	case string:
		if err := d.checkSize("template", v); err != nil {
			return nil, err
		}
		raw = []byte(v)
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, ErrInvalidInput("template cannot be encoded: " + err.Error())
		}
		raw = enc
	}
	t, err := template.Decode(raw)
	if err != nil {
		return nil, ErrInvalidInput(err.Error())
	}
	return t, nil
}
