package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/jsonschema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// maxInferSamples bounds promptlib_infer_schema input.
const maxInferSamples = 100

// IndexSchemaInput is the input for promptlib_index_schema.
type IndexSchemaInput struct {
	Schema any    `json:"schema" jsonschema:"Schema source: JSON Schema, shorthand ({\"user\":{\"name\":\"string\"}}) or Go struct text. Text keeps declaration order; objects are indexed in sorted key order."`
	Format string `json:"format,omitempty" jsonschema:"auto (default), json_schema, shorthand or go_struct"`
}

// SchemaNode describes one addressable schema path.
type SchemaNode struct {
	Path        string           `json:"path"`
	Kind        types.SchemaKind `json:"kind"`
	Type        string           `json:"type,omitempty"`
	Required    bool             `json:"required"`
	Nullable    bool             `json:"nullable,omitempty"`
	Description string           `json:"description,omitempty"`
}

// IndexSchemaOutput is the output for promptlib_index_schema.
type IndexSchemaOutput struct {
	SchemaDigest string             `json:"schema_digest"`
	Nodes        []SchemaNode       `json:"nodes,omitzero"`
	Hint         string             `json:"hint,omitempty"`
	Resource     *types.ResourceRef `json:"resource,omitempty"`
}

// ToolIndexSchema indexes a schema and caches the tree by digest.
func ToolIndexSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexSchemaInput) (*sdkmcp.CallToolResult, IndexSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input IndexSchemaInput) (*sdkmcp.CallToolResult, IndexSchemaOutput, error) {
		if input.Schema == nil {
			return nil, IndexSchemaOutput{}, ErrInvalidInput("schema is required")
		}
		tree, err := d.ResolveSchema("", input.Schema, input.Format)
		if err != nil {
			return nil, IndexSchemaOutput{}, err
		}
		return nil, IndexSchemaOutput{
			SchemaDigest: tree.Digest(),
			Nodes:        DescribeNodes(tree),
			Hint:         "Pass schema_digest to promptlib_interpret, promptlib_compose_template or promptlib_validate_data.",
			Resource:     SchemaResource(tree.Digest()),
		}, nil
	}
}

// DescribeNodes lists every addressable node of tree in schema order.
func DescribeNodes(tree *schema.Tree) []SchemaNode {
	nodes := tree.Nodes()
	out := make([]SchemaNode, len(nodes))
	for i, n := range nodes {
		out[i] = SchemaNode{
			Path:        n.Path,
			Kind:        n.Kind,
			Type:        n.Type,
			Required:    n.Required,
			Nullable:    n.Nullable,
			Description: n.Description,
		}
	}
	return out
}

// InferSchemaInput is the input for promptlib_infer_schema.
type InferSchemaInput struct {
	Samples []any  `json:"samples,omitempty" jsonschema:"Example data objects (max 100). Each must be a JSON object."`
	CSV     string `json:"csv,omitempty" jsonschema:"CSV text used instead of samples: one sample per row, header row names the fields"`
	Closed  bool   `json:"closed,omitempty" jsonschema:"Set additionalProperties: false on every object"`
	Index   bool   `json:"index,omitempty" jsonschema:"Also index the inferred schema and return its schema_digest"`
}

// InferSchemaOutput is the output for promptlib_infer_schema.
type InferSchemaOutput struct {
	Schema       any                    `json:"schema"`
	SampleCount  int                    `json:"sample_count"`
	AllMatch     bool                   `json:"all_match"`
	Fields       []jsonschema.FieldStat `json:"fields,omitzero"`
	SchemaDigest string                 `json:"schema_digest,omitempty"`
}

// ToolInferSchema infers a JSON Schema from example data.
func ToolInferSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, InferSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, InferSchemaOutput, error) {
		samples := input.Samples
		switch {
		case input.CSV != "" && len(samples) > 0:
			return nil, InferSchemaOutput{}, ErrInvalidInput("provide either samples or csv, not both")
		case input.CSV != "":
			if err := d.checkSize("csv", input.CSV); err != nil {
				return nil, InferSchemaOutput{}, err
			}
			rows, err := jsonschema.RowsFromCSV([]byte(input.CSV))
			if err != nil {
				return nil, InferSchemaOutput{}, ErrInvalidInput(err.Error())
			}
			samples = rows
		case len(samples) == 0:
			return nil, InferSchemaOutput{}, ErrInvalidInput("samples or csv is required")
		case len(samples) > maxInferSamples:
			return nil, InferSchemaOutput{}, ErrInvalidInput(fmt.Sprintf("at most %d samples are accepted, got %d", maxInferSamples, len(samples)))
		}

		opts := jsonschema.DefaultOptions()
		opts.Closed = input.Closed
		inferred, err := jsonschema.InferWithOptions(opts, samples...)
		if err != nil {
			return nil, InferSchemaOutput{}, ErrInvalidInput(err.Error())
		}

		doc, err := types.ToAny(inferred.Schema)
		if err != nil {
			return nil, InferSchemaOutput{}, fmt.Errorf("encoding inferred schema: %w", err)
		}
		out := InferSchemaOutput{
			Schema:      doc,
			SampleCount: inferred.SampleCount,
			AllMatch:    inferred.AllMatch,
			Fields:      inferred.Fields,
		}
		if input.Index {
			tree, err := schema.IndexFormat(doc, types.FormatJSONSchema)
			if err != nil {
				return nil, InferSchemaOutput{}, WrapError(err)
			}
			out.SchemaDigest = d.Schemas.Add(tree)
		}
		return nil, out, nil
	}
}
