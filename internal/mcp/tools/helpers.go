// Package tools contains MCP tool implementations for promptlib.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/pkg/jsonschema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// Resource URI prefixes.
const (
	TemplateURIPrefix = "promptlib://template/"
	SchemaURIPrefix   = "promptlib://schema/"
)

// TemplateResource points at the resource serving a cached template.
func TemplateResource(id string) *types.ResourceRef {
	return &types.ResourceRef{
		URI:  TemplateURIPrefix + id,
		MIME: MimeJSON,
		Hint: "Full template tree and schema paths. Use promptlib_render_template with template_id to fill it.",
	}
}

// SchemaResource points at the resource serving a cached schema.
func SchemaResource(digest string) *types.ResourceRef {
	return &types.ResourceRef{
		URI:  SchemaURIPrefix + digest,
		MIME: MimeJSON,
		Hint: "Indexed paths plus the equivalent JSON Schema.",
	}
}

// EncodeTemplate serializes a template for resource and tool output.
func EncodeTemplate(t *template.Template) (json.RawMessage, error) {
	data, err := template.Encode(t)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return data, nil
}

// ExportSchema renders tree as a generic JSON Schema document.
func ExportSchema(tree *schema.Tree) (any, error) {
	doc, err := types.ToAny(jsonschema.FromTree(tree))
	if err != nil {
		return nil, fmt.Errorf("exporting schema: %w", err)
	}
	return doc, nil
}
