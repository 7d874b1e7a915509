package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/mcp/tools"
)

// Resource URI scheme: promptlib://
// Supported URIs:
//   promptlib://template/{id}
//   promptlib://schema/{digest}

// templateResource is the JSON body served for a cached template.
type templateResource struct {
	TemplateID   string          `json:"template_id"`
	Layout       string          `json:"layout"`
	Role         string          `json:"role,omitempty"`
	Task         string          `json:"task,omitempty"`
	SchemaDigest string          `json:"schema_digest"`
	Source       string          `json:"source"`
	Template     json.RawMessage `json:"template"`
	SchemaPaths  []string        `json:"schema_paths,omitzero"`
}

// schemaResource is the JSON body served for a cached schema.
type schemaResource struct {
	SchemaDigest string             `json:"schema_digest"`
	Nodes        []tools.SchemaNode `json:"nodes"`
	JSONSchema   any                `json:"json_schema"`
}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.TemplateURIPrefix + "{id}",
		Name:        "Prompt Template",
		Description: "Full composed template: node tree, readable source and the schema paths it was composed against. The encoded tree can be passed back to promptlib_render_template as template.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceTemplate)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: tools.SchemaURIPrefix + "{digest}",
		Name:        "Indexed Schema",
		Description: "Indexed schema paths plus the equivalent JSON Schema (Draft 2020-12). promptlib_index_schema already returns the paths; fetch this for the exported JSON Schema.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceSchema)
}

func (s *Server) handleResourceTemplate(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	id := params["id"]
	tmpl, ok := s.deps.Templates.Get(id)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	enc, err := tools.EncodeTemplate(tmpl)
	if err != nil {
		return nil, err
	}

	content := templateResource{
		TemplateID:   id,
		Layout:       tmpl.Layout,
		Role:         tmpl.Role,
		Task:         tmpl.Task,
		SchemaDigest: tmpl.SchemaDigest,
		Source:       tmpl.Source(),
		Template:     enc,
	}
	if tree, ok := s.deps.Schemas.Get(tmpl.SchemaDigest); ok {
		content.SchemaPaths = tree.Paths()
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	digest := params["digest"]
	tree, ok := s.deps.Schemas.Get(digest)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	doc, err := tools.ExportSchema(tree)
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, schemaResource{
		SchemaDigest: digest,
		Nodes:        tools.DescribeNodes(tree),
		JSONSchema:   doc,
	})
}

// Helper functions

// parseResourceURI extracts parameters from a promptlib:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, "promptlib://") {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected promptlib://")
	}

	path := strings.TrimPrefix(uri, "promptlib://")
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "template":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("template URI requires a template ID")
		}
		params["id"] = parts[1]

	case "schema":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("schema URI requires a schema digest")
		}
		params["digest"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
