package tools

import (
	"fmt"

	"github.com/usestring/promptlib-mcp/internal/cache"
	"github.com/usestring/promptlib-mcp/internal/config"
	"github.com/usestring/promptlib-mcp/internal/rules"
	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/internal/template"
	"github.com/usestring/promptlib-mcp/internal/validate"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config    *config.Config
	Schemas   *cache.SchemaStore
	Templates *cache.TemplateStore
	Rules     *rules.Registry
	Validator *validate.Validator
}

// NewDeps builds stores sized from cfg. A nil registry selects the default one.
func NewDeps(cfg *config.Config, reg *rules.Registry) (*Deps, error) {
	schemas, err := cache.NewSchemaStore(cfg.SchemaCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("creating schema store: %w", err)
	}
	templates, err := cache.NewTemplateStore(cfg.TemplateCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("creating template store: %w", err)
	}
	if reg == nil {
		reg = rules.DefaultRegistry()
	}
	return &Deps{
		Config:    cfg,
		Schemas:   schemas,
		Templates: templates,
		Rules:     reg,
		Validator: validate.New(validate.WithCompaction(cfg.Compaction())),
	}, nil
}

// ResolveSchema returns the tree stored under digest, or indexes src and
// stores the result. src is schema text (JSON, YAML or Go) or a parsed value.
func (d *Deps) ResolveSchema(digest string, src any, format string) (*schema.Tree, error) {
	if digest != "" {
		tree, ok := d.Schemas.Get(digest)
		if !ok {
			return nil, ErrNotFound("schema", digest)
		}
		return tree, nil
	}
	if src == nil {
		return nil, ErrInvalidInput("either schema_digest or schema is required")
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var tree *schema.Tree
	if text, ok := src.(string); ok {
		if err := d.checkSize("schema", text); err != nil {
			return nil, err
		}
		tree, err = schema.Parse([]byte(text), f)
	} else {
		tree, err = schema.IndexFormat(src, f)
	}
	if err != nil {
		return nil, WrapError(err)
	}
	d.Schemas.Add(tree)
	return tree, nil
}

// ResolveTemplate returns the template stored under id.
func (d *Deps) ResolveTemplate(id string) (*template.Template, error) {
	if id == "" {
		return nil, ErrInvalidInput("template_id is required")
	}
	t, ok := d.Templates.Get(id)
	if !ok {
		return nil, ErrNotFound("template", id)
	}
	return t, nil
}

func (d *Deps) checkSize(field, text string) error {
	if max := d.Config.MaxInputBytes; max > 0 && len(text) > max {
		return ErrInvalidInput(fmt.Sprintf("%s is %d bytes, limit is %d", field, len(text), max))
	}
	return nil
}

// ParseFormat maps a format name onto a schema format; empty means auto.
func ParseFormat(s string) (types.SchemaFormat, error) {
	switch f := types.SchemaFormat(s); f {
	case "":
		return types.FormatAuto, nil
	case types.FormatAuto, types.FormatJSONSchema, types.FormatShorthand, types.FormatGoStruct:
		return f, nil
	}
	return "", ErrInvalidInput(fmt.Sprintf("unknown schema format %q (want auto, json_schema, shorthand or go_struct)", s))
}
