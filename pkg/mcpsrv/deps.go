package mcpsrv

import (
	"github.com/usestring/promptlib-mcp/internal/cache"
	"github.com/usestring/promptlib-mcp/internal/config"
	"github.com/usestring/promptlib-mcp/internal/rules"
	"github.com/usestring/promptlib-mcp/internal/validate"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same stores as builtin tools, so a
// custom tool can read schemas and templates the builtin tools cached.
type Deps struct {
	Config    *config.Config
	Schemas   *cache.SchemaStore
	Templates *cache.TemplateStore
	Rules     *rules.Registry
	Validator *validate.Validator
}
