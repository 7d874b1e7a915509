package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/config"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config *config.Config

	// Logging overrides
	logLevel  string
	logFile   string
	logFormat string

	// Custom rule kinds, registered on the server's own registry
	ruleKinds []ruleKind

	// Extension toggles
	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	// Registration callbacks that keep the handlers' generic types
	toolRegistrations     []func(*mcp.Server)
	promptRegistrations   []func(*mcp.Server)
	resourceRegistrations []func(*mcp.Server)

	// Tool registrations that wait for Deps
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

type ruleKind struct {
	name    string
	factory RuleFactory
}

// Option configures the server.
type Option func(*serverConfig)

// WithConfig replaces the environment-loaded configuration. Logging options
// still override its log fields.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		if c != nil {
			cfg.config = c
		}
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile sets the log file path.
// If empty, logs are written to stderr only.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithLogFormat sets the log format (text or json).
func WithLogFormat(format string) Option {
	return func(cfg *serverConfig) {
		cfg.logFormat = format
	}
}

// WithRuleKind adds a rule kind to the server's rule registry, usable from
// promptlib_check_rules. Kind names are normalized ("max_lines" becomes
// "max-lines"); a builtin or duplicate kind makes NewServer fail.
//
// The factory runs once per rule when a rule list is loaded, so parameter
// errors surface as RULES_INVALID before any text is checked.
func WithRuleKind(kind string, factory RuleFactory) Option {
	return func(cfg *serverConfig) {
		cfg.ruleKinds = append(cfg.ruleKinds, ruleKind{name: kind, factory: factory})
	}
}

// WithoutBuiltinTools disables the builtin promptlib tools and resources.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts disables the builtin promptlib prompts.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinPrompts = true
	}
}

// WithTool registers a custom tool with the server.
//
// In is decoded from the call arguments and Out is encoded as structured
// content; both follow the MCP SDK's typed handler rules. Out is checked at
// startup like the builtin tools (see AddTool).
//
//	type CountInput struct {
//	    Text string `json:"text"`
//	}
//
//	type CountOutput struct {
//	    Words int `json:"words"`
//	}
//
//	mcpsrv.WithTool(&mcp.Tool{Name: "count_words", Description: "Count words"},
//	    func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	        return nil, CountOutput{Words: len(strings.Fields(in.Text))}, nil
//	    })
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.toolRegistrations = append(cfg.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool registers a custom tool whose handler is built from Deps.
// Use this when the tool reads the schema or template stores, loads rules,
// or validates data.
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "schema_size", Description: "Count paths of a cached schema"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, SizeInput) (*mcp.CallToolResult, SizeOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in SizeInput) (*mcp.CallToolResult, SizeOutput, error) {
//	            tree, ok := d.Schemas.Get(in.SchemaDigest)
//	            if !ok {
//	                return nil, SizeOutput{}, fmt.Errorf("schema %s not cached", in.SchemaDigest)
//	            }
//	            return nil, SizeOutput{Paths: tree.Len()}, nil
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt registers a custom prompt with the server.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.promptRegistrations = append(cfg.promptRegistrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResourceTemplate registers a custom resource template with the server.
// URIs under promptlib:// are taken by the builtin resources.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.resourceRegistrations = append(cfg.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
