package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "author_prompt_template",
		Description: "RECOMMENDED: Walk through building a prompt template from a schema and a request: index, interpret, compose, validate, render, check. Start here.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "role",
				Description: "Persona the prompt speaks for (e.g., 'product manager')",
				Required:    false,
			},
			{
				Name:        "task",
				Description: "What the prompt should get done (e.g., 'summarize the release notes')",
				Required:    false,
			},
			{
				Name:        "schema",
				Description: "Schema of the data the template will be filled with (JSON Schema, shorthand or Go struct)",
				Required:    false,
			},
		},
	}, HandleAuthorTemplate(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "tool_usage_guide",
		Description: "Reference for promptlib tools: input shapes, error codes and rule kinds.",
	}, HandleToolGuide(cfg))
}
