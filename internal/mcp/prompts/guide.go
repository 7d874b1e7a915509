package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleToolGuide serves the tool reference.
func HandleToolGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# promptlib Tool Guide\n\n")

		sb.WriteString("## Schema Formats\n\n")
		sb.WriteString("| Format | Example |\n")
		sb.WriteString("|--------|---------|\n")
		sb.WriteString("| `shorthand` | `{\"products\":[{\"name\":\"string\",\"price?\":\"number\"}]}` (`?` marks optional) |\n")
		sb.WriteString("| `json_schema` | `{\"type\":\"object\",\"properties\":{...},\"required\":[...]}` |\n")
		sb.WriteString("| `go_struct` | ``type Product struct { Name string `json:\"name\"` }`` |\n")
		sb.WriteString("\n`auto` (the default) detects the format. Paths are dotted; array elements share the array's path.\n")

		sb.WriteString("\n## Error Codes\n\n")
		sb.WriteString("- `NOT_FOUND`: schema_digest or template_id is not cached (caches are bounded; re-index)\n")
		sb.WriteString("- `INVALID_INPUT`: missing or malformed arguments\n")
		sb.WriteString("- `SCHEMA_INVALID`: the schema cannot be indexed\n")
		sb.WriteString("- `INTERPRETATION_CONFLICT`: the request contradicts itself; every conflict is listed\n")
		sb.WriteString("- `COMPOSITION_FAILED`: directives reference paths the schema does not have\n")
		sb.WriteString("- `RENDER_CONTRACT`: data lacks a value the template needs (render with validate: false only)\n")
		sb.WriteString("- `RULES_INVALID`: a rule definition is malformed\n")

		sb.WriteString("\n## Rules\n\n")
		sb.WriteString("Each rule is `{id, description, kind, target, parameters}`. ")
		sb.WriteString("`target: \"section:<Label>\"` checks only that markdown section.\n")
		if len(cfg.RuleKinds) > 0 {
			fmt.Fprintf(&sb, "\nKinds: %s\n", strings.Join(cfg.RuleKinds, ", "))
		}

		sb.WriteString("\n## Limits\n\n")
		if cfg.MaxInputBytes > 0 {
			fmt.Fprintf(&sb, "- Text inputs are limited to %d bytes\n", cfg.MaxInputBytes)
		}
		sb.WriteString("- `promptlib_infer_schema` accepts at most 100 samples\n")

		return &sdkmcp.GetPromptResult{
			Description: "promptlib tool reference",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
