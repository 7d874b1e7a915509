package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleAuthorTemplate implements the template authoring workflow.
func HandleAuthorTemplate(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		role := ""
		task := ""
		schemaSrc := ""
		if args != nil {
			role = strings.TrimSpace(args["role"])
			task = strings.TrimSpace(args["task"])
			schemaSrc = strings.TrimSpace(args["schema"])
		}

		var sb strings.Builder

		sb.WriteString("# Author a Prompt Template\n\n")
		sb.WriteString("You are building a reusable prompt template that is filled with structured data. ")
		sb.WriteString("Every variable in the template must come from the data schema, so data that validates always renders.\n\n")

		if role != "" || task != "" {
			sb.WriteString("## Request\n\n")
			if role != "" {
				fmt.Fprintf(&sb, "- **Role**: %s\n", role)
			}
			if task != "" {
				fmt.Fprintf(&sb, "- **Task**: %s\n", task)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("## Workflow\n\n")
		sb.WriteString("1. **Index the schema**: `promptlib_index_schema(schema: ...)` returns `schema_digest` and every dotted path.\n")
		if schemaSrc == "" {
			sb.WriteString("   - No schema yet? Call `promptlib_infer_schema(samples: [...], index: true)` with a few example objects.\n")
		}
		sb.WriteString("2. **Interpret the request**: `promptlib_interpret(text: ..., schema_digest: ...)`. ")
		sb.WriteString("On `INTERPRETATION_CONFLICT`, fix every listed conflict in one pass and retry.\n")
		sb.WriteString("3. **Compose**: `promptlib_compose_template(schema_digest: ..., directives: [...])`. ")
		sb.WriteString("Check `layout` (table, list or sections:<category>) and the `source` view.\n")
		sb.WriteString("4. **Validate data**: `promptlib_validate_data(schema_digest: ..., data: ...)` before rendering real data.\n")
		sb.WriteString("5. **Render**: `promptlib_render_template(template_id: ..., data: ...)`.\n")
		sb.WriteString("6. **Check the output**: `promptlib_check_rules(text: ..., rules: [...])`, then `promptlib_redact` if the data can hold personal details.\n\n")

		if schemaSrc != "" {
			sb.WriteString("## Schema\n\n")
			sb.WriteString("Index this schema first:\n\n```\n")
			sb.WriteString(schemaSrc)
			sb.WriteString("\n```\n\n")
		}

		sb.WriteString("## Request Phrasing\n\n")
		if role == "" && task == "" {
			sb.WriteString("- Name the persona and goal: \"As a product manager, I need to summarize feedback\"\n")
		} else {
			fmt.Fprintf(&sb, "- Suggested request: \"%s\"\n", suggestedRequest(role, task))
		}
		sb.WriteString("- Ask for a structure by name: \"as a table\", \"bulleted list\", \"in sections\"\n")
		sb.WriteString("- Name fields the way the schema does; plurals and case do not matter\n")
		sb.WriteString("- Ask for one layout only; table and list together is a conflict\n\n")

		sb.WriteString("## Tips\n\n")
		sb.WriteString("- `schema_digest` is stable for equal schemas; reuse it across calls instead of re-sending the schema\n")
		sb.WriteString("- Optional fields render a placeholder when absent; required fields must be present\n")
		if len(cfg.RuleKinds) > 0 {
			fmt.Fprintf(&sb, "- Rule kinds: %s\n", strings.Join(cfg.RuleKinds, ", "))
		}

		return &sdkmcp.GetPromptResult{
			Description: "Guide for authoring a prompt template",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}

func suggestedRequest(role, task string) string {
	switch {
	case role != "" && task != "":
		return fmt.Sprintf("As a %s, I need to %s", role, task)
	case role != "":
		return fmt.Sprintf("As a %s, ...", role)
	default:
		return fmt.Sprintf("I need to %s", task)
	}
}
