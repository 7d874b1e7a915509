package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_index_schema",
		Description: "Index a data schema (JSON Schema, shorthand, or Go struct source) into addressable dotted paths. Returns schema_digest plus every path with kind, type, and required/nullable flags. Start here: other tools accept schema_digest instead of re-sending the schema.",
	}, ToolIndexSchema(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_interpret",
		Description: "Extract directives (role, task, field-request, structure-hint) from a free-text or structured request. With schema_digest, field phrases are bound to schema paths. Fails with INTERPRETATION_CONFLICT listing every contradiction (two roles, list vs table, ambiguous field).",
	}, ToolInterpret(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_compose_template",
		Description: "Compose a prompt template from directives and a schema: an HTML table for a table hint over an array of objects, an HTML list for a list hint over an array, otherwise markdown sections chosen from the role/task. Returns template_id, layout, and a readable source view. Pass text or fields instead of directives to interpret in one step.",
	}, ToolComposeTemplate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_validate_data",
		Description: "Validate a data instance against a schema. Returns every mismatch with its dotted path (e.g. products.0.price), expected kind/type, and whether the value was missing. Data that validates always renders.",
	}, ToolValidateData(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_render_template",
		Description: "Fill a composed template with data. By default data is validated first against the template's schema; validation errors are returned instead of text. Optional fields with no value render as placeholders.",
	}, ToolRenderTemplate(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_check_rules",
		Description: "Check text (or a batch of documents) against declarative rules: regex-match, keyword-presence, keyword-absence, json-query (jq), css-select, xpath-select, sensitive-data, word-count. Rules may target a markdown section with target: \"section:<Label>\". Returns passed plus one violation per failed rule, in rule order.",
	}, ToolCheckRules(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_redact",
		Description: "Mask emails, API keys, and card numbers in text. Returns the masked text and each finding's category and byte offset.",
	}, ToolRedact(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "promptlib_infer_schema",
		Description: "Infer a JSON Schema (Draft 2020-12) from example data objects, with per-field stats (frequency, nullable, formats, enums). Set index=true to index the result and get a schema_digest for the other tools.",
	}, ToolInferSchema(d))
}
