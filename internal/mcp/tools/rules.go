package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/promptlib-mcp/internal/redact"
	"github.com/usestring/promptlib-mcp/internal/rules"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

// DocumentInput is one named text in a batch check.
type DocumentInput struct {
	Name string `json:"name,omitempty" jsonschema:"Label echoed in the report"`
	Text string `json:"text" jsonschema:"Text to check"`
}

// CheckRulesInput is the input for promptlib_check_rules.
type CheckRulesInput struct {
	Text      string          `json:"text,omitempty" jsonschema:"Text to check. Either text or documents is required."`
	Documents []DocumentInput `json:"documents,omitempty" jsonschema:"Several texts checked concurrently against the same rules"`
	Rules     any             `json:"rules" jsonschema:"Rule list: JSON/YAML text or an array of {id, description, kind, target, parameters}. Kinds: regex-match, keyword-presence, keyword-absence, json-query, css-select, xpath-select, sensitive-data, word-count."`
}

// CheckRulesOutput is the output for promptlib_check_rules.
type CheckRulesOutput struct {
	Passed     bool                  `json:"passed"`
	RuleCount  int                   `json:"rule_count"`
	Violations []types.RuleViolation `json:"violations,omitzero"`
	Reports    []types.CheckReport   `json:"reports,omitzero"`
}

// ToolCheckRules evaluates a rule list against one text or a batch.
func ToolCheckRules(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CheckRulesInput) (*sdkmcp.CallToolResult, CheckRulesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CheckRulesInput) (*sdkmcp.CallToolResult, CheckRulesOutput, error) {
		if input.Text != "" && len(input.Documents) > 0 {
			return nil, CheckRulesOutput{}, ErrInvalidInput("provide either text or documents, not both")
		}
		if input.Text == "" && len(input.Documents) == 0 {
			return nil, CheckRulesOutput{}, ErrInvalidInput("either text or documents is required")
		}
		if max := d.Config.MaxCheckDocuments; len(input.Documents) > max {
			return nil, CheckRulesOutput{}, ErrInvalidInput(fmt.Sprintf("at most %d documents are accepted, got %d", max, len(input.Documents)))
		}
		if s, ok := input.Rules.(string); ok {
			if err := d.checkSize("rules", s); err != nil {
				return nil, CheckRulesOutput{}, err
			}
		}

		set, err := d.Rules.Load(input.Rules)
		if err != nil {
			return nil, CheckRulesOutput{}, WrapError(err)
		}
		out := CheckRulesOutput{RuleCount: set.Len()}

		if input.Text != "" {
			if err := d.checkSize("text", input.Text); err != nil {
				return nil, CheckRulesOutput{}, err
			}
			out.Violations = set.Check(input.Text)
			out.Passed = len(out.Violations) == 0
			return nil, out, nil
		}

		docs := make([]rules.Document, len(input.Documents))
		for i, doc := range input.Documents {
			if err := d.checkSize(fmt.Sprintf("documents[%d].text", i), doc.Text); err != nil {
				return nil, CheckRulesOutput{}, err
			}
			docs[i] = rules.Document{Name: doc.Name, Text: doc.Text}
		}
		reports, err := set.CheckDocuments(ctx, docs, d.Config.CheckWorkers)
		if err != nil {
			return nil, CheckRulesOutput{}, err
		}
		out.Reports = reports
		out.Passed = true
		for _, r := range reports {
			out.Passed = out.Passed && r.Passed
		}
		return nil, out, nil
	}
}

// RedactInput is the input for promptlib_redact.
type RedactInput struct {
	Text       string   `json:"text" jsonschema:"Text to mask"`
	Categories []string `json:"categories,omitempty" jsonschema:"Subset of email, api_key, credit_card (default: all)"`
	DryRun     bool     `json:"dry_run,omitempty" jsonschema:"Report findings without masking; text is returned unchanged"`
}

// RedactOutput is the output for promptlib_redact.
type RedactOutput struct {
	Text     string           `json:"text"`
	Findings []redact.Finding `json:"findings,omitzero"`
}

// ToolRedact masks sensitive values in text.
func ToolRedact(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input RedactInput) (*sdkmcp.CallToolResult, RedactOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input RedactInput) (*sdkmcp.CallToolResult, RedactOutput, error) {
		if err := d.checkSize("text", input.Text); err != nil {
			return nil, RedactOutput{}, err
		}
		cats := make([]redact.Category, 0, len(input.Categories))
		for _, c := range input.Categories {
			cat, err := redact.ParseCategory(c)
			if err != nil {
				return nil, RedactOutput{}, ErrInvalidInput(err.Error())
			}
			cats = append(cats, cat)
		}
		r := redact.New(cats...)
		if input.DryRun {
			return nil, RedactOutput{Text: input.Text, Findings: r.Scan(input.Text)}, nil
		}
		text, findings := r.Redact(input.Text)
		return nil, RedactOutput{Text: text, Findings: findings}, nil
	}
}
