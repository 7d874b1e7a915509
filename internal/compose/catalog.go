package compose

import (
	"github.com/usestring/promptlib-mcp/internal/lexicon"
)

// Task categories.
const (
	CategoryDecomposition = "decomposition"
	CategoryDocumentation = "documentation"
	CategoryGeneral       = "general"
)

// SectionSpec is one section of a layout and the field-name tokens it attracts.
type SectionSpec struct {
	Label    string
	Keywords []string
}

// Layout is a canonical section arrangement for a task category.
type Layout struct {
	Category string
	// Triggers are task or role tokens that select this layout.
	Triggers []string
	Sections []SectionSpec
	// Default receives fields that match no section keyword.
	Default string
}

// Layouts is the fixed catalog, in match order. The last entry is the fallback.
var Layouts = []Layout{
	{
		Category: CategoryDecomposition,
		Triggers: []string{"break", "breakdown", "decompose", "split", "divide", "plan", "story", "epic", "step", "idea", "backlog", "roadmap"},
		Sections: []SectionSpec{
			{Label: "Input", Keywords: []string{"input", "idea", "request", "source", "context", "goal", "description", "requirement", "problem"}},
			{Label: "Breakdown", Keywords: []string{"step", "task", "story", "breakdown", "item", "part", "subtask", "epic", "phase"}},
			{Label: "Output", Keywords: []string{"output", "result", "deliverable", "outcome", "summary", "acceptance", "criterion", "criteria"}},
		},
		Default: "Breakdown",
	},
	{
		Category: CategoryDocumentation,
		Triggers: []string{"document", "documentation", "doc", "api", "endpoint", "reference", "describe", "manual"},
		Sections: []SectionSpec{
			{Label: "Endpoint", Keywords: []string{"endpoint", "url", "path", "method", "route", "name", "title", "description", "api", "version", "summary"}},
			{Label: "Parameters", Keywords: []string{"param", "parameter", "argument", "arg", "query", "header", "body", "request", "input", "field"}},
			{Label: "Response", Keywords: []string{"response", "status", "code", "result", "output", "example", "error", "return"}},
		},
		Default: "Parameters",
	},
	{
		Category: CategoryGeneral,
		Sections: []SectionSpec{
			{Label: "Context", Keywords: []string{"context", "role", "background", "goal", "owner", "author", "audience", "purpose"}},
			{Label: "Details", Keywords: nil},
		},
		Default: "Details",
	},
}

// Classify picks the layout for a role/task pair. Task wording is consulted
// before role wording; no match yields the general layout.
func Classify(role, task string) Layout {
	for _, text := range []string{task, role} {
		toks := make(map[string]bool)
		for _, t := range lexicon.Tokenize(text) {
			toks[t] = true
		}
		for _, l := range Layouts {
			for _, trig := range l.Triggers {
				if toks[trig] {
					return l
				}
			}
		}
	}
	return Layouts[len(Layouts)-1]
}

// assign returns the section label a field name belongs to.
func (l Layout) assign(name string) string {
	toks := lexicon.Tokenize(name)
	for _, s := range l.Sections {
		for _, kw := range s.Keywords {
			for _, t := range toks {
				if t == kw {
					return s.Label
				}
			}
		}
	}
	return l.Default
}
