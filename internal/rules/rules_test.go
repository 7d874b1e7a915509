package rules

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

func mustParse(t *testing.T, src string) *RuleSet {
	t.Helper()
	set, err := Parse([]byte(src))
	require.NoError(t, err)
	return set
}

func requireLoadError(t *testing.T, err error) *RuleLoadError {
	t.Helper()
	require.Error(t, err)
	var lerr *RuleLoadError
	require.True(t, errors.As(err, &lerr), "expected *RuleLoadError, got %T: %v", err, err)
	return lerr
}

func ids(vs []types.RuleViolation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.RuleID)
	}
	return out
}

func TestCheckRules_MissingKeyword(t *testing.T) {
	violations, err := CheckRules("# Plan\n\n## Epics\n- Checkout\n", []any{
		map[string]any{"kind": "keyword-presence", "parameters": map[string]any{"keywords": []any{"User Stories"}}},
	})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "rule-1", violations[0].RuleID)
	assert.Equal(t, "None of the keywords were found: User Stories", violations[0].Message)
}

func TestParse_LegacyShape(t *testing.T) {
	set := mustParse(t, `
- id: has-title
  description: Prompt starts with a title
  type: regex_match
  config:
    pattern: "^# "
- id: mentions-stories
  description: Mentions stories
  type: keyword_presence
  config:
    keywords: [stories, epics]
    match_all: true
`)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, KindRegexMatch, set.Rules()[0].Kind)
	assert.Equal(t, KindKeywordPresence, set.Rules()[1].Kind)

	violations := set.Check("# Plan\nStories only\n")
	require.Len(t, violations, 1)
	assert.Equal(t, "mentions-stories", violations[0].RuleID)
	assert.Equal(t, "Not all required keywords present. Missing: epics", violations[0].Message)
}

func TestRegexMatch(t *testing.T) {
	set := mustParse(t, `[
		{"id": "no-todo", "kind": "regex-match", "parameters": {"pattern": "TODO", "should_match": false}},
		{"id": "needs-date", "kind": "regex-match", "parameters": {"pattern": "\\d{4}-\\d{2}-\\d{2}"}}
	]`)

	violations := set.Check("Draft TODO later")
	require.Len(t, violations, 2)
	assert.Equal(t, "Pattern 'TODO' unexpectedly matched.", violations[0].Message)
	require.NotNil(t, violations[0].Location)
	assert.Equal(t, 6, *violations[0].Location.Offset)
	assert.Nil(t, violations[1].Location)

	assert.Empty(t, set.Check("Released 2024-05-01"))
}

func TestKeywordMatching(t *testing.T) {
	set := mustParse(t, `
- id: any-of
  kind: keyword-presence
  parameters: {keywords: [Acceptance, Criteria]}
- id: exact-case
  kind: keyword-presence
  parameters: {keywords: [API], case_sensitive: true}
- id: banned
  kind: keyword-absence
  parameters: {keywords: [password, secret]}
`)

	assert.Empty(t, set.Check("acceptance rules for the API"))

	violations := set.Check("criteria for the api; the Secret is a password")
	assert.Equal(t, []string{"exact-case", "banned"}, ids(violations))
	assert.Equal(t, "Forbidden keywords present: password, secret", violations[1].Message)
	assert.Equal(t, strings.Index("criteria for the api; the Secret is a password", "Secret"), *violations[1].Location.Offset)

	// Whole words only.
	assert.Equal(t, []string{"any-of", "exact-case"}, ids(set.Check("unacceptance APIs")))
}

func TestKeywordMatching_PunctuatedKeywords(t *testing.T) {
	rules := []any{map[string]any{
		"id":         "langs",
		"kind":       "keyword-presence",
		"parameters": map[string]any{"keywords": []any{"C++", ".NET"}, "match_all": true},
	}}

	violations, err := CheckRules("I know C++ well and some .NET too", rules)
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = CheckRules("I know C and dotnet", rules)
	require.NoError(t, err)
	assert.Len(t, violations, 1)

	// Word edges still need a boundary.
	violations, err = CheckRules("ASP.NETCore only", rules)
	require.NoError(t, err)
	assert.Len(t, violations, 1)
}

func TestSectionTarget(t *testing.T) {
	set := mustParse(t, `
- id: breakdown-has-stories
  kind: keyword-presence
  target: "section:Breakdown"
  parameters: {keywords: [story]}
- id: output-missing
  kind: word-count
  target: "section:Output"
  parameters: {min: 1}
- id: input-no-secret
  kind: keyword-absence
  target: "section:Input"
  parameters: {keywords: [secret]}
`)

	text := "# Planner\n\n## Input\nthe secret idea\n\n## Breakdown\n### Stories\nstory one\n## Notes\nstory\n"
	violations := set.Check(text)
	assert.Equal(t, []string{"output-missing", "input-no-secret"}, ids(violations))

	assert.Equal(t, "Section \"Output\" not found.", violations[0].Message)
	assert.Equal(t, "Output", violations[0].Location.Section)
	assert.Nil(t, violations[0].Location.Offset)

	assert.Equal(t, "Input", violations[1].Location.Section)
	assert.Equal(t, strings.Index(text, "secret"), *violations[1].Location.Offset)
}

func TestSections(t *testing.T) {
	text := "# Title\nintro\n## A\na body\n### A1\nnested\n## B\nb body\n## a\ndup\n"
	regs := sections(text)

	a := regs["a"]
	assert.Equal(t, "a body\n### A1\nnested\n", text[a.start:a.end])
	b := regs["b"]
	assert.Equal(t, "b body\n", text[b.start:b.end])
	title := regs["title"]
	assert.Equal(t, text[len("# Title\n"):], text[title.start:title.end])
}

func TestQueryKinds(t *testing.T) {
	set := mustParse(t, `
- id: json-ok
  kind: json-query
  parameters: {expression: '.items | length > 0'}
- id: table-rows
  kind: css-select
  parameters: {selector: 'tbody tr', min_count: 2, max_count: 3}
- id: list-items
  kind: xpath-select
  parameters: {expression: '//li'}
`)

	violations := set.Check(`{"items": []}`)
	assert.Equal(t, []string{"json-ok", "table-rows", "list-items"}, ids(violations))
	assert.Equal(t, "Query '.items | length > 0' evaluated to false.", violations[0].Message)

	html := "<table><tbody><tr><td>a</td></tr><tr><td>b</td></tr></tbody></table>\n<ul><li>x</li></ul>"
	violations = set.Check(html)
	assert.Equal(t, []string{"json-ok"}, ids(violations))
	assert.Contains(t, violations[0].Message, "Query '.items | length > 0'")
}

func TestSensitiveDataAndWordCount(t *testing.T) {
	set := mustParse(t, `
- id: no-pii
  kind: sensitive-data
- id: cards-only
  kind: sensitive_data
  parameters: {categories: [credit_card]}
- id: short
  kind: word-count
  parameters: {max: 5}
`)

	violations := set.Check("Mail ada@example.com or bob@example.com now please")
	assert.Equal(t, []string{"no-pii", "short"}, ids(violations))
	assert.Equal(t, "Sensitive data found: email (2)", violations[0].Message)
	assert.Equal(t, 5, *violations[0].Location.Offset)
	assert.Equal(t, "Text has 6 words, want at most 5.", violations[1].Message)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		index  int
		ruleID string
		reason string
	}{
		{"not a list", `{"id": "x"}`, -1, "", "must be a list"},
		{"not an object", `["x"]`, 0, "", "must be an object"},
		{"bad id", `[{"id": 3, "kind": "word-count"}]`, 0, "", "'id' must be a non-empty string"},
		{"missing kind", `[{"id": "a"}]`, 0, "a", "missing required field 'kind'"},
		{"unknown kind", `[{"id": "a", "kind": "spellcheck"}]`, 0, "a", "unknown rule kind"},
		{"kind and type", `[{"id": "a", "kind": "word-count", "type": "word-count"}]`, 0, "a", "set only one"},
		{"bad regex", `[{"id": "a", "kind": "regex-match", "parameters": {"pattern": "("}}]`, 0, "a", "invalid regex"},
		{"missing pattern", `[{"id": "a", "kind": "regex-match"}]`, 0, "a", "missing required parameter \"pattern\""},
		{"ill-typed flag", `[{"id": "a", "kind": "regex-match", "parameters": {"pattern": "x", "should_match": "yes"}}]`, 0, "a", "must be a boolean"},
		{"empty keywords", `[{"id": "a", "kind": "keyword-presence", "parameters": {"keywords": []}}]`, 0, "a", "must not be empty"},
		{"keywords not strings", `[{"id": "a", "kind": "keyword-absence", "parameters": {"keywords": [1]}}]`, 0, "a", "must be a string"},
		{"bad jq", `[{"id": "a", "kind": "json-query", "parameters": {"expression": ".["}}]`, 0, "a", "invalid jq"},
		{"bad selector", `[{"id": "a", "kind": "css-select", "parameters": {"selector": "td["}}]`, 0, "a", "invalid CSS selector"},
		{"bad bounds", `[{"id": "a", "kind": "xpath-select", "parameters": {"expression": "//li", "min_count": 3, "max_count": 1}}]`, 0, "a", "below min_count"},
		{"bad category", `[{"id": "a", "kind": "sensitive-data", "parameters": {"categories": ["ssn"]}}]`, 0, "a", "unknown redaction category"},
		{"word-count without bounds", `[{"id": "a", "kind": "word-count"}]`, 0, "a", "needs"},
		{"fractional count", `[{"id": "a", "kind": "word-count", "parameters": {"min": 1.5}}]`, 0, "a", "must be an integer"},
		{"bad target", `[{"id": "a", "kind": "word-count", "target": "body", "parameters": {"min": 1}}]`, 0, "a", "unknown target"},
		{"empty section", `[{"id": "a", "kind": "word-count", "target": "section:", "parameters": {"min": 1}}]`, 0, "a", "needs a label"},
		{"params not object", `[{"id": "a", "kind": "word-count", "parameters": [1]}]`, 0, "a", "must be an object"},
		{"duplicate id", `[{"id": "a", "kind": "word-count", "parameters": {"min": 1}}, {"id": "a", "kind": "word-count", "parameters": {"min": 2}}]`, 1, "a", "duplicate rule id"},
		{"invalid yaml", "- id: [", -1, "", "not valid YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			lerr := requireLoadError(t, err)
			assert.Equal(t, tt.index, lerr.Index)
			assert.Equal(t, tt.ruleID, lerr.RuleID)
			assert.Contains(t, lerr.Reason, tt.reason)
		})
	}
}

func TestLoad_Sources(t *testing.T) {
	set, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, set.Check("anything"))

	set, err = Load([]Rule{{Kind: "word_count", Params: Params{"min": 2}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"rule-1"}, ids(set.Check("one")))

	set, err = Load("- {id: a, kind: word-count, parameters: {min: 1}}")
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestCheck_RuleOrderIndependence(t *testing.T) {
	src := []any{
		map[string]any{"id": "r1", "kind": "keyword-presence", "parameters": map[string]any{"keywords": []any{"alpha"}}},
		map[string]any{"id": "r2", "kind": "regex-match", "parameters": map[string]any{"pattern": `\d`}},
		map[string]any{"id": "r3", "kind": "keyword-absence", "parameters": map[string]any{"keywords": []any{"beta"}}},
		map[string]any{"id": "r4", "kind": "word-count", "parameters": map[string]any{"min": 10}},
		map[string]any{"id": "r5", "kind": "sensitive-data"},
	}
	text := "beta version, contact x@y.io"

	base, err := CheckRules(text, src)
	require.NoError(t, err)
	want := make(map[string]types.RuleViolation)
	for _, v := range base {
		want[v.RuleID] = v
	}

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		shuffled := append([]any(nil), src...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := CheckRules(text, shuffled)
		require.NoError(t, err)
		require.Len(t, got, len(base))
		for i, v := range got {
			assert.Equal(t, want[v.RuleID], v)
			assert.Equal(t, shuffled[i].(map[string]any)["id"], v.RuleID, "report follows rule order")
		}
	}
}

func TestCheckDocuments(t *testing.T) {
	set := mustParse(t, `[{"id": "has-go", "kind": "keyword-presence", "parameters": {"keywords": ["go"]}}]`)

	docs := make([]Document, 50)
	for i := range docs {
		text := "written in rust"
		if i%2 == 0 {
			text = "written in go"
		}
		docs[i] = Document{Name: string(rune('a'+i%26)) + "-doc", Text: text}
	}

	reports, err := set.CheckDocuments(context.Background(), docs, 4)
	require.NoError(t, err)
	require.Len(t, reports, len(docs))
	for i, r := range reports {
		assert.Equal(t, docs[i].Name, r.Name)
		assert.Equal(t, i%2 == 0, r.Passed, "doc %d", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = set.CheckDocuments(ctx, docs, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	err := r.Register("max_lines", func(p Params) (Checker, error) {
		limit, _, err := p.Int("limit")
		if err != nil {
			return nil, err
		}
		return CheckFunc(func(text string) *Failure {
			if n := strings.Count(text, "\n"); n > limit {
				return Fail("%d lines, limit %d", n, limit)
			}
			return nil
		}), nil
	})
	require.NoError(t, err)
	assert.Contains(t, r.Kinds(), "max-lines")
	assert.Error(t, r.Register("max-lines", func(Params) (Checker, error) { return nil, nil }))
	assert.Error(t, r.Register(KindRegexMatch, newRegexMatch))

	set, err := r.Load([]any{map[string]any{"id": "short", "kind": "max-lines", "parameters": map[string]any{"limit": 1}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, ids(set.Check("a\nb\nc\n")))

	_, err = Load([]any{map[string]any{"id": "short", "kind": "max-lines"}})
	requireLoadError(t, err)
}
