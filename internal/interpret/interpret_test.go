package interpret

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/promptlib-mcp/internal/lexicon"
	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

func vocabFor(t *testing.T, src string) Vocabulary {
	t.Helper()
	tree, err := schema.Parse([]byte(src), types.FormatAuto)
	require.NoError(t, err)
	return lexicon.New(tree)
}

func requireConflicts(t *testing.T, err error) []Conflict {
	t.Helper()
	var ierr *InterpretationError
	require.True(t, errors.As(err, &ierr), "expected *InterpretationError, got %T: %v", err, err)
	return ierr.Conflicts
}

func fieldPaths(ds []types.Directive) []string {
	var out []string
	for _, d := range ds {
		if d.Kind == types.DirectiveFieldRequest {
			out = append(out, d.Path)
		}
	}
	return out
}

func TestInterpret_ListOfUsersWithEmails(t *testing.T) {
	vocab := vocabFor(t, `{"user":{"name":"string","email":"string"}}`)

	got, err := Interpret("list of users with emails", vocab)
	require.NoError(t, err)

	want := []types.Directive{
		{Kind: types.DirectiveStructureHint, Value: "list", Path: "user"},
		{Kind: types.DirectiveFieldRequest, Value: "name", Path: "user.name"},
		{Kind: types.DirectiveFieldRequest, Value: "email", Path: "user.email"},
	}
	assert.Equal(t, want, got)
}

func TestInterpret_TableForProducts(t *testing.T) {
	vocab := vocabFor(t, `{"products":[{"name":"string","price":"number","sku":"string"}]}`)

	got, err := Interpret("table for products showing name and price", vocab)
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, types.Directive{Kind: types.DirectiveStructureHint, Value: "table", Path: "products"}, got[0])
	assert.Equal(t, []string{"products.name", "products.price", "products.sku"}, fieldPaths(got))
}

func TestInterpret_AttributesStopAtBut(t *testing.T) {
	vocab := vocabFor(t, `{"products":[{"name":"string","price":"number"}]}`)

	got, err := Interpret("table of products with name, but keep it short", vocab)
	require.NoError(t, err)
	assert.Equal(t, []string{"products.name", "products.price"}, fieldPaths(got))

	assert.Equal(t, []string{"name"}, extractAttributes("with name, but not prices"))
}

func TestInterpret_RoleAndTask(t *testing.T) {
	got, err := Interpret("As a product manager, I need a template to break down ideas into user stories.", nil)
	require.NoError(t, err)

	assert.Equal(t, []types.Directive{
		{Kind: types.DirectiveRole, Value: "product manager"},
		{Kind: types.DirectiveTask, Value: "break down ideas into user stories"},
	}, got)
}

func TestInterpret_RoleFromSubjectPhrase(t *testing.T) {
	got, err := Interpret("The support team needs a template to summarize tickets", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "support team", got[0].Value)
	assert.Equal(t, "summarize tickets", got[1].Value)
}

func TestInterpret_ConflictingRoles(t *testing.T) {
	_, err := Interpret("As a product manager, I need X and also as a developer, I need Y", nil)
	require.Error(t, err)

	conflicts := requireConflicts(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "role", conflicts[0].Kind)
	assert.Equal(t, []string{"product manager", "developer"}, conflicts[0].Values)
	assert.Contains(t, err.Error(), "product manager")
	assert.Contains(t, err.Error(), "developer")
}

func TestInterpret_ConflictingTasks(t *testing.T) {
	_, err := Interpret("As a writer I need a template to draft posts and also a prompt to review code", nil)
	conflicts := requireConflicts(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "task", conflicts[0].Kind)
}

func TestInterpret_ListAndTableConflict(t *testing.T) {
	_, err := Interpret("show the products as a table and as a bulleted list", nil)
	conflicts := requireConflicts(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "structure", conflicts[0].Kind)
}

func TestInterpret_SectionYieldsToArrayHint(t *testing.T) {
	got, err := Interpret("a section with a table of products", nil)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, types.DirectiveStructureHint, got[0].Kind)
	assert.Equal(t, types.StructureTable, got[0].Value)
}

func TestInterpret_UnresolvedFieldFails(t *testing.T) {
	vocab := vocabFor(t, `{"products":[{"name":"string"}]}`)

	_, err := Interpret("table of products showing name and colour", vocab)
	conflicts := requireConflicts(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "field", conflicts[0].Kind)
	assert.Equal(t, []string{"colour"}, conflicts[0].Values)
}

func TestInterpret_AmbiguousFieldFails(t *testing.T) {
	vocab := vocabFor(t, `{"user":{"name":"string"},"company":{"name":"string"}}`)

	_, err := Interpret("a list with name", vocab)
	conflicts := requireConflicts(t, err)
	require.Len(t, conflicts, 1)
	assert.Contains(t, conflicts[0].Reason, "ambiguous")
	assert.Equal(t, []string{"name", "user.name", "company.name"}, conflicts[0].Values)
}

func TestInterpret_AllConflictsReported(t *testing.T) {
	vocab := vocabFor(t, `{"items":[{"id":"integer"}]}`)

	_, err := Interpret("As a tester, as an auditor, a list and a table with colour", vocab)
	conflicts := requireConflicts(t, err)

	kinds := make([]string, len(conflicts))
	for i, c := range conflicts {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []string{"role", "structure", "field"}, kinds)
}

func TestInterpret_NoDirectivesIsNotAnError(t *testing.T) {
	got, err := Interpret("hello there", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInterpret_WithoutVocabularyKeepsRawFields(t *testing.T) {
	got, err := Interpret("list of users with name and email", nil)
	require.NoError(t, err)

	assert.Equal(t, []types.Directive{
		{Kind: types.DirectiveStructureHint, Value: "list"},
		{Kind: types.DirectiveFieldRequest, Value: "users"},
		{Kind: types.DirectiveFieldRequest, Value: "name"},
		{Kind: types.DirectiveFieldRequest, Value: "email"},
	}, got)
}

func TestInterpret_Structured(t *testing.T) {
	vocab := vocabFor(t, `{"products":[{"name":"string","price":"number"}],"store":"string"}`)

	got, err := Interpret(map[string]any{
		"role":      "developer",
		"task":      "generate API documentation",
		"structure": "table",
		"subject":   "products",
		"fields":    []any{"price"},
	}, vocab)
	require.NoError(t, err)

	assert.Equal(t, []types.Directive{
		{Kind: types.DirectiveRole, Value: "developer"},
		{Kind: types.DirectiveTask, Value: "generate API documentation"},
		{Kind: types.DirectiveStructureHint, Value: "table", Path: "products"},
		{Kind: types.DirectiveFieldRequest, Value: "name", Path: "products.name"},
		{Kind: types.DirectiveFieldRequest, Value: "price", Path: "products.price"},
	}, got)
}

func TestInterpret_StructuredDirectivesList(t *testing.T) {
	got, err := Interpret(map[string]any{"directives": []any{"list", "users", "emails"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []types.Directive{
		{Kind: types.DirectiveStructureHint, Value: "list"},
		{Kind: types.DirectiveFieldRequest, Value: "users"},
		{Kind: types.DirectiveFieldRequest, Value: "emails"},
	}, got)
}

func TestInterpret_StructuredBadTypes(t *testing.T) {
	_, err := Interpret(map[string]any{
		"role":      42,
		"structure": "carousel",
		"fields":    []any{"name", 3},
	}, nil)
	conflicts := requireConflicts(t, err)
	assert.Len(t, conflicts, 3)
}

func TestInterpret_UnsupportedInput(t *testing.T) {
	_, err := Interpret(42, nil)
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}
