package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/jsoncompact"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

func mustTree(t *testing.T, src string) *schema.Tree {
	t.Helper()
	tree, err := schema.Parse([]byte(src), types.FormatAuto)
	require.NoError(t, err)
	return tree
}

func paths(errs []types.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Path)
	}
	return out
}

func TestValidate_MissingNestedScalar(t *testing.T) {
	tree := mustTree(t, `{"products":[{"name":"string","price":"number"}]}`)

	errs := Validate(map[string]any{
		"products": []any{map[string]any{"name": "Widget"}},
	}, tree)

	require.Len(t, errs, 1)
	assert.Equal(t, "products.0.price", errs[0].Path)
	assert.Equal(t, types.KindScalar, errs[0].ExpectedKind)
	assert.Equal(t, schema.TypeNumber, errs[0].ExpectedType)
	assert.False(t, errs[0].Present)
	assert.Nil(t, errs[0].Actual)
}

func TestValidate_ConformingData(t *testing.T) {
	tree := mustTree(t, `
user:
  name: string
  age: integer
  nickname?: string
  tags: [string]
  score: number
  active: bool
  extra: any
`)
	errs := Validate(map[string]any{
		"user": map[string]any{
			"name":   "Ada",
			"age":    36,
			"tags":   []string{"a", "b"},
			"score":  9.5,
			"active": true,
			"extra":  nil,
		},
	}, tree)
	assert.Empty(t, errs)
}

func TestValidate_ReportsEveryMismatch(t *testing.T) {
	tree := mustTree(t, `
id: integer
name: string
tags: [string]
lines: [{sku: string, qty: integer}]
owner: {login: string}
`)
	errs := Validate(map[string]any{
		"id":    1.5,
		"tags":  []any{"ok", 3, nil},
		"lines": []any{map[string]any{"sku": "a", "qty": 1}, map[string]any{"qty": "two"}, "bad"},
		"owner": "octocat",
	}, tree)

	assert.Equal(t, []string{
		"id",
		"name",
		"tags.1",
		"tags.2",
		"lines.1.sku",
		"lines.1.qty",
		"lines.2",
		"owner",
	}, paths(errs))

	assert.Equal(t, 1.5, errs[0].Actual)
	assert.Equal(t, "expected integer, got number", errs[0].Message)
	assert.False(t, errs[1].Present)
	assert.Equal(t, types.KindObject, errs[6].ExpectedKind)
	assert.Equal(t, "octocat", errs[7].Actual)
}

func TestValidate_Nullability(t *testing.T) {
	tree := mustTree(t, `{
		"type": "object",
		"properties": {
			"note": {"type": ["string", "null"]},
			"title": {"type": "string"}
		},
		"required": ["note", "title"]
	}`)

	errs := Validate(map[string]any{"note": nil, "title": nil}, tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Path)
	assert.True(t, errs[0].Present)
	assert.Contains(t, errs[0].Message, "null is not allowed")
}

func TestValidate_ClosedObjectReportsSortedUnknownKeys(t *testing.T) {
	tree := mustTree(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}},
		"additionalProperties": false
	}`)

	errs := Validate(map[string]any{"a": "x", "zeta": 1, "beta": 2}, tree)
	assert.Equal(t, []string{"beta", "zeta"}, paths(errs))
}

func TestValidate_OpenObjectIgnoresUnknownKeys(t *testing.T) {
	tree := mustTree(t, `{"a":"string"}`)
	assert.Empty(t, Validate(map[string]any{"a": "x", "b": 1}, tree))
}

func TestValidate_StructInstances(t *testing.T) {
	type product struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	tree := mustTree(t, `{"products":[{"name":"string","price":"number"}]}`)

	errs := Validate(struct {
		Products []product `json:"products"`
	}{Products: []product{{Name: "Widget", Price: 2}}}, tree)
	assert.Empty(t, errs)
}

func TestValidate_RootMismatch(t *testing.T) {
	tree := mustTree(t, `{"a":"string"}`)

	errs := Validate([]any{1}, tree)
	require.Len(t, errs, 1)
	assert.Equal(t, "", errs[0].Path)
	assert.Equal(t, types.KindObject, errs[0].ExpectedKind)

	errs = Validate(func() {}, tree)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "cannot be represented")
}

func TestValidator_CompactsActualValues(t *testing.T) {
	tree := mustTree(t, `{"name":"string"}`)
	v := New(WithCompaction(&jsoncompact.Options{MaxArrayItems: 2}))

	errs := v.Validate(map[string]any{"name": []any{1, 2, 3, 4}}, tree)
	require.Len(t, errs, 1)
	assert.Equal(t, []any{1.0, 2.0, "... (2 more items)"}, errs[0].Actual)
}
