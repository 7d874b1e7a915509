package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/promptlib-mcp/internal/schema"
	"github.com/usestring/promptlib-mcp/pkg/types"
)

func treeFor(t *testing.T, src string) *schema.Tree {
	t.Helper()
	tree, err := schema.Parse([]byte(src), types.FormatAuto)
	require.NoError(t, err)
	return tree
}

func TestSeq_CoalescesLiterals(t *testing.T) {
	nodes := Seq(Literal("a"), Literal(""), Literal("b"), Var("x"), Literal("c"), nil)
	require.Len(t, nodes, 3)
	assert.Equal(t, "ab", nodes[0].Text)
	assert.Equal(t, KindVariable, nodes[1].Kind)
}

func TestCheck(t *testing.T) {
	tree := treeFor(t, `{"title":"string","products":[{"name":"string","tags":["string"]}],"owner":{"login":"string"}}`)

	ok := &Template{Nodes: Seq(
		Var("title"),
		Var("owner.login"),
		Loop("products", StyleBlock,
			Var("name"),
			Loop("tags", StyleListItem, Var(ElementPath)),
		),
		Cond("owner", []*Node{Var("owner.login")}, []*Node{Literal("none")}),
	)}
	assert.Empty(t, Check(ok, tree))

	bad := &Template{Nodes: Seq(
		Var("missing"),
		Var("products.name"),
		Loop("title", StyleBlock, Var(ElementPath)),
		Loop("products", StyleBlock, Var("price")),
		Section("S", Var("owner.email")),
	)}
	errs := Check(bad, tree)
	require.Len(t, errs, 5)
	assert.Equal(t, "missing", errs[0].Path)
	assert.Equal(t, "products.name", errs[1].Path)
	assert.Equal(t, "title", errs[2].Path)
	assert.Equal(t, "products.price", errs[3].Path)
	assert.Equal(t, "owner.email", errs[4].Path)
}

func TestCodecRoundTripAndID(t *testing.T) {
	tmpl := &Template{
		Role:   "developer",
		Layout: "list",
		Nodes:  Seq(Literal("<ul>\n"), Loop("tags", StyleListItem, Literal("<li>"), Var(ElementPath), Literal("</li>\n")), Literal("</ul>\n")),
	}
	data, err := Encode(tmpl)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, tmpl, back)
	assert.Equal(t, tmpl.ID(), back.ID())
	assert.Len(t, tmpl.ID(), 16)

	other := *tmpl
	other.Role = "writer"
	assert.NotEqual(t, tmpl.ID(), other.ID())
}

func TestDecode_RejectsBadShapes(t *testing.T) {
	tests := []string{
		`{"nodes":[{"kind":"bogus"}]}`,
		`{"nodes":[{"kind":"variable"}]}`,
		`{"nodes":[{"kind":"loop","path":"x","style":"carousel"}]}`,
		`{"nodes":[{"kind":"section","body":[null]}]}`,
		`not json`,
	}
	for _, src := range tests {
		_, err := Decode([]byte(src))
		assert.Error(t, err, src)
	}
}

func TestSource(t *testing.T) {
	tmpl := &Template{Nodes: Seq(
		Section("Details",
			Literal("- Title: "), Var("title"), Literal("\n"),
			Loop("products", StyleBlock, Var("name"), Loop("tags", StyleListItem, Var(ElementPath))),
			Cond("note", []*Node{Var("note")}, []*Node{Literal("n/a")}),
		),
	)}
	want := "## Details\n- Title: {{ title }}\n" +
		"{% for item in products %}{{ item.name }}{% for item2 in item.tags %}{{ item2 }}{% endfor %}{% endfor %}" +
		"{% if note %}{{ note }}{% else %}n/a{% endif %}"
	assert.Equal(t, want, tmpl.Source())
}
