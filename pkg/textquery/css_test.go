package textquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSSQuery(t *testing.T) {
	doc := []byte(`<table>
  <thead><tr><th>Name</th><th>Price</th></tr></thead>
  <tbody>
    <tr><td>Widget</td><td>2.5</td></tr>
    <tr><td>Gadget</td><td>3</td></tr>
    <tr><td></td><td>4</td></tr>
  </tbody>
</table>`)

	t.Run("matches cells", func(t *testing.T) {
		q, err := CompileCSS("tbody tr td:first-child")
		require.NoError(t, err)
		result, err := q.Select(doc, 0)
		require.NoError(t, err)
		assert.Equal(t, []any{"Widget", "Gadget"}, result.Values)
		assert.Equal(t, ModeCSS, result.Mode)
	})

	t.Run("selector group in document order", func(t *testing.T) {
		q, err := CompileCSS("thead th, tbody td:first-child")
		require.NoError(t, err)
		result, err := q.Select(doc, 0)
		require.NoError(t, err)
		assert.Equal(t, []any{"Name", "Price", "Widget", "Gadget"}, result.Values)
	})

	t.Run("max results", func(t *testing.T) {
		q, err := CompileCSS("td")
		require.NoError(t, err)
		result, err := q.Select(doc, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
	})

	t.Run("no matches", func(t *testing.T) {
		q, err := CompileCSS("ul li")
		require.NoError(t, err)
		result, err := q.Select(doc, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
		assert.Empty(t, result.Values)
	})

	t.Run("markdown is parsed as a fragment", func(t *testing.T) {
		q, err := CompileCSS("li")
		require.NoError(t, err)
		result, err := q.Select([]byte("# Title\n\n<ul>\n  <li>a</li>\n</ul>\n"), 0)
		require.NoError(t, err)
		assert.Equal(t, []any{"a"}, result.Values)
	})
}

func TestCompileCSS_Invalid(t *testing.T) {
	for _, sel := range []string{"", "   ", "td[", "::"} {
		_, err := CompileCSS(sel)
		assert.Error(t, err, sel)
	}
}
