package textquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPathQuery_XML(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>
	<catalog>
		<item><title>Book A</title><price>10</price></item>
		<item><title>Book B</title><price>20</price></item>
	</catalog>`)

	q, err := CompileXPath("//item/title")
	require.NoError(t, err)

	result, err := q.Select(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Book A", "Book B"}, result.Values)
	assert.Equal(t, ModeXPath, result.Mode)

	result, err = q.Select(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

func TestXPathQuery_HTML(t *testing.T) {
	doc := []byte(`<html><body>
		<h1>Title</h1>
		<p class="intro">Hello</p>
	</body></html>`)

	q, err := CompileXPath("//p[@class='intro']")
	require.NoError(t, err)
	result, err := q.Select(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"Hello"}, result.Values)
}

func TestCompileXPath_Invalid(t *testing.T) {
	for _, expr := range []string{"", "[invalid", "//item[@"} {
		_, err := CompileXPath(expr)
		assert.Error(t, err, expr)
	}
}
