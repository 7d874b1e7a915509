package textquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	for _, mode := range []string{ModeCSS, ModeXPath, ModeJQ} {
		q, err := Compile(mode, map[string]string{ModeCSS: "li", ModeXPath: "//li", ModeJQ: ".a"}[mode])
		require.NoError(t, err, mode)
		assert.NotEmpty(t, q.String())
	}

	_, err := Compile("regex", `\d+`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestSelect_SniffsMode(t *testing.T) {
	result, err := Select([]byte(`{"name":"Alice"}`), "", ".name", 0)
	require.NoError(t, err)
	assert.Equal(t, ModeJQ, result.Mode)
	assert.Equal(t, "Alice", result.Values[0])

	result, err = Select([]byte(`<ul><li>x</li></ul>`), "", "li", 0)
	require.NoError(t, err)
	assert.Equal(t, ModeCSS, result.Mode)

	result, err = Select([]byte(`<?xml version="1.0"?><r><i>A</i></r>`), "", "//i", 0)
	require.NoError(t, err)
	assert.Equal(t, ModeXPath, result.Mode)
	assert.Equal(t, []any{"A"}, result.Values)
}
