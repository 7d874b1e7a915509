package textquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Format
	}{
		{"json object", `{"a":1}`, FormatJSON},
		{"json array", ` [1, 2]`, FormatJSON},
		{"broken json", `{"a":`, FormatText},
		{"xml declaration", `<?xml version="1.0"?><a/>`, FormatXML},
		{"bare xml", `<catalog><item/></catalog>`, FormatXML},
		{"html", `<html><body></body></html>`, FormatHTML},
		{"html fragment", `<table><tr></tr></table>`, FormatHTML},
		{"markdown", "# Title\n\n- a\n", FormatText},
		{"empty", "  ", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.body)))
		})
	}
}

func TestDefaultMode(t *testing.T) {
	assert.Equal(t, ModeJQ, DefaultMode(FormatJSON))
	assert.Equal(t, ModeXPath, DefaultMode(FormatXML))
	assert.Equal(t, ModeCSS, DefaultMode(FormatHTML))
	assert.Equal(t, ModeCSS, DefaultMode(FormatText))
}
