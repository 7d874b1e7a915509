package textquery

import (
	"bytes"
	"encoding/json"
)

// Mode constants for selection languages.
const (
	ModeCSS   = "css"
	ModeXPath = "xpath"
	ModeJQ    = "jq"
)

// Format is the sniffed document format of a rendered text.
type Format string

// Document formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Sniff guesses the format of body from its leading bytes. Markdown and
// other prose is FormatText.
func Sniff(body []byte) Format {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0:
		return FormatText
	case bytes.HasPrefix(trimmed, []byte("<?xml")):
		return FormatXML
	case trimmed[0] == '<':
		if looksLikeHTML(trimmed) {
			return FormatHTML
		}
		return FormatXML
	case (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed):
		return FormatJSON
	}
	return FormatText
}

var htmlMarkers = [][]byte{
	[]byte("<!doctype html"), []byte("<html"), []byte("<body"), []byte("<head"),
	[]byte("<div"), []byte("<table"), []byte("<ul"), []byte("<ol"), []byte("<p>"),
	[]byte("<h1"), []byte("<h2"), []byte("<span"),
}

func looksLikeHTML(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, m := range htmlMarkers {
		if bytes.HasPrefix(lower, m) {
			return true
		}
	}
	return false
}

// DefaultMode returns the selection language that suits a document format.
func DefaultMode(f Format) string {
	switch f {
	case FormatJSON:
		return ModeJQ
	case FormatXML:
		return ModeXPath
	default:
		return ModeCSS
	}
}
