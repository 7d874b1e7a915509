// Package textquery selects content from rendered documents with CSS
// selectors, XPath expressions or jq programs.
package textquery

import "fmt"

// Query is a compiled selection that can be applied to many documents.
type Query interface {
	Select(body []byte, maxResults int) (*Result, error)
	String() string
}

// Compile parses expression in the given mode.
func Compile(mode, expression string) (Query, error) {
	switch mode {
	case ModeCSS:
		return CompileCSS(expression)
	case ModeXPath:
		return CompileXPath(expression)
	case ModeJQ:
		return CompileJQ(expression)
	default:
		return nil, fmt.Errorf("unknown mode: %q (valid: css, xpath, jq)", mode)
	}
}

// Select compiles and runs a one-off query. An empty mode is chosen from the
// sniffed document format.
func Select(body []byte, mode, expression string, maxResults int) (*Result, error) {
	if mode == "" {
		mode = DefaultMode(Sniff(body))
	}
	q, err := Compile(mode, expression)
	if err != nil {
		return nil, err
	}
	return q.Select(body, maxResults)
}
