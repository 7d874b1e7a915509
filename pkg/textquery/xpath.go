package textquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// XPathQuery is a compiled XPath expression.
type XPathQuery struct {
	expr   *xpath.Expr
	source string
}

// CompileXPath parses an XPath expression.
func CompileXPath(expression string) (*XPathQuery, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("XPath expression is required")
	}
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}
	return &XPathQuery{expr: expr, source: expression}, nil
}

// String returns the expression source.
func (q *XPathQuery) String() string { return q.source }

// Select evaluates the expression over body. XML documents go through
// xmlquery; everything else is parsed as HTML.
func (q *XPathQuery) Select(body []byte, maxResults int) (*Result, error) {
	if Sniff(body) == FormatXML {
		return q.selectXML(body, maxResults)
	}
	return q.selectHTML(body, maxResults)
}

func (q *XPathQuery) selectXML(body []byte, maxResults int) (*Result, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	var values []any
	for _, node := range xmlquery.QuerySelectorAll(doc, q.expr) {
		if maxResults > 0 && len(values) >= maxResults {
			break
		}
		if text := strings.TrimSpace(node.InnerText()); text != "" {
			values = append(values, text)
		}
	}
	return newResult(ModeXPath, values, nil), nil
}

func (q *XPathQuery) selectHTML(body []byte, maxResults int) (*Result, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var values []any
	for _, node := range htmlquery.QuerySelectorAll(doc, q.expr) {
		if maxResults > 0 && len(values) >= maxResults {
			break
		}
		if text := strings.TrimSpace(htmlquery.InnerText(node)); text != "" {
			values = append(values, text)
		}
	}
	return newResult(ModeXPath, values, nil), nil
}
