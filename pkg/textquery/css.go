package textquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// CSSQuery is a compiled CSS selector.
type CSSQuery struct {
	selector cascadia.Selector
	source   string
}

// CompileCSS parses a CSS selector.
func CompileCSS(selector string) (*CSSQuery, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("CSS selector expression is required")
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid CSS selector %q: %w", selector, err)
	}
	return &CSSQuery{selector: sel, source: selector}, nil
}

// String returns the selector source.
func (q *CSSQuery) String() string { return q.source }

// Select returns the trimmed text of every non-empty matching element.
// Text that is not HTML is parsed leniently as an HTML fragment.
func (q *CSSQuery) Select(body []byte, maxResults int) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var values []any
	doc.FindMatcher(q.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); text != "" {
			values = append(values, text)
		}
		return maxResults <= 0 || len(values) < maxResults
	})
	return newResult(ModeCSS, values, nil), nil
}
