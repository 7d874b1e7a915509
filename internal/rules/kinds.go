package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/usestring/promptlib-mcp/internal/redact"
	"github.com/usestring/promptlib-mcp/pkg/textquery"
)

// Built-in rule kinds.
const (
	KindRegexMatch      = "regex-match"
	KindKeywordPresence = "keyword-presence"
	KindKeywordAbsence  = "keyword-absence"
	KindJSONQuery       = "json-query"
	KindCSSSelect       = "css-select"
	KindXPathSelect     = "xpath-select"
	KindSensitiveData   = "sensitive-data"
	KindWordCount       = "word-count"
)

var builtins = map[string]Factory{
	KindRegexMatch:      newRegexMatch,
	KindKeywordPresence: newKeywordPresence,
	KindKeywordAbsence:  newKeywordAbsence,
	KindJSONQuery:       newJSONQuery,
	KindCSSSelect:       newSelectCount(textquery.ModeCSS, "selector"),
	KindXPathSelect:     newSelectCount(textquery.ModeXPath, "expression"),
	KindSensitiveData:   newSensitiveData,
	KindWordCount:       newWordCount,
}

func newRegexMatch(p Params) (Checker, error) {
	pattern, err := p.String("pattern")
	if err != nil {
		return nil, err
	}
	shouldMatch, err := p.Bool("should_match", true)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return CheckFunc(func(text string) *Failure {
		loc := re.FindStringIndex(text)
		switch {
		case shouldMatch && loc == nil:
			return Fail("Pattern '%s' did not match.", pattern)
		case !shouldMatch && loc != nil:
			return FailAt(loc[0], "Pattern '%s' unexpectedly matched.", pattern)
		}
		return nil
	}), nil
}

// keywordPatterns compiles whole-word matchers for keywords.
func keywordPatterns(p Params) ([]string, []*regexp.Regexp, error) {
	keywords, err := p.Strings("keywords", true)
	if err != nil {
		return nil, nil, err
	}
	caseSensitive, err := p.Bool("case_sensitive", false)
	if err != nil {
		return nil, nil, err
	}
	flags := "(?i)"
	if caseSensitive {
		flags = ""
	}
	res := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, nil, fmt.Errorf("parameter %q item %d must not be empty", "keywords", i)
		}
		res[i] = regexp.MustCompile(flags + wordBounded(kw))
	}
	return keywords, res, nil
}

// wordBounded anchors kw at word boundaries on the sides where it starts or
// ends with a word character, so "C++" still matches before a space.
func wordBounded(kw string) string {
	pattern := regexp.QuoteMeta(kw)
	if isWordByte(kw[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(kw[len(kw)-1]) {
		pattern += `\b`
	}
	return pattern
}

func isWordByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func newKeywordPresence(p Params) (Checker, error) {
	keywords, res, err := keywordPatterns(p)
	if err != nil {
		return nil, err
	}
	matchAll, err := p.Bool("match_all", false)
	if err != nil {
		return nil, err
	}
	return CheckFunc(func(text string) *Failure {
		var missing []string
		found := 0
		for i, re := range res {
			if re.MatchString(text) {
				found++
			} else {
				missing = append(missing, keywords[i])
			}
		}
		switch {
		case matchAll && len(missing) > 0:
			return Fail("Not all required keywords present. Missing: %s", strings.Join(missing, ", "))
		case !matchAll && found == 0:
			return Fail("None of the keywords were found: %s", strings.Join(keywords, ", "))
		}
		return nil
	}), nil
}

func newKeywordAbsence(p Params) (Checker, error) {
	keywords, res, err := keywordPatterns(p)
	if err != nil {
		return nil, err
	}
	return CheckFunc(func(text string) *Failure {
		var present []string
		first := -1
		for i, re := range res {
			if loc := re.FindStringIndex(text); loc != nil {
				present = append(present, keywords[i])
				if first < 0 || loc[0] < first {
					first = loc[0]
				}
			}
		}
		if len(present) > 0 {
			return FailAt(first, "Forbidden keywords present: %s", strings.Join(present, ", "))
		}
		return nil
	}), nil
}

func newJSONQuery(p Params) (Checker, error) {
	expr, err := p.String("expression")
	if err != nil {
		return nil, err
	}
	q, err := textquery.CompileJQ(expr)
	if err != nil {
		return nil, err
	}
	return CheckFunc(func(text string) *Failure {
		doc, err := textquery.Decode([]byte(text))
		if err != nil {
			return Fail("Query '%s' needs a JSON or YAML document: %v", expr, err)
		}
		res := q.Run(doc, 0)
		if len(res.Errors) > 0 {
			return Fail("Query '%s' failed: %s", expr, res.Errors[0])
		}
		if len(res.Values) == 0 {
			return Fail("Query '%s' produced no value.", expr)
		}
		for _, v := range res.Values {
			if b, ok := v.(bool); ok && !b {
				return Fail("Query '%s' evaluated to false.", expr)
			}
		}
		return nil
	}), nil
}

// newSelectCount builds a factory for selector rules that bound the number
// of matching elements.
func newSelectCount(mode, key string) Factory {
	return func(p Params) (Checker, error) {
		expr, err := p.String(key)
		if err != nil {
			return nil, err
		}
		q, err := textquery.Compile(mode, expr)
		if err != nil {
			return nil, err
		}
		minCount, hasMin, err := p.Int("min_count")
		if err != nil {
			return nil, err
		}
		if !hasMin {
			minCount = 1
		}
		maxCount, hasMax, err := p.Int("max_count")
		if err != nil {
			return nil, err
		}
		if hasMax && maxCount < minCount {
			return nil, fmt.Errorf("max_count %d is below min_count %d", maxCount, minCount)
		}
		return CheckFunc(func(text string) *Failure {
			res, err := q.Select([]byte(text), 0)
			if err != nil {
				return Fail("Selector '%s' could not be evaluated: %v", expr, err)
			}
			switch {
			case res.Count < minCount:
				return Fail("Selector '%s' matched %d elements, want at least %d.", expr, res.Count, minCount)
			case hasMax && res.Count > maxCount:
				return Fail("Selector '%s' matched %d elements, want at most %d.", expr, res.Count, maxCount)
			}
			return nil
		}), nil
	}
}

func newSensitiveData(p Params) (Checker, error) {
	names, err := p.Strings("categories", false)
	if err != nil {
		return nil, err
	}
	var cats []redact.Category
	for _, n := range names {
		c, err := redact.ParseCategory(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	r := redact.New(cats...)
	return CheckFunc(func(text string) *Failure {
		findings := r.Scan(text)
		if len(findings) == 0 {
			return nil
		}
		counts := make(map[redact.Category]int)
		for _, f := range findings {
			counts[f.Category]++
		}
		parts := make([]string, 0, len(counts))
		for c, n := range counts {
			parts = append(parts, fmt.Sprintf("%s (%d)", c, n))
		}
		sort.Strings(parts)
		return FailAt(findings[0].Offset, "Sensitive data found: %s", strings.Join(parts, ", "))
	}), nil
}

func newWordCount(p Params) (Checker, error) {
	minWords, hasMin, err := p.Int("min")
	if err != nil {
		return nil, err
	}
	maxWords, hasMax, err := p.Int("max")
	if err != nil {
		return nil, err
	}
	if !hasMin && !hasMax {
		return nil, fmt.Errorf("word-count needs %q or %q", "min", "max")
	}
	if hasMin && hasMax && maxWords < minWords {
		return nil, fmt.Errorf("max %d is below min %d", maxWords, minWords)
	}
	return CheckFunc(func(text string) *Failure {
		n := len(strings.Fields(text))
		switch {
		case hasMin && n < minWords:
			return Fail("Text has %d words, want at least %d.", n, minWords)
		case hasMax && n > maxWords:
			return Fail("Text has %d words, want at most %d.", n, maxWords)
		}
		return nil
	}), nil
}
