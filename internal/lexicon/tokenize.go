package lexicon

import (
	"strings"
	"unicode"
)

// tokenDelimiters separate tokens in schema names and user phrases.
const tokenDelimiters = "/?&=.-_:,;"

// Tokenize splits a schema name or phrase into lowercase singular tokens.
// Splits on delimiters, whitespace and camelCase boundaries; drops stop words.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(splitCamel(s), func(r rune) bool {
		return strings.ContainsRune(tokenDelimiters, r) || unicode.IsSpace(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if stopWords[f] {
			continue
		}
		out = append(out, Singular(f))
	}
	return out
}

// splitCamel inserts a space at lower-to-upper case transitions ("firstName" -> "first Name").
func splitCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prev := rune(0)
	for _, r := range s {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "their": true, "its": true,
	"each": true, "every": true, "all": true, "for": true, "my": true, "our": true,
}

// Singular reduces an English plural to its singular form.
// Irregular forms are not handled beyond a few schema-common ones.
func Singular(w string) string {
	if irr, ok := irregular[w]; ok {
		return irr
	}
	n := len(w)
	switch {
	case n <= 2:
		return w
	case strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "xes"),
		strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "zes"):
		return w[:n-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:n-1]
	}
	return w
}

var irregular = map[string]string{
	"people":   "person",
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"data":     "data",
	"indices":  "index",
	"statuses": "status",
	"aliases":  "alias",
}
