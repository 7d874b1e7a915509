package interpret

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	rolePattern = regexp.MustCompile(`\b(?:as an?|as the|being an?|being the|i am an?|i am the|i'm an?|i'm the)\s+([^,.;!?]+)`)
	// "<role> needs ..." at the start of a sentence, used when no "as a" phrase exists.
	roleSubjectPattern = regexp.MustCompile(`(?:^|[.;!?]\s+)((?:the\s+)?[a-z][a-z -]{1,40}?)\s+(?:needs|wants|requires)\b`)
	roleCut            = regexp.MustCompile(`\s+(?:i|we|who|that|need|needs|want|wants|would|require|requires|and|working|looking)\b`)

	taskPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:need|want|require|would like)(?:s|ed)?\s+(?:(?:a|an|the)\s+)?(?:(?:template|format|structure|way|prompt|method)\s+)?to\s+([^.;!?]+)`),
		regexp.MustCompile(`\b(?:template|prompt|format)\s+to\s+([^.;!?]+)`),
	}
	taskCut = regexp.MustCompile(`,?\s+as (?:an?|the)\s|,\s*(?:i|we)\s`)
	// clauseSplit separates independent requests inside one input.
	clauseSplit = regexp.MustCompile(`\s+and also\s+|\s+but\s+|[.;!?]+\s*`)

	attributePattern = regexp.MustCompile(`\b(?:with|showing|containing|having|including|listing)\s+(?:(?:their|its|the|all)\s+)?([^.;!?]+)`)
	attributeCut     = regexp.MustCompile(`\s+(?:for|in|from|per|so|to|as|into|by|that|which|but)\s`)
	attributeSplit   = regexp.MustCompile(`\s+and\s+|\s*,\s*|\s+or\s+|\s*&\s*`)

	subjectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:list|lists|table|tables|grid|section|sections|bullets?)\s+(?:of|for|about)\s+(?:(?:the|all|our|my|each|every)\s+)?([a-z][\w-]*)`),
		regexp.MustCompile(`\b([a-z][\w-]*)\s+(?:list|table|grid)\b`),
	}

	wordPattern = regexp.MustCompile(`[a-z][a-z'-]*`)
)

// notSubjects are words a subject pattern can capture that never name data.
var notSubjects = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true, "simple": true,
	"create": true, "make": true, "build": true, "generate": true, "show": true,
	"bulleted": true, "bullet": true, "html": true, "markdown": true, "nice": true,
	"new": true, "one": true, "single": true, "sorted": true, "numbered": true,
}

var attributeArticles = map[string]bool{
	"a": true, "an": true, "the": true, "their": true, "its": true, "all": true, "each": true,
}

// TextInterpreter extracts intent from free text with a bounded phrase grammar.
type TextInterpreter struct{}

// Extract implements Interpreter. Input must be a string or []byte.
func (TextInterpreter) Extract(input any) (*Intent, error) {
	var text string
	switch v := input.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedInput, input)
	}
	lower := strings.Join(strings.Fields(strings.ToLower(text)), " ")

	intent := &Intent{
		Roles:      extractRoles(lower),
		Tasks:      extractTasks(lower),
		Hints:      extractHints(lower),
		Subjects:   extractSubjects(lower),
		Attributes: extractAttributes(lower),
	}
	return intent, nil
}

func extractRoles(text string) []string {
	var roles []string
	for _, m := range rolePattern.FindAllStringSubmatch(text, -1) {
		if r := cleanRole(m[1]); r != "" {
			roles = append(roles, r)
		}
	}
	if len(roles) > 0 {
		return roles
	}
	for _, m := range roleSubjectPattern.FindAllStringSubmatch(text, -1) {
		if r := cleanRole(m[1]); r != "" && r != "i" && r != "we" && r != "it" {
			roles = append(roles, r)
		}
	}
	return roles
}

func cleanRole(s string) string {
	if loc := roleCut.FindStringIndex(" " + s); loc != nil {
		s = (" " + s)[:loc[0]]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "the ")
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 5 {
		return ""
	}
	// "format it as a table" names a structure, not a role.
	if _, structural := structureWords[fields[0]]; structural {
		return ""
	}
	return s
}

func extractTasks(text string) []string {
	var tasks []string
	for _, clause := range clauseSplit.Split(text, -1) {
		for _, p := range taskPatterns {
			for _, m := range p.FindAllStringSubmatch(clause, -1) {
				t := m[1]
				if loc := taskCut.FindStringIndex(t); loc != nil {
					t = t[:loc[0]]
				}
				if t = strings.Trim(t, " ,"); t != "" {
					tasks = append(tasks, t)
				}
			}
		}
	}
	return tasks
}

func extractHints(text string) []string {
	var hints []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if h, ok := structureWords[w]; ok {
			hints = append(hints, h)
		}
	}
	return hints
}

func extractSubjects(text string) []string {
	var subjects []string
	for _, p := range subjectPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			w := m[1]
			if notSubjects[w] {
				continue
			}
			if _, structural := structureWords[w]; structural {
				continue
			}
			subjects = append(subjects, w)
		}
	}
	return subjects
}

func extractAttributes(text string) []string {
	var attrs []string
	for _, m := range attributePattern.FindAllStringSubmatch(text, -1) {
		phrase := m[1]
		if loc := attributeCut.FindStringIndex(phrase + " "); loc != nil {
			phrase = phrase[:loc[0]]
		}
		for _, a := range attributeSplit.Split(phrase, -1) {
			words := strings.Fields(a)
			for len(words) > 0 && attributeArticles[words[0]] {
				words = words[1:]
			}
			if len(words) == 0 || len(words) > 4 {
				continue
			}
			// "with a table of products" restates structure, not a field.
			if _, structural := structureWords[words[0]]; structural {
				continue
			}
			attrs = append(attrs, strings.Join(words, " "))
		}
	}
	return attrs
}
