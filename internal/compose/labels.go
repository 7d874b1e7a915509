package compose

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// labeler turns schema names into display labels. A Caser is stateful,
// so each composition owns one.
type labeler struct {
	title cases.Caser
}

func newLabeler() *labeler {
	return &labeler{title: cases.Title(language.English, cases.NoLower)}
}

// label renders "unit_price" as "Unit Price" and "firstName" as "First Name".
func (l *labeler) label(name string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			r = ' '
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return l.title.String(strings.Join(strings.Fields(b.String()), " "))
}

// heading renders the template title from role and task.
func (l *labeler) heading(role, task string) string {
	var parts []string
	if role != "" {
		parts = append(parts, l.title.String(role))
	}
	if task != "" {
		parts = append(parts, capitalize(task))
	}
	if len(parts) == 0 {
		return ""
	}
	return "# " + strings.Join(parts, " - ") + "\n\n"
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
