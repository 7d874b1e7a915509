// Package redact finds and masks sensitive data in rendered text.
package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category names a kind of sensitive data.
type Category string

// Detector categories, in detection order.
const (
	CategoryEmail  Category = "email"
	CategoryAPIKey Category = "api_key"
	CategoryCard   Category = "credit_card"
)

// Finding is one detected span of sensitive data.
type Finding struct {
	Category    Category `json:"category"`
	Offset      int      `json:"offset"` // Byte offset into the original text
	Length      int      `json:"length"`
	Replacement string   `json:"replacement"`
}

type detector struct {
	category Category
	pattern  *regexp.Regexp
}

var detectors = []detector{
	{CategoryEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)},
	{CategoryAPIKey, regexp.MustCompile(`\b[A-Za-z0-9_\-]{30,}\b`)},
	{CategoryCard, regexp.MustCompile(`\b(?:\d[ \-]?){12,15}\d\b`)},
}

// Categories returns every known category in detection order.
func Categories() []Category {
	out := make([]Category, len(detectors))
	for i, d := range detectors {
		out[i] = d.category
	}
	return out
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, d := range detectors {
		if string(d.category) == s {
			return d.category, nil
		}
	}
	return "", fmt.Errorf("unknown redaction category %q", s)
}

// Redactor applies a subset of the detectors.
type Redactor struct {
	detectors []detector
}

// New returns a Redactor limited to categories, or all detectors when none given.
func New(categories ...Category) *Redactor {
	if len(categories) == 0 {
		return &Redactor{detectors: detectors}
	}
	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	r := &Redactor{}
	for _, d := range detectors {
		if want[d.category] {
			r.detectors = append(r.detectors, d)
		}
	}
	return r
}

// Redact masks every finding in text with all detectors.
func Redact(text string) (string, []Finding) {
	return New().Redact(text)
}

// Scan reports findings without changing text.
func (r *Redactor) Scan(text string) []Finding {
	var all []Finding
	for _, d := range r.detectors {
		for _, loc := range d.pattern.FindAllStringIndex(text, -1) {
			all = append(all, Finding{
				Category:    d.category,
				Offset:      loc[0],
				Length:      loc[1] - loc[0],
				Replacement: placeholder(d.category),
			})
		}
	}
	// Of overlapping spans the first to start is kept; ties go to the
	// earlier detector.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Offset < all[j].Offset })

	var out []Finding
	end := 0
	for _, f := range all {
		if f.Offset < end {
			continue
		}
		out = append(out, f)
		end = f.Offset + f.Length
	}
	return out
}

// Redact masks every finding in text.
func (r *Redactor) Redact(text string) (string, []Finding) {
	findings := r.Scan(text)
	if len(findings) == 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, f := range findings {
		b.WriteString(text[last:f.Offset])
		b.WriteString(f.Replacement)
		last = f.Offset + f.Length
	}
	b.WriteString(text[last:])
	return b.String(), findings
}

func placeholder(c Category) string {
	return "[REDACTED_" + strings.ToUpper(string(c)) + "]"
}
