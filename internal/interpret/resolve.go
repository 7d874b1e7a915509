package interpret

import (
	"fmt"
	"strings"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Resolve turns an Intent into ordered directives: role, task, structure hint,
// then field requests. Every contradiction is collected before failing.
func Resolve(intent *Intent, vocab Vocabulary) ([]types.Directive, error) {
	conflicts := append([]Conflict(nil), intent.Problems...)

	role, c := single("role", intent.Roles)
	if c != nil {
		conflicts = append(conflicts, *c)
	}
	task, c := single("task", intent.Tasks)
	if c != nil {
		conflicts = append(conflicts, *c)
	}
	hint, c := pickHint(intent.Hints)
	if c != nil {
		conflicts = append(conflicts, *c)
	}

	var (
		subject string
		fields  []types.Directive
	)
	if vocab != nil {
		var fc []Conflict
		subject, fields, fc = bindFields(intent, vocab)
		conflicts = append(conflicts, fc...)
	} else {
		for _, v := range dedupe(append(append([]string(nil), intent.Subjects...), intent.Attributes...)) {
			fields = append(fields, types.Directive{Kind: types.DirectiveFieldRequest, Value: v})
		}
	}

	if len(conflicts) > 0 {
		return nil, &InterpretationError{Conflicts: conflicts}
	}

	var out []types.Directive
	if role != "" {
		out = append(out, types.Directive{Kind: types.DirectiveRole, Value: role})
	}
	if task != "" {
		out = append(out, types.Directive{Kind: types.DirectiveTask, Value: task})
	}
	if hint != "" {
		out = append(out, types.Directive{Kind: types.DirectiveStructureHint, Value: hint, Path: subject})
	}
	return append(out, fields...), nil
}

// single returns the one distinct value, or a conflict naming all of them.
func single(kind string, values []string) (string, *Conflict) {
	distinct := dedupe(values)
	switch len(distinct) {
	case 0:
		return "", nil
	case 1:
		return distinct[0], nil
	}
	quoted := make([]string, len(distinct))
	for i, v := range distinct {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "", &Conflict{
		Kind:   kind,
		Values: distinct,
		Reason: fmt.Sprintf("conflicting %ss: %s", kind, strings.Join(quoted, ", ")),
	}
}

// pickHint applies the tie-break: an array-typed hint beats section,
// but list and table together are contradictory.
func pickHint(hints []string) (string, *Conflict) {
	seen := make(map[string]bool)
	for _, h := range hints {
		seen[h] = true
	}
	switch {
	case seen[types.StructureList] && seen[types.StructureTable]:
		return "", &Conflict{
			Kind:   "structure",
			Values: []string{types.StructureList, types.StructureTable},
			Reason: "conflicting structure hints: list, table",
		}
	case seen[types.StructureTable]:
		return types.StructureTable, nil
	case seen[types.StructureList]:
		return types.StructureList, nil
	case seen[types.StructureSection]:
		return types.StructureSection, nil
	}
	return "", nil
}

// bindFields resolves subjects and attributes against the vocabulary.
// The first subject naming a container becomes the structure target and
// contributes its scalar leaves in schema order; explicit attributes that
// are not among those leaves follow in mention order.
func bindFields(intent *Intent, vocab Vocabulary) (string, []types.Directive, []Conflict) {
	var (
		subject   string
		conflicts []Conflict
	)
	for _, s := range dedupe(intent.Subjects) {
		if p := firstContainer(vocab, vocab.Lookup(s)); p != "" {
			subject = p
			break
		}
	}

	type binding struct{ value, path string }
	var explicit []binding
	for _, attr := range dedupe(intent.Attributes) {
		var candidates []string
		if subject != "" {
			candidates = vocab.LookupWithin(attr, subject)
		}
		if len(candidates) == 0 {
			candidates = vocab.Lookup(attr)
		}
		candidates = preferScalars(vocab, candidates)

		switch len(candidates) {
		case 0:
			conflicts = append(conflicts, Conflict{
				Kind:   "field",
				Values: []string{attr},
				Reason: fmt.Sprintf("field %q matches no schema path", attr),
			})
		case 1:
			p := candidates[0]
			// A container named as an attribute stands in for a missing subject.
			if subject == "" && isContainer(vocab, p) {
				subject = p
				continue
			}
			explicit = append(explicit, binding{attr, p})
		default:
			conflicts = append(conflicts, Conflict{
				Kind:   "field",
				Values: append([]string{attr}, candidates...),
				Reason: fmt.Sprintf("field %q is ambiguous: %s", attr, strings.Join(candidates, ", ")),
			})
		}
	}

	var fields []types.Directive
	placed := make(map[string]bool)
	if subject != "" {
		for _, leaf := range vocab.Leaves(subject) {
			placed[leaf] = true
			fields = append(fields, types.Directive{Kind: types.DirectiveFieldRequest, Value: lastSegment(leaf), Path: leaf})
		}
	}
	for _, b := range explicit {
		if placed[b.path] {
			continue
		}
		placed[b.path] = true
		fields = append(fields, types.Directive{Kind: types.DirectiveFieldRequest, Value: b.value, Path: b.path})
	}
	return subject, fields, conflicts
}

func firstContainer(vocab Vocabulary, paths []string) string {
	// Arrays first: they are what list and table hints need.
	for _, p := range paths {
		if k, _ := vocab.Kind(p); k == types.KindArray {
			return p
		}
	}
	for _, p := range paths {
		if k, _ := vocab.Kind(p); k == types.KindObject {
			return p
		}
	}
	return ""
}

func isContainer(vocab Vocabulary, path string) bool {
	k, _ := vocab.Kind(path)
	return k == types.KindArray || k == types.KindObject
}

// preferScalars narrows an ambiguous candidate set to its scalar members
// when exactly one of them is a scalar.
func preferScalars(vocab Vocabulary, candidates []string) []string {
	if len(candidates) < 2 {
		return candidates
	}
	var scalars []string
	for _, p := range candidates {
		if k, _ := vocab.Kind(p); k == types.KindScalar {
			scalars = append(scalars, p)
		}
	}
	if len(scalars) == 1 {
		return scalars
	}
	return candidates
}

// dedupe drops blanks and case-insensitive repeats, keeping first mentions.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.Join(strings.Fields(v), " ")
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
