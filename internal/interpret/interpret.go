// Package interpret extracts composition directives from user input.
//
// Two extractors share one resolution step: TextInterpreter matches a bounded
// set of phrases in free text, StructuredInterpreter reads a key/value map.
// Both produce an Intent, which Resolve checks for contradictions and binds to
// schema paths through an optional Vocabulary.
package interpret

import (
	"errors"
	"fmt"
	"strings"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// ErrUnsupportedInput is returned for inputs that are neither text nor a map.
var ErrUnsupportedInput = errors.New("interpret: input must be a string or a key/value map")

// Vocabulary resolves user terms against an indexed schema.
// *lexicon.Index implements it.
type Vocabulary interface {
	Lookup(term string) []string
	LookupWithin(term, container string) []string
	Kind(path string) (types.SchemaKind, bool)
	Leaves(path string) []string
}

// Interpreter extracts raw intent from one input shape.
type Interpreter interface {
	Extract(input any) (*Intent, error)
}

// Intent is what an extractor found before contradiction checks and
// schema binding. Slices keep first-mention order and may hold duplicates.
type Intent struct {
	Roles      []string
	Tasks      []string
	Hints      []string // canonical structure names: list, table, section
	Subjects   []string // collection nouns the structure applies to
	Attributes []string // requested field phrases
	Problems   []Conflict
}

// Conflict is one reason an input cannot be interpreted unambiguously.
type Conflict struct {
	Kind   string   `json:"kind"` // role, task, structure, field or input
	Values []string `json:"values,omitzero"`
	Reason string   `json:"reason"`
}

// InterpretationError enumerates every conflict found in one input.
type InterpretationError struct {
	Conflicts []Conflict
}

func (e *InterpretationError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.Reason
	}
	return "interpretation: " + strings.Join(parts, "; ")
}

// Interpret extracts directives from text or a key/value map.
// vocab may be nil; field requests then carry no resolved path.
func Interpret(input any, vocab Vocabulary) ([]types.Directive, error) {
	var ip Interpreter
	switch input.(type) {
	case string, []byte:
		ip = TextInterpreter{}
	case map[string]any, map[string]string:
		ip = StructuredInterpreter{}
	default:
		return nil, fmt.Errorf("%w, got %T", ErrUnsupportedInput, input)
	}

	intent, err := ip.Extract(input)
	if err != nil {
		return nil, err
	}
	return Resolve(intent, vocab)
}

// structureWords maps structural vocabulary onto canonical hint names.
var structureWords = map[string]string{
	"list":     types.StructureList,
	"lists":    types.StructureList,
	"bullet":   types.StructureList,
	"bullets":  types.StructureList,
	"bulleted": types.StructureList,
	"table":    types.StructureTable,
	"tables":   types.StructureTable,
	"tabular":  types.StructureTable,
	"grid":     types.StructureTable,
	"section":  types.StructureSection,
	"sections": types.StructureSection,
}

// CanonicalHint maps a structural word to its hint name.
func CanonicalHint(word string) (string, bool) {
	h, ok := structureWords[strings.ToLower(strings.TrimSpace(word))]
	return h, ok
}
