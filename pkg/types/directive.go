package types

// DirectiveKind classifies an extracted intent unit.
type DirectiveKind string

// Directive kinds.
const (
	DirectiveRole          DirectiveKind = "role"
	DirectiveTask          DirectiveKind = "task"
	DirectiveFieldRequest  DirectiveKind = "field-request"
	DirectiveStructureHint DirectiveKind = "structure-hint"
)

// Structure hint values.
const (
	StructureList    = "list"
	StructureTable   = "table"
	StructureSection = "section"
)

// Directive is one unit of user intent guiding template composition.
type Directive struct {
	Kind  DirectiveKind `json:"kind"`
	Value string        `json:"value"`          // Free text: role, task, hint name or field phrase
	Path  string        `json:"path,omitempty"` // Resolved schema path (field requests, hint subjects)
}

// IsArrayTyped reports whether a structure-hint value needs an array target.
func IsArrayTyped(hint string) bool {
	return hint == StructureList || hint == StructureTable
}
