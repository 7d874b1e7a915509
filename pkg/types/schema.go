package types

// SchemaKind is the structural kind of a schema node.
type SchemaKind string

// Schema kinds.
const (
	KindScalar SchemaKind = "scalar"
	KindObject SchemaKind = "object"
	KindArray  SchemaKind = "array"
)

// SchemaFormat represents the input format for schema definitions.
type SchemaFormat string

// Schema format constants.
const (
	FormatAuto       SchemaFormat = "auto"
	FormatJSONSchema SchemaFormat = "json_schema"
	FormatShorthand  SchemaFormat = "shorthand"
	FormatGoStruct   SchemaFormat = "go_struct"
)

// ValidationError describes one place where a data instance does not match its schema.
// A report is an ordered slice of these; an empty slice means the instance is valid.
type ValidationError struct {
	Path         string     `json:"path"`                    // Indexed path, e.g. "items.2.price"
	ExpectedKind SchemaKind `json:"expected_kind"`           // scalar, object or array
	ExpectedType string     `json:"expected_type,omitempty"` // Scalar type when ExpectedKind is scalar
	Actual       any        `json:"actual,omitempty"`        // Offending value (compacted), nil when absent
	Present      bool       `json:"present"`                 // False when the value was missing
	Message      string     `json:"message"`
}

// ValidationReport summarizes validation of a single instance.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitzero"`
}

// NewValidationReport wraps an error list into a report.
func NewValidationReport(errs []ValidationError) *ValidationReport {
	return &ValidationReport{Valid: len(errs) == 0, Errors: errs}
}
