package types

// RuleLocation points at the part of a text that triggered a violation.
type RuleLocation struct {
	Offset  *int   `json:"offset,omitempty"`  // Byte offset into the full text
	Section string `json:"section,omitempty"` // Section label for region-targeted rules
}

// RuleViolation reports one failed rule.
type RuleViolation struct {
	RuleID   string        `json:"rule_id"`
	Message  string        `json:"message"`
	Location *RuleLocation `json:"location,omitempty"`
}

// CheckReport summarizes rule evaluation for one document.
type CheckReport struct {
	Name       string          `json:"name,omitempty"`
	Passed     bool            `json:"passed"`
	Violations []RuleViolation `json:"violations,omitzero"`
}
