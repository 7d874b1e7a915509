package mcpsrv

import "github.com/usestring/promptlib-mcp/internal/rules"

// Rule extension types. A RuleFactory compiles a rule's parameters into a
// RuleChecker once, when the rule list is loaded.
type (
	RuleParams  = rules.Params
	RuleChecker = rules.Checker
	RuleFunc    = rules.CheckFunc
	RuleFailure = rules.Failure
	RuleFactory = rules.Factory
)

// Fail reports a failing region without a position.
func Fail(format string, args ...any) *RuleFailure {
	return rules.Fail(format, args...)
}

// FailAt reports a failing region at a byte offset into the checked text.
func FailAt(offset int, format string, args ...any) *RuleFailure {
	return rules.FailAt(offset, format, args...)
}
