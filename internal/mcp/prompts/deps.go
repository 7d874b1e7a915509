// Package prompts contains MCP prompt implementations for promptlib.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	RuleKinds     []string // registered rule kinds, listed in the guides
	MaxInputBytes int
}
