package rules

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Checker evaluates one compiled rule against a text region. It returns nil
// when the region passes. Offsets in the returned location are relative to
// the region; the rule set rebases them onto the full text.
type Checker interface {
	Check(text string) *Failure
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(text string) *Failure

// Check implements Checker.
func (f CheckFunc) Check(text string) *Failure { return f(text) }

// Failure is a checker's verdict on a failing region.
type Failure struct {
	Message string
	Offset  int // -1 when the failure has no position
}

// Fail builds a Failure without a position.
func Fail(format string, args ...any) *Failure {
	return &Failure{Message: fmt.Sprintf(format, args...), Offset: -1}
}

// FailAt builds a Failure located at offset.
func FailAt(offset int, format string, args ...any) *Failure {
	return &Failure{Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Factory compiles a rule's parameters into a Checker. Parameter errors are
// reported at load time.
type Factory func(params Params) (Checker, error)

// Registry maps rule kinds to factories. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Factory
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Factory, len(builtins))}
	for kind, f := range builtins {
		r.kinds[kind] = f
	}
	return r
}

// Register adds a kind. Kinds are normalized ("regex_match" becomes
// "regex-match") and may not be registered twice.
func (r *Registry) Register(kind string, f Factory) error {
	kind = NormalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("rule kind is required")
	}
	if f == nil {
		return fmt.Errorf("rule kind %q: factory is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("rule kind %q is already registered", kind)
	}
	r.kinds[kind] = f
	return nil
}

// Lookup returns the factory for kind.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.kinds[NormalizeKind(kind)]
	return f, ok
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeKind lowercases kind and turns underscores into hyphens.
func NormalizeKind(kind string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(kind)), "_", "-")
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Load and CheckRules.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a kind to the default registry.
func Register(kind string, f Factory) error {
	return defaultRegistry.Register(kind, f)
}
