// Package rules loads user-defined rule sets and checks rendered text against them.
package rules

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Rule targets.
const (
	TargetText    = "text"
	sectionPrefix = "section:"
)

// Rule is one declarative check.
type Rule struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind" yaml:"kind"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty"` // "text" or "section:<Label>"
	Params      Params `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// SectionTarget returns the section label a rule is scoped to, if any.
func (r Rule) SectionTarget() (string, bool) {
	label, ok := strings.CutPrefix(r.Target, sectionPrefix)
	return strings.TrimSpace(label), ok
}

// RuleLoadError reports a rule that cannot be loaded.
type RuleLoadError struct {
	Index  int    // Position in the rule list, -1 for the list itself
	RuleID string // Empty when the id is missing or unreadable
	Reason string
}

func (e *RuleLoadError) Error() string {
	switch {
	case e.Index < 0:
		return "rules: " + e.Reason
	case e.RuleID == "":
		return fmt.Sprintf("rules: rule at index %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("rules: rule %q (index %d): %s", e.RuleID, e.Index, e.Reason)
}

type compiled struct {
	rule    Rule
	section string
	checker Checker
}

// RuleSet is a compiled, ordered list of rules. It is read-only and safe
// for concurrent use.
type RuleSet struct {
	rules []compiled
}

// Rules returns the loaded rule definitions in order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	for i, c := range s.rules {
		out[i] = c.rule
	}
	return out
}

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Parse decodes a YAML or JSON rule list and loads it with the default registry.
func Parse(data []byte) (*RuleSet, error) {
	return DefaultRegistry().Parse(data)
}

// Parse decodes a YAML or JSON rule list and loads it.
func (r *Registry) Parse(data []byte) (*RuleSet, error) {
	var src any
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, &RuleLoadError{Index: -1, Reason: fmt.Sprintf("rule source is not valid YAML or JSON: %v", err)}
	}
	return r.Load(src)
}

// Load compiles an already-parsed rule list with the default registry.
func Load(src any) (*RuleSet, error) {
	return DefaultRegistry().Load(src)
}

// Load compiles an already-parsed rule list. src may be []Rule, []any of
// rule mappings, or []byte/string holding YAML or JSON. A nil source and an
// empty list both yield an empty rule set.
func (r *Registry) Load(src any) (*RuleSet, error) {
	var defs []Rule
	switch v := src.(type) {
	case nil:
		return &RuleSet{}, nil
	case []byte:
		return r.Parse(v)
	case string:
		return r.Parse([]byte(v))
	case []Rule:
		defs = v
	case []map[string]any:
		for i, m := range v {
			rule, err := decodeRule(i, m)
			if err != nil {
				return nil, err
			}
			defs = append(defs, rule)
		}
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, &RuleLoadError{Index: i, Reason: fmt.Sprintf("rule must be an object, got %s", typeName(item))}
			}
			rule, err := decodeRule(i, m)
			if err != nil {
				return nil, err
			}
			defs = append(defs, rule)
		}
	default:
		return nil, &RuleLoadError{Index: -1, Reason: fmt.Sprintf("rule source must be a list of rules, got %s", typeName(src))}
	}
	return r.compile(defs)
}

// decodeRule reads one rule mapping. Both {kind, parameters} and the
// older {type, config} spellings are accepted.
func decodeRule(index int, m map[string]any) (Rule, error) {
	fail := func(id, format string, args ...any) (Rule, error) {
		return Rule{}, &RuleLoadError{Index: index, RuleID: id, Reason: fmt.Sprintf(format, args...)}
	}

	var rule Rule
	id := defaultID(index)
	if raw, present := m["id"]; present {
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return fail("", "'id' must be a non-empty string, got %s", typeName(raw))
		}
		id = s
	}
	rule.ID = id

	if d, present := m["description"]; present && d != nil {
		s, ok := d.(string)
		if !ok {
			return fail(id, "'description' must be a string, got %s", typeName(d))
		}
		rule.Description = s
	}

	kind, err := aliased(m, "kind", "type")
	if err != nil {
		return fail(id, "%v", err)
	}
	if kind == nil {
		return fail(id, "missing required field 'kind'")
	}
	ks, ok := kind.(string)
	if !ok {
		return fail(id, "'kind' must be a string, got %s", typeName(kind))
	}
	rule.Kind = NormalizeKind(ks)

	if t, present := m["target"]; present && t != nil {
		s, ok := t.(string)
		if !ok {
			return fail(id, "'target' must be a string, got %s", typeName(t))
		}
		rule.Target = s
	}

	params, err := aliased(m, "parameters", "config")
	if err != nil {
		return fail(id, "%v", err)
	}
	switch p := params.(type) {
	case nil:
		rule.Params = Params{}
	case map[string]any:
		rule.Params = Params(p)
	default:
		return fail(id, "'parameters' must be an object, got %s", typeName(params))
	}
	return rule, nil
}

// defaultID names a rule declared without an id by its 1-based position.
func defaultID(index int) string {
	return fmt.Sprintf("rule-%d", index+1)
}

// aliased reads a field that has an alternate spelling. Setting both is an error.
func aliased(m map[string]any, key, alias string) (any, error) {
	v, hasKey := m[key]
	a, hasAlias := m[alias]
	switch {
	case hasKey && hasAlias:
		return nil, fmt.Errorf("'%s' and '%s' are the same field, set only one", key, alias)
	case hasAlias:
		return a, nil
	}
	return v, nil
}

func (r *Registry) compile(defs []Rule) (*RuleSet, error) {
	set := &RuleSet{rules: make([]compiled, 0, len(defs))}
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		fail := func(format string, args ...any) error {
			return &RuleLoadError{Index: i, RuleID: def.ID, Reason: fmt.Sprintf(format, args...)}
		}
		if strings.TrimSpace(def.ID) == "" {
			def.ID = defaultID(i)
		}
		if seen[def.ID] {
			return nil, fail("duplicate rule id")
		}
		seen[def.ID] = true

		def.Kind = NormalizeKind(def.Kind)
		factory, ok := r.Lookup(def.Kind)
		if !ok {
			return nil, fail("unknown rule kind %q (known: %s)", def.Kind, strings.Join(r.Kinds(), ", "))
		}

		c := compiled{rule: def}
		switch label, isSection := def.SectionTarget(); {
		case isSection && label == "":
			return nil, fail("section target needs a label, e.g. %q", sectionPrefix+"Output")
		case isSection:
			c.section = label
		case def.Target != "" && def.Target != TargetText:
			return nil, fail("unknown target %q (use %q or %q)", def.Target, TargetText, sectionPrefix+"<Label>")
		}

		params := def.Params
		if params == nil {
			params = Params{}
		}
		checker, err := factory(params)
		if err != nil {
			return nil, fail("%v", err)
		}
		c.checker = checker
		set.rules = append(set.rules, c)
	}
	return set, nil
}

// Check evaluates every rule against text and returns one violation per
// failing rule, in rule order. The result is empty when all rules pass.
func (s *RuleSet) Check(text string) []types.RuleViolation {
	var out []types.RuleViolation
	var regions map[string]region
	for _, c := range s.rules {
		scope, base := text, 0
		if c.section != "" {
			if regions == nil {
				regions = sections(text)
			}
			reg, ok := regions[strings.ToLower(c.section)]
			if !ok {
				out = append(out, types.RuleViolation{
					RuleID:   c.rule.ID,
					Message:  fmt.Sprintf("Section %q not found.", c.section),
					Location: &types.RuleLocation{Section: c.section},
				})
				continue
			}
			scope, base = text[reg.start:reg.end], reg.start
		}

		f := c.checker.Check(scope)
		if f == nil {
			continue
		}
		v := types.RuleViolation{RuleID: c.rule.ID, Message: f.Message}
		if f.Offset >= 0 || c.section != "" {
			v.Location = &types.RuleLocation{Section: c.section}
			if f.Offset >= 0 {
				off := base + f.Offset
				v.Location.Offset = &off
			}
		}
		out = append(out, v)
	}
	return out
}

// CheckRules loads src with the default registry and checks text against it.
func CheckRules(text string, src any) ([]types.RuleViolation, error) {
	set, err := Load(src)
	if err != nil {
		return nil, err
	}
	return set.Check(text), nil
}
