package template

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Template is a composed template: metadata plus the node tree.
// Templates are immutable once composed.
type Template struct {
	Role         string  `json:"role,omitempty"`
	Task         string  `json:"task,omitempty"`
	Layout       string  `json:"layout"`        // table, list or sections:<category>
	SchemaDigest string  `json:"schema_digest"` // digest of the schema tree it was composed against
	Nodes        []*Node `json:"nodes"`
}

// ID identifies the template by content: equal templates share an ID.
func (t *Template) ID() string {
	data, err := json.Marshal(t)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Encode serializes a template to JSON.
func Encode(t *Template) ([]byte, error) {
	return json.Marshal(t)
}

// Decode parses a JSON template and checks node shapes.
func Decode(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	if err := checkShape(t.Nodes, "nodes"); err != nil {
		return nil, err
	}
	return &t, nil
}

func checkShape(nodes []*Node, at string) error {
	for i, n := range nodes {
		where := fmt.Sprintf("%s[%d]", at, i)
		if n == nil {
			return fmt.Errorf("decoding template: %s: null node", where)
		}
		switch n.Kind {
		case KindLiteral, KindSection:
		case KindVariable, KindConditional:
			if n.Path == "" {
				return fmt.Errorf("decoding template: %s: %s node needs a path", where, n.Kind)
			}
		case KindLoop:
			if n.Path == "" {
				return fmt.Errorf("decoding template: %s: loop node needs a path", where)
			}
			switch n.Style {
			case StyleTableRow, StyleListItem, StyleBlock:
			default:
				return fmt.Errorf("decoding template: %s: unknown loop style %q", where, n.Style)
			}
		default:
			return fmt.Errorf("decoding template: %s: unknown node kind %q", where, n.Kind)
		}
		if err := checkShape(n.Body, where+".body"); err != nil {
			return err
		}
		if err := checkShape(n.Else, where+".else"); err != nil {
			return err
		}
	}
	return nil
}

// Source renders a human-readable, Jinja-like view of the template.
// Loop variables are named item, item2, ... by nesting depth.
func (t *Template) Source() string {
	var b strings.Builder
	writeSource(&b, t.Nodes, nil)
	return b.String()
}

func writeSource(b *strings.Builder, nodes []*Node, loops []string) {
	ref := func(path string) string {
		if len(loops) == 0 {
			return path
		}
		v := loops[len(loops)-1]
		if path == ElementPath {
			return v
		}
		return v + "." + path
	}
	for _, n := range nodes {
		switch n.Kind {
		case KindLiteral:
			b.WriteString(n.Text)
		case KindVariable:
			fmt.Fprintf(b, "{{ %s }}", ref(n.Path))
		case KindLoop:
			v := "item"
			if len(loops) > 0 {
				v = fmt.Sprintf("item%d", len(loops)+1)
			}
			fmt.Fprintf(b, "{%% for %s in %s %%}", v, ref(n.Path))
			writeSource(b, n.Body, append(loops, v))
			b.WriteString("{% endfor %}")
		case KindConditional:
			fmt.Fprintf(b, "{%% if %s %%}", ref(n.Path))
			writeSource(b, n.Body, loops)
			if len(n.Else) > 0 {
				b.WriteString("{% else %}")
				writeSource(b, n.Else, loops)
			}
			b.WriteString("{% endif %}")
		case KindSection:
			fmt.Fprintf(b, "%s%s\n", SectionHeading, n.Label)
			writeSource(b, n.Body, loops)
		}
	}
}

// SectionHeading prefixes a section label in rendered output.
const SectionHeading = "## "
