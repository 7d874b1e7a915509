package jsonschema

import (
	"encoding/json"
	"regexp"
	"sort"

	"github.com/invopop/jsonschema"
)

// FieldStat summarizes one schema path across samples. Paths are dotted and
// array elements share their array's path, e.g. "items.sku".
type FieldStat struct {
	Path          string   `json:"path"`
	Type          string   `json:"type"`
	Frequency     float64  `json:"frequency"` // Share of parent values that carry the field
	Required      bool     `json:"required"`
	Nullable      bool     `json:"nullable"`
	DistinctCount int      `json:"distinct_count"`
	Examples      []any    `json:"examples,omitzero"`
	Format        string   `json:"format,omitempty"` // uuid, date-time, uri, email or enum
	EnumValues    []string `json:"enum_values,omitzero"`
}

const (
	maxStatDepth          = 6
	maxExamples           = 3
	minSamplesForFormat   = 5
	maxEnumDistinctValues = 10
)

var formats = []struct {
	name string
	re   *regexp.Regexp
}{
	{"uuid", regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)},
	{"date-time", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2})?`)},
	{"uri", regexp.MustCompile(`^https?://`)},
	{"email", regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)},
}

// FieldStats walks schema alongside decoded samples and returns one entry
// per property in schema order.
func FieldStats(schema *jsonschema.Schema, samples []any) []FieldStat {
	if schema == nil || len(samples) == 0 {
		return nil
	}
	var out []FieldStat
	walkStats(schema, "", samples, 0, &out)
	return out
}

func walkStats(s *jsonschema.Schema, path string, values []any, depth int, out *[]FieldStat) {
	if depth > maxStatDepth {
		return
	}
	if arr := arrayVariant(s); arr != nil && arr.Items != nil {
		walkStats(arr.Items, path, elements(values), depth+1, out)
		return
	}
	obj := objectVariant(s)
	if obj == nil || obj.Properties == nil {
		return
	}
	required := make(map[string]bool, len(obj.Required))
	for _, r := range obj.Required {
		required[r] = true
	}

	parents := objectsOf(values)
	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Key
		if path != "" {
			child = path + "." + pair.Key
		}
		stat := FieldStat{Path: child, Type: typeLabel(pair.Value), Required: required[pair.Key]}

		var present []any
		seen := make(map[string]bool)
		var strs []string
		for _, p := range parents {
			v, ok := p[pair.Key]
			if !ok {
				continue
			}
			present = append(present, v)
			if v == nil {
				stat.Nullable = true
				continue
			}
			key, _ := json.Marshal(v)
			if !seen[string(key)] {
				seen[string(key)] = true
				switch v.(type) {
				case map[string]any, []any:
				default:
					if len(stat.Examples) < maxExamples {
						stat.Examples = append(stat.Examples, v)
					}
				}
			}
			if str, ok := v.(string); ok {
				strs = append(strs, str)
			}
		}
		if len(parents) > 0 {
			stat.Frequency = float64(len(present)) / float64(len(parents))
		}
		stat.DistinctCount = len(seen)
		if len(strs) >= minSamplesForFormat && len(strs) == len(present)-nulls(present) {
			stat.Format, stat.EnumValues = detectFormat(strs)
		}

		*out = append(*out, stat)
		walkStats(pair.Value, child, present, depth+1, out)
	}
}

func nulls(values []any) int {
	n := 0
	for _, v := range values {
		if v == nil {
			n++
		}
	}
	return n
}

// typeLabel names the non-null type of s, or "any" for wider unions.
func typeLabel(s *jsonschema.Schema) string {
	var names []string
	for _, t := range typesOf(s) {
		if t.Type != "null" {
			names = append(names, t.Type)
		}
	}
	switch len(names) {
	case 0:
		if len(typesOf(s)) > 0 {
			return "null"
		}
		return "any"
	case 1:
		return names[0]
	}
	return "any"
}

// detectFormat checks whether every string matches a known format. Few
// distinct values among many samples make an enum.
func detectFormat(values []string) (string, []string) {
	for _, f := range formats {
		all := true
		for _, v := range values {
			if !f.re.MatchString(v) {
				all = false
				break
			}
		}
		if all {
			return f.name, nil
		}
	}

	distinct := make(map[string]bool)
	for _, v := range values {
		distinct[v] = true
	}
	if len(distinct) > maxEnumDistinctValues || len(distinct) == len(values) {
		return "", nil
	}
	enum := make([]string, 0, len(distinct))
	for v := range distinct {
		enum = append(enum, v)
	}
	sort.Strings(enum)
	return "enum", enum
}
