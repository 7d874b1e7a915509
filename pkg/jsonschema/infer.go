// Package jsonschema infers JSON Schema documents (Draft 2020-12) from sample
// instances. The result can be indexed like any hand-written schema.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/usestring/promptlib-mcp/pkg/types"
)

// Draft is the $schema URI written on inferred root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Inferred is a schema inferred from samples, plus per-field statistics.
type Inferred struct {
	Schema      *jsonschema.Schema `json:"schema"`
	SampleCount int                `json:"sample_count"`
	AllMatch    bool               `json:"all_match"` // Every sample produced the same schema
	Fields      []FieldStat        `json:"fields,omitzero"`
}

// Options controls inference.
type Options struct {
	// StrictRequired marks a property required when it appears in every sample.
	StrictRequired bool
	// NullableAsOptional leaves properties that were ever null out of required.
	NullableAsOptional bool
	// Closed sets additionalProperties: false on every object.
	Closed bool
}

// DefaultOptions returns the default inference options.
func DefaultOptions() *Options {
	return &Options{StrictRequired: true, NullableAsOptional: true}
}

// Infer builds a schema from instances with default options.
func Infer(samples ...any) (*Inferred, error) {
	return InferWithOptions(DefaultOptions(), samples...)
}

// InferJSON decodes JSON documents and infers a schema from them.
func InferJSON(docs ...[]byte) (*Inferred, error) {
	samples := make([]any, 0, len(docs))
	for i, d := range docs {
		var v any
		if err := json.Unmarshal(d, &v); err != nil {
			return nil, fmt.Errorf("sample %d is not valid JSON: %w", i, err)
		}
		samples = append(samples, v)
	}
	return Infer(samples...)
}

// InferWithOptions builds a schema from instances. Every sample must be a
// JSON object; Go values are normalized through a JSON round trip first.
func InferWithOptions(opts *Options, samples ...any) (*Inferred, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("at least one sample is required")
	}

	values := make([]any, len(samples))
	schemas := make([]*jsonschema.Schema, len(samples))
	for i, s := range samples {
		v, err := types.ToAny(s)
		if err != nil {
			return nil, fmt.Errorf("sample %d cannot be represented as JSON: %w", i, err)
		}
		if _, ok := v.(map[string]any); !ok {
			return nil, fmt.Errorf("sample %d must be a JSON object", i)
		}
		values[i] = v
		schemas[i] = fromValue(v)
	}

	merged := merge(schemas)
	if opts.StrictRequired {
		markRequired(merged, values, opts.NullableAsOptional)
	}
	if opts.Closed {
		closeObjects(merged)
	}
	merged.Version = Draft

	return &Inferred{
		Schema:      merged,
		SampleCount: len(values),
		AllMatch:    allEqual(schemas),
		Fields:      FieldStats(merged, values),
	}, nil
}

func allEqual(schemas []*jsonschema.Schema) bool {
	first, _ := json.Marshal(schemas[0])
	for _, s := range schemas[1:] {
		other, _ := json.Marshal(s)
		if string(first) != string(other) {
			return false
		}
	}
	return true
}

func fromValue(v any) *jsonschema.Schema {
	switch val := v.(type) {
	case nil:
		return &jsonschema.Schema{Type: "null"}
	case bool:
		return &jsonschema.Schema{Type: "boolean"}
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return &jsonschema.Schema{Type: "integer"}
		}
		return &jsonschema.Schema{Type: "number"}
	case string:
		return &jsonschema.Schema{Type: "string"}
	case []any:
		s := &jsonschema.Schema{Type: "array"}
		if len(val) > 0 {
			items := make([]*jsonschema.Schema, len(val))
			for i, item := range val {
				items[i] = fromValue(item)
			}
			s.Items = merge(items)
		}
		return s
	case map[string]any:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range sortedKeys(val) {
			s.Properties.Set(k, fromValue(val[k]))
		}
		return s
	}
	return &jsonschema.Schema{}
}

// merge unifies schemas observed at one position. integer widens to number,
// null alongside one other type becomes anyOf [T, null], and anything wider
// becomes an anyOf of the observed kinds.
func merge(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}

	byType := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		for _, t := range typesOf(s) {
			byType[t.Type] = append(byType[t.Type], t)
		}
	}
	if ints, ok := byType["integer"]; ok && len(byType["number"]) > 0 {
		byType["number"] = append(byType["number"], ints...)
		delete(byType, "integer")
	}

	names := make([]string, 0, len(byType))
	for t := range byType {
		if t != "null" {
			names = append(names, t)
		}
	}
	sort.Strings(names)

	variants := make([]*jsonschema.Schema, 0, len(names)+1)
	for _, t := range names {
		switch t {
		case "object":
			variants = append(variants, mergeObjects(byType[t]))
		case "array":
			variants = append(variants, mergeArrays(byType[t]))
		default:
			variants = append(variants, &jsonschema.Schema{Type: t})
		}
	}
	if len(byType["null"]) > 0 {
		variants = append(variants, &jsonschema.Schema{Type: "null"})
	}

	switch len(variants) {
	case 0:
		return &jsonschema.Schema{}
	case 1:
		return variants[0]
	}
	return &jsonschema.Schema{AnyOf: variants}
}

// typesOf flattens a schema into its single-type variants.
func typesOf(s *jsonschema.Schema) []*jsonschema.Schema {
	if s.Type != "" {
		return []*jsonschema.Schema{s}
	}
	var out []*jsonschema.Schema
	for _, v := range s.AnyOf {
		out = append(out, typesOf(v)...)
	}
	return out
}

func mergeObjects(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	props := make(map[string][]*jsonschema.Schema)
	for _, s := range schemas {
		if s.Properties == nil {
			continue
		}
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = append(props[pair.Key], pair.Value)
		}
	}
	out := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.Properties.Set(k, merge(props[k]))
	}
	return out
}

func mergeArrays(schemas []*jsonschema.Schema) *jsonschema.Schema {
	if len(schemas) == 1 {
		return schemas[0]
	}
	var items []*jsonschema.Schema
	for _, s := range schemas {
		if s.Items != nil {
			items = append(items, s.Items)
		}
	}
	out := &jsonschema.Schema{Type: "array"}
	if len(items) > 0 {
		out.Items = merge(items)
	}
	return out
}

// objectVariant returns the object schema of s, looking through anyOf.
func objectVariant(s *jsonschema.Schema) *jsonschema.Schema {
	for _, t := range typesOf(s) {
		if t.Type == "object" {
			return t
		}
	}
	return nil
}

// arrayVariant returns the array schema of s, looking through anyOf.
func arrayVariant(s *jsonschema.Schema) *jsonschema.Schema {
	for _, t := range typesOf(s) {
		if t.Type == "array" {
			return t
		}
	}
	return nil
}

// markRequired sets required on object schemas to the properties present
// in every sample object observed at that position.
func markRequired(s *jsonschema.Schema, samples []any, nullableOptional bool) {
	obj := objectVariant(s)
	if obj == nil || obj.Properties == nil {
		if arr := arrayVariant(s); arr != nil && arr.Items != nil {
			markRequired(arr.Items, elements(samples), nullableOptional)
		}
		return
	}

	objects := objectsOf(samples)
	var required []string
	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		present, null := 0, false
		var nested []any
		for _, o := range objects {
			v, ok := o[pair.Key]
			if !ok {
				continue
			}
			present++
			if v == nil {
				null = true
				continue
			}
			nested = append(nested, v)
		}
		if len(objects) > 0 && present == len(objects) && !(nullableOptional && null) {
			required = append(required, pair.Key)
		}
		markRequired(pair.Value, nested, nullableOptional)
	}
	sort.Strings(required)
	obj.Required = required
}

func closeObjects(s *jsonschema.Schema) {
	for _, t := range typesOf(s) {
		switch t.Type {
		case "object":
			t.AdditionalProperties = jsonschema.FalseSchema
			if t.Properties != nil {
				for pair := t.Properties.Oldest(); pair != nil; pair = pair.Next() {
					closeObjects(pair.Value)
				}
			}
		case "array":
			if t.Items != nil {
				closeObjects(t.Items)
			}
		}
	}
}

func objectsOf(samples []any) []map[string]any {
	var out []map[string]any
	for _, s := range samples {
		if m, ok := s.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// elements flattens the non-null items of every array sample.
func elements(samples []any) []any {
	var out []any
	for _, s := range samples {
		if arr, ok := s.([]any); ok {
			for _, item := range arr {
				if item != nil {
					out = append(out, item)
				}
			}
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
