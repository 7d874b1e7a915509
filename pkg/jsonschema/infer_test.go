package jsonschema

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
)

func prop(t *testing.T, s *jsonschema.Schema, name string) *jsonschema.Schema {
	t.Helper()
	if s.Properties == nil {
		t.Fatalf("schema has no properties, want %q", name)
	}
	p, ok := s.Properties.Get(name)
	if !ok {
		t.Fatalf("property %q not found", name)
	}
	return p
}

func TestInfer_ScalarTypes(t *testing.T) {
	result, err := InferJSON([]byte(`{"s":"hello","i":42,"whole":1.0,"f":3.14,"b":true,"n":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{"s": "string", "i": "integer", "whole": "integer", "f": "number", "b": "boolean", "n": "null"}
	for name, typ := range want {
		if got := prop(t, result.Schema, name).Type; got != typ {
			t.Errorf("%s: expected type %q, got %q", name, typ, got)
		}
	}
	if result.Schema.Version != Draft {
		t.Errorf("expected $schema %q, got %q", Draft, result.Schema.Version)
	}
}

func TestInfer_PropertyOrderIsSorted(t *testing.T) {
	result, err := Infer(map[string]any{"zeta": 1, "alpha": "a", "mid": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for pair := result.Schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	if len(keys) != 3 || keys[0] != "alpha" || keys[1] != "mid" || keys[2] != "zeta" {
		t.Errorf("unexpected key order %v", keys)
	}
}

func TestInfer_ArrayOfObjects(t *testing.T) {
	result, err := InferJSON([]byte(`{"items":[{"sku":"a","qty":1},{"sku":"b"}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := prop(t, result.Schema, "items")
	if items.Type != "array" || items.Items == nil {
		t.Fatalf("expected array with items, got %+v", items)
	}
	elem := items.Items
	if elem.Type != "object" {
		t.Fatalf("expected object items, got %q", elem.Type)
	}
	if len(elem.Required) != 1 || elem.Required[0] != "sku" {
		t.Errorf("expected required [sku], got %v", elem.Required)
	}
}

func TestInfer_IntegerWidensToNumber(t *testing.T) {
	result, err := InferJSON([]byte(`{"n":1}`), []byte(`{"n":1.5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := prop(t, result.Schema, "n").Type; got != "number" {
		t.Errorf("expected number, got %q", got)
	}
	if result.AllMatch {
		t.Error("expected AllMatch false for differing samples")
	}
}

func TestInfer_NullBecomesAnyOf(t *testing.T) {
	result, err := InferJSON([]byte(`{"note":"x"}`), []byte(`{"note":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note := prop(t, result.Schema, "note")
	if len(note.AnyOf) != 2 || note.AnyOf[0].Type != "string" || note.AnyOf[1].Type != "null" {
		t.Fatalf("expected anyOf [string, null], got %+v", note.AnyOf)
	}
	if len(result.Schema.Required) != 0 {
		t.Errorf("nullable field should be optional, got required %v", result.Schema.Required)
	}

	strict, err := InferWithOptions(&Options{StrictRequired: true}, map[string]any{"note": "x"}, map[string]any{"note": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(strict.Schema.Required) != 1 || strict.Schema.Required[0] != "note" {
		t.Errorf("expected required [note], got %v", strict.Schema.Required)
	}
}

func TestInfer_MixedTypesUnion(t *testing.T) {
	result, err := InferJSON([]byte(`{"v":"a"}`), []byte(`{"v":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := prop(t, result.Schema, "v")
	if len(v.AnyOf) != 2 || v.AnyOf[0].Type != "boolean" || v.AnyOf[1].Type != "string" {
		t.Errorf("expected anyOf [boolean, string], got %+v", v.AnyOf)
	}
}

func TestInfer_RequiredAcrossSamples(t *testing.T) {
	result, err := InferJSON([]byte(`{"a":1,"b":2}`), []byte(`{"a":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Schema.Required) != 1 || result.Schema.Required[0] != "a" {
		t.Errorf("expected required [a], got %v", result.Schema.Required)
	}
	if result.SampleCount != 2 {
		t.Errorf("expected 2 samples, got %d", result.SampleCount)
	}
}

func TestInferWithOptions_Closed(t *testing.T) {
	result, err := InferWithOptions(&Options{Closed: true}, map[string]any{"user": map[string]any{"name": "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Schema.AdditionalProperties != jsonschema.FalseSchema {
		t.Error("expected root additionalProperties false")
	}
	if prop(t, result.Schema, "user").AdditionalProperties != jsonschema.FalseSchema {
		t.Error("expected nested additionalProperties false")
	}
}

func TestInfer_Errors(t *testing.T) {
	if _, err := Infer(); err == nil {
		t.Error("expected error for no samples")
	}
	if _, err := Infer([]any{1, 2}); err == nil {
		t.Error("expected error for non-object sample")
	}
	if _, err := InferJSON([]byte(`{bad`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := Infer(map[string]any{"f": func() {}}); err == nil {
		t.Error("expected error for unrepresentable sample")
	}
}

func TestInfer_StructSample(t *testing.T) {
	type line struct {
		SKU string `json:"sku"`
	}
	type order struct {
		ID    int    `json:"id"`
		Lines []line `json:"lines"`
	}
	result, err := Infer(order{ID: 7, Lines: []line{{SKU: "a"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(result.Schema)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc["type"] != "object" {
		t.Errorf("expected object root, got %v", doc["type"])
	}
	if prop(t, prop(t, result.Schema, "lines").Items, "sku").Type != "string" {
		t.Error("expected lines.sku string")
	}
}
