package jsonschema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsByPath(t *testing.T, samples ...any) map[string]FieldStat {
	t.Helper()
	inferred, err := Infer(samples...)
	require.NoError(t, err)
	out := make(map[string]FieldStat)
	for _, s := range inferred.Fields {
		out[s.Path] = s
	}
	return out
}

func TestFieldStats_Basic(t *testing.T) {
	stats := statsByPath(t,
		map[string]any{"id": 1, "name": "a", "nick": "x"},
		map[string]any{"id": 2, "name": nil},
	)

	require.Contains(t, stats, "id")
	assert.Equal(t, "integer", stats["id"].Type)
	assert.True(t, stats["id"].Required)
	assert.Equal(t, 1.0, stats["id"].Frequency)
	assert.Equal(t, 2, stats["id"].DistinctCount)

	assert.True(t, stats["name"].Nullable)
	assert.False(t, stats["name"].Required)
	assert.Equal(t, "string", stats["name"].Type)

	assert.Equal(t, 0.5, stats["nick"].Frequency)
	assert.False(t, stats["nick"].Required)
}

func TestFieldStats_DottedPaths(t *testing.T) {
	stats := statsByPath(t, map[string]any{
		"user":  map[string]any{"email": "a@b.co"},
		"items": []any{map[string]any{"sku": "a"}, map[string]any{"sku": "b"}},
	})

	assert.Contains(t, stats, "user.email")
	require.Contains(t, stats, "items.sku")
	assert.Equal(t, 2, stats["items.sku"].DistinctCount)
	assert.Empty(t, stats["items"].Examples)
}

func TestFieldStats_Formats(t *testing.T) {
	tests := []struct {
		format string
		value  func(i int) string
	}{
		{"uuid", func(i int) string { return fmt.Sprintf("550e8400-e29b-41d4-a716-44665544000%d", i) }},
		{"date-time", func(i int) string { return fmt.Sprintf("2024-01-0%dT10:00:00Z", i+1) }},
		{"uri", func(i int) string { return fmt.Sprintf("https://example.com/%d", i) }},
		{"email", func(i int) string { return fmt.Sprintf("user%d@example.com", i) }},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var samples []any
			for i := range 5 {
				samples = append(samples, map[string]any{"v": tt.value(i)})
			}
			stats := statsByPath(t, samples...)
			assert.Equal(t, tt.format, stats["v"].Format)
		})
	}
}

func TestFieldStats_Enum(t *testing.T) {
	var samples []any
	for _, s := range []string{"active", "inactive", "pending", "active", "active", "pending"} {
		samples = append(samples, map[string]any{"status": s})
	}
	stats := statsByPath(t, samples...)
	assert.Equal(t, "enum", stats["status"].Format)
	assert.Equal(t, []string{"active", "inactive", "pending"}, stats["status"].EnumValues)
	assert.Len(t, stats["status"].Examples, 3)
}

func TestFieldStats_TooFewSamplesSkipsFormat(t *testing.T) {
	stats := statsByPath(t,
		map[string]any{"id": "550e8400-e29b-41d4-a716-446655440000"},
		map[string]any{"id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	)
	assert.Empty(t, stats["id"].Format)
}

func TestFieldStats_Empty(t *testing.T) {
	assert.Nil(t, FieldStats(nil, []any{map[string]any{}}))
	inferred, err := Infer(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Nil(t, FieldStats(inferred.Schema, nil))
}
