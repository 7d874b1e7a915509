package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usestring/promptlib-mcp/pkg/jsoncompact"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SCHEMA_CACHE_MAX_ITEMS", "CHECK_WORKERS", "LOG_FORMAT", "LOG_COMPRESS", "COMPACT_MAX_STRING_LEN"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, DefaultSchemaCacheMaxItems, cfg.SchemaCacheMaxItems)
	assert.Equal(t, DefaultCheckWorkers, cfg.CheckWorkers)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.LogCompress)
	assert.Equal(t, jsoncompact.DefaultMaxStringLen, cfg.Compaction().MaxStringLen)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCHEMA_CACHE_MAX_ITEMS", "12")
	t.Setenv("CHECK_WORKERS", "0")
	t.Setenv("MAX_INPUT_BYTES", "nope")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_COMPRESS", "off")
	t.Setenv("COMPACT_MAX_ARRAY_ITEMS", "5")

	cfg := Load()
	assert.Equal(t, 12, cfg.SchemaCacheMaxItems)
	assert.Equal(t, DefaultCheckWorkers, cfg.CheckWorkers)
	assert.Equal(t, DefaultMaxInputBytes, cfg.MaxInputBytes)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.LogCompress)
	assert.Equal(t, 5, cfg.Compaction().MaxArrayItems)
}
