// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/usestring/promptlib-mcp/pkg/jsoncompact"
)

// Store and batch defaults
const (
	DefaultSchemaCacheMaxItems   = 256
	DefaultTemplateCacheMaxItems = 512
	DefaultCheckWorkers          = 8
	DefaultMaxCheckDocuments     = 1000
	DefaultMaxInputBytes         = 1 << 20 // 1MB
)

// Config holds all configuration for the MCP server.
type Config struct {
	SchemaCacheMaxItems   int // SCHEMA_CACHE_MAX_ITEMS, default 256
	TemplateCacheMaxItems int // TEMPLATE_CACHE_MAX_ITEMS, default 512
	CheckWorkers          int // CHECK_WORKERS, default 8
	MaxCheckDocuments     int // MAX_CHECK_DOCUMENTS, default 1000
	MaxInputBytes         int // MAX_INPUT_BYTES, default 1MB

	// Compaction of the "actual" value in validation errors
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN
	CompactMaxDepth      int // COMPACT_MAX_DEPTH

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		SchemaCacheMaxItems:   getEnvPositive("SCHEMA_CACHE_MAX_ITEMS", DefaultSchemaCacheMaxItems),
		TemplateCacheMaxItems: getEnvPositive("TEMPLATE_CACHE_MAX_ITEMS", DefaultTemplateCacheMaxItems),
		CheckWorkers:          getEnvPositive("CHECK_WORKERS", DefaultCheckWorkers),
		MaxCheckDocuments:     getEnvPositive("MAX_CHECK_DOCUMENTS", DefaultMaxCheckDocuments),
		MaxInputBytes:         getEnvPositive("MAX_INPUT_BYTES", DefaultMaxInputBytes),

		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", jsoncompact.DefaultMaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", jsoncompact.DefaultMaxStringLen),
		CompactMaxDepth:      getEnvInt("COMPACT_MAX_DEPTH", jsoncompact.DefaultMaxDepth),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// Compaction returns the compaction options for reported values.
func (c *Config) Compaction() *jsoncompact.Options {
	return &jsoncompact.Options{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
		MaxDepth:      c.CompactMaxDepth,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvPositive is getEnvInt that falls back for values below one.
func getEnvPositive(key string, defaultVal int) int {
	if i := getEnvInt(key, defaultVal); i > 0 {
		return i
	}
	return defaultVal
}
