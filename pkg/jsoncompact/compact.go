// Package jsoncompact shrinks JSON values for reports by trimming arrays,
// objects and long strings to configurable limits.
package jsoncompact

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"
)

// Options controls compaction. A zero limit disables that limit.
type Options struct {
	MaxArrayItems int // Keep the first N array items
	MaxObjectKeys int // Keep the first N object keys in sorted order
	MaxStringLen  int // Keep the first N runes of a string
	MaxDepth      int // Replace values nested deeper than N
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 3
	DefaultMaxObjectKeys = 0
	DefaultMaxStringLen  = 200
	DefaultMaxDepth      = 0
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxObjectKeys: DefaultMaxObjectKeys,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Compact compacts JSON bytes. Returns an error if data is not valid JSON.
// If opts is nil, DefaultOptions() is used.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.Marshal(CompactValue(v, opts))
}

// CompactValue compacts a decoded JSON value (map[string]any, []any, string,
// float64, bool or nil). Other values are returned unchanged.
// If opts is nil, DefaultOptions() is used.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compact(v, opts, 0)
}

func compact(v any, opts *Options, depth int) any {
	switch val := v.(type) {
	case []any:
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return fmt.Sprintf("[array of %d]", len(val))
		}
		return compactArray(val, opts, depth)
	case map[string]any:
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return fmt.Sprintf("{object with %d keys}", len(val))
		}
		return compactObject(val, opts, depth)
	case string:
		return compactString(val, opts)
	default:
		return v
	}
}

func compactString(s string, opts *Options) string {
	if opts.MaxStringLen <= 0 || utf8.RuneCountInString(s) <= opts.MaxStringLen {
		return s
	}
	n, cut := 0, len(s)
	for i := range s {
		if n == opts.MaxStringLen {
			cut = i
			break
		}
		n++
	}
	return s[:cut] + fmt.Sprintf("... (%d more chars)", utf8.RuneCountInString(s[cut:]))
}

func compactArray(arr []any, opts *Options, depth int) []any {
	keep := len(arr)
	if opts.MaxArrayItems > 0 && keep > opts.MaxArrayItems {
		keep = opts.MaxArrayItems
	}
	out := make([]any, 0, keep+1)
	for _, item := range arr[:keep] {
		out = append(out, compact(item, opts, depth+1))
	}
	if keep < len(arr) {
		out = append(out, fmt.Sprintf("... (%d more items)", len(arr)-keep))
	}
	return out
}

func compactObject(obj map[string]any, opts *Options, depth int) map[string]any {
	if opts.MaxObjectKeys <= 0 || len(obj) <= opts.MaxObjectKeys {
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			out[k] = compact(v, opts, depth+1)
		}
		return out
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, opts.MaxObjectKeys+1)
	for _, k := range keys[:opts.MaxObjectKeys] {
		out[k] = compact(obj[k], opts, depth+1)
	}
	out["..."] = fmt.Sprintf("(%d more keys)", len(keys)-opts.MaxObjectKeys)
	return out
}
