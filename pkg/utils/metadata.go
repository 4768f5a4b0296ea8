package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaString reads a string value from worker metadata
func MetaString(meta map[string]any, key string) string {
	val, ok := meta[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}

// MetaInt reads an integer from worker metadata, accepting numbers and numeric strings
func MetaInt(meta map[string]any, key string, fallback int) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// MetaBool reads a boolean from worker metadata
func MetaBool(meta map[string]any, key string) bool {
	return ToBool(meta[key])
}

// MetaStrings reads a list of strings; a comma separated string is split
func MetaStrings(meta map[string]any, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
