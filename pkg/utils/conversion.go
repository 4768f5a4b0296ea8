package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToBool reads catalog flags and metadata switches. Drivers hand back
// TINYINT and BIT columns as numbers or raw bytes; settings files may hold
// "yes"/"on" strings.
func ToBool(val any) bool {
	switch v := val.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint8:
		return v != 0
	case float64:
		return v != 0
	case []byte:
		return boolString(string(v))
	case string:
		return boolString(v)
	default:
		return boolString(fmt.Sprint(v))
	}
}

func boolString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on", "y":
		return true
	}
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}
