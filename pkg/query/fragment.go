package query

import (
	"strings"
)

// comparison operators, multi-char first
var fragmentOperators = []string{"!=", "<>", ">=", "<=", "=", ">", "<"}

var fragmentKeywords = []string{"like ", "not like ", "in ", "not in ", "is ", "between "}

// InspectFragment reports whether a raw filter fragment has the shape
// "<operator> <operand>" with a recognised comparison operator or keyword.
func InspectFragment(fragment string) (operator, operand string, ok bool) {
	f := strings.TrimSpace(fragment)
	for _, op := range fragmentOperators {
		if strings.HasPrefix(f, op) {
			operand = strings.TrimSpace(f[len(op):])
			return op, operand, operand != ""
		}
	}
	lower := strings.ToLower(f)
	for _, kw := range fragmentKeywords {
		if strings.HasPrefix(lower, kw) {
			operand = strings.TrimSpace(f[len(kw):])
			return strings.ToUpper(strings.TrimSpace(kw)), operand, operand != ""
		}
	}
	return "", "", false
}

// SuspiciousFragment flags fragments that carry statement separators or comments
func SuspiciousFragment(fragment string) bool {
	return strings.Contains(fragment, ";") ||
		strings.Contains(fragment, "--") ||
		strings.Contains(fragment, "/*")
}
