// Package naming turns raw database identifiers into GraphQL-safe names.
package naming

import (
	"strings"
	"unicode"
)

type runeClass int

const (
	classOther runeClass = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsLetter(r):
		return classLower
	default:
		return classOther
	}
}

// Words splits an identifier on separators, case humps and letter/digit boundaries.
// "firstName" -> [first Name], "XMLHttp_id" -> [XML Http id], "1Name" -> [1 Name].
func Words(s string) []string {
	runes := []rune(s)
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for i, r := range runes {
		class := classify(r)
		if class == classOther {
			flush()
			continue
		}
		if len(current) > 0 {
			prev := classify(runes[i-1])
			switch {
			case class == classDigit && prev != classDigit:
				flush()
			case class != classDigit && prev == classDigit:
				flush()
			case class == classUpper && prev == classLower:
				flush()
			case class == classUpper && prev == classUpper &&
				i+1 < len(runes) && classify(runes[i+1]) == classLower:
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// CamelCase joins the words of s with the first word lowercased and the rest capitalized.
func CamelCase(s string) string {
	var sb strings.Builder
	for i, w := range Words(s) {
		lower := strings.ToLower(w)
		if i == 0 {
			sb.WriteString(lower)
			continue
		}
		sb.WriteString(CapitalizeFirst(lower))
	}
	return sb.String()
}

// PascalCase is CamelCase with the first letter capitalized.
func PascalCase(s string) string {
	return CapitalizeFirst(CamelCase(s))
}

// CapitalizeFirst upper-cases the first rune of s.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func stripNonAlphanumeric(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// EntityName derives the GraphQL field name for a raw column name.
//
// A leading digit adds the _N_ prefix; one, two or three leading underscores add
// _1_, _2_ or _3_. Both prefixes may apply.
func EntityName(raw string) string {
	name := LowerFirst(stripNonAlphanumeric(CamelCase(raw)))

	if raw != "" && raw[0] >= '0' && raw[0] <= '9' {
		name = "_N_" + name
	}

	switch {
	case strings.HasPrefix(raw, "___"):
		name = "_3_" + name
	case strings.HasPrefix(raw, "__"):
		name = "_2_" + name
	case strings.HasPrefix(raw, "_"):
		name = "_1_" + name
	}

	return name
}

// TableNames returns the camel and pascal names for a table, prefixed with the
// lowercased schema unless ignoreSchema is set.
func TableNames(schemaName, tableName string, ignoreSchema bool) (camel, pascal string) {
	base := stripNonAlphanumeric(PascalCase(tableName))
	if !ignoreSchema && schemaName != "" {
		prefix := stripNonAlphanumeric(strings.ToLower(schemaName))
		camel = prefix + base
		pascal = CapitalizeFirst(prefix) + base
	} else {
		camel = LowerFirst(base)
		pascal = base
	}

	if camel != "" && camel[0] >= '0' && camel[0] <= '9' {
		camel = "_N_" + camel
		pascal = "_N_" + pascal
	}
	return camel, pascal
}
