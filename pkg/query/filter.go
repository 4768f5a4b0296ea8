package query

import "strings"

// OrSeparator splits one filter value into OR-combined fragments
const OrSeparator = "||"

// FilterEntry is one key of a filter object, kept in request order
type FilterEntry struct {
	Key   string
	Value string
}

// ColumnResolver maps a filter key to a rendered column reference
type ColumnResolver func(key string) (string, bool)

// ParseFilter builds the predicate for a filter object. Each value splits on
// "||" into raw fragments that OR together; keys AND together in order.
// Keys the resolver does not know are returned in skipped.
func ParseFilter(entries []FilterEntry, resolve ColumnResolver) (pred Predicate, skipped []string) {
	var groups []Predicate
	for _, entry := range entries {
		column, ok := resolve(entry.Key)
		if !ok {
			skipped = append(skipped, entry.Key)
			continue
		}
		var leaves []Predicate
		for _, fragment := range strings.Split(entry.Value, OrSeparator) {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			leaves = append(leaves, Leaf{Column: column, Fragment: fragment})
		}
		if p := AnyOf(leaves...); p != nil {
			groups = append(groups, p)
		}
	}
	return AllOf(groups...), skipped
}

// WhereClause renders a filter object as "WHERE ..." or "" when nothing resolved
func WhereClause(d Dialect, entries []FilterEntry, resolve ColumnResolver) (string, []string) {
	pred, skipped := ParseFilter(entries, resolve)
	if pred == nil {
		return "", skipped
	}
	sql, _ := Render(d, pred)
	return "WHERE " + sql, skipped
}
