package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity(key string) (string, bool) { return key, true }

func TestWhereClause_OrGroups(t *testing.T) {
	entries := []FilterEntry{
		{Key: "k1", Value: "> 5||< 2"},
		{Key: "k2", Value: "= 3"},
	}

	sql, skipped := WhereClause(MySQL, entries, identity)

	assert.Equal(t, "WHERE (k1 > 5 OR k1 < 2) AND k2 = 3", sql)
	assert.Empty(t, skipped)
}

func TestWhereClause(t *testing.T) {
	known := map[string]string{"age": "age", "firstName": "first_name"}
	resolve := func(key string) (string, bool) {
		col, ok := known[key]
		return col, ok
	}

	tests := []struct {
		name            string
		entries         []FilterEntry
		expectedSQL     string
		expectedSkipped []string
	}{
		{
			name:        "Single Fragment",
			entries:     []FilterEntry{{Key: "age", Value: "> 18"}},
			expectedSQL: "WHERE age > 18",
		},
		{
			name:        "Entity Name Resolves To Column",
			entries:     []FilterEntry{{Key: "firstName", Value: "= 'Ann'"}},
			expectedSQL: "WHERE first_name = 'Ann'",
		},
		{
			name:            "Unknown Key Skipped",
			entries:         []FilterEntry{{Key: "nope", Value: "= 1"}, {Key: "age", Value: "< 3"}},
			expectedSQL:     "WHERE age < 3",
			expectedSkipped: []string{"nope"},
		},
		{
			name:        "Empty Fragments Ignored",
			entries:     []FilterEntry{{Key: "age", Value: "> 1||"}},
			expectedSQL: "WHERE age > 1",
		},
		{
			name:        "Nothing Resolved",
			entries:     nil,
			expectedSQL: "",
		},
		{
			name: "Order Follows Entries",
			entries: []FilterEntry{
				{Key: "firstName", Value: "like 'A%'"},
				{Key: "age", Value: "= 1||= 2||= 3"},
			},
			expectedSQL: "WHERE first_name like 'A%' AND (age = 1 OR age = 2 OR age = 3)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sql, skipped := WhereClause(MySQL, tc.entries, resolve)
			assert.Equal(t, tc.expectedSQL, sql)
			assert.Equal(t, tc.expectedSkipped, skipped)
		})
	}
}

func TestInspectFragment(t *testing.T) {
	tests := []struct {
		fragment string
		op       string
		operand  string
		ok       bool
	}{
		{"> 18", ">", "18", true},
		{">= 18", ">=", "18", true},
		{"<> 'x'", "<>", "'x'", true},
		{"like 'A%'", "LIKE", "'A%'", true},
		{"in (1,2)", "IN", "(1,2)", true},
		{"18", "", "", false},
		{"=", "=", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.fragment, func(t *testing.T) {
			op, operand, ok := InspectFragment(tc.fragment)
			assert.Equal(t, tc.op, op)
			assert.Equal(t, tc.operand, operand)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSuspiciousFragment(t *testing.T) {
	assert.True(t, SuspiciousFragment("= 1; DROP TABLE users"))
	assert.True(t, SuspiciousFragment("= 1 -- comment"))
	assert.False(t, SuspiciousFragment("> 18"))
}
