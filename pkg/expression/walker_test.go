package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/pkg/query"
)

func columns(key string) (string, bool) {
	known := map[string]string{"amount": "`amount`", "stage": "`stage`", "active": "`active`"}
	col, ok := known[key]
	return col, ok
}

func TestToPredicate(t *testing.T) {
	tests := []struct {
		name         string
		expression   string
		expectedSQL  string
		expectedArgs []interface{}
		expectError  bool
	}{
		{
			name:         "simple equality",
			expression:   "amount == 1000",
			expectedSQL:  "`amount` = ?",
			expectedArgs: []interface{}{1000},
		},
		{
			name:         "literal on the left",
			expression:   "500 < amount",
			expectedSQL:  "`amount` > ?",
			expectedArgs: []interface{}{500},
		},
		{
			name:         "logical AND",
			expression:   "amount > 1000 && stage == 'Won'",
			expectedSQL:  "`amount` > ? AND `stage` = ?",
			expectedArgs: []interface{}{1000, "Won"},
		},
		{
			name:         "mixed logic",
			expression:   "(amount > 1000 || amount < 10) && stage != 'Lost'",
			expectedSQL:  "(`amount` > ? OR `amount` < ?) AND `stage` != ?",
			expectedArgs: []interface{}{1000, 10, "Lost"},
		},
		{
			name:        "null comparison",
			expression:  "stage == nil",
			expectedSQL: "`stage` IS NULL",
		},
		{
			name:        "not null comparison",
			expression:  "stage != null",
			expectedSQL: "`stage` IS NOT NULL",
		},
		{
			name:         "in list",
			expression:   "stage in ['New', 'Open']",
			expectedSQL:  "`stage` IN (?, ?)",
			expectedArgs: []interface{}{"New", "Open"},
		},
		{
			name:         "contains",
			expression:   "CONTAINS(stage, 'on')",
			expectedSQL:  "`stage` LIKE ?",
			expectedArgs: []interface{}{"%on%"},
		},
		{
			name:         "bare boolean column",
			expression:   "active",
			expectedSQL:  "`active` = ?",
			expectedArgs: []interface{}{true},
		},
		{
			name:        "unknown column",
			expression:  "secret == 1",
			expectError: true,
		},
		{
			name:        "unsupported function",
			expression:  "LEN(stage) > 2",
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := ToPredicate(tc.expression, columns)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			sql, args := query.Render(query.MySQL, pred)
			assert.Equal(t, tc.expectedSQL, sql)
			assert.Equal(t, tc.expectedArgs, args)
		})
	}
}
