package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureFlags_Enabled(t *testing.T) {
	flags := NewFeatureFlags(map[string]interface{}{
		"on":       true,
		"off":      false,
		"text":     "true",
		"scoped":   `worker == "reporting" && operation == "select"`,
		"notBool":  "1 + 1",
		"badType":  []string{"x"},
		"numberOn": 1,
	})

	scope := FlagScope{Worker: "reporting", Operation: "select", Table: "orders"}

	tests := []struct {
		name     string
		flag     string
		scope    FlagScope
		expected bool
		wantErr  bool
	}{
		{"Boolean True", "on", scope, true, false},
		{"Boolean False", "off", scope, false, false},
		{"String Boolean", "text", scope, true, false},
		{"Expression Match", "scoped", scope, true, false},
		{"Expression Miss", "scoped", FlagScope{Worker: "other", Operation: "select"}, false, false},
		{"Unknown Flag", "missing", scope, false, false},
		{"Non Boolean Expression", "notBool", scope, false, true},
		{"Unsupported Type", "badType", scope, false, true},
		{"Integer", "numberOn", scope, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := flags.Enabled(tc.flag, tc.scope)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFeatureFlags_NilAndValidate(t *testing.T) {
	var flags *FeatureFlags
	got, err := flags.Enabled("disableSecurity", FlagScope{})
	assert.NoError(t, err)
	assert.False(t, got)

	assert.NoError(t, NewFeatureFlags(map[string]interface{}{"a": "worker == 'x'"}).Validate())
	assert.Error(t, NewFeatureFlags(map[string]interface{}{"a": "worker =="}).Validate())
}
