package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{true, true},
		{int64(1), true},
		{0, false},
		{[]byte("1"), true},
		{"yes", true},
		{" TRUE ", true},
		{"off", false},
		{"garbage", false},
		{uint8(1), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToBool(tt.in), "%#v", tt.in)
	}
}

func TestMetaReaders(t *testing.T) {
	meta := map[string]any{
		"port":    "5432",
		"limit":   float64(100),
		"ssl":     "true",
		"schemas": []any{"app", "audit"},
		"list":    "a, b,,c",
		"name":    42,
	}

	assert.Equal(t, 5432, MetaInt(meta, "port", 0))
	assert.Equal(t, 100, MetaInt(meta, "limit", 0))
	assert.Equal(t, 7, MetaInt(meta, "absent", 7))
	assert.True(t, MetaBool(meta, "ssl"))
	assert.False(t, MetaBool(meta, "absent"))
	assert.Equal(t, []string{"app", "audit"}, MetaStrings(meta, "schemas"))
	assert.Equal(t, []string{"a", "b", "c"}, MetaStrings(meta, "list"))
	assert.Nil(t, MetaStrings(meta, "absent"))
	assert.Equal(t, "42", MetaString(meta, "name"))
	assert.Equal(t, "", MetaString(meta, "absent"))
	assert.Len(t, GenerateID(), 36)
}
