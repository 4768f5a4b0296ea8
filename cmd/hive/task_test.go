package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTaskArgs(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    map[string]any
		wantErr bool
	}{
		{name: "no file", path: "", want: map[string]any{}},
		{name: "json", path: write("a.json", `{"days": 7, "tables": ["a", "b"]}`), want: map[string]any{"days": 7, "tables": []any{"a", "b"}}},
		{name: "yaml", path: write("a.yaml", "days: 7\nmode: full\n"), want: map[string]any{"days": 7, "mode": "full"}},
		{name: "not an object", path: write("b.json", `[1, 2]`), wantErr: true},
		{name: "missing", path: filepath.Join(dir, "absent.json"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readTaskArgs(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
