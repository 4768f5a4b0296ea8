package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/omnihive/backend/internal/domain/ports"
)

// Metadata keys of the sqlScript task worker
const (
	MetaTaskDatabase = "database"
	MetaTaskSQL      = "sql"
	MetaTaskSQLFile  = "sqlFile"
)

// ScriptTask runs a fixed SQL script through a database worker. Positional
// parameters come from the "params" argument.
type ScriptTask struct {
	db     ports.DatabaseWorker
	script string
	file   string
}

// NewScriptTask creates a task running script; when script is empty the file
// is read on every run
func NewScriptTask(db ports.DatabaseWorker, script, file string) (*ScriptTask, error) {
	if strings.TrimSpace(script) == "" && file == "" {
		return nil, fmt.Errorf("sqlScript task needs %s or %s", MetaTaskSQL, MetaTaskSQLFile)
	}
	return &ScriptTask{db: db, script: script, file: file}, nil
}

// Execute returns every result set the script produced
func (t *ScriptTask) Execute(ctx context.Context, args map[string]any) (any, error) {
	script := t.script
	if script == "" {
		data, err := os.ReadFile(t.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", t.file, err)
		}
		script = string(data)
	}

	var params []any
	if raw, ok := args["params"].([]any); ok {
		params = raw
	}
	return t.db.ExecuteQuery(ctx, script, params...)
}

var _ ports.TaskWorker = (*ScriptTask)(nil)
