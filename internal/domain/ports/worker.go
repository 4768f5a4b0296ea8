package ports

import (
	"context"
	"time"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/query"
)

// Initializer is implemented by workers that need setup after construction
type Initializer interface {
	Init(ctx context.Context) error
}

// Closer is implemented by workers holding connections or goroutines
type Closer interface {
	Close() error
}

// CommandResult is the outcome of a write statement
type CommandResult struct {
	RowsAffected int64 `json:"rowsAffected"`
	LastInsertID int64 `json:"lastInsertId"`
}

// DatabaseWorker executes SQL against one relational connection
type DatabaseWorker interface {
	// ExecuteQuery runs sql and returns every result set it produced
	ExecuteQuery(ctx context.Context, sql string, args ...any) ([][]map[string]any, error)

	// ExecuteCommand runs a single write statement
	ExecuteCommand(ctx context.Context, sql string, args ...any) (CommandResult, error)

	// ExecuteProcedure calls a stored procedure or function with the given signature
	ExecuteProcedure(ctx context.Context, signature []models.ProcFunctionSchema, args []models.ProcArgument) ([][]map[string]any, error)

	// GetSchema introspects tables and procedures into canonical metadata
	GetSchema(ctx context.Context) (*models.ConnectionSchema, error)

	Dialect() query.Dialect
}

// DatabaseSettings exposes per-connection options from worker metadata
type DatabaseSettings interface {
	URLRoute() string
	RowLimit() int
}

// TokenWorker issues and verifies access tokens
type TokenWorker interface {
	Get(ctx context.Context) (string, error)
	Verify(ctx context.Context, token string) (bool, error)
	Expired(ctx context.Context, token string) (bool, error)
}

// EncryptionWorker encrypts and decrypts payloads such as custom SQL
type EncryptionWorker interface {
	SymmetricEncrypt(plain string) (string, error)
	SymmetricDecrypt(encoded string) (string, error)
}

// CacheWorker stores query results keyed by a digest
type CacheWorker interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// LogLevel is the severity of a log worker entry
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogWorker writes host log lines to a configured destination
type LogWorker interface {
	Write(level LogLevel, message string)
}

// ConfigWorker loads and persists server settings
type ConfigWorker interface {
	Get(ctx context.Context) (*models.ServerSettings, error)
	Set(ctx context.Context, settings *models.ServerSettings) error
}

// TaskWorker runs a unit of background work once
type TaskWorker interface {
	Execute(ctx context.Context, args map[string]any) (any, error)
}
