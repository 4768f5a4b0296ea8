package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/query"
)

// statement is one piece of a split SQL batch
type statement struct {
	text        string
	returnsRows bool
}

// flavor holds what differs between the relational engines
type flavor interface {
	dialect() query.Dialect
	driverName() string
	defaultPort() int
	dsn(workerName string, s Settings) (string, error)
	tablesSQL() string
	procsSQL() string
	procCall(signature []models.ProcFunctionSchema, args []models.ProcArgument) string
	// split breaks a parameterless batch into statements; ok is false when
	// the batch should be sent to the server as a whole
	split(sql string) (stmts []statement, ok bool)
}

// Worker is a database worker over database/sql. Engine specifics come
// from its flavor.
type Worker struct {
	name     string
	settings Settings
	flavor   flavor
	logger   logrus.FieldLogger

	mu   sync.RWMutex
	conn *Connection
}

var (
	_ ports.DatabaseWorker   = (*Worker)(nil)
	_ ports.DatabaseSettings = (*Worker)(nil)
	_ ports.Initializer      = (*Worker)(nil)
	_ ports.Closer           = (*Worker)(nil)
)

func newWorker(name string, f flavor, meta map[string]any, logger logrus.FieldLogger) *Worker {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Worker{
		name:     name,
		settings: ParseSettings(name, meta, f.defaultPort()),
		flavor:   f,
		logger:   logger.WithFields(logrus.Fields{"worker": name, "dialect": f.dialect()}),
	}
}

// Name returns the registered worker name
func (w *Worker) Name() string {
	return w.name
}

// Settings returns the parsed metadata
func (w *Worker) Settings() Settings {
	return w.settings
}

// URLRoute is the endpoint path segment for this worker
func (w *Worker) URLRoute() string {
	return w.settings.URLRoute()
}

// RowLimit caps select results; zero means unlimited
func (w *Worker) RowLimit() int {
	return w.settings.RowLimit()
}

// Dialect returns the SQL dialect of the connection
func (w *Worker) Dialect() query.Dialect {
	return w.flavor.dialect()
}

// UseConnection installs an already opened connection instead of dialing in Init
func (w *Worker) UseConnection(conn *Connection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn = conn
}

// Init opens the connection pool unless one was installed
func (w *Worker) Init(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		return nil
	}

	dsn, err := w.flavor.dsn(w.name, w.settings)
	if err != nil {
		return apperrors.NewConfigurationError("database worker %s: %v", w.name, err)
	}

	conn, err := Open(ctx, w.flavor.driverName(), dsn, DefaultPoolConfig().WithLimit(w.settings.ConnectionPoolLimit))
	if err != nil {
		return fmt.Errorf("database worker %s: %w", w.name, err)
	}
	w.conn = conn
	w.logger.Infof("✅ Connected to %s:%d/%s", w.settings.ServerAddress, w.settings.ServerPort, w.settings.DatabaseName)
	return nil
}

// Close releases the connection pool
func (w *Worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *Worker) connection() (*Connection, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return nil, fmt.Errorf("database worker %s is not initialized", w.name)
	}
	return w.conn, nil
}

// ExecuteQuery runs sql and returns every result set. A parameterless batch
// the flavor can split runs statement by statement on one session.
func (w *Worker) ExecuteQuery(ctx context.Context, sql string, args ...any) ([][]map[string]any, error) {
	conn, err := w.connection()
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		if stmts, ok := w.flavor.split(sql); ok && len(stmts) > 1 {
			return w.executeBatch(ctx, conn, stmts)
		}
	}

	rows, err := conn.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return query.ScanAll(rows)
}

func (w *Worker) executeBatch(ctx context.Context, conn *Connection, stmts []statement) ([][]map[string]any, error) {
	session, err := conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var sets [][]map[string]any
	for i, stmt := range stmts {
		if !stmt.returnsRows {
			res, err := session.ExecContext(ctx, stmt.text)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i+1, err)
			}
			sets = append(sets, []map[string]any{commandRow(res)})
			continue
		}

		rows, err := session.QueryContext(ctx, stmt.text)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		stmtSets, err := query.ScanAll(rows)
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		sets = append(sets, stmtSets...)
	}
	return sets, nil
}

type execResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

func commandResult(res execResult) ports.CommandResult {
	var out ports.CommandResult
	out.RowsAffected, _ = res.RowsAffected()
	out.LastInsertID, _ = res.LastInsertId()
	return out
}

func commandRow(res execResult) map[string]any {
	cr := commandResult(res)
	return map[string]any{"rowsAffected": cr.RowsAffected, "lastInsertId": cr.LastInsertID}
}

// ExecuteCommand runs a single write statement
func (w *Worker) ExecuteCommand(ctx context.Context, sql string, args ...any) (ports.CommandResult, error) {
	conn, err := w.connection()
	if err != nil {
		return ports.CommandResult{}, err
	}
	res, err := conn.ExecContext(ctx, sql, args...)
	if err != nil {
		return ports.CommandResult{}, err
	}
	return commandResult(res), nil
}

// ExecuteProcedure renders the call for signature and returns its result sets
func (w *Worker) ExecuteProcedure(ctx context.Context, signature []models.ProcFunctionSchema, args []models.ProcArgument) ([][]map[string]any, error) {
	if len(signature) == 0 {
		return nil, fmt.Errorf("empty procedure signature")
	}
	sql := w.flavor.procCall(signature, args)
	w.logger.Debugf("🔧 Calling %s", sql)
	return w.ExecuteQuery(ctx, sql)
}

// GetSchema fetches tables and procedures concurrently, filters them by the
// configured schemas and normalizes their names.
func (w *Worker) GetSchema(ctx context.Context) (*models.ConnectionSchema, error) {
	var (
		tableRows []map[string]any
		procRows  []map[string]any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := w.catalog(gctx, w.settings.SchemaSQLFile, w.flavor.tablesSQL(), "tables")
		tableRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := w.catalog(gctx, w.settings.ProcFunctionSQLFile, w.flavor.procsSQL(), "procedures")
		procRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := filterTables(w.settings, decodeTables(tableRows))
	if len(tables) == 0 {
		return nil, apperrors.NewSchemaRetrievalError(w.name, "catalog query returned no rows", nil)
	}

	tables, err := Normalize(tables, w.settings.IgnoreSchema)
	if err != nil {
		return nil, err
	}

	procs := filterProcs(w.settings, decodeProcs(procRows))
	w.logger.Infof("📦 Introspected %d columns and %d procedure parameters", len(tables), len(procs))

	return &models.ConnectionSchema{
		WorkerName:    w.name,
		Tables:        tables,
		ProcFunctions: procs,
	}, nil
}

// catalog runs the override script at path, or builtin when path is empty,
// and returns its last result set.
func (w *Worker) catalog(ctx context.Context, path, builtin, what string) ([]map[string]any, error) {
	sql := builtin
	if path != "" {
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewSchemaFileNotFoundError(w.name, path)
		}
		if err != nil {
			return nil, apperrors.NewSchemaRetrievalError(w.name, "reading "+what+" script", err)
		}
		sql = strings.TrimSpace(string(content))
	}

	sets, err := w.ExecuteQuery(ctx, sql)
	if err != nil {
		return nil, apperrors.NewSchemaRetrievalError(w.name, what+" catalog query failed", err)
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return sets[len(sets)-1], nil
}

// procArgs pairs every named parameter of signature, in order, with the
// rendered literal passed for it. Missing arguments render as NULL.
func procArgs(signature []models.ProcFunctionSchema, args []models.ProcArgument) (names, values []string) {
	for _, param := range signature {
		if param.ParameterName == "" {
			continue
		}
		value := "NULL"
		if arg, ok := findArg(args, param.ParameterName); ok {
			value = query.Literal(arg.Value, arg.IsString)
		}
		names = append(names, param.ParameterName)
		values = append(values, value)
	}
	return names, values
}

func findArg(args []models.ProcArgument, name string) (models.ProcArgument, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	for _, a := range args {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return models.ProcArgument{}, false
}

// procTarget is the schema-qualified, quoted routine name
func procTarget(d query.Dialect, signature []models.ProcFunctionSchema) string {
	head := signature[0]
	if head.SchemaName == "" {
		return d.QuoteIdent(head.Name)
	}
	return d.QuoteIdent(head.SchemaName) + "." + d.QuoteIdent(head.Name)
}
