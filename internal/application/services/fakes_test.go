package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/query"
)

// fakeDB is a database worker that only answers introspection
type fakeDB struct {
	route  string
	err    error
	block  bool
	closed atomic.Bool
}

func (f *fakeDB) ExecuteQuery(ctx context.Context, sql string, args ...any) ([][]map[string]any, error) {
	return [][]map[string]any{{}}, nil
}

func (f *fakeDB) ExecuteCommand(ctx context.Context, sql string, args ...any) (ports.CommandResult, error) {
	return ports.CommandResult{}, nil
}

func (f *fakeDB) ExecuteProcedure(ctx context.Context, signature []models.ProcFunctionSchema, args []models.ProcArgument) ([][]map[string]any, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) GetSchema(ctx context.Context) (*models.ConnectionSchema, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return itemSchema(), nil
}

func (f *fakeDB) Dialect() query.Dialect { return query.MySQL }
func (f *fakeDB) URLRoute() string       { return f.route }
func (f *fakeDB) RowLimit() int          { return 0 }

func (f *fakeDB) Close() error {
	f.closed.Store(true)
	return nil
}

func itemSchema() *models.ConnectionSchema {
	col := func(entity, db, entityType string, pos int) models.TableSchema {
		return models.TableSchema{
			TableName:           "item",
			TableNameCamelCase:  "item",
			TableNamePascalCase: "Item",
			ColumnNameEntity:    entity,
			ColumnNameDatabase:  db,
			ColumnTypeEntity:    entityType,
			ColumnPosition:      pos,
		}
	}
	id := col("id", "id", "number", 1)
	id.ColumnIsIdentity = true
	return &models.ConnectionSchema{
		Tables: []models.TableSchema{id, col("label", "label", "string", 2)},
	}
}

type fakeListener struct {
	closed atomic.Bool
}

func (l *fakeListener) Close(ctx context.Context) error {
	l.closed.Store(true)
	return nil
}

type fakeToken struct {
	token string
}

func (t *fakeToken) Get(ctx context.Context) (string, error) { return t.token, nil }

func (t *fakeToken) Verify(ctx context.Context, token string) (bool, error) {
	return token == t.token, nil
}

func (t *fakeToken) Expired(ctx context.Context, token string) (bool, error) { return false, nil }

type fakeConfig struct {
	mu       sync.Mutex
	settings *models.ServerSettings
}

func (c *fakeConfig) Get(ctx context.Context) (*models.ServerSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings, nil
}

func (c *fakeConfig) Set(ctx context.Context, settings *models.ServerSettings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	return nil
}

type fakeTask struct {
	mu    sync.Mutex
	calls []map[string]any
	err   error
}

func (t *fakeTask) Execute(ctx context.Context, args map[string]any) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, args)
	return len(t.calls), t.err
}

func (t *fakeTask) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

type fakeRest struct {
	route string
	doc   map[string]any
}

func (r *fakeRest) Route() string  { return r.route }
func (r *fakeRest) Method() string { return "GET" }

func (r *fakeRest) Execute(ctx context.Context, req ports.RestRequest) (ports.RestResponse, error) {
	return ports.RestResponse{Status: 200, Body: map[string]any{"route": r.route}}, nil
}

func (r *fakeRest) Swagger() map[string]any { return r.doc }

func newRegistry(caps ...models.Capability) *registry.Registry {
	reg := registry.New()
	for _, c := range caps {
		c.Enabled = true
		if _, err := reg.Register(c); err != nil {
			panic(err)
		}
	}
	return reg
}

func dbCap(name string, db *fakeDB) models.Capability {
	return models.Capability{Kind: constants.WorkerKindDatabase, Name: name, Instance: db}
}
