package graph

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/application/translator"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/encryption"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/query"
)

// MockDatabase implements ports.DatabaseWorker
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) ExecuteQuery(ctx context.Context, sql string, args ...any) ([][]map[string]any, error) {
	ret := m.Called(ctx, sql, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([][]map[string]any), ret.Error(1)
}

func (m *MockDatabase) ExecuteCommand(ctx context.Context, sql string, args ...any) (ports.CommandResult, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(ports.CommandResult), ret.Error(1)
}

func (m *MockDatabase) ExecuteProcedure(ctx context.Context, signature []models.ProcFunctionSchema, args []models.ProcArgument) ([][]map[string]any, error) {
	ret := m.Called(ctx, signature, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([][]map[string]any), ret.Error(1)
}

func (m *MockDatabase) GetSchema(ctx context.Context) (*models.ConnectionSchema, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(*models.ConnectionSchema), ret.Error(1)
}

func (m *MockDatabase) Dialect() query.Dialect {
	return query.MySQL
}

type echoFunction struct{}

func (echoFunction) Execute(ctx context.Context, customArgs map[string]any, gctx models.GraphContext) (any, error) {
	return customArgs, nil
}

func testSchema() *models.ConnectionSchema {
	col := func(table, pascal, entity, db, entityType string, pos int) models.TableSchema {
		return models.TableSchema{
			TableName:           table,
			TableNameCamelCase:  table,
			TableNamePascalCase: pascal,
			ColumnNameEntity:    entity,
			ColumnNameDatabase:  db,
			ColumnTypeEntity:    entityType,
			ColumnPosition:      pos,
		}
	}

	customerID := col("customer", "Customer", "id", "id", "number", 1)
	customerID.ColumnIsIdentity = true

	orderCustomer := col("orders", "Orders", "customerId", "customer_id", "number", 3)
	orderCustomer.ColumnIsForeignKey = true
	orderCustomer.ColumnForeignKeyTableName = "customer"
	orderCustomer.ColumnForeignKeyColumnName = "id"
	orderCustomer.ColumnForeignKeyTableNameCamelCase = "customer"
	orderCustomer.ColumnForeignKeyTableNamePascalCase = "Customer"

	return &models.ConnectionSchema{
		WorkerName: "app",
		Tables: []models.TableSchema{
			customerID,
			col("customer", "Customer", "firstName", "first_name", "string", 2),
			col("orders", "Orders", "id", "id", "number", 1),
			col("orders", "Orders", "total", "total", "decimal", 2),
			orderCustomer,
		},
		ProcFunctions: []models.ProcFunctionSchema{
			{SchemaName: "app", Name: "refresh", Type: constants.ProcTypeProcedure, ParameterOrder: 1, ParameterName: "since", ParameterTypeEntity: "date"},
		},
	}
}

type fixture struct {
	db      *MockDatabase
	builder *Builder
	exec    *Executable
}

func newFixture(t *testing.T, extra ...models.Capability) *fixture {
	t.Helper()

	f := &fixture{db: &MockDatabase{}}
	reg := registry.New()
	_, err := reg.Register(models.Capability{Kind: constants.WorkerKindDatabase, Name: "app", Enabled: true, Instance: f.db})
	require.NoError(t, err)
	for _, c := range extra {
		_, err := reg.Register(c)
		require.NoError(t, err)
	}

	app := appctx.New(nil)
	features := map[string]any{constants.FeatureDisableSecurity: true}
	app.Publish(appctx.NewSnapshot(reg, &models.ServerSettings{Features: features},
		map[string]*models.ConnectionSchema{"app": testSchema()}, nil))

	f.builder = NewBuilder(translator.New(app, nil), nil)
	schema, err := f.builder.BuildDatabase("app", testSchema())
	require.NoError(t, err)
	f.exec, err = schema.Compile()
	require.NoError(t, err)
	return f
}

func (f *fixture) run(t *testing.T, q string, vars map[string]any) string {
	t.Helper()
	resp := f.exec.Execute(context.Background(), Request{Query: q, Variables: vars}, models.GraphContext{})
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var resp struct {
		Errors []struct {
			Extensions map[string]any `json:"extensions"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotEmpty(t, resp.Errors, body)
	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

func TestBuildDatabase_Names(t *testing.T) {
	b := NewBuilder(nil, nil)
	schema, err := b.BuildDatabase("app", testSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"customer", "customer_aggregate", "orders", "orders_aggregate", "proc_appRefresh", "customSql"}, schema.QueryFields())
	assert.Equal(t, []string{
		"insert_customer", "update_customer", "delete_customer",
		"insert_orders", "update_orders", "delete_orders",
	}, schema.MutationFields())
	assert.Equal(t, []string{
		"CustomSqlResult", "Customer", "CustomerAggregate", "CustomerAggregateValues", "CustomerInput",
		"DbBoolean", "DbFloat", "DbInt", "JSON",
		"Orders", "OrdersAggregate", "OrdersAggregateValues", "OrdersInput",
	}, schema.TypeNames())
}

func TestBuildDatabase_TypeShapes(t *testing.T) {
	f := newFixture(t)
	s := f.exec.Schema()

	orders, ok := s.Type("Orders").(*graphql.Object)
	require.True(t, ok)
	assert.Equal(t, "Int", orders.Fields()["id"].Type.Name())
	assert.Equal(t, "Float", orders.Fields()["total"].Type.Name())
	assert.Equal(t, "Customer", orders.Fields()["customerId_customer"].Type.Name())

	input, ok := s.Type("OrdersInput").(*graphql.InputObject)
	require.True(t, ok)
	assert.Equal(t, constants.ScalarDbInt, input.Fields()["id"].Type.Name())
	assert.Equal(t, constants.ScalarDbFloat, input.Fields()["total"].Type.Name())
	assert.NotContains(t, input.Fields(), "customerId_customer")

	agg, ok := s.Type("OrdersAggregate").(*graphql.Object)
	require.True(t, ok)
	assert.Contains(t, agg.Fields(), "count")
	assert.Equal(t, "OrdersAggregateValues", agg.Fields()["sum"].Type.Name())

	args := func(field string) map[string]string {
		out := make(map[string]string)
		for _, a := range s.QueryType().Fields()[field].Args {
			out[a.Name()] = a.Type.String()
		}
		return out
	}
	assert.Equal(t, map[string]string{"since": "String"}, args("proc_appRefresh"))
	assert.Equal(t, map[string]string{"encryptedSql": "String!"}, args("customSql"))
}

func TestMerge(t *testing.T) {
	b := NewBuilder(nil, nil)
	db, err := b.BuildDatabase("app", testSchema())
	require.NoError(t, err)
	fns, err := b.BuildFunctions([]registry.NamedInstance[ports.GraphFunctionWorker]{{Name: "echo", Instance: echoFunction{}}})
	require.NoError(t, err)
	clash, err := b.BuildFunctions([]registry.NamedInstance[ports.GraphFunctionWorker]{{Name: "customer", Instance: echoFunction{}}})
	require.NoError(t, err)

	tests := []struct {
		name     string
		schemas  []*Schema
		conflict bool
	}{
		{name: "Database And Functions", schemas: []*Schema{db, fns}},
		{name: "Same Schema Twice", schemas: []*Schema{db, db}, conflict: true},
		{name: "Function Shadows Table", schemas: []*Schema{db, clash}, conflict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := Merge(tt.schemas...)
			if tt.conflict {
				assert.True(t, apperrors.IsSchemaMergeConflict(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, merged.QueryFields(), "echo")
			_, err = merged.Compile()
			assert.NoError(t, err)
		})
	}
}

func TestExecute_SelectWithFragmentsAndAliases(t *testing.T) {
	f := newFixture(t)

	sql := "SELECT `t0`.`id` AS `c0`, `t0`.`total` AS `c1`, `t1`.`first_name` AS `c2` FROM `orders` AS `t0` " +
		"LEFT JOIN `customer` AS `t1` ON `t0`.`customer_id` = `t1`.`id` WHERE `t0`.`total` > 10 LIMIT 5 OFFSET 5"
	f.db.On("ExecuteQuery", mock.Anything, sql, mock.Anything).Return([][]map[string]any{{
		{"c0": int64(1), "c1": "12.50", "c2": "Ann"},
	}}, nil).Once()

	body := f.run(t, `
		query {
			big: orders(where: {total: "> 10"}, limit: 5, page: 2) {
				id
				...amounts
				buyer: customerId_customer { firstName }
			}
		}
		fragment amounts on Orders { total }
	`, nil)

	assert.JSONEq(t, `{"data":{"big":[{"id":1,"total":12.5,"buyer":{"firstName":"Ann"}}]}}`, body)
	f.db.AssertExpectations(t)
}

func TestExecute_Variables(t *testing.T) {
	f := newFixture(t)

	f.db.On("ExecuteQuery", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, "`t0`.`first_name` = 'Ann'") && strings.Contains(sql, "LIMIT 3")
	}), mock.Anything).Return([][]map[string]any{{{"c0": "Ann"}}}, nil).Once()

	body := f.run(t, `query Find($w: JSON, $n: Int) { customer(where: $w, limit: $n) { firstName } }`,
		map[string]any{"w": map[string]any{"firstName": "= 'Ann'"}, "n": 3})

	assert.JSONEq(t, `{"data":{"customer":[{"firstName":"Ann"}]}}`, body)
	f.db.AssertExpectations(t)
}

func TestExecute_Aggregate(t *testing.T) {
	f := newFixture(t)

	sql := "SELECT COUNT(*) AS `a0`, SUM(`t0`.`total`) AS `a1`, `t0`.`customer_id` AS `d0` FROM `orders` AS `t0` GROUP BY `t0`.`customer_id`"
	f.db.On("ExecuteQuery", mock.Anything, sql, mock.Anything).Return([][]map[string]any{{
		{"a0": int64(3), "a1": "40.50", "d0": int64(7)},
	}}, nil).Once()

	body := f.run(t, `{ orders_aggregate { count sum { total } customerId } }`, nil)

	assert.JSONEq(t, `{"data":{"orders_aggregate":[{"count":3,"sum":{"total":40.5},"customerId":7}]}}`, body)
	f.db.AssertExpectations(t)
}

func TestExecute_Mutations(t *testing.T) {
	tests := []struct {
		name  string
		query string
		setup func(db *MockDatabase)
		data  string
		code  string
	}{
		{
			name:  "Update Returns Affected Rows",
			query: `mutation { update_customer(set: {firstName: "Bo"}, where: {id: "= 1"}) }`,
			setup: func(db *MockDatabase) {
				db.On("ExecuteCommand", mock.Anything, mock.Anything, mock.Anything).
					Return(ports.CommandResult{RowsAffected: 2}, nil).Once()
			},
			data: `{"update_customer":2}`,
		},
		{
			name:  "Raw Value Must Be A String",
			query: `mutation { update_orders(set: {total: {raw: 1}}, where: {id: "= 1"}) }`,
			data:  `null`,
			code:  "VALIDATION_ERROR",
		},
		{
			name:  "Raw Value With Extra Keys",
			query: `mutation { update_orders(set: {id: {raw: "1", other: "2"}}, where: {id: "= 1"}) }`,
			data:  `null`,
			code:  "VALIDATION_ERROR",
		},
		{
			name:  "Raw Value Accepted",
			query: `mutation { update_orders(set: {total: {raw: "total * 2"}}, where: {id: "= 1"}) }`,
			setup: func(db *MockDatabase) {
				db.On("ExecuteCommand", mock.Anything, mock.MatchedBy(func(sql string) bool {
					return strings.Contains(sql, "total * 2")
				}), mock.Anything).Return(ports.CommandResult{RowsAffected: 1}, nil).Once()
			},
			data: `{"update_orders":1}`,
		},
		{
			name:  "Delete Without Where",
			query: `mutation { delete_orders }`,
			data:  `{"delete_orders":null}`,
			code:  "DESTRUCTIVE_OPERATION",
		},
		{
			name:  "Where Values Must Be Strings",
			query: `mutation { delete_orders(where: {id: 3}) }`,
			data:  `{"delete_orders":null}`,
			code:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.db)
			}

			body := f.run(t, tt.query, nil)

			var resp struct {
				Data json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &resp))
			assert.JSONEq(t, tt.data, string(resp.Data))
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, body))
			}
			f.db.AssertExpectations(t)
		})
	}
}

func TestExecute_Procedure(t *testing.T) {
	f := newFixture(t)

	f.db.On("ExecuteProcedure", mock.Anything, mock.Anything, []models.ProcArgument{
		{Name: "since", Value: "2024-01-01", IsString: true},
	}).Return([][]map[string]any{{{"done": true}}}, nil).Once()

	body := f.run(t, `{ proc_appRefresh(since: "2024-01-01") }`, nil)

	assert.JSONEq(t, `{"data":{"proc_appRefresh":[[{"done":true}]]}}`, body)
	f.db.AssertExpectations(t)
}

func TestExecute_Introspection(t *testing.T) {
	f := newFixture(t)

	body := f.run(t, `{
		__schema { queryType { name } mutationType { name } }
		__type(name: "Customer") { name kind fields { name type { name } } }
	}`, nil)

	var resp struct {
		Data struct {
			Schema struct {
				QueryType    struct{ Name string } `json:"queryType"`
				MutationType struct{ Name string } `json:"mutationType"`
			} `json:"__schema"`
			Type struct {
				Name   string `json:"name"`
				Kind   string `json:"kind"`
				Fields []struct {
					Name string `json:"name"`
					Type struct{ Name string } `json:"type"`
				} `json:"fields"`
			} `json:"__type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp), body)

	assert.Equal(t, "Query", resp.Data.Schema.QueryType.Name)
	assert.Equal(t, "Mutation", resp.Data.Schema.MutationType.Name)
	assert.Equal(t, "Customer", resp.Data.Type.Name)
	assert.Equal(t, "OBJECT", resp.Data.Type.Kind)

	fields := make(map[string]string)
	for _, fd := range resp.Data.Type.Fields {
		fields[fd.Name] = fd.Type.Name
	}
	assert.Equal(t, map[string]string{"id": "Int", "firstName": "String"}, fields)
}

func TestExecute_InvalidDocuments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "Syntax Error", query: `{ customer {`},
		{name: "Unknown Field", query: `{ customer { nope } }`},
		{name: "Subscription", query: `subscription { customer { id } }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.exec.Execute(context.Background(), Request{Query: tt.query}, models.GraphContext{})
			assert.Nil(t, resp.Data)
			require.NotEmpty(t, resp.Errors)
			assert.True(t, apperrors.IsValidation(resp.Err()), "got %v", resp.Err())
			assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Extensions["code"])
		})
	}
}

type denyFunction struct{}

func (denyFunction) Execute(ctx context.Context, customArgs map[string]any, gctx models.GraphContext) (any, error) {
	return nil, apperrors.NewAccessDeniedError("token is invalid")
}

type contextFunction struct{}

func (contextFunction) Execute(ctx context.Context, customArgs map[string]any, gctx models.GraphContext) (any, error) {
	return map[string]any{"access": gctx.Access, "cache": gctx.Cache}, nil
}

func TestExecute_Functions(t *testing.T) {
	b := NewBuilder(nil, nil)
	schema, err := b.BuildFunctions([]registry.NamedInstance[ports.GraphFunctionWorker]{
		{Name: "echo", Instance: echoFunction{}},
		{Name: "deny", Instance: denyFunction{}},
		{Name: "whoami", Instance: contextFunction{}},
	})
	require.NoError(t, err)
	exec, err := schema.Compile()
	require.NoError(t, err)

	t.Run("Literal Arguments", func(t *testing.T) {
		resp := exec.Execute(context.Background(), Request{Query: `{ echo(customArgs: {a: 1, b: "x", c: [true]}) }`}, models.GraphContext{})
		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"echo":{"a":1,"b":"x","c":[true]}}}`, string(out))
		assert.NoError(t, resp.Err())
		assert.True(t, resp.HasData())
	})

	t.Run("Graph Context Reaches The Worker", func(t *testing.T) {
		resp := exec.Execute(context.Background(), Request{Query: `{ whoami }`}, models.GraphContext{Access: "tkn", Cache: "from"})
		out, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.JSONEq(t, `{"data":{"whoami":{"access":"tkn","cache":"from"}}}`, string(out))
	})

	t.Run("Only Failed Fields", func(t *testing.T) {
		resp := exec.Execute(context.Background(), Request{Query: `{ deny }`}, models.GraphContext{})
		assert.False(t, resp.HasData())
		assert.True(t, apperrors.IsAccessDenied(resp.Err()))
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "ACCESS_DENIED", resp.Errors[0].Extensions["code"])
		assert.Contains(t, resp.Errors[0].Message, apperrors.AccessErrorMarker)
	})

	t.Run("Partial Data", func(t *testing.T) {
		resp := exec.Execute(context.Background(), Request{Query: `{ deny echo(customArgs: {a: 1}) }`}, models.GraphContext{})
		assert.True(t, resp.HasData())
		assert.True(t, apperrors.IsAccessDenied(resp.Err()))
	})
}

func TestExecute_CustomSQL(t *testing.T) {
	aes, err := encryption.NewAESWorker("secret", true)
	require.NoError(t, err)
	encCap := models.Capability{Kind: constants.WorkerKindEncryption, Name: "aes", Enabled: true, Instance: aes}
	const q = `query Run($sql: String!) { customSql(encryptedSql: $sql) { recordset } }`

	t.Run("Returns Every Result Set", func(t *testing.T) {
		f := newFixture(t, encCap)
		payload, err := aes.SymmetricEncrypt("SELECT 1 AS a; SELECT 2 AS b")
		require.NoError(t, err)
		f.db.On("ExecuteQuery", mock.Anything, "SELECT 1 AS a; SELECT 2 AS b", mock.Anything).
			Return([][]map[string]any{{{"a": int64(1)}}, {{"b": []byte("two")}}}, nil).Once()

		body := f.run(t, q, map[string]any{"sql": payload})

		assert.JSONEq(t, `{"data":{"customSql":[{"recordset":[{"a":1}]},{"recordset":[{"b":"two"}]}]}}`, body)
		f.db.AssertExpectations(t)
	})

	t.Run("Encryption Worker Required", func(t *testing.T) {
		f := newFixture(t)

		body := f.run(t, q, map[string]any{"sql": "x"})

		assert.Equal(t, "ENCRYPTION_WORKER_REQUIRED", errorCode(t, body))
		assert.Contains(t, body, `"customSql":null`)
		f.db.AssertNotCalled(t, "ExecuteQuery", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Payload Must Decrypt", func(t *testing.T) {
		f := newFixture(t, encCap)

		body := f.run(t, `{ customSql(encryptedSql: "bm90:dmFsaWQ=") { recordset } }`, nil)

		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, body))
	})

	t.Run("Argument Is Required", func(t *testing.T) {
		f := newFixture(t, encCap)

		resp := f.exec.Execute(context.Background(), Request{Query: `{ customSql { recordset } }`}, models.GraphContext{})

		assert.Nil(t, resp.Data)
		assert.True(t, apperrors.IsValidation(resp.Err()))
	})
}

func TestCoerceInput(t *testing.T) {
	tests := []struct {
		name    string
		scalar  string
		value   any
		wantErr bool
	}{
		{name: "Int Literal", scalar: constants.ScalarDbInt, value: int64(4)},
		{name: "Int Raw", scalar: constants.ScalarDbInt, value: map[string]any{"raw": "DEFAULT"}},
		{name: "Int From String", scalar: constants.ScalarDbInt, value: "abc", wantErr: true},
		{name: "Boolean Literal", scalar: constants.ScalarDbBoolean, value: true},
		{name: "Boolean From Int", scalar: constants.ScalarDbBoolean, value: int64(1), wantErr: true},
		{name: "Float Literal", scalar: constants.ScalarDbFloat, value: 1.5},
		{name: "Raw Not String", scalar: constants.ScalarDbFloat, value: map[string]any{"raw": 1}, wantErr: true},
		{name: "Object Without Raw", scalar: constants.ScalarDbFloat, value: map[string]any{"x": "1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := coerceInput(tt.scalar, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{name: "Bytes", value: []byte("raw"), want: "raw"},
		{name: "Time", value: at, want: "2024-01-02T03:04:05Z"},
		{name: "Rows", value: []map[string]any{{"a": []byte("x"), "b": int64(1)}}, want: []map[string]any{{"a": "x", "b": int64(1)}}},
		{name: "Nested Relation", value: map[string]any{"rel": map[string]any{"at": at}}, want: map[string]any{"rel": map[string]any{"at": "2024-01-02T03:04:05Z"}}},
		{name: "Result Sets", value: [][]map[string]any{{{"a": []byte("1")}}}, want: [][]map[string]any{{{"a": "1"}}}},
		{name: "Untouched", value: int64(5), want: int64(5)},
		{name: "Null", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.value))
		})
	}
}

func TestLiteralValue(t *testing.T) {
	schema, err := NewBuilder(nil, nil).BuildFunctions([]registry.NamedInstance[ports.GraphFunctionWorker]{{Name: "echo", Instance: echoFunction{}}})
	require.NoError(t, err)
	exec, err := schema.Compile()
	require.NoError(t, err)

	resp := exec.Execute(context.Background(), Request{Query: `{ echo(customArgs: {i: 2, f: 1.5, s: "x", b: false, l: [1, "y"], o: {n: 1}}) }`}, models.GraphContext{})
	require.Empty(t, resp.Errors)
	got := resp.Data.(map[string]any)["echo"]
	assert.Equal(t, map[string]any{
		"i": int64(2),
		"f": 1.5,
		"s": "x",
		"b": false,
		"l": []any{int64(1), "y"},
		"o": map[string]any{"n": int64(1)},
	}, got)
}
