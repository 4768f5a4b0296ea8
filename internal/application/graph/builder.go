package graph

import (
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/application/translator"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/naming"
)

// Argument names of generated fields
const (
	ArgWhere      = "where"
	ArgWhereExpr  = "whereExpr"
	ArgOrderBy    = "orderBy"
	ArgLimit      = "limit"
	ArgPage       = "page"
	ArgGroupBy    = "groupBy"
	ArgRecords    = "records"
	ArgSet        = "set"
	ArgCustomArgs = "customArgs"
)

// Suffixes and prefixes of generated names
const (
	AggregateSuffix = "_aggregate"
	InsertPrefix    = "insert_"
	UpdatePrefix    = "update_"
	DeletePrefix    = "delete_"
	ProcedurePrefix = "proc_"
)

// Builder produces graph schemas whose resolvers delegate to the translator
type Builder struct {
	tr     *translator.Translator
	logger logrus.FieldLogger
}

// NewBuilder creates a builder
func NewBuilder(tr *translator.Translator, logger logrus.FieldLogger) *Builder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{tr: tr, logger: logger}
}

// Names used by the customSql query
const (
	CustomSQLField  = "customSql"
	ArgEncryptedSQL = "encryptedSql"
	RecordsetField  = "recordset"
)

// customSQLResult is one result set of a custom SQL batch
var customSQLResult = graphql.NewObject(graphql.ObjectConfig{
	Name: "CustomSqlResult",
	Fields: graphql.Fields{
		RecordsetField: &graphql.Field{Type: JSONScalar},
	},
})

// tableBuild tracks the names of one schema under construction
type tableBuild struct {
	schema *Schema
	types  map[string]bool
	fields map[string]bool
}

func newTableBuild() *tableBuild {
	t := &tableBuild{schema: NewSchema(), types: make(map[string]bool), fields: make(map[string]bool)}
	for _, typ := range t.schema.types {
		t.types[typ.Name()] = true
	}
	return t
}

func (t *tableBuild) addType(typ graphql.Type) error {
	if t.types[typ.Name()] {
		return apperrors.NewSchemaMergeConflictError(typ.Name(), "")
	}
	t.types[typ.Name()] = true
	t.schema.AddType(typ)
	return nil
}

func (t *tableBuild) addRoot(mutation bool, name string, f *graphql.Field) error {
	key := "Query." + name
	if mutation {
		key = "Mutation." + name
	}
	if t.fields[key] {
		owner, _, _ := strings.Cut(key, ".")
		return apperrors.NewSchemaMergeConflictError(owner, name)
	}
	t.fields[key] = true
	if mutation {
		t.schema.AddMutation(name, f)
	} else {
		t.schema.AddQuery(name, f)
	}
	return nil
}

func filterArgs(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		ArgWhere:     &graphql.ArgumentConfig{Type: JSONScalar},
		ArgWhereExpr: &graphql.ArgumentConfig{Type: graphql.String},
	}
	for name, a := range extra {
		args[name] = a
	}
	return args
}

// relation is a foreign key field resolved against the object of its target
type relation struct {
	field  string
	target string
}

// BuildDatabase generates the schema of one database worker: an object type
// per table with its foreign key relations, list and aggregate queries,
// insert/update/delete mutations, one query per procedure and customSql.
func (b *Builder) BuildDatabase(worker string, cs *models.ConnectionSchema) (*Schema, error) {
	t := newTableBuild()
	index := cs.Index()
	objects := make(map[string]*graphql.Object, len(index))

	for _, name := range cs.TableKeys() {
		objects[name] = b.tableObject(worker, index[name], index, objects)
	}
	for _, name := range cs.TableKeys() {
		if err := b.addTable(t, worker, index[name], objects[name]); err != nil {
			return nil, err
		}
	}

	groups := cs.ProcGroups()
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := b.addProcedure(t, worker, key, groups[key]); err != nil {
			return nil, err
		}
	}

	if err := t.addType(customSQLResult); err != nil {
		return nil, err
	}
	customSQL := &graphql.Field{
		Type:        graphql.NewList(customSQLResult),
		Description: "Runs an encrypted SQL batch and returns every result set.",
		Args: graphql.FieldConfigArgument{
			ArgEncryptedSQL: &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: b.customSQLResolver(worker),
	}
	if err := t.addRoot(false, CustomSQLField, customSQL); err != nil {
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"worker":     worker,
		"tables":     len(index),
		"procedures": len(groups),
	}).Debug("Graph schema generated")
	return t.schema, nil
}

// tableObject declares the object type of a table. Its fields are built
// lazily so relations may point at tables declared later.
func (b *Builder) tableObject(worker string, idx *models.TableIndex, all map[string]*models.TableIndex, objects map[string]*graphql.Object) *graphql.Object {
	var relations []relation
	for _, rel := range idx.Relations() {
		if _, ok := all[rel.ColumnForeignKeyTableNameCamelCase]; !ok {
			b.logger.WithFields(logrus.Fields{"worker": worker, "table": idx.Name, "column": rel.ColumnNameEntity}).
				Debug("⚠️ Foreign key target not in schema, relation omitted")
			continue
		}
		relations = append(relations, relation{field: rel.RelationFieldName(), target: rel.ColumnForeignKeyTableNameCamelCase})
	}

	columns := idx.Columns
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        idx.PascalName,
		Description: idx.QualifiedName,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := make(graphql.Fields, len(columns)+len(relations))
			for _, col := range columns {
				fields[col.ColumnNameEntity] = &graphql.Field{
					Type:        outputType(col.ColumnTypeEntity),
					Description: col.ColumnNameDatabase,
				}
			}
			for _, rel := range relations {
				fields[rel.field] = &graphql.Field{Type: objects[rel.target]}
			}
			return fields
		}),
	})
}

func (b *Builder) addTable(t *tableBuild, worker string, idx *models.TableIndex, object *graphql.Object) error {
	inputFields := graphql.InputObjectConfigFieldMap{}
	aggFields := graphql.Fields{
		translator.AggCount: &graphql.Field{Type: graphql.Int},
	}
	valueFields := graphql.Fields{}

	for _, col := range idx.Columns {
		inputFields[col.ColumnNameEntity] = &graphql.InputObjectFieldConfig{Type: inputType(col.ColumnTypeEntity)}

		switch constants.EntityType(col.ColumnTypeEntity) {
		case constants.EntityTypeNumber, constants.EntityTypeDecimal:
			valueFields[col.ColumnNameEntity] = &graphql.Field{Type: graphql.Float}
		}
		switch col.ColumnNameEntity {
		case translator.AggCount, translator.AggSum, translator.AggAvg, translator.AggMin, translator.AggMax:
			b.logger.WithFields(logrus.Fields{"worker": worker, "table": idx.Name, "column": col.ColumnNameEntity}).
				Debug("⚠️ Column shadows an aggregate field and is not a dimension")
		default:
			aggFields[col.ColumnNameEntity] = &graphql.Field{Type: outputType(col.ColumnTypeEntity)}
		}
	}

	types := []graphql.Type{object}
	if len(valueFields) > 0 {
		values := graphql.NewObject(graphql.ObjectConfig{Name: idx.PascalName + "AggregateValues", Fields: valueFields})
		for _, fn := range []string{translator.AggSum, translator.AggAvg, translator.AggMin, translator.AggMax} {
			aggFields[fn] = &graphql.Field{Type: values}
		}
		types = append(types, values)
	}
	input := graphql.NewInputObject(graphql.InputObjectConfig{Name: idx.PascalName + "Input", Fields: inputFields})
	aggregate := graphql.NewObject(graphql.ObjectConfig{Name: idx.PascalName + "Aggregate", Fields: aggFields})
	types = append(types, input, aggregate)

	for _, typ := range types {
		if err := t.addType(typ); err != nil {
			return err
		}
	}

	roots := []struct {
		mutation bool
		name     string
		field    *graphql.Field
	}{
		{false, idx.Name, &graphql.Field{
			Type: graphql.NewList(object),
			Args: filterArgs(graphql.FieldConfigArgument{
				ArgOrderBy: &graphql.ArgumentConfig{Type: JSONScalar},
				ArgLimit:   &graphql.ArgumentConfig{Type: graphql.Int},
				ArgPage:    &graphql.ArgumentConfig{Type: graphql.Int},
			}),
			Resolve: b.selectResolver(worker, idx.Name),
		}},
		{false, idx.Name + AggregateSuffix, &graphql.Field{
			Type: graphql.NewList(aggregate),
			Args: filterArgs(graphql.FieldConfigArgument{
				ArgGroupBy: &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			}),
			Resolve: b.aggregateResolver(worker, idx.Name),
		}},
		{true, InsertPrefix + idx.Name, &graphql.Field{
			Type: graphql.NewList(object),
			Args: graphql.FieldConfigArgument{
				ArgRecords: &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(input)))},
			},
			Resolve: b.insertResolver(worker, idx.Name),
		}},
		{true, UpdatePrefix + idx.Name, &graphql.Field{
			Type: graphql.Int,
			Args: filterArgs(graphql.FieldConfigArgument{
				ArgSet: &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)},
			}),
			Resolve: b.updateResolver(worker, idx.Name),
		}},
		{true, DeletePrefix + idx.Name, &graphql.Field{
			Type:    graphql.Int,
			Args:    filterArgs(nil),
			Resolve: b.deleteResolver(worker, idx.Name),
		}},
	}
	for _, r := range roots {
		if err := t.addRoot(r.mutation, r.name, r.field); err != nil {
			return err
		}
	}
	return nil
}

// ProcedureFieldName is the query field of a procedure keyed "schema.name"
func ProcedureFieldName(key string) string {
	return ProcedurePrefix + naming.EntityName(strings.ReplaceAll(key, ".", "_"))
}

func (b *Builder) addProcedure(t *tableBuild, worker, key string, signature []models.ProcFunctionSchema) error {
	args := graphql.FieldConfigArgument{}
	params := make(map[string]string, len(signature))
	for _, p := range signature {
		if p.ParameterName == "" {
			continue
		}
		name := naming.EntityName(p.ParameterName)
		if _, dup := params[name]; dup || name == "" {
			continue
		}
		params[name] = p.ParameterName
		args[name] = &graphql.ArgumentConfig{Type: outputType(p.ParameterTypeEntity)}
	}

	return t.addRoot(false, ProcedureFieldName(key), &graphql.Field{
		Type:        JSONScalar,
		Description: key,
		Args:        args,
		Resolve:     b.procedureResolver(worker, key, params),
	})
}

// BuildFunctions generates the custom function schema: one
// <name>(customArgs: JSON): JSON query per graph function worker
func (b *Builder) BuildFunctions(functions []registry.NamedInstance[ports.GraphFunctionWorker]) (*Schema, error) {
	t := newTableBuild()
	for _, fn := range functions {
		worker := fn.Instance
		field := &graphql.Field{
			Type: JSONScalar,
			Args: graphql.FieldConfigArgument{
				ArgCustomArgs: &graphql.ArgumentConfig{Type: JSONScalar},
			},
			Resolve: resolved(func(p graphql.ResolveParams) (any, error) {
				args, _ := p.Args[ArgCustomArgs].(map[string]any)
				return worker.Execute(p.Context, args, GraphContextFrom(p.Context))
			}),
		}
		if err := t.addRoot(false, fn.Name, field); err != nil {
			return nil, err
		}
	}
	return t.schema, nil
}
