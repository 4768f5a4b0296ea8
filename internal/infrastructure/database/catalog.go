package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/naming"
	"github.com/omnihive/backend/pkg/utils"
)

// Column aliases every catalog query (built in or override file) must produce
const (
	colSchemaName        = "schema_name"
	colTableName         = "table_name"
	colColumnName        = "column_name_database"
	colColumnType        = "column_type_database"
	colColumnEntityType  = "column_type_entity"
	colColumnPosition    = "column_position"
	colIsNullable        = "column_is_nullable"
	colIsIdentity        = "column_is_identity"
	colIsPrimaryKey      = "column_is_primary_key"
	colIsForeignKey      = "column_is_foreign_key"
	colForeignTableName  = "column_foreign_key_table_name"
	colForeignColumnName = "column_foreign_key_column_name"
	colProcSchema        = "procfunc_schema"
	colProcName          = "procfunc_name"
	colProcType          = "procfunc_type"
	colParamOrder        = "parameter_order"
	colParamName         = "parameter_name"
	colParamTypeDatabase = "parameter_type_database"
	colParamTypeEntity   = "parameter_type_entity"
)

// typeGroups lists database type names per entity type for a dialect
type typeGroups struct {
	boolean []string
	number  []string
	decimal []string
	date    []string
	text    []string
}

// entityCase renders a CASE expression mapping a data type column to an entity type
func (g typeGroups) entityCase(expr string) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	write := func(types []string, entity constants.EntityType) {
		if len(types) == 0 {
			return
		}
		quoted := make([]string, len(types))
		for i, t := range types {
			quoted[i] = "'" + t + "'"
		}
		fmt.Fprintf(&sb, " WHEN LOWER(%s) IN (%s) THEN '%s'", expr, strings.Join(quoted, ", "), entity)
	}
	write(g.boolean, constants.EntityTypeBoolean)
	write(g.number, constants.EntityTypeNumber)
	write(g.decimal, constants.EntityTypeDecimal)
	write(g.date, constants.EntityTypeDate)
	write(g.text, constants.EntityTypeString)
	fmt.Fprintf(&sb, " ELSE '%s' END", constants.EntityTypeUnknown)
	return sb.String()
}

func rowString(row map[string]any, key string) string {
	return utils.MetaString(row, key)
}

func rowInt(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	}
	return utils.MetaInt(row, key, 0)
}

func rowBool(row map[string]any, key string) bool {
	return utils.ToBool(row[key])
}

// decodeTables converts catalog rows into table schema rows
func decodeTables(rows []map[string]any) []models.TableSchema {
	tables := make([]models.TableSchema, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, models.TableSchema{
			SchemaName:                 rowString(row, colSchemaName),
			TableName:                  rowString(row, colTableName),
			ColumnNameDatabase:         rowString(row, colColumnName),
			ColumnTypeDatabase:         rowString(row, colColumnType),
			ColumnTypeEntity:           rowString(row, colColumnEntityType),
			ColumnPosition:             rowInt(row, colColumnPosition),
			ColumnIsNullable:           rowBool(row, colIsNullable),
			ColumnIsIdentity:           rowBool(row, colIsIdentity),
			ColumnIsPrimaryKey:         rowBool(row, colIsPrimaryKey),
			ColumnIsForeignKey:         rowBool(row, colIsForeignKey),
			ColumnForeignKeyTableName:  rowString(row, colForeignTableName),
			ColumnForeignKeyColumnName: rowString(row, colForeignColumnName),
		})
	}
	return tables
}

// decodeProcs converts catalog rows into procedure parameter rows
func decodeProcs(rows []map[string]any) []models.ProcFunctionSchema {
	procs := make([]models.ProcFunctionSchema, 0, len(rows))
	for _, row := range rows {
		procs = append(procs, models.ProcFunctionSchema{
			SchemaName:            rowString(row, colProcSchema),
			Name:                  rowString(row, colProcName),
			Type:                  strings.ToUpper(rowString(row, colProcType)),
			ParameterOrder:        rowInt(row, colParamOrder),
			ParameterName:         strings.TrimPrefix(rowString(row, colParamName), "@"),
			ParameterTypeDatabase: rowString(row, colParamTypeDatabase),
			ParameterTypeEntity:   rowString(row, colParamTypeEntity),
		})
	}
	return procs
}

// Normalize fills the derived camel, pascal and entity names of every row and
// fails with SchemaConflictError when two raw names in one table collapse to
// the same graph name.
func Normalize(tables []models.TableSchema, ignoreSchema bool) ([]models.TableSchema, error) {
	out := make([]models.TableSchema, len(tables))
	owners := make(map[string]string)

	for i, row := range tables {
		row.TableNameCamelCase, row.TableNamePascalCase = naming.TableNames(row.SchemaName, row.TableName, ignoreSchema)
		row.ColumnNameEntity = naming.EntityName(row.ColumnNameDatabase)
		if row.ColumnIsForeignKey && row.ColumnForeignKeyTableName != "" {
			row.ColumnForeignKeyTableNameCamelCase, row.ColumnForeignKeyTableNamePascalCase =
				naming.TableNames(row.SchemaName, row.ColumnForeignKeyTableName, ignoreSchema)
		}

		qualified := row.QualifiedTableName()
		if owner, ok := owners[row.TableNameCamelCase]; ok && owner != qualified {
			return nil, apperrors.NewSchemaConflictError(qualified, row.TableNameCamelCase, owner, qualified)
		}
		owners[row.TableNameCamelCase] = qualified
		out[i] = row
	}

	if err := checkFieldCollisions(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkFieldCollisions looks for column and relation fields sharing one name per table
func checkFieldCollisions(tables []models.TableSchema) error {
	type field struct {
		table string
		name  string
	}
	sources := make(map[field][]string)
	var order []field

	add := func(f field, raw string) {
		if _, ok := sources[f]; !ok {
			order = append(order, f)
		}
		sources[f] = append(sources[f], raw)
	}

	for _, row := range tables {
		add(field{row.TableNameCamelCase, row.ColumnNameEntity}, row.ColumnNameDatabase)
		if rel := row.RelationFieldName(); rel != "" {
			add(field{row.TableNameCamelCase, rel}, row.ColumnNameDatabase+"->"+row.ColumnForeignKeyTableName)
		}
	}

	for _, f := range order {
		if raws := sources[f]; len(raws) > 1 {
			sort.Strings(raws)
			return apperrors.NewSchemaConflictError(f.table, f.name, raws...)
		}
	}
	return nil
}

// filterTables keeps the rows whose schema passes the settings filter
func filterTables(s Settings, tables []models.TableSchema) []models.TableSchema {
	kept := tables[:0:0]
	for _, t := range tables {
		if s.IncludesSchema(t.SchemaName) {
			kept = append(kept, t)
		}
	}
	return kept
}

// filterProcs keeps the procedures whose schema passes the settings filter
func filterProcs(s Settings, procs []models.ProcFunctionSchema) []models.ProcFunctionSchema {
	kept := procs[:0:0]
	for _, p := range procs {
		if s.IncludesSchema(p.SchemaName) {
			kept = append(kept, p)
		}
	}
	return kept
}
