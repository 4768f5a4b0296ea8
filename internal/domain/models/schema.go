package models

import "sort"

// TableSchema is one column of one table as seen by the schema introspector
type TableSchema struct {
	SchemaName                          string `json:"schemaName"`
	TableName                           string `json:"tableName"`
	TableNameCamelCase                  string `json:"tableNameCamelCase"`
	TableNamePascalCase                 string `json:"tableNamePascalCase"`
	ColumnNameDatabase                  string `json:"columnNameDatabase"`
	ColumnNameEntity                    string `json:"columnNameEntity"`
	ColumnTypeDatabase                  string `json:"columnTypeDatabase"`
	ColumnTypeEntity                    string `json:"columnTypeEntity"`
	ColumnPosition                      int    `json:"columnPosition"`
	ColumnIsNullable                    bool   `json:"columnIsNullable"`
	ColumnIsIdentity                    bool   `json:"columnIsIdentity"`
	ColumnIsPrimaryKey                  bool   `json:"columnIsPrimaryKey"`
	ColumnIsForeignKey                  bool   `json:"columnIsForeignKey"`
	ColumnForeignKeyTableName           string `json:"columnForeignKeyTableName"`
	ColumnForeignKeyColumnName          string `json:"columnForeignKeyColumnName"`
	ColumnForeignKeyTableNameCamelCase  string `json:"columnForeignKeyTableNameCamelCase"`
	ColumnForeignKeyTableNamePascalCase string `json:"columnForeignKeyTableNamePascalCase"`
}

// QualifiedTableName is the schema-qualified database table name
func (t TableSchema) QualifiedTableName() string {
	if t.SchemaName == "" {
		return t.TableName
	}
	return t.SchemaName + "." + t.TableName
}

// RelationFieldName is the graph field that resolves this column's foreign key
func (t TableSchema) RelationFieldName() string {
	if !t.ColumnIsForeignKey || t.ColumnForeignKeyTableNameCamelCase == "" {
		return ""
	}
	return t.ColumnNameEntity + "_" + t.ColumnForeignKeyTableNameCamelCase
}

// ProcFunctionSchema is one parameter of one procedure or function
type ProcFunctionSchema struct {
	SchemaName            string `json:"schemaName"`
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	ParameterOrder        int    `json:"parameterOrder"`
	ParameterName         string `json:"parameterName"`
	ParameterTypeDatabase string `json:"parameterTypeDatabase"`
	ParameterTypeEntity   string `json:"parameterTypeEntity"`
}

// ProcArgument is one argument passed to a procedure call
type ProcArgument struct {
	Name     string `json:"name"`
	Value    any    `json:"value"`
	IsString bool   `json:"isString"`
}

// ConnectionSchema is the canonical metadata snapshot for one database worker
type ConnectionSchema struct {
	WorkerName    string               `json:"workerName"`
	Tables        []TableSchema        `json:"tables"`
	ProcFunctions []ProcFunctionSchema `json:"procFunctions"`
}

// TableColumns groups columns by table camel name, ordered by column position
func (c *ConnectionSchema) TableColumns() map[string][]TableSchema {
	out := make(map[string][]TableSchema)
	for _, col := range c.Tables {
		out[col.TableNameCamelCase] = append(out[col.TableNameCamelCase], col)
	}
	for key := range out {
		cols := out[key]
		sort.SliceStable(cols, func(i, j int) bool { return cols[i].ColumnPosition < cols[j].ColumnPosition })
	}
	return out
}

// TableKeys returns the table camel names in a stable order
func (c *ConnectionSchema) TableKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, col := range c.Tables {
		if !seen[col.TableNameCamelCase] {
			seen[col.TableNameCamelCase] = true
			keys = append(keys, col.TableNameCamelCase)
		}
	}
	sort.Strings(keys)
	return keys
}

// ProcGroups groups parameters into callable signatures keyed by schema.name,
// each ordered by parameterOrder
func (c *ConnectionSchema) ProcGroups() map[string][]ProcFunctionSchema {
	out := make(map[string][]ProcFunctionSchema)
	for _, p := range c.ProcFunctions {
		key := p.Name
		if p.SchemaName != "" {
			key = p.SchemaName + "." + p.Name
		}
		out[key] = append(out[key], p)
	}
	for key := range out {
		params := out[key]
		sort.SliceStable(params, func(i, j int) bool { return params[i].ParameterOrder < params[j].ParameterOrder })
	}
	return out
}

// TableIndex is a lookup view over the columns of one table
type TableIndex struct {
	Name          string
	PascalName    string
	QualifiedName string
	Columns       []TableSchema

	byEntity   map[string]TableSchema
	byDatabase map[string]TableSchema
	relations  map[string]TableSchema
}

// NewTableIndex indexes columns that all belong to one table
func NewTableIndex(columns []TableSchema) *TableIndex {
	idx := &TableIndex{
		Columns:    columns,
		byEntity:   make(map[string]TableSchema, len(columns)),
		byDatabase: make(map[string]TableSchema, len(columns)),
		relations:  make(map[string]TableSchema),
	}
	for _, col := range columns {
		idx.byEntity[col.ColumnNameEntity] = col
		idx.byDatabase[col.ColumnNameDatabase] = col
		if rel := col.RelationFieldName(); rel != "" {
			idx.relations[rel] = col
		}
	}
	if len(columns) > 0 {
		idx.Name = columns[0].TableNameCamelCase
		idx.PascalName = columns[0].TableNamePascalCase
		idx.QualifiedName = columns[0].QualifiedTableName()
	}
	return idx
}

// Column finds a column by entity name, then by database name
func (t *TableIndex) Column(name string) (TableSchema, bool) {
	if col, ok := t.byEntity[name]; ok {
		return col, true
	}
	col, ok := t.byDatabase[name]
	return col, ok
}

// Relation finds the foreign key column behind a relation field
func (t *TableIndex) Relation(field string) (TableSchema, bool) {
	col, ok := t.relations[field]
	return col, ok
}

// Relations returns the foreign key columns in column order
func (t *TableIndex) Relations() []TableSchema {
	var out []TableSchema
	for _, col := range t.Columns {
		if col.RelationFieldName() != "" {
			out = append(out, col)
		}
	}
	return out
}

// IdentityColumn returns the first identity column, if any
func (t *TableIndex) IdentityColumn() (TableSchema, bool) {
	for _, col := range t.Columns {
		if col.ColumnIsIdentity {
			return col, true
		}
	}
	return TableSchema{}, false
}

// Index builds a TableIndex per table camel name
func (c *ConnectionSchema) Index() map[string]*TableIndex {
	out := make(map[string]*TableIndex)
	for name, cols := range c.TableColumns() {
		out[name] = NewTableIndex(cols)
	}
	return out
}
