package query

import (
	"fmt"
	"strings"
)

// QueryType represents the type of SQL query
type QueryType string

const (
	QueryTypeSelect QueryType = "SELECT"
	QueryTypeInsert QueryType = "INSERT"
	QueryTypeUpdate QueryType = "UPDATE"
	QueryTypeDelete QueryType = "DELETE"
)

// QueryResult represents the built SQL query and parameters
type QueryResult struct {
	SQL    string
	Params []interface{}
}

// RawValue is written verbatim into INSERT/UPDATE values instead of bound
type RawValue string

type assignment struct {
	column string
	value  interface{}
}

// Builder is a fluent, dialect-aware SQL query builder. Predicates are
// kept as a tree and rendered only in Build.
type Builder struct {
	dialect   Dialect
	queryType QueryType
	table     string
	alias     string
	fields    []string
	joins     []string
	where     []Predicate
	rawWhere  []string
	orderBy   []string
	groupBy   []string
	limit     *int
	offset    *int
	values    []assignment
	returning bool
}

func newBuilder(d Dialect, qt QueryType, table string) *Builder {
	return &Builder{dialect: d, queryType: qt, table: table}
}

// From creates a new SELECT query builder
func From(d Dialect, table string) *Builder {
	return newBuilder(d, QueryTypeSelect, table)
}

// Insert creates a new INSERT query builder
func Insert(d Dialect, table string) *Builder {
	return newBuilder(d, QueryTypeInsert, table)
}

// Update creates a new UPDATE query builder
func Update(d Dialect, table string) *Builder {
	return newBuilder(d, QueryTypeUpdate, table)
}

// Delete creates a new DELETE query builder
func Delete(d Dialect, table string) *Builder {
	return newBuilder(d, QueryTypeDelete, table)
}

// Dialect returns the builder's dialect
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// As sets the table alias used to qualify selected columns
func (b *Builder) As(alias string) *Builder {
	b.alias = alias
	return b
}

// Select adds columns of the base table
func (b *Builder) Select(columns ...string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	for _, col := range columns {
		b.fields = append(b.fields, b.dialect.Column(b.alias, col))
	}
	return b
}

// SelectAs adds alias.column AS name
func (b *Builder) SelectAs(tableAlias, column, name string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.fields = append(b.fields, fmt.Sprintf("%s AS %s", b.dialect.Column(tableAlias, column), b.dialect.quotePart(name)))
	return b
}

// AddSelectRaw adds a raw select expression
func (b *Builder) AddSelectRaw(expression string, alias ...string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	if len(alias) > 0 && alias[0] != "" {
		b.fields = append(b.fields, fmt.Sprintf("%s AS %s", expression, b.dialect.quotePart(alias[0])))
	} else {
		b.fields = append(b.fields, expression)
	}
	return b
}

// Join adds a JOIN clause; on is raw SQL
func (b *Builder) Join(joinType string, table string, alias string, on string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s AS %s ON %s",
		joinType, b.dialect.QuoteIdent(table), b.dialect.quotePart(alias), on))
	return b
}

// Where ANDs a predicate into the WHERE clause
func (b *Builder) Where(p Predicate) *Builder {
	if p != nil {
		b.where = append(b.where, p)
	}
	return b
}

// WhereRaw ANDs a pre-rendered condition without parameters
func (b *Builder) WhereRaw(sql string) *Builder {
	if sql != "" {
		b.rawWhere = append(b.rawWhere, sql)
	}
	return b
}

// HasWhere reports whether any condition has been added
func (b *Builder) HasWhere() bool {
	return len(b.where) > 0 || len(b.rawWhere) > 0
}

// Set adds a column assignment for INSERT or UPDATE; RawValue is not bound
func (b *Builder) Set(column string, value interface{}) *Builder {
	if b.queryType != QueryTypeInsert && b.queryType != QueryTypeUpdate {
		return b
	}
	b.values = append(b.values, assignment{column: column, value: value})
	return b
}

// OrderBy adds an ORDER BY term; column is already rendered
func (b *Builder) OrderBy(column string, direction string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	dir := strings.ToUpper(direction)
	if dir != "DESC" {
		dir = "ASC"
	}
	b.orderBy = append(b.orderBy, column+" "+dir)
	return b
}

// GroupBy adds a GROUP BY term; column is already rendered
func (b *Builder) GroupBy(column string) *Builder {
	if b.queryType != QueryTypeSelect {
		return b
	}
	b.groupBy = append(b.groupBy, column)
	return b
}

// Limit adds a row limit
func (b *Builder) Limit(n int) *Builder {
	if b.queryType != QueryTypeSelect || n <= 0 {
		return b
	}
	b.limit = &n
	return b
}

// Offset skips n rows
func (b *Builder) Offset(n int) *Builder {
	if b.queryType != QueryTypeSelect || n <= 0 {
		return b
	}
	b.offset = &n
	return b
}

// Returning asks INSERT to return the inserted rows where the dialect supports it
func (b *Builder) Returning() *Builder {
	b.returning = true
	return b
}

// SupportsReturning reports whether INSERT can return rows in one statement
func (d Dialect) SupportsReturning() bool {
	return d == MSSQL || d == Postgres
}

// Build constructs the final SQL query
func (b *Builder) Build() QueryResult {
	bd := &binder{dialect: b.dialect}
	var sql string

	switch b.queryType {
	case QueryTypeSelect:
		sql = b.buildSelect(bd)
	case QueryTypeInsert:
		sql = b.buildInsert(bd)
	case QueryTypeUpdate:
		sql = b.buildUpdate(bd)
	case QueryTypeDelete:
		sql = b.buildDelete(bd)
	}

	return QueryResult{SQL: sql, Params: bd.params}
}

func (b *Builder) tableRef() string {
	ref := b.dialect.QuoteIdent(b.table)
	if b.alias != "" {
		ref += " AS " + b.dialect.quotePart(b.alias)
	}
	return ref
}

func (b *Builder) whereSQL(bd *binder) string {
	var parts []string
	if len(b.where) > 0 {
		root := AllOf(b.where...)
		if _, isBranch := root.(Branch); isBranch && len(b.rawWhere) > 0 {
			parts = append(parts, "("+bd.render(root, true)+")")
		} else {
			parts = append(parts, bd.render(root, true))
		}
	}
	parts = append(parts, b.rawWhere...)
	if len(parts) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(parts, " AND ")
}

func (b *Builder) buildSelect(bd *binder) string {
	var parts []string

	fields := "*"
	if len(b.fields) > 0 {
		fields = strings.Join(b.fields, ", ")
	}
	parts = append(parts, fmt.Sprintf("SELECT %s FROM %s", fields, b.tableRef()))

	if len(b.joins) > 0 {
		parts = append(parts, strings.Join(b.joins, " "))
	}
	if w := b.whereSQL(bd); w != "" {
		parts = append(parts, w)
	}
	if len(b.groupBy) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(b.groupBy, ", "))
	}

	paged := b.limit != nil || b.offset != nil
	if len(b.orderBy) > 0 {
		parts = append(parts, "ORDER BY "+strings.Join(b.orderBy, ", "))
	} else if paged && b.dialect == MSSQL {
		parts = append(parts, "ORDER BY (SELECT NULL)")
	}

	if paged {
		parts = append(parts, b.pageSQL())
	}

	return strings.Join(parts, " ")
}

func (b *Builder) pageSQL() string {
	offset := 0
	if b.offset != nil {
		offset = *b.offset
	}
	if b.dialect == MSSQL {
		s := fmt.Sprintf("OFFSET %d ROWS", offset)
		if b.limit != nil {
			s += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", *b.limit)
		}
		return s
	}
	var s []string
	if b.limit != nil {
		s = append(s, fmt.Sprintf("LIMIT %d", *b.limit))
	} else if b.dialect == MySQL {
		// MySQL has no OFFSET without LIMIT
		s = append(s, "LIMIT 18446744073709551615")
	}
	if offset > 0 {
		s = append(s, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(s, " ")
}

func (b *Builder) valueSQL(bd *binder, v interface{}) string {
	if raw, ok := v.(RawValue); ok {
		return string(raw)
	}
	return bd.bind(v)
}

func (b *Builder) buildInsert(bd *binder) string {
	cols := make([]string, 0, len(b.values))
	vals := make([]string, 0, len(b.values))
	for _, a := range b.values {
		cols = append(cols, b.dialect.quotePart(a.column))
		vals = append(vals, b.valueSQL(bd, a.value))
	}

	ret := b.returning && b.dialect.SupportsReturning()
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.dialect.QuoteIdent(b.table))
	sb.WriteString(" (" + strings.Join(cols, ", ") + ")")
	if ret && b.dialect == MSSQL {
		sb.WriteString(" OUTPUT INSERTED.*")
	}
	sb.WriteString(" VALUES (" + strings.Join(vals, ", ") + ")")
	if ret && b.dialect == Postgres {
		sb.WriteString(" RETURNING *")
	}
	return sb.String()
}

func (b *Builder) buildUpdate(bd *binder) string {
	setClauses := make([]string, 0, len(b.values))
	for _, a := range b.values {
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", b.dialect.quotePart(a.column), b.valueSQL(bd, a.value)))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", b.dialect.QuoteIdent(b.table), strings.Join(setClauses, ", "))
	if w := b.whereSQL(bd); w != "" {
		sql += " " + w
	}
	return sql
}

func (b *Builder) buildDelete(bd *binder) string {
	sql := fmt.Sprintf("DELETE FROM %s", b.dialect.QuoteIdent(b.table))
	if w := b.whereSQL(bd); w != "" {
		sql += " " + w
	}
	return sql
}
