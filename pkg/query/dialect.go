package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects identifier quoting, parameter markers and paging syntax
type Dialect string

const (
	MySQL    Dialect = "mysql"
	MSSQL    Dialect = "mssql"
	Postgres Dialect = "postgres"
)

// QuoteIdent quotes a possibly schema-qualified identifier
func (d Dialect) QuoteIdent(name string) string {
	if name == "*" {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = d.quotePart(p)
	}
	return strings.Join(parts, ".")
}

func (d Dialect) quotePart(p string) string {
	switch d {
	case MSSQL:
		return "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	case Postgres:
		return `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	default:
		return "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
}

// Column quotes alias.column
func (d Dialect) Column(alias, column string) string {
	if alias == "" {
		return d.quotePart(column)
	}
	return d.quotePart(alias) + "." + d.quotePart(column)
}

// Placeholder returns the bind marker for the n-th (1-based) parameter
func (d Dialect) Placeholder(n int) string {
	switch d {
	case MSSQL:
		return "@p" + strconv.Itoa(n)
	case Postgres:
		return "$" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Literal renders a value inline. Strings are single-quoted with quotes doubled.
func Literal(v any, isString bool) string {
	if v == nil {
		return "NULL"
	}
	if isString {
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
	switch val := v.(type) {
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05") + "'"
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
