package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/query"
)

var mssqlTypes = typeGroups{
	boolean: []string{"bit"},
	number:  []string{"tinyint", "smallint", "int", "bigint"},
	decimal: []string{"decimal", "numeric", "float", "real", "money", "smallmoney"},
	date:    []string{"date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "time"},
	text:    []string{"char", "varchar", "text", "nchar", "nvarchar", "ntext", "uniqueidentifier"},
}

type mssqlFlavor struct{}

// NewMSSQLWorker creates a database worker for Microsoft SQL Server
func NewMSSQLWorker(name string, meta map[string]any, logger logrus.FieldLogger) *Worker {
	return newWorker(name, mssqlFlavor{}, meta, logger)
}

func (mssqlFlavor) dialect() query.Dialect { return query.MSSQL }
func (mssqlFlavor) driverName() string     { return "sqlserver" }
func (mssqlFlavor) defaultPort() int       { return 1433 }

func (mssqlFlavor) dsn(_ string, s Settings) (string, error) {
	if s.DatabaseName == "" {
		return "", fmt.Errorf("%s is required", MetaDatabaseName)
	}

	params := url.Values{}
	params.Set("database", s.DatabaseName)
	if s.RequireSSL {
		params.Set("encrypt", "true")
		if s.SSLCertPath != "" {
			params.Set("certificate", s.SSLCertPath)
		}
	} else {
		params.Set("encrypt", "disable")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(s.UserName, s.Password),
		Host:     net.JoinHostPort(s.ServerAddress, strconv.Itoa(s.ServerPort)),
		RawQuery: params.Encode(),
	}
	return u.String(), nil
}

func (mssqlFlavor) tablesSQL() string {
	return `SELECT
    s.name AS schema_name,
    t.name AS table_name,
    c.name AS column_name_database,
    ty.name AS column_type_database,
    ` + mssqlTypes.entityCase("ty.name") + ` AS column_type_entity,
    c.column_id AS column_position,
    CAST(c.is_nullable AS int) AS column_is_nullable,
    CAST(c.is_identity AS int) AS column_is_identity,
    CASE WHEN pk.column_id IS NULL THEN 0 ELSE 1 END AS column_is_primary_key,
    CASE WHEN fk.parent_column_id IS NULL THEN 0 ELSE 1 END AS column_is_foreign_key,
    COALESCE(rt.name, '') AS column_foreign_key_table_name,
    COALESCE(rc.name, '') AS column_foreign_key_column_name
FROM sys.tables t
INNER JOIN sys.schemas s ON s.schema_id = t.schema_id
INNER JOIN sys.columns c ON c.object_id = t.object_id
INNER JOIN sys.types ty ON ty.user_type_id = c.user_type_id
LEFT JOIN (
    SELECT ic.object_id, ic.column_id
    FROM sys.indexes i
    INNER JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
    WHERE i.is_primary_key = 1
) pk ON pk.object_id = c.object_id AND pk.column_id = c.column_id
LEFT JOIN sys.foreign_key_columns fk ON fk.parent_object_id = c.object_id AND fk.parent_column_id = c.column_id
LEFT JOIN sys.tables rt ON rt.object_id = fk.referenced_object_id
LEFT JOIN sys.columns rc ON rc.object_id = fk.referenced_object_id AND rc.column_id = fk.referenced_column_id
WHERE t.is_ms_shipped = 0
ORDER BY s.name, t.name, c.column_id`
}

func (mssqlFlavor) procsSQL() string {
	return `SELECT
    s.name AS procfunc_schema,
    o.name AS procfunc_name,
    CASE WHEN o.type = 'P' THEN 'PROCEDURE' ELSE 'FUNCTION' END AS procfunc_type,
    COALESCE(p.parameter_id, 0) AS parameter_order,
    COALESCE(REPLACE(p.name, '@', ''), '') AS parameter_name,
    COALESCE(ty.name, '') AS parameter_type_database,
    ` + mssqlTypes.entityCase("COALESCE(ty.name, '')") + ` AS parameter_type_entity
FROM sys.objects o
INNER JOIN sys.schemas s ON s.schema_id = o.schema_id
LEFT JOIN sys.parameters p ON p.object_id = o.object_id AND p.parameter_id > 0
LEFT JOIN sys.types ty ON ty.user_type_id = p.user_type_id
WHERE o.type IN ('P', 'IF', 'TF') AND o.is_ms_shipped = 0
ORDER BY s.name, o.name, p.parameter_id`
}

// procCall renders EXEC with named arguments for procedures and a table
// function select for functions
func (mssqlFlavor) procCall(signature []models.ProcFunctionSchema, args []models.ProcArgument) string {
	names, values := procArgs(signature, args)
	target := procTarget(query.MSSQL, signature)
	if strings.EqualFold(signature[0].Type, constants.ProcTypeFunction) {
		return fmt.Sprintf("SELECT * FROM %s(%s)", target, strings.Join(values, ", "))
	}

	assignments := make([]string, len(names))
	for i := range names {
		assignments[i] = fmt.Sprintf("@%s = %s", names[i], values[i])
	}
	if len(assignments) == 0 {
		return "EXEC " + target
	}
	return fmt.Sprintf("EXEC %s %s", target, strings.Join(assignments, ", "))
}

// SQL Server returns every result set of a batch; it is sent whole
func (mssqlFlavor) split(string) ([]statement, bool) {
	return nil, false
}
