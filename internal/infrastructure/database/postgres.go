package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/query"
)

var postgresTypes = typeGroups{
	boolean: []string{"boolean"},
	number:  []string{"smallint", "integer", "bigint"},
	decimal: []string{"numeric", "decimal", "real", "double precision", "money"},
	date:    []string{"date", "timestamp without time zone", "timestamp with time zone", "time without time zone"},
	text:    []string{"character", "character varying", "text", "uuid", "citext"},
}

const postgresSystemSchemas = "'pg_catalog', 'information_schema'"

type postgresFlavor struct{}

// NewPostgresWorker creates a database worker for PostgreSQL
func NewPostgresWorker(name string, meta map[string]any, logger logrus.FieldLogger) *Worker {
	return newWorker(name, postgresFlavor{}, meta, logger)
}

func (postgresFlavor) dialect() query.Dialect { return query.Postgres }
func (postgresFlavor) driverName() string     { return "postgres" }
func (postgresFlavor) defaultPort() int       { return 5432 }

func (postgresFlavor) dsn(_ string, s Settings) (string, error) {
	if s.DatabaseName == "" {
		return "", fmt.Errorf("%s is required", MetaDatabaseName)
	}

	params := url.Values{}
	if s.RequireSSL {
		params.Set("sslmode", "verify-full")
		if s.SSLCertPath != "" {
			params.Set("sslrootcert", s.SSLCertPath)
		} else {
			params.Set("sslmode", "require")
		}
	} else {
		params.Set("sslmode", "disable")
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.UserName, s.Password),
		Host:     net.JoinHostPort(s.ServerAddress, strconv.Itoa(s.ServerPort)),
		Path:     "/" + s.DatabaseName,
		RawQuery: params.Encode(),
	}
	return u.String(), nil
}

func (postgresFlavor) tablesSQL() string {
	return `SELECT
    c.table_schema AS schema_name,
    c.table_name AS table_name,
    c.column_name AS column_name_database,
    c.data_type AS column_type_database,
    ` + postgresTypes.entityCase("c.data_type") + ` AS column_type_entity,
    c.ordinal_position AS column_position,
    CASE WHEN c.is_nullable = 'YES' THEN 1 ELSE 0 END AS column_is_nullable,
    CASE WHEN c.is_identity = 'YES' OR c.column_default LIKE 'nextval(%' THEN 1 ELSE 0 END AS column_is_identity,
    CASE WHEN pk.column_name IS NULL THEN 0 ELSE 1 END AS column_is_primary_key,
    CASE WHEN fk.foreign_table IS NULL THEN 0 ELSE 1 END AS column_is_foreign_key,
    COALESCE(fk.foreign_table, '') AS column_foreign_key_table_name,
    COALESCE(fk.foreign_column, '') AS column_foreign_key_column_name
FROM information_schema.columns c
INNER JOIN information_schema.tables t
    ON t.table_schema = c.table_schema AND t.table_name = c.table_name AND t.table_type = 'BASE TABLE'
LEFT JOIN (
    SELECT kcu.table_schema, kcu.table_name, kcu.column_name
    FROM information_schema.table_constraints tc
    INNER JOIN information_schema.key_column_usage kcu
        ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
    WHERE tc.constraint_type = 'PRIMARY KEY'
) pk ON pk.table_schema = c.table_schema AND pk.table_name = c.table_name AND pk.column_name = c.column_name
LEFT JOIN (
    SELECT kcu.table_schema, kcu.table_name, kcu.column_name,
        ccu.table_name AS foreign_table, ccu.column_name AS foreign_column
    FROM information_schema.table_constraints tc
    INNER JOIN information_schema.key_column_usage kcu
        ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
    INNER JOIN information_schema.constraint_column_usage ccu
        ON ccu.constraint_name = tc.constraint_name AND ccu.constraint_schema = tc.constraint_schema
    WHERE tc.constraint_type = 'FOREIGN KEY'
) fk ON fk.table_schema = c.table_schema AND fk.table_name = c.table_name AND fk.column_name = c.column_name
WHERE c.table_schema NOT IN (` + postgresSystemSchemas + `)
ORDER BY c.table_schema, c.table_name, c.ordinal_position`
}

func (postgresFlavor) procsSQL() string {
	return `SELECT
    r.routine_schema AS procfunc_schema,
    r.routine_name AS procfunc_name,
    r.routine_type AS procfunc_type,
    COALESCE(p.ordinal_position, 0) AS parameter_order,
    COALESCE(p.parameter_name, '') AS parameter_name,
    COALESCE(p.data_type, '') AS parameter_type_database,
    ` + postgresTypes.entityCase("COALESCE(p.data_type, '')") + ` AS parameter_type_entity
FROM information_schema.routines r
LEFT JOIN information_schema.parameters p
    ON p.specific_schema = r.specific_schema AND p.specific_name = r.specific_name
    AND p.parameter_mode IN ('IN', 'INOUT')
WHERE r.routine_schema NOT IN (` + postgresSystemSchemas + `)
ORDER BY r.routine_schema, r.routine_name, p.ordinal_position`
}

// procCall renders CALL for procedures and SELECT * FROM for functions
func (postgresFlavor) procCall(signature []models.ProcFunctionSchema, args []models.ProcArgument) string {
	_, values := procArgs(signature, args)
	target := procTarget(query.Postgres, signature)
	if strings.EqualFold(signature[0].Type, constants.ProcTypeFunction) {
		return fmt.Sprintf("SELECT * FROM %s(%s)", target, strings.Join(values, ", "))
	}
	return fmt.Sprintf("CALL %s(%s)", target, strings.Join(values, ", "))
}

// lib/pq runs a parameterless batch through the simple protocol and returns
// every result set, so batches are sent whole
func (postgresFlavor) split(string) ([]statement, bool) {
	return nil, false
}
