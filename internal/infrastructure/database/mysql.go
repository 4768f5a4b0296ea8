package database

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/query"
)

var mysqlTypes = typeGroups{
	boolean: []string{"bit", "bool", "boolean"},
	number:  []string{"tinyint", "smallint", "mediumint", "int", "integer", "bigint", "year"},
	decimal: []string{"decimal", "numeric", "float", "double", "real"},
	date:    []string{"date", "datetime", "timestamp", "time"},
	text:    []string{"char", "varchar", "tinytext", "text", "mediumtext", "longtext", "enum", "set"},
}

const mysqlSystemSchemas = "'mysql', 'information_schema', 'performance_schema', 'sys'"

type mysqlFlavor struct {
	logger logrus.FieldLogger
}

// NewMySQLWorker creates a database worker for MySQL compatible servers
func NewMySQLWorker(name string, meta map[string]any, logger logrus.FieldLogger) *Worker {
	w := newWorker(name, &mysqlFlavor{}, meta, logger)
	w.flavor.(*mysqlFlavor).logger = w.logger
	return w
}

func (f *mysqlFlavor) dialect() query.Dialect { return query.MySQL }
func (f *mysqlFlavor) driverName() string     { return "mysql" }
func (f *mysqlFlavor) defaultPort() int       { return 3306 }

func (f *mysqlFlavor) dsn(workerName string, s Settings) (string, error) {
	if s.DatabaseName == "" {
		return "", fmt.Errorf("%s is required", MetaDatabaseName)
	}

	cfg := mysql.NewConfig()
	cfg.User = s.UserName
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.ServerAddress, strconv.Itoa(s.ServerPort))
	cfg.DBName = s.DatabaseName
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	if s.RequireSSL {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: s.ServerAddress,
		}
		if s.SSLCertPath != "" {
			pem, err := os.ReadFile(s.SSLCertPath)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", MetaSSLCertPath, err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(pem) {
				return "", fmt.Errorf("no certificates found in %s", s.SSLCertPath)
			}
			tlsConfig.RootCAs = pool
		}
		key := "hive-" + workerName
		if err := mysql.RegisterTLSConfig(key, tlsConfig); err != nil {
			return "", fmt.Errorf("register TLS config: %w", err)
		}
		cfg.TLSConfig = key
	}

	return cfg.FormatDSN(), nil
}

func (f *mysqlFlavor) tablesSQL() string {
	return `SELECT
    c.TABLE_SCHEMA AS schema_name,
    c.TABLE_NAME AS table_name,
    c.COLUMN_NAME AS column_name_database,
    c.DATA_TYPE AS column_type_database,
    CASE WHEN LOWER(c.COLUMN_TYPE) = 'tinyint(1)' THEN 'boolean' ELSE ` + mysqlTypes.entityCase("c.DATA_TYPE") + ` END AS column_type_entity,
    c.ORDINAL_POSITION AS column_position,
    CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS column_is_nullable,
    CASE WHEN c.EXTRA LIKE '%auto_increment%' THEN 1 ELSE 0 END AS column_is_identity,
    CASE WHEN c.COLUMN_KEY = 'PRI' THEN 1 ELSE 0 END AS column_is_primary_key,
    CASE WHEN k.REFERENCED_TABLE_NAME IS NULL THEN 0 ELSE 1 END AS column_is_foreign_key,
    COALESCE(k.REFERENCED_TABLE_NAME, '') AS column_foreign_key_table_name,
    COALESCE(k.REFERENCED_COLUMN_NAME, '') AS column_foreign_key_column_name
FROM information_schema.COLUMNS c
INNER JOIN information_schema.TABLES t
    ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME AND t.TABLE_TYPE = 'BASE TABLE'
LEFT JOIN information_schema.KEY_COLUMN_USAGE k
    ON k.TABLE_SCHEMA = c.TABLE_SCHEMA AND k.TABLE_NAME = c.TABLE_NAME
    AND k.COLUMN_NAME = c.COLUMN_NAME AND k.REFERENCED_TABLE_NAME IS NOT NULL
WHERE c.TABLE_SCHEMA NOT IN (` + mysqlSystemSchemas + `)
ORDER BY c.TABLE_SCHEMA, c.TABLE_NAME, c.ORDINAL_POSITION`
}

func (f *mysqlFlavor) procsSQL() string {
	return `SELECT
    r.ROUTINE_SCHEMA AS procfunc_schema,
    r.ROUTINE_NAME AS procfunc_name,
    r.ROUTINE_TYPE AS procfunc_type,
    COALESCE(p.ORDINAL_POSITION, 0) AS parameter_order,
    COALESCE(p.PARAMETER_NAME, '') AS parameter_name,
    COALESCE(p.DATA_TYPE, '') AS parameter_type_database,
    ` + mysqlTypes.entityCase("COALESCE(p.DATA_TYPE, '')") + ` AS parameter_type_entity
FROM information_schema.ROUTINES r
LEFT JOIN information_schema.PARAMETERS p
    ON p.SPECIFIC_SCHEMA = r.ROUTINE_SCHEMA AND p.SPECIFIC_NAME = r.ROUTINE_NAME AND p.ORDINAL_POSITION > 0
WHERE r.ROUTINE_SCHEMA NOT IN (` + mysqlSystemSchemas + `)
ORDER BY r.ROUTINE_SCHEMA, r.ROUTINE_NAME, p.ORDINAL_POSITION`
}

// procCall renders call name(args) for procedures and SELECT name(args) for functions
func (f *mysqlFlavor) procCall(signature []models.ProcFunctionSchema, args []models.ProcArgument) string {
	_, values := procArgs(signature, args)
	target := procTarget(query.MySQL, signature)
	if strings.EqualFold(signature[0].Type, constants.ProcTypeFunction) {
		return fmt.Sprintf("SELECT %s(%s) AS %s", target, strings.Join(values, ", "), query.MySQL.QuoteIdent(signature[0].Name))
	}
	return fmt.Sprintf("call %s(%s)", target, strings.Join(values, ", "))
}

// split parses the batch with the TiDB parser. Anything it cannot parse is
// sent to the server unchanged.
func (f *mysqlFlavor) split(sql string) ([]statement, bool) {
	nodes, _, err := parser.New().Parse(sql, "", "")
	if err != nil {
		if f.logger != nil {
			f.logger.Debugf("⚠️ Batch not split: %v", err)
		}
		return nil, false
	}

	stmts := make([]statement, 0, len(nodes))
	for _, node := range nodes {
		text := strings.TrimRight(strings.TrimSpace(node.Text()), ";")
		if text == "" {
			continue
		}
		stmts = append(stmts, statement{text: text, returnsRows: returnsRows(node)})
	}
	return stmts, len(stmts) > 0
}

func returnsRows(node ast.StmtNode) bool {
	switch node.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt, *ast.ShowStmt, *ast.ExplainStmt, *ast.CallStmt:
		return true
	}
	return false
}
