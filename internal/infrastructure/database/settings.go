package database

import (
	"strings"

	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/utils"
)

// Metadata keys understood by the database workers
const (
	MetaServerAddress       = "serverAddress"
	MetaServerPort          = "serverPort"
	MetaDatabaseName        = "databaseName"
	MetaUserName            = "userName"
	MetaPassword            = "password"
	MetaRequireSSL          = "requireSsl"
	MetaSSLCertPath         = "sslCertPath"
	MetaConnectionPoolLimit = "connectionPoolLimit"
	MetaSchemas             = "schemas"
	MetaIgnoreSchema        = "ignoreSchema"
	MetaSchemaSQLFile       = "getSchemaSqlFile"
	MetaProcFunctionSQLFile = "getProcFunctionSqlFile"
	MetaURLRoute            = "urlRoute"
	MetaRowLimit            = "rowLimit"
)

// Settings are the connection and introspection options of one database worker
type Settings struct {
	ServerAddress       string
	ServerPort          int
	DatabaseName        string
	UserName            string
	Password            string
	RequireSSL          bool
	SSLCertPath         string
	ConnectionPoolLimit int
	Schemas             []string
	IgnoreSchema        bool
	SchemaSQLFile       string
	ProcFunctionSQLFile string
	Route               string
	Limit               int
}

// ParseSettings reads database worker metadata. defaultPort applies when
// serverPort is unset; urlRoute falls back to the worker name.
func ParseSettings(workerName string, meta map[string]any, defaultPort int) Settings {
	s := Settings{
		ServerAddress:       utils.MetaString(meta, MetaServerAddress),
		ServerPort:          utils.MetaInt(meta, MetaServerPort, defaultPort),
		DatabaseName:        utils.MetaString(meta, MetaDatabaseName),
		UserName:            utils.MetaString(meta, MetaUserName),
		Password:            utils.MetaString(meta, MetaPassword),
		RequireSSL:          utils.MetaBool(meta, MetaRequireSSL),
		SSLCertPath:         utils.MetaString(meta, MetaSSLCertPath),
		ConnectionPoolLimit: utils.MetaInt(meta, MetaConnectionPoolLimit, 0),
		Schemas:             utils.MetaStrings(meta, MetaSchemas),
		IgnoreSchema:        utils.MetaBool(meta, MetaIgnoreSchema),
		SchemaSQLFile:       utils.MetaString(meta, MetaSchemaSQLFile),
		ProcFunctionSQLFile: utils.MetaString(meta, MetaProcFunctionSQLFile),
		Route:               strings.Trim(utils.MetaString(meta, MetaURLRoute), "/"),
		Limit:               utils.MetaInt(meta, MetaRowLimit, 0),
	}
	if s.ServerAddress == "" {
		s.ServerAddress = "localhost"
	}
	if s.Route == "" {
		s.Route = workerName
	}
	return s
}

// IncludesSchema reports whether rows from schema survive the schemas filter.
// An empty filter, a "*" entry or ignoreSchema keeps everything.
func (s Settings) IncludesSchema(schema string) bool {
	if s.IgnoreSchema || len(s.Schemas) == 0 {
		return true
	}
	for _, candidate := range s.Schemas {
		if candidate == constants.SchemaWildcard || strings.EqualFold(candidate, schema) {
			return true
		}
	}
	return false
}

// URLRoute is the path segment the graph endpoint for this worker mounts under
func (s Settings) URLRoute() string {
	return s.Route
}

// RowLimit caps select results; zero means unlimited
func (s Settings) RowLimit() int {
	return s.Limit
}
