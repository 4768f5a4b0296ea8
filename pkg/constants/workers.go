package constants

// WorkerKind is the capability a worker provides
type WorkerKind string

const (
	WorkerKindDatabase      WorkerKind = "database"
	WorkerKindCache         WorkerKind = "cache"
	WorkerKindEncryption    WorkerKind = "encryption"
	WorkerKindToken         WorkerKind = "token"
	WorkerKindLog           WorkerKind = "log"
	WorkerKindConfig        WorkerKind = "config"
	WorkerKindGraphFunction WorkerKind = "graphFunction"
	WorkerKindRestFunction  WorkerKind = "restFunction"
	WorkerKindTask          WorkerKind = "task"
)

// Worker package names understood by the bootstrap factory table
const (
	PackageMySQL     = "mysql"
	PackageMSSQL     = "mssql"
	PackagePostgres  = "postgres"
	PackageMemory    = "memory"
	PackageRedis     = "redis"
	PackageAES       = "aes"
	PackageJWT       = "jwt"
	PackageConsole   = "console"
	PackageFile      = "file"
	PackageNull      = "null"
	PackageYAML      = "yaml"
	PackageJSON      = "json"
	PackageSystem    = "system"
	PackageSQLScript = "sqlScript"
)

// Core worker names added by the host itself
const (
	CoreWorkerAccessToken = "ohAccessToken"
	CoreWorkerRegister    = "ohRegister"
	CoreWorkerLog         = "ohLog"
	CoreWorkerConfig      = "ohConfig"
)

// Feature flag names
const (
	FeatureDisableSecurity = "disableSecurity"
)

// Cache modes carried in the x-omnihive-cache-type header
const (
	CacheModeNone        = "none"
	CacheModeFrom        = "from"
	CacheModeFromRefresh = "fromRefresh"
)
