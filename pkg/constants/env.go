package constants

// Environment variables read at boot. Every key carries the OH_ prefix.
const (
	EnvPrefix               = "OH_"
	EnvFile                 = "OH_ENV_FILE"
	EnvAdminPassword        = "OH_ADMIN_PASSWORD"
	EnvAdminPort            = "OH_ADMIN_PORT"
	EnvWebPort              = "OH_WEB_PORT"
	EnvWebRootURL           = "OH_WEB_ROOT_URL"
	EnvServerSettings       = "OH_SERVER_SETTINGS"
	EnvSecurityDisableCheck = "OH_SECURITY_DISABLE_TOKEN_CHECK"
	EnvRebuildTimeout       = "OH_REBUILD_TIMEOUT"
	EnvLogLevel             = "OH_LOG_LEVEL"
	EnvLogDir               = "OH_LOG_DIR"
)

// Defaults applied when the matching variable is unset
const (
	DefaultAdminPort         = 7205
	DefaultWebPort           = 3001
	DefaultRebuildTimeoutSec = 120
	DefaultSettingsFile      = "hive.yaml"
	DefaultEnvFile           = ".env"
	TaskMaxRuntimeMins       = 30
)
