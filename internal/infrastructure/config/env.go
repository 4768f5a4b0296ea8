package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
)

// LoadEnvFile loads a .env file if it exists. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = constants.DefaultEnvFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// Runtime is the process-level configuration read from OH_ variables
type Runtime struct {
	AdminPassword   string
	AdminPort       int
	WebPort         int
	WebRootURL      string
	SettingsFile    string
	DisableSecurity bool
	RebuildTimeout  time.Duration
	LogLevel        string
	LogDir          string
}

// FromEnv reads runtime configuration with defaults
func FromEnv() Runtime {
	return Runtime{
		AdminPassword:   os.Getenv(constants.EnvAdminPassword),
		AdminPort:       envInt(constants.EnvAdminPort, constants.DefaultAdminPort),
		WebPort:         envInt(constants.EnvWebPort, constants.DefaultWebPort),
		WebRootURL:      strings.TrimRight(os.Getenv(constants.EnvWebRootURL), "/"),
		SettingsFile:    envString(constants.EnvServerSettings, constants.DefaultSettingsFile),
		DisableSecurity: envBool(constants.EnvSecurityDisableCheck),
		RebuildTimeout:  time.Duration(envInt(constants.EnvRebuildTimeout, constants.DefaultRebuildTimeoutSec)) * time.Second,
		LogLevel:        envString(constants.EnvLogLevel, "info"),
		LogDir:          os.Getenv(constants.EnvLogDir),
	}
}

// Apply overlays runtime values onto loaded settings as system variables
func (r Runtime) Apply(settings *models.ServerSettings) {
	if r.AdminPassword != "" {
		settings.SetEnv(constants.EnvAdminPassword, r.AdminPassword, true)
	}
	if r.WebRootURL != "" {
		settings.SetEnv(constants.EnvWebRootURL, r.WebRootURL, true)
	}
	settings.SetEnv(constants.EnvWebPort, r.WebPort, true)
	settings.SetEnv(constants.EnvAdminPort, r.AdminPort, true)
	if r.DisableSecurity {
		if settings.Features == nil {
			settings.Features = map[string]any{}
		}
		settings.Features[constants.FeatureDisableSecurity] = true
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
