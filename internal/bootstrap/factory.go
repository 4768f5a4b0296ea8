// Package bootstrap turns server settings into a populated worker registry.
// Every worker package name maps to a constructor in a factory table; the
// host adds its own core workers after the declared ones.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/cache"
	"github.com/omnihive/backend/internal/infrastructure/config"
	"github.com/omnihive/backend/internal/infrastructure/database"
	"github.com/omnihive/backend/internal/infrastructure/encryption"
	"github.com/omnihive/backend/internal/infrastructure/logging"
	"github.com/omnihive/backend/internal/infrastructure/token"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/utils"
)

// Metadata keys read by the built-in packages
const (
	MetaClientID      = "clientId"
	MetaSecret        = "secret"
	MetaAudience      = "audience"
	MetaExpiresIn     = "expiresIn"
	MetaVerifyOn      = "verifyOn"
	MetaEncryptionKey = "encryptionKey"
	// MetaAuthenticate defaults to true: payloads are base64(iv):base64(ct||hmac)
	// under HKDF-derived keys. Set it to false for existing clients, which send
	// base64(iv):base64(ct) under the base64 encryptionKey itself.
	MetaAuthenticate  = "authenticate"
	MetaAddress       = "address"
	MetaUsername      = "username"
	MetaPassword      = "password"
	MetaDB            = "db"
	MetaKeyPrefix     = "keyPrefix"
	MetaUseTLS        = "useTls"
	MetaLogDir        = "logDir"
	MetaFileName      = "fileName"
	MetaMaxSize       = "maxSize"
	MetaConfigPath    = "configPath"
)

// Deps are handed to every constructor
type Deps struct {
	Runtime config.Runtime
	Logger  logrus.FieldLogger
	Source  services.SnapshotSource
	// Registry holds the workers built so far; task workers are built last
	Registry *registry.Registry
}

// Constructor builds one worker instance from its declaration
type Constructor func(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error)

type entry struct {
	kind constants.WorkerKind
	new  Constructor
}

// Factory builds registries from settings
type Factory struct {
	deps     Deps
	packages map[string]entry
}

// NewFactory creates a factory with every built-in package registered
func NewFactory(runtime config.Runtime, source services.SnapshotSource, logger logrus.FieldLogger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	f := &Factory{
		deps:     Deps{Runtime: runtime, Logger: logger, Source: source},
		packages: make(map[string]entry),
	}

	f.Register(constants.PackageMySQL, constants.WorkerKindDatabase, databaseCtor(database.NewMySQLWorker))
	f.Register(constants.PackageMSSQL, constants.WorkerKindDatabase, databaseCtor(database.NewMSSQLWorker))
	f.Register(constants.PackagePostgres, constants.WorkerKindDatabase, databaseCtor(database.NewPostgresWorker))
	f.Register(constants.PackageMemory, constants.WorkerKindCache, newMemoryCache)
	f.Register(constants.PackageRedis, constants.WorkerKindCache, newRedisCache)
	f.Register(constants.PackageAES, constants.WorkerKindEncryption, newAES)
	f.Register(constants.PackageJWT, constants.WorkerKindToken, newJWT)
	f.Register(constants.PackageConsole, constants.WorkerKindLog, newConsoleLog)
	f.Register(constants.PackageFile, constants.WorkerKindLog, newFileLog)
	f.Register(constants.PackageNull, constants.WorkerKindLog, newNullLog)
	f.Register(constants.PackageYAML, constants.WorkerKindConfig, configCtor(config.FormatYAML))
	f.Register(constants.PackageJSON, constants.WorkerKindConfig, configCtor(config.FormatJSON))
	f.Register(constants.PackageSystem, constants.WorkerKindRestFunction, newSystemEndpoint)
	f.Register(constants.PackageSQLScript, constants.WorkerKindTask, newScriptTask)
	return f
}

// Register adds or replaces the constructor for a package name. Embedding
// programs use it to plug in their own graph, REST and task functions.
func (f *Factory) Register(pkg string, kind constants.WorkerKind, c Constructor) {
	f.packages[pkg] = entry{kind: kind, new: c}
}

// Build constructs and initializes every enabled worker in settings, then
// adds the core workers. It has the services.RegistryFactory signature.
//
// A database worker whose Init fails is still registered: its introspection
// then fails in isolation. Any other construction failure fails the build.
func (f *Factory) Build(ctx context.Context, settings *models.ServerSettings) (*registry.Registry, error) {
	reg := registry.New()
	deps := f.deps
	deps.Registry = reg

	var workers []models.WorkerConfig
	if settings != nil {
		workers = append(workers, settings.Workers...)
	}
	// tasks may reference any other worker
	sort.SliceStable(workers, func(i, j int) bool {
		return f.kindOf(workers[i]) != constants.WorkerKindTask && f.kindOf(workers[j]) == constants.WorkerKindTask
	})

	for _, cfg := range workers {
		if !cfg.Enabled {
			f.deps.Logger.WithField("worker", cfg.Name).Debug("worker disabled, skipping")
			continue
		}
		c, err := f.build(ctx, cfg, deps)
		if err != nil {
			closeAll(reg, f.deps.Logger)
			return nil, err
		}
		if _, err := reg.Register(c); err != nil {
			closeAll(reg, f.deps.Logger)
			return nil, apperrors.NewConfigurationError("%s", err.Error())
		}
	}

	f.addCore(reg)
	f.deps.Logger.WithField("workers", reg.Len()).Info("🧩 Worker registry built")
	return reg, nil
}

func (f *Factory) kindOf(cfg models.WorkerConfig) constants.WorkerKind {
	if cfg.Kind != "" {
		return cfg.Kind
	}
	return f.packages[cfg.Package].kind
}

func (f *Factory) build(ctx context.Context, cfg models.WorkerConfig, deps Deps) (models.Capability, error) {
	if cfg.Name == "" {
		return models.Capability{}, apperrors.NewConfigurationError("worker of package %q has no name", cfg.Package)
	}
	e, ok := f.packages[cfg.Package]
	if !ok {
		return models.Capability{}, apperrors.NewConfigurationError("worker %s: unknown package %q", cfg.Name, cfg.Package)
	}
	kind := f.kindOf(cfg)
	if kind != e.kind {
		return models.Capability{}, apperrors.NewConfigurationError("worker %s: package %s provides %s, not %s", cfg.Name, cfg.Package, e.kind, kind)
	}

	logger := f.deps.Logger.WithFields(logrus.Fields{"worker": cfg.Name, "package": cfg.Package})
	instance, err := e.new(ctx, cfg, deps)
	if err != nil {
		return models.Capability{}, apperrors.NewConfigurationError("worker %s: %s", cfg.Name, err.Error())
	}

	if initer, ok := instance.(ports.Initializer); ok {
		if err := initer.Init(ctx); err != nil {
			if kind != constants.WorkerKindDatabase {
				return models.Capability{}, apperrors.NewConfigurationError("worker %s failed to initialize: %s", cfg.Name, err.Error())
			}
			logger.WithError(err).Error("❌ Database worker failed to initialize")
		}
	}

	logger.WithField("kind", kind).Debug("worker built")
	return models.Capability{
		Kind:      kind,
		Name:      cfg.Name,
		Enabled:   true,
		IsDefault: cfg.IsDefault,
		IsCore:    cfg.Package == constants.PackageSystem,
		Instance:  instance,
		Metadata:  cfg.Metadata,
	}, nil
}

// addCore registers the host's own workers unless settings already declared
// a worker with the same name
func (f *Factory) addCore(reg *registry.Registry) {
	core := []models.Capability{
		{Kind: constants.WorkerKindRestFunction, Name: constants.CoreWorkerAccessToken, Instance: services.NewAccessTokenEndpoint(f.deps.Source)},
		{Kind: constants.WorkerKindRestFunction, Name: constants.CoreWorkerRegister, Instance: services.NewRegisterEndpoint(f.deps.Source)},
		{Kind: constants.WorkerKindLog, Name: constants.CoreWorkerLog, Instance: logging.NewConsoleWorker(f.deps.Logger)},
		{Kind: constants.WorkerKindConfig, Name: constants.CoreWorkerConfig, Instance: config.NewFileWorker(f.deps.Runtime.SettingsFile)},
	}
	for _, c := range core {
		c.Enabled = true
		c.IsCore = true
		if added, _ := reg.Register(c); !added {
			f.deps.Logger.WithField("worker", c.Name).Debug("core worker overridden by settings")
		}
	}
}

func closeAll(reg *registry.Registry, logger logrus.FieldLogger) {
	for _, c := range reg.Capabilities() {
		if closer, ok := c.Instance.(ports.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.WithField("worker", c.Name).WithError(err).Warn("⚠️ Failed to close worker")
			}
		}
	}
}

type databaseNew func(name string, meta map[string]any, logger logrus.FieldLogger) *database.Worker

func databaseCtor(newWorker databaseNew) Constructor {
	return func(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
		return newWorker(cfg.Name, cfg.Metadata, deps.Logger), nil
	}
}

func newMemoryCache(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	return cache.NewMemoryWorker(), nil
}

func newRedisCache(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	address := utils.MetaString(cfg.Metadata, MetaAddress)
	if address == "" {
		return nil, fmt.Errorf("%s is required", MetaAddress)
	}
	return cache.NewRedisWorker(cache.RedisConfig{
		Address:   address,
		Username:  utils.MetaString(cfg.Metadata, MetaUsername),
		Password:  utils.MetaString(cfg.Metadata, MetaPassword),
		DB:        utils.MetaInt(cfg.Metadata, MetaDB, 0),
		KeyPrefix: utils.MetaString(cfg.Metadata, MetaKeyPrefix),
		UseTLS:    utils.MetaBool(cfg.Metadata, MetaUseTLS),
	}), nil
}

func newAES(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	authenticate := true
	if _, set := cfg.Metadata[MetaAuthenticate]; set {
		authenticate = utils.MetaBool(cfg.Metadata, MetaAuthenticate)
	}
	return encryption.NewAESWorker(utils.MetaString(cfg.Metadata, MetaEncryptionKey), authenticate)
}

func newJWT(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	verifyOn := true
	if _, set := cfg.Metadata[MetaVerifyOn]; set {
		verifyOn = utils.MetaBool(cfg.Metadata, MetaVerifyOn)
	}
	return token.NewJWTWorker(token.Config{
		ClientID:      utils.MetaString(cfg.Metadata, MetaClientID),
		Secret:        utils.MetaString(cfg.Metadata, MetaSecret),
		Audience:      utils.MetaString(cfg.Metadata, MetaAudience),
		ExpiresIn:     time.Duration(utils.MetaInt(cfg.Metadata, MetaExpiresIn, 3600)) * time.Second,
		VerifyOn:      verifyOn,
		HashAlgorithm: utils.MetaString(cfg.Metadata, services.MetaHashAlgorithm),
	})
}

func newConsoleLog(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	return logging.NewConsoleWorker(deps.Logger), nil
}

func newFileLog(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	dir := utils.MetaString(cfg.Metadata, MetaLogDir)
	if dir == "" {
		dir = deps.Runtime.LogDir
	}
	if dir == "" {
		return nil, fmt.Errorf("%s is required when %s is unset", MetaLogDir, constants.EnvLogDir)
	}
	name := utils.MetaString(cfg.Metadata, MetaFileName)
	if name == "" {
		name = cfg.Name + ".log"
	}
	return logging.NewFileWorker(logging.Config{
		LogDir:  dir,
		MaxSize: utils.MetaInt(cfg.Metadata, MetaMaxSize, 0),
	}, name), nil
}

func newNullLog(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	return logging.NullWorker{}, nil
}

func configCtor(format config.Format) Constructor {
	return func(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
		path := utils.MetaString(cfg.Metadata, MetaConfigPath)
		if path == "" {
			path = deps.Runtime.SettingsFile
		}
		return config.NewFileWorkerWithFormat(filepath.Clean(path), format), nil
	}
}

// newSystemEndpoint builds the system REST workers by name
func newSystemEndpoint(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	switch cfg.Name {
	case constants.CoreWorkerAccessToken:
		return services.NewAccessTokenEndpoint(deps.Source), nil
	case constants.CoreWorkerRegister:
		return services.NewRegisterEndpoint(deps.Source), nil
	}
	return nil, fmt.Errorf("no system worker named %s", cfg.Name)
}

func newScriptTask(ctx context.Context, cfg models.WorkerConfig, deps Deps) (any, error) {
	target := utils.MetaString(cfg.Metadata, database.MetaTaskDatabase)
	db, ok := registry.ResolveAs[ports.DatabaseWorker](deps.Registry, constants.WorkerKindDatabase, target)
	if !ok {
		return nil, apperrors.NewDatabaseWorkerRequiredError(target)
	}
	return database.NewScriptTask(db,
		utils.MetaString(cfg.Metadata, database.MetaTaskSQL),
		utils.MetaString(cfg.Metadata, database.MetaTaskSQLFile))
}

var _ services.RegistryFactory = (*Factory)(nil).Build
