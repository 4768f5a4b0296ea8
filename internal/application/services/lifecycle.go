package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/graph"
	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/application/translator"
	"github.com/omnihive/backend/internal/domain"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/pkg/constants"
	"github.com/omnihive/backend/pkg/expression"
	apperrors "github.com/omnihive/backend/pkg/errors"
)

// SettingsLoader returns the settings a rebuild starts from
type SettingsLoader func(ctx context.Context) (*models.ServerSettings, error)

// RegistryFactory constructs and initializes the workers declared in settings
type RegistryFactory func(ctx context.Context, settings *models.ServerSettings) (*registry.Registry, error)

// Listener is a mounted web surface
type Listener interface {
	Close(ctx context.Context) error
}

// Mounter binds a web surface for a finished build
type Mounter func(ctx context.Context, b *Build) (Listener, error)

// GraphEndpoint is one compiled database graph
type GraphEndpoint struct {
	Worker     string
	Path       string
	Executable *graph.Executable
}

// RestEndpoint is one mounted REST function
type RestEndpoint struct {
	Name   string
	Base   string
	Path   string
	Worker ports.RestEndpointWorker
}

// Build is everything one successful rebuild produced
type Build struct {
	Snapshot   *appctx.Snapshot
	Graphs     []GraphEndpoint
	Functions  *graph.Executable
	Rest       []RestEndpoint
	SystemRest []RestEndpoint
	Swagger    map[string]any
	Failures   error
}

// LifecycleOptions wires the lifecycle manager
type LifecycleOptions struct {
	Settings SettingsLoader
	Factory  RegistryFactory
	Mount    Mounter
	Bus      *EventBus
	Metrics  *metrics.Metrics
	Timeout  time.Duration
	Logger   logrus.FieldLogger
}

// Lifecycle drives the server through Offline, Rebuilding, Online and Admin.
// Rebuilds are serialized; the published snapshot is swapped as a whole.
type Lifecycle struct {
	app     *appctx.AppContext
	opts    LifecycleOptions
	sm      *domain.ServerStateMachine
	logger  logrus.FieldLogger
	rebuild sync.Mutex

	mu       sync.RWMutex
	status   domain.ServerStatus
	lastErr  string
	listener Listener
	build    *Build
}

// NewLifecycle creates a lifecycle manager in the Offline state
func NewLifecycle(app *appctx.AppContext, opts LifecycleOptions) *Lifecycle {
	if opts.Logger == nil {
		opts.Logger = app.Logger
	}
	if opts.Bus == nil {
		opts.Bus = NewEventBus(opts.Logger)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(constants.DefaultRebuildTimeoutSec) * time.Second
	}
	return &Lifecycle{
		app:    app,
		opts:   opts,
		sm:     domain.NewServerStateMachine(),
		logger: opts.Logger,
		status: domain.ServerStatusOffline,
	}
}

// Bus returns the event bus status changes are published on
func (l *Lifecycle) Bus() *EventBus {
	return l.opts.Bus
}

// Status returns the current state and the last rebuild error
func (l *Lifecycle) Status() events.StatusPayload {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return events.StatusPayload{ServerStatus: string(l.status), ServerError: l.lastErr}
}

// URLs returns the endpoints of the current build
func (l *Lifecycle) URLs() []models.RegisteredURL {
	return l.app.Snapshot().URLs
}

// Current returns the last successful build, or nil
func (l *Lifecycle) Current() *Build {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.build
}

// Start performs the first build
func (l *Lifecycle) Start(ctx context.Context) error {
	return l.run(ctx, domain.TransitionBuild)
}

// Refresh rebuilds from freshly loaded settings. The new web surface binds
// before the previous one closes.
func (l *Lifecycle) Refresh(ctx context.Context) error {
	return l.run(ctx, domain.TransitionRefresh)
}

func (l *Lifecycle) transition(ctx context.Context, action domain.ServerTransition, cause error) error {
	l.mu.Lock()
	next, err := l.sm.Transition(l.status, action)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	l.status = next
	l.lastErr = ""
	if cause != nil {
		l.lastErr = cause.Error()
	}
	payload := events.StatusPayload{ServerStatus: string(l.status), ServerError: l.lastErr}
	l.mu.Unlock()

	l.opts.Metrics.RecordStatus(payload.ServerStatus)
	if err := l.opts.Bus.Publish(ctx, events.ServerStatusChanged, payload); err != nil {
		l.logger.WithError(err).Warn("⚠️ Status subscriber failed")
	}
	return nil
}

func (l *Lifecycle) run(ctx context.Context, action domain.ServerTransition) error {
	l.rebuild.Lock()
	defer l.rebuild.Unlock()

	if err := l.transition(ctx, action, nil); err != nil {
		return err
	}
	l.logger.Info("🔧 Server rebuilding")
	started := time.Now()

	b, reg, err := l.assemble(ctx)
	if err == nil {
		l.app.Publish(b.Snapshot)
		var next Listener
		if l.opts.Mount != nil {
			next, err = l.opts.Mount(ctx, b)
		}
		if err == nil {
			l.swap(ctx, next, b)
			l.opts.Metrics.RecordRebuild(time.Since(started), true)
			l.logger.WithField("duration", time.Since(started).String()).Info("✅ Server online")
			return l.transition(ctx, domain.TransitionComplete, b.Failures)
		}
		closeWorkers(reg, l.logger)
	}

	l.fail(ctx, err)
	l.opts.Metrics.RecordRebuild(time.Since(started), false)
	return err
}

// swap retires the previous listener and its workers once next is serving
func (l *Lifecycle) swap(ctx context.Context, next Listener, b *Build) {
	l.mu.Lock()
	prev, prevBuild := l.listener, l.build
	l.listener, l.build = next, b
	l.mu.Unlock()

	if prev != nil {
		if err := prev.Close(ctx); err != nil {
			l.logger.WithError(err).Warn("⚠️ Previous listener did not close cleanly")
		}
	}
	if prevBuild != nil {
		closeWorkers(prevBuild.Snapshot.Registry, l.logger)
	}
}

// fail takes the Admin path: the web surface is closed and only the admin
// listener keeps serving
func (l *Lifecycle) fail(ctx context.Context, cause error) {
	l.logger.WithError(cause).Error("❌ Server rebuild failed, entering admin mode")

	l.mu.Lock()
	prev, prevBuild := l.listener, l.build
	l.listener, l.build = nil, nil
	l.mu.Unlock()

	if prev != nil {
		if err := prev.Close(ctx); err != nil {
			l.logger.WithError(err).Warn("⚠️ Listener did not close cleanly")
		}
	}
	if prevBuild != nil {
		closeWorkers(prevBuild.Snapshot.Registry, l.logger)
	}

	settings := l.app.Snapshot().Settings
	l.app.Publish(appctx.NewSnapshot(nil, settings, nil, nil))
	if err := l.transition(ctx, domain.TransitionFail, cause); err != nil {
		l.logger.WithError(err).Error("❌ Admin transition rejected")
	}
}

// Shutdown closes the web surface and every worker
func (l *Lifecycle) Shutdown(ctx context.Context) error {
	l.rebuild.Lock()
	defer l.rebuild.Unlock()

	l.mu.Lock()
	prev, prevBuild := l.listener, l.build
	l.listener, l.build = nil, nil
	l.mu.Unlock()

	var result *multierror.Error
	if prev != nil {
		if err := prev.Close(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if prevBuild != nil {
		closeWorkers(prevBuild.Snapshot.Registry, l.logger)
	}
	return result.ErrorOrNil()
}

// assemble loads settings and workers, then introspects every database
// worker concurrently. A failing worker is logged and left out; the build
// only fails when no database worker succeeded or the timeout expired.
func (l *Lifecycle) assemble(parent context.Context) (*Build, *registry.Registry, error) {
	ctx, cancel := context.WithTimeout(parent, l.opts.Timeout)
	defer cancel()

	if l.opts.Settings == nil || l.opts.Factory == nil {
		return nil, nil, apperrors.NewConfigurationError("lifecycle requires a settings loader and a worker factory")
	}
	settings, err := l.opts.Settings(ctx)
	if err != nil {
		return nil, nil, err
	}
	reg, err := l.opts.Factory(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	if err := requireCapabilities(reg, settings); err != nil {
		closeWorkers(reg, l.logger)
		return nil, nil, err
	}

	schemas, failures := l.introspect(ctx, reg)
	if ctx.Err() != nil {
		closeWorkers(reg, l.logger)
		return nil, nil, fmt.Errorf("rebuild exceeded %s: %w", l.opts.Timeout, ctx.Err())
	}

	builder := graph.NewBuilder(translator.New(l.app, l.logger), l.logger)

	b := &Build{}
	fnSchema, err := builder.BuildFunctions(registry.AllAs[ports.GraphFunctionWorker](reg, constants.WorkerKindGraphFunction))
	if err != nil {
		closeWorkers(reg, l.logger)
		return nil, nil, err
	}
	if len(fnSchema.QueryFields()) > 0 {
		if b.Functions, err = fnSchema.Compile(); err != nil {
			closeWorkers(reg, l.logger)
			return nil, nil, err
		}
	}

	routes := make(map[string]string)
	built := make(map[string]*models.ConnectionSchema, len(schemas))
	for _, name := range sortedKeys(schemas) {
		endpoint, err := l.buildEndpoint(reg, builder, fnSchema, name, schemas[name], routes)
		if err != nil {
			failures = multierror.Append(failures, err)
			l.reportWorkerFailure(reg, name, err)
			continue
		}
		built[name] = schemas[name]
		b.Graphs = append(b.Graphs, endpoint)
	}

	if len(b.Graphs) == 0 {
		closeWorkers(reg, l.logger)
		return nil, nil, fmt.Errorf("no database worker could be built: %w", failures.ErrorOrNil())
	}

	mounted := make(map[string]string)
	for _, c := range reg.All(constants.WorkerKindRestFunction) {
		w, ok := c.Instance.(ports.RestEndpointWorker)
		if !ok {
			continue
		}
		route := strings.Trim(w.Route(), "/")
		key := w.Method() + " " + route
		if c.IsCore {
			key = "core " + key
		}
		if owner, taken := mounted[key]; taken {
			err := apperrors.NewConflictError("rest route", owner, route)
			failures = multierror.Append(failures, err)
			l.logger.WithField("worker", c.Name).WithError(err).Error("❌ REST worker skipped")
			continue
		}
		mounted[key] = c.Name
		if c.IsCore {
			b.SystemRest = append(b.SystemRest, RestEndpoint{Name: c.Name, Base: constants.RouteAdminRest, Path: constants.RouteAdminRest + "/" + route, Worker: w})
			continue
		}
		b.Rest = append(b.Rest, RestEndpoint{Name: c.Name, Base: constants.RouteCustomRest, Path: constants.RouteCustomRest + "/" + route, Worker: w})
	}
	b.Swagger = MergeSwagger(settings, append(append([]RestEndpoint(nil), b.SystemRest...), b.Rest...))

	b.Failures = failures.ErrorOrNil()
	b.Snapshot = appctx.NewSnapshot(reg, settings, built, registeredURLs(settings, b))
	return b, reg, nil
}

func (l *Lifecycle) introspect(ctx context.Context, reg *registry.Registry) (map[string]*models.ConnectionSchema, *multierror.Error) {
	var (
		mu       sync.Mutex
		failures *multierror.Error
		g        errgroup.Group
	)
	schemas := make(map[string]*models.ConnectionSchema)

	for _, db := range registry.AllAs[ports.DatabaseWorker](reg, constants.WorkerKindDatabase) {
		db := db
		g.Go(func() error {
			schema, err := db.Instance.GetSchema(ctx)
			if err == nil && schema == nil {
				err = errors.New("worker returned no schema")
			}
			if err != nil && !apperrors.IsSchemaRetrieval(err) {
				err = apperrors.NewSchemaRetrievalError(db.Name, "introspection failed", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = multierror.Append(failures, err)
				l.reportWorkerFailure(reg, db.Name, err)
				return nil
			}
			schema.WorkerName = db.Name
			schemas[db.Name] = schema
			l.logger.WithFields(logrus.Fields{
				"worker":     db.Name,
				"columns":    len(schema.Tables),
				"parameters": len(schema.ProcFunctions),
			}).Info("📦 Schema loaded")
			return nil
		})
	}
	_ = g.Wait()
	return schemas, failures
}

func (l *Lifecycle) buildEndpoint(reg *registry.Registry, builder *graph.Builder, fnSchema *graph.Schema, name string, schema *models.ConnectionSchema, routes map[string]string) (GraphEndpoint, error) {
	route := name
	if db, ok := registry.ResolveAs[ports.DatabaseSettings](reg, constants.WorkerKindDatabase, name); ok && db.URLRoute() != "" {
		route = strings.Trim(db.URLRoute(), "/")
	}
	path := "/" + route + "/" + constants.DefaultBuilderRoute
	if reservedRoute(route) {
		return GraphEndpoint{}, apperrors.NewConflictError("endpoint", "reserved", path)
	}
	if owner, taken := routes[path]; taken {
		return GraphEndpoint{}, apperrors.NewConflictError("endpoint", owner, path)
	}

	dbSchema, err := builder.BuildDatabase(name, schema)
	if err != nil {
		return GraphEndpoint{}, err
	}
	merged, err := graph.Merge(dbSchema, fnSchema)
	if err != nil {
		return GraphEndpoint{}, err
	}
	exec, err := merged.Compile()
	if err != nil {
		return GraphEndpoint{}, apperrors.NewInternalError(fmt.Sprintf("graph schema for %s is invalid", name), err)
	}

	routes[path] = name
	return GraphEndpoint{Worker: name, Path: path, Executable: exec}, nil
}

// requireCapabilities fails the build when a mandatory capability is absent:
// a database worker always, and a token worker unless security is disabled
func requireCapabilities(reg *registry.Registry, settings *models.ServerSettings) error {
	if _, ok := reg.Resolve(constants.WorkerKindDatabase); !ok {
		return apperrors.NewConfigurationError("a database worker is required")
	}
	if settings != nil {
		if err := expression.NewFeatureFlags(settings.Features).Validate(); err != nil {
			return apperrors.NewConfigurationError("%v", err)
		}
	}
	if securityDisabled(settings) {
		return nil
	}
	if _, ok := reg.Resolve(constants.WorkerKindToken); !ok {
		return apperrors.NewConfigurationError("a token worker is required unless %s is set", constants.FeatureDisableSecurity)
	}
	return nil
}

// securityDisabled only honours a literal true; expression flags are
// evaluated per request by the gate
func securityDisabled(settings *models.ServerSettings) bool {
	if settings == nil {
		return false
	}
	v, _ := settings.Features[constants.FeatureDisableSecurity].(bool)
	return v
}

// reportWorkerFailure writes to the ambient logger and the resolved log worker
func (l *Lifecycle) reportWorkerFailure(reg *registry.Registry, worker string, err error) {
	l.opts.Metrics.RecordWorkerFailure(worker)
	l.logger.WithField("worker", worker).WithError(err).Error("❌ Database worker skipped")
	if lw, ok := registry.ResolveAs[ports.LogWorker](reg, constants.WorkerKindLog); ok {
		lw.Write(ports.LogLevelError, fmt.Sprintf("database worker %s skipped: %v", worker, err))
	}
}

// reservedRoute reports whether a database route would shadow a host route
func reservedRoute(route string) bool {
	first := strings.SplitN(route, "/", 2)[0]
	return first == strings.Trim(constants.RouteAdminRoot, "/") || first == "custom" || first == strings.Trim(constants.RouteMetrics, "/")
}

func registeredURLs(settings *models.ServerSettings, b *Build) []models.RegisteredURL {
	root, _ := settings.Env(constants.EnvWebRootURL).(string)
	root = strings.TrimRight(root, "/")

	var out []models.RegisteredURL
	for _, g := range b.Graphs {
		out = append(out, models.RegisteredURL{Path: root + g.Path, Type: models.URLTypeGraphDatabase, Metadata: map[string]any{"worker": g.Worker}})
	}
	if b.Functions != nil {
		out = append(out, models.RegisteredURL{Path: root + constants.RouteCustomGraph, Type: models.URLTypeGraphFunction})
	}
	for _, r := range b.Rest {
		out = append(out, models.RegisteredURL{Path: root + r.Path, Type: models.URLTypeRestFunction, Metadata: map[string]any{"method": r.Worker.Method(), "worker": r.Name}})
	}
	for _, r := range b.SystemRest {
		out = append(out, models.RegisteredURL{Path: root + r.Path, Type: models.URLTypeSystemRest, Metadata: map[string]any{"method": r.Worker.Method(), "worker": r.Name}})
	}
	if len(b.Rest)+len(b.SystemRest) > 0 {
		out = append(out, models.RegisteredURL{Path: root + constants.RouteSwaggerJSON, Type: models.URLTypeSwagger})
	}
	return out
}

func closeWorkers(reg *registry.Registry, logger logrus.FieldLogger) {
	if reg == nil {
		return
	}
	for _, c := range reg.Capabilities() {
		closer, ok := c.Instance.(ports.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.WithField("worker", c.Name).WithError(err).Warn("⚠️ Worker did not close cleanly")
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
