// Package appctx holds the explicit application context shared by the
// translator, the graph layer and the lifecycle manager.
package appctx

import (
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/expression"
)

// Snapshot is the immutable state one rebuild produces. It is replaced as a
// whole and never mutated after Publish.
type Snapshot struct {
	Registry *registry.Registry
	Settings *models.ServerSettings
	Flags    *expression.FeatureFlags
	Schemas  map[string]*models.ConnectionSchema
	URLs     []models.RegisteredURL

	indexes map[string]map[string]*models.TableIndex
}

// NewSnapshot indexes schemas and derives feature flags from settings
func NewSnapshot(reg *registry.Registry, settings *models.ServerSettings, schemas map[string]*models.ConnectionSchema, urls []models.RegisteredURL) *Snapshot {
	if reg == nil {
		reg = registry.New()
	}
	if settings == nil {
		settings = &models.ServerSettings{}
	}
	if schemas == nil {
		schemas = map[string]*models.ConnectionSchema{}
	}

	s := &Snapshot{
		Registry: reg,
		Settings: settings,
		Flags:    expression.NewFeatureFlags(settings.Features),
		Schemas:  schemas,
		URLs:     urls,
		indexes:  make(map[string]map[string]*models.TableIndex, len(schemas)),
	}
	for worker, schema := range schemas {
		s.indexes[worker] = schema.Index()
	}
	return s
}

// Schema returns the published schema of a database worker
func (s *Snapshot) Schema(worker string) (*models.ConnectionSchema, bool) {
	schema, ok := s.Schemas[worker]
	return schema, ok
}

// Table returns the index of one table of a database worker
func (s *Snapshot) Table(worker, table string) (*models.TableIndex, bool) {
	tables, ok := s.indexes[worker]
	if !ok {
		return nil, false
	}
	idx, ok := tables[table]
	return idx, ok
}

// Tables returns the table indexes of a worker sorted by name
func (s *Snapshot) Tables(worker string) []*models.TableIndex {
	tables := s.indexes[worker]
	out := make([]*models.TableIndex, 0, len(tables))
	for _, idx := range tables {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AppContext carries the logger and the current snapshot
type AppContext struct {
	Logger logrus.FieldLogger

	current atomic.Pointer[Snapshot]
}

// New creates a context with an empty snapshot
func New(logger logrus.FieldLogger) *AppContext {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	a := &AppContext{Logger: logger}
	a.current.Store(NewSnapshot(nil, nil, nil, nil))
	return a
}

// Snapshot returns the current snapshot; never nil
func (a *AppContext) Snapshot() *Snapshot {
	return a.current.Load()
}

// Publish swaps in a new snapshot atomically
func (a *AppContext) Publish(s *Snapshot) {
	if s != nil {
		a.current.Store(s)
	}
}
