// Package translator turns graph operations into parameterized SQL and runs
// them through the registered database workers. Every operation passes the
// security gate first.
package translator

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/expression"
	"github.com/omnihive/backend/pkg/query"
)

// Operation names used as the feature flag scope
const (
	OpSelect    = "select"
	OpAggregate = "aggregate"
	OpInsert    = "insert"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpProcedure = "procedure"
	OpCustomSQL = "customSql"
)

// Source yields the snapshot an operation runs against
type Source interface {
	Snapshot() *appctx.Snapshot
}

// Field is one requested output field, keyed by name in the result.
// Children are set for relation fields.
type Field struct {
	Name     string
	Children []Field
}

// OrderTerm sorts by one field
type OrderTerm struct {
	Field     string
	Direction string
}

// Filter selects rows either by raw fragments per key or by an expression
type Filter struct {
	Where     []query.FilterEntry
	WhereExpr string
}

// Empty reports whether the filter carries no condition at all
func (f Filter) Empty() bool {
	return len(f.Where) == 0 && f.WhereExpr == ""
}

// Translator runs graph operations against the current snapshot
type Translator struct {
	source Source
	logger logrus.FieldLogger
}

// New creates a translator reading snapshots from source
func New(source Source, logger logrus.FieldLogger) *Translator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Translator{source: source, logger: logger}
}

// operation is the resolved state shared by every translation
type operation struct {
	snap    *appctx.Snapshot
	worker  string
	db      ports.DatabaseWorker
	dialect query.Dialect
	table   *models.TableIndex
}

// prepare authorizes the call and resolves the database worker and table.
// table may be empty for operations that do not target one.
func (t *Translator) prepare(ctx context.Context, worker, table, op string, gctx models.GraphContext) (*operation, error) {
	snap := t.source.Snapshot()

	scope := expression.FlagScope{Worker: worker, Operation: op, Table: table}
	if err := Authorize(ctx, snap, gctx, scope, t.logger); err != nil {
		return nil, err
	}

	db, ok := registry.ResolveAs[ports.DatabaseWorker](snap.Registry, constants.WorkerKindDatabase, worker)
	if !ok {
		return nil, apperrors.NewDatabaseWorkerRequiredError(worker)
	}

	o := &operation{snap: snap, worker: worker, db: db, dialect: db.Dialect()}
	if table != "" {
		idx, ok := snap.Table(worker, table)
		if !ok {
			return nil, apperrors.NewNotFoundError("table", table)
		}
		o.table = idx
	}
	return o, nil
}

// rowLimit reads the per-worker cap when the worker exposes one
func (o *operation) rowLimit() int {
	if s, ok := o.db.(ports.DatabaseSettings); ok {
		return s.RowLimit()
	}
	return 0
}

// resolver maps filter keys of idx to quoted columns under alias
func (o *operation) resolver(idx *models.TableIndex, alias string) query.ColumnResolver {
	return func(key string) (string, bool) {
		col, ok := idx.Column(key)
		if !ok {
			return "", false
		}
		return o.dialect.Column(alias, col.ColumnNameDatabase), true
	}
}

// predicate builds the filter predicate, logging keys that matched no column
func (t *Translator) predicate(o *operation, idx *models.TableIndex, alias string, f Filter) (query.Predicate, error) {
	resolve := o.resolver(idx, alias)

	pred, skipped := query.ParseFilter(f.Where, resolve)
	for _, key := range skipped {
		t.logger.WithFields(logrus.Fields{"worker": o.worker, "table": idx.Name}).
			Debugf("⚠️ Ignoring unknown filter key %s", key)
	}
	for _, entry := range f.Where {
		fields := logrus.Fields{"worker": o.worker, "table": idx.Name, "key": entry.Key}
		if query.SuspiciousFragment(entry.Value) {
			t.logger.WithFields(fields).Warn("⚠️ Filter fragment contains statement separators or comments")
		}
		for _, fragment := range strings.Split(entry.Value, query.OrSeparator) {
			if _, _, ok := query.InspectFragment(fragment); !ok {
				t.logger.WithFields(fields).Debugf("filter fragment %q has no recognised operator", fragment)
			}
		}
	}

	if f.WhereExpr != "" {
		exprPred, err := expression.ToPredicate(f.WhereExpr, resolve)
		if err != nil {
			return nil, apperrors.NewValidationError("whereExpr", err.Error())
		}
		pred = query.AllOf(pred, exprPred)
	}
	return pred, nil
}

// firstSet returns the first result set or an empty one
func firstSet(sets [][]map[string]any) []map[string]any {
	if len(sets) == 0 {
		return []map[string]any{}
	}
	return sets[0]
}
