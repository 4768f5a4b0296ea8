package translator

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/query"
)

// DeleteWithoutWhere is the message of the error raised for unfiltered deletes
const DeleteWithoutWhere = "Delete cannot have no where clause"

// InsertRequest inserts records into one table
type InsertRequest struct {
	Worker  string
	Table   string
	Records []map[string]any
}

// UpdateRequest sets values on the rows matching Filter
type UpdateRequest struct {
	Worker string
	Table  string
	Values map[string]any
	Filter Filter
}

// DeleteRequest removes the rows matching Filter
type DeleteRequest struct {
	Worker string
	Table  string
	Filter Filter
}

type assignment struct {
	col   models.TableSchema
	value any
}

// assignments maps input keys to columns by entity name, then database name.
// Unmapped keys are dropped.
func (t *Translator) assignments(o *operation, values map[string]any) ([]assignment, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]assignment, 0, len(keys))
	for _, key := range keys {
		col, ok := o.table.Column(key)
		if !ok {
			t.logger.WithFields(logrus.Fields{"worker": o.worker, "table": o.table.Name, "field": key}).
				Debug("⚠️ Dropping unmapped input key")
			continue
		}
		v, err := columnValue(key, values[key])
		if err != nil {
			return nil, err
		}
		out = append(out, assignment{col: col, value: v})
	}
	if len(out) == 0 {
		return nil, apperrors.NewValidationError("values", "no input key matches a column of "+o.table.Name)
	}
	return out, nil
}

// columnValue unwraps {raw: "<sql>"} into a verbatim SQL value
func columnValue(key string, v any) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	raw, ok := obj[constants.RawValueKey]
	if !ok {
		return nil, apperrors.NewValidationError(key, "object values must carry a raw key")
	}
	return query.RawValue(fmt.Sprint(raw)), nil
}

// entityRow re-keys a database row by entity names
func entityRow(idx *models.TableIndex, row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for _, col := range idx.Columns {
		if v, ok := row[col.ColumnNameDatabase]; ok {
			out[col.ColumnNameEntity] = v
		}
	}
	return out
}

// Insert writes each record and returns the inserted rows keyed by entity
// name. Dialects without RETURNING echo the input plus the generated identity.
func (t *Translator) Insert(ctx context.Context, req InsertRequest, gctx models.GraphContext) ([]map[string]any, error) {
	o, err := t.prepare(ctx, req.Worker, req.Table, OpInsert, gctx)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(req.Records))
	for _, record := range req.Records {
		set, err := t.assignments(o, record)
		if err != nil {
			return nil, err
		}

		b := query.Insert(o.dialect, o.table.QualifiedName)
		for _, a := range set {
			b.Set(a.col.ColumnNameDatabase, a.value)
		}

		if o.dialect.SupportsReturning() {
			qr := b.Returning().Build()
			sets, err := o.db.ExecuteQuery(ctx, qr.SQL, qr.Params...)
			if err != nil {
				return nil, err
			}
			for _, row := range firstSet(sets) {
				out = append(out, entityRow(o.table, row))
			}
			continue
		}

		qr := b.Build()
		res, err := o.db.ExecuteCommand(ctx, qr.SQL, qr.Params...)
		if err != nil {
			return nil, err
		}
		echo := make(map[string]any, len(set)+1)
		for _, a := range set {
			echo[a.col.ColumnNameEntity] = a.value
		}
		if id, ok := o.table.IdentityColumn(); ok {
			if _, given := echo[id.ColumnNameEntity]; !given {
				echo[id.ColumnNameEntity] = res.LastInsertID
			}
		}
		out = append(out, echo)
	}
	return out, nil
}

// Update sets values on matching rows and returns the affected row count
func (t *Translator) Update(ctx context.Context, req UpdateRequest, gctx models.GraphContext) (int64, error) {
	o, err := t.prepare(ctx, req.Worker, req.Table, OpUpdate, gctx)
	if err != nil {
		return 0, err
	}

	set, err := t.assignments(o, req.Values)
	if err != nil {
		return 0, err
	}

	pred, err := t.predicate(o, o.table, "", req.Filter)
	if err != nil {
		return 0, err
	}

	b := query.Update(o.dialect, o.table.QualifiedName)
	for _, a := range set {
		b.Set(a.col.ColumnNameDatabase, a.value)
	}
	b.Where(pred)
	if !b.HasWhere() {
		t.logger.WithFields(logrus.Fields{"worker": o.worker, "table": o.table.Name}).
			Warn("⚠️ Update without where clause touches every row")
	}

	qr := b.Build()
	res, err := o.db.ExecuteCommand(ctx, qr.SQL, qr.Params...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Delete removes matching rows and returns the affected row count. A filter
// that is empty or resolves to no known column is refused.
func (t *Translator) Delete(ctx context.Context, req DeleteRequest, gctx models.GraphContext) (int64, error) {
	o, err := t.prepare(ctx, req.Worker, req.Table, OpDelete, gctx)
	if err != nil {
		return 0, err
	}
	if req.Filter.Empty() {
		return 0, apperrors.NewDestructiveOperationError(DeleteWithoutWhere)
	}

	pred, err := t.predicate(o, o.table, "", req.Filter)
	if err != nil {
		return 0, err
	}
	if pred == nil {
		return 0, apperrors.NewDestructiveOperationError(DeleteWithoutWhere)
	}

	qr := query.Delete(o.dialect, o.table.QualifiedName).Where(pred).Build()
	res, err := o.db.ExecuteCommand(ctx, qr.SQL, qr.Params...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
