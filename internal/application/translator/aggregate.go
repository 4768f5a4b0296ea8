package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/query"
)

// Aggregate functions
const (
	AggCount = "count"
	AggSum   = "sum"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

// AggregateTerm is one requested aggregate. Field is empty for count.
type AggregateTerm struct {
	Function string
	Field    string
}

// AggregateRequest computes aggregates over one table, grouped by the
// requested dimension columns and any extra groupBy columns
type AggregateRequest struct {
	Worker     string
	Table      string
	Terms      []AggregateTerm
	Dimensions []string
	GroupBy    []string
	Filter     Filter
}

type aggregateColumn struct {
	function string
	field    string
	alias    string
}

// Aggregate returns one row per group shaped as
// {count, sum: {field}, avg: {field}, min: {field}, max: {field}, <dimension>}
func (t *Translator) Aggregate(ctx context.Context, req AggregateRequest, gctx models.GraphContext) ([]map[string]any, error) {
	o, err := t.prepare(ctx, req.Worker, req.Table, OpAggregate, gctx)
	if err != nil {
		return nil, err
	}

	const alias = "t0"
	b := query.From(o.dialect, o.table.QualifiedName).As(alias)
	log := t.logger.WithFields(logrus.Fields{"worker": o.worker, "table": o.table.Name})

	var cols []aggregateColumn
	for i, term := range req.Terms {
		fn := strings.ToLower(term.Function)
		name := fmt.Sprintf("a%d", i)
		switch fn {
		case AggCount:
			b.AddSelectRaw("COUNT(*)", name)
		case AggSum, AggAvg, AggMin, AggMax:
			col, ok := o.table.Column(term.Field)
			if !ok {
				log.WithField("field", term.Field).Debug("⚠️ Skipping aggregate over unknown field")
				continue
			}
			b.AddSelectRaw(strings.ToUpper(fn)+"("+o.dialect.Column(alias, col.ColumnNameDatabase)+")", name)
		default:
			return nil, apperrors.NewValidationError("function", "unsupported aggregate "+term.Function)
		}
		cols = append(cols, aggregateColumn{function: fn, field: term.Field, alias: name})
	}

	dims := make(map[string]string)
	grouped := make(map[string]bool)
	group := func(field string) {
		col, ok := o.table.Column(field)
		if !ok {
			log.WithField("field", field).Debug("⚠️ Skipping unknown group field")
			return
		}
		if grouped[col.ColumnNameDatabase] {
			return
		}
		grouped[col.ColumnNameDatabase] = true
		b.GroupBy(o.dialect.Column(alias, col.ColumnNameDatabase))
	}
	for i, field := range req.Dimensions {
		col, ok := o.table.Column(field)
		if !ok {
			log.WithField("field", field).Debug("⚠️ Skipping unknown dimension")
			continue
		}
		name := fmt.Sprintf("d%d", i)
		b.SelectAs(alias, col.ColumnNameDatabase, name)
		dims[field] = name
		group(field)
	}
	for _, field := range req.GroupBy {
		group(field)
	}

	if len(cols) == 0 && len(dims) == 0 {
		return []map[string]any{}, nil
	}

	pred, err := t.predicate(o, o.table, alias, req.Filter)
	if err != nil {
		return nil, err
	}
	b.Where(pred)

	sets, err := t.cachedQuery(ctx, o, gctx, b.Build())
	if err != nil {
		return nil, err
	}

	rows := firstSet(sets)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		shaped := make(map[string]any, len(cols)+len(dims))
		for _, c := range cols {
			if c.function == AggCount {
				shaped[AggCount] = row[c.alias]
				continue
			}
			bucket, _ := shaped[c.function].(map[string]any)
			if bucket == nil {
				bucket = make(map[string]any)
				shaped[c.function] = bucket
			}
			bucket[c.field] = row[c.alias]
		}
		for field, name := range dims {
			shaped[field] = row[name]
		}
		out = append(out, shaped)
	}
	return out, nil
}
