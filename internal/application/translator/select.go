package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/query"
)

// SelectRequest reads rows of one table, with related rows joined in
type SelectRequest struct {
	Worker  string
	Table   string
	Fields  []Field
	Filter  Filter
	OrderBy []OrderTerm
	Limit   int
	Page    int
}

// selection is one planned output field
type selection struct {
	key      string
	column   string // generated SQL alias for scalar fields
	children []selection
}

// planner walks the requested field tree, adding columns and joins
type planner struct {
	t       *Translator
	o       *operation
	b       *query.Builder
	columns int
	tables  int
}

func (p *planner) nextColumn() string {
	p.columns++
	return fmt.Sprintf("c%d", p.columns-1)
}

func (p *planner) nextTable() string {
	p.tables++
	return fmt.Sprintf("t%d", p.tables-1)
}

func (p *planner) plan(idx *models.TableIndex, alias string, fields []Field) []selection {
	out := make([]selection, 0, len(fields))
	for _, f := range fields {
		if col, ok := idx.Column(f.Name); ok {
			name := p.nextColumn()
			p.b.SelectAs(alias, col.ColumnNameDatabase, name)
			out = append(out, selection{key: f.Name, column: name})
			continue
		}

		rel, ok := idx.Relation(f.Name)
		if !ok {
			p.t.logger.WithFields(logrus.Fields{"worker": p.o.worker, "table": idx.Name, "field": f.Name}).
				Debug("⚠️ Skipping unknown field")
			continue
		}
		target, ok := p.o.snap.Table(p.o.worker, rel.ColumnForeignKeyTableNameCamelCase)
		if !ok {
			p.t.logger.WithFields(logrus.Fields{"worker": p.o.worker, "table": idx.Name, "field": f.Name}).
				Debug("⚠️ Skipping relation to unknown table")
			continue
		}

		joined := p.nextTable()
		on := p.o.dialect.Column(alias, rel.ColumnNameDatabase) + " = " +
			p.o.dialect.Column(joined, rel.ColumnForeignKeyColumnName)
		p.b.Join("LEFT", target.QualifiedName, joined, on)
		out = append(out, selection{key: f.Name, children: p.plan(target, joined, f.Children)})
	}
	return out
}

// shape turns a flat row into the nested object described by sel.
// A relation whose columns are all NULL becomes nil.
func shape(row map[string]any, sel []selection) (map[string]any, bool) {
	out := make(map[string]any, len(sel))
	present := false
	for _, s := range sel {
		if s.column != "" {
			v := row[s.column]
			if v != nil {
				present = true
			}
			out[s.key] = v
			continue
		}
		child, ok := shape(row, s.children)
		if ok {
			present = true
			out[s.key] = child
		} else {
			out[s.key] = nil
		}
	}
	return out, present
}

// pageWindow applies the worker row cap and converts a 1-based page to an offset
func pageWindow(limit, page, rowLimit int) (int, int) {
	if rowLimit > 0 && (limit <= 0 || limit > rowLimit) {
		limit = rowLimit
	}
	offset := 0
	if page > 1 && limit > 0 {
		offset = (page - 1) * limit
	}
	return limit, offset
}

// Select runs a read over one table. Unknown fields are skipped.
func (t *Translator) Select(ctx context.Context, req SelectRequest, gctx models.GraphContext) ([]map[string]any, error) {
	o, err := t.prepare(ctx, req.Worker, req.Table, OpSelect, gctx)
	if err != nil {
		return nil, err
	}

	p := &planner{t: t, o: o}
	root := p.nextTable()
	p.b = query.From(o.dialect, o.table.QualifiedName).As(root)
	sel := p.plan(o.table, root, req.Fields)
	if len(sel) == 0 {
		return []map[string]any{}, nil
	}

	pred, err := t.predicate(o, o.table, root, req.Filter)
	if err != nil {
		return nil, err
	}
	p.b.Where(pred)

	for _, term := range req.OrderBy {
		col, ok := o.table.Column(term.Field)
		if !ok {
			t.logger.WithFields(logrus.Fields{"worker": o.worker, "table": o.table.Name, "field": term.Field}).
				Debug("⚠️ Skipping unknown order field")
			continue
		}
		p.b.OrderBy(o.dialect.Column(root, col.ColumnNameDatabase), strings.ToLower(term.Direction))
	}

	limit, offset := pageWindow(req.Limit, req.Page, o.rowLimit())
	p.b.Limit(limit).Offset(offset)

	sets, err := t.cachedQuery(ctx, o, gctx, p.b.Build())
	if err != nil {
		return nil, err
	}

	rows := firstSet(sets)
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		shaped, _ := shape(row, sel)
		out = append(out, shaped)
	}
	return out, nil
}
