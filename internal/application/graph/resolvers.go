package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/omnihive/backend/internal/application/translator"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/query"
)

// resolved normalizes whatever fn returns before graphql-go completes it
func resolved(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v, err := fn(p)
		if err != nil {
			return nil, err
		}
		return normalize(v), nil
	}
}

func (b *Builder) selectResolver(worker, table string) graphql.FieldResolveFn {
	return resolved(func(p graphql.ResolveParams) (any, error) {
		filter, err := filterArg(p)
		if err != nil {
			return nil, err
		}
		order, err := orderArg(p)
		if err != nil {
			return nil, err
		}
		limit, err := intArg(p, ArgLimit)
		if err != nil {
			return nil, err
		}
		page, err := intArg(p, ArgPage)
		if err != nil {
			return nil, err
		}

		return b.tr.Select(p.Context, translator.SelectRequest{
			Worker:  worker,
			Table:   table,
			Fields:  requestedFields(p, p.Info.FieldASTs...),
			Filter:  filter,
			OrderBy: order,
			Limit:   limit,
			Page:    page,
		}, GraphContextFrom(p.Context))
	})
}

func (b *Builder) aggregateResolver(worker, table string) graphql.FieldResolveFn {
	return resolved(func(p graphql.ResolveParams) (any, error) {
		filter, err := filterArg(p)
		if err != nil {
			return nil, err
		}

		req := translator.AggregateRequest{Worker: worker, Table: table, Filter: filter}
		for _, f := range selections(p, p.Info.FieldASTs...) {
			name := f.Name.Value
			switch name {
			case "__typename":
			case translator.AggCount:
				req.Terms = append(req.Terms, translator.AggregateTerm{Function: translator.AggCount})
			case translator.AggSum, translator.AggAvg, translator.AggMin, translator.AggMax:
				for _, inner := range selections(p, f) {
					if inner.Name.Value == "__typename" {
						continue
					}
					req.Terms = append(req.Terms, translator.AggregateTerm{Function: name, Field: inner.Name.Value})
				}
			default:
				req.Dimensions = append(req.Dimensions, name)
			}
		}
		if groups, ok := p.Args[ArgGroupBy].([]any); ok {
			for _, g := range groups {
				if s, ok := g.(string); ok {
					req.GroupBy = append(req.GroupBy, s)
				}
			}
		}

		return b.tr.Aggregate(p.Context, req, GraphContextFrom(p.Context))
	})
}

func (b *Builder) insertResolver(worker, table string) graphql.FieldResolveFn {
	return resolved(func(p graphql.ResolveParams) (any, error) {
		items, _ := toSlice(p.Args[ArgRecords])
		records := make([]map[string]any, 0, len(items))
		for _, item := range items {
			rec, ok := item.(map[string]any)
			if !ok {
				return nil, apperrors.NewValidationError(ArgRecords, "every record must be an object")
			}
			records = append(records, rec)
		}
		return b.tr.Insert(p.Context, translator.InsertRequest{Worker: worker, Table: table, Records: records}, GraphContextFrom(p.Context))
	})
}

func (b *Builder) updateResolver(worker, table string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		filter, err := filterArg(p)
		if err != nil {
			return nil, err
		}
		values, _ := p.Args[ArgSet].(map[string]any)
		return b.tr.Update(p.Context, translator.UpdateRequest{Worker: worker, Table: table, Values: values, Filter: filter}, GraphContextFrom(p.Context))
	}
}

func (b *Builder) deleteResolver(worker, table string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		filter, err := filterArg(p)
		if err != nil {
			return nil, err
		}
		return b.tr.Delete(p.Context, translator.DeleteRequest{Worker: worker, Table: table, Filter: filter}, GraphContextFrom(p.Context))
	}
}

// procedureResolver maps graph argument names back to database parameter names
func (b *Builder) procedureResolver(worker, key string, params map[string]string) graphql.FieldResolveFn {
	return resolved(func(p graphql.ResolveParams) (any, error) {
		args := make(map[string]any, len(p.Args))
		for name, v := range p.Args {
			if dbName, ok := params[name]; ok {
				args[dbName] = v
			}
		}
		return b.tr.Procedure(p.Context, translator.ProcedureRequest{Worker: worker, Name: key, Args: args}, GraphContextFrom(p.Context))
	})
}

// customSQLResolver returns one { recordset } entry per result set
func (b *Builder) customSQLResolver(worker string) graphql.FieldResolveFn {
	return resolved(func(p graphql.ResolveParams) (any, error) {
		payload, _ := p.Args[ArgEncryptedSQL].(string)
		sets, err := b.tr.CustomSQL(p.Context, translator.CustomSQLRequest{Worker: worker, SQL: payload}, GraphContextFrom(p.Context))
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(sets))
		for _, rows := range sets {
			out = append(out, map[string]any{RecordsetField: rows})
		}
		return out, nil
	})
}

func currentField(p graphql.ResolveParams) *ast.Field {
	if len(p.Info.FieldASTs) == 0 {
		return nil
	}
	return p.Info.FieldASTs[0]
}

// selections returns the fields selected under fields with fragments
// flattened and @skip/@include applied
func selections(p graphql.ResolveParams, fields ...*ast.Field) []*ast.Field {
	var out []*ast.Field
	visited := make(map[string]bool)
	for _, f := range fields {
		if f != nil {
			collect(p, f.SelectionSet, &out, visited)
		}
	}
	return out
}

func collect(p graphql.ResolveParams, set *ast.SelectionSet, out *[]*ast.Field, visited map[string]bool) {
	if set == nil {
		return
	}
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			if included(p, s.Directives) {
				*out = append(*out, s)
			}
		case *ast.InlineFragment:
			if included(p, s.Directives) {
				collect(p, s.SelectionSet, out, visited)
			}
		case *ast.FragmentSpread:
			name := s.Name.Value
			if !included(p, s.Directives) || visited[name] {
				continue
			}
			visited[name] = true
			if def, ok := p.Info.Fragments[name].(*ast.FragmentDefinition); ok {
				collect(p, def.SelectionSet, out, visited)
			}
		}
	}
}

func included(p graphql.ResolveParams, dirs []*ast.Directive) bool {
	for _, d := range dirs {
		cond, ok := directiveIf(p, d)
		if !ok {
			continue
		}
		switch d.Name.Value {
		case "skip":
			if cond {
				return false
			}
		case "include":
			if !cond {
				return false
			}
		}
	}
	return true
}

func directiveIf(p graphql.ResolveParams, d *ast.Directive) (bool, bool) {
	for _, a := range d.Arguments {
		if a.Name.Value != "if" {
			continue
		}
		switch v := a.Value.(type) {
		case *ast.BooleanValue:
			return v.Value, true
		case *ast.Variable:
			b, _ := p.Info.VariableValues[v.Name.Value].(bool)
			return b, true
		}
	}
	return false, false
}

// requestedFields converts the selection under fields into translator
// fields. Object-typed selections become relations with their own children.
func requestedFields(p graphql.ResolveParams, fields ...*ast.Field) []translator.Field {
	var out []translator.Field
	index := make(map[string]int)
	for _, sel := range selections(p, fields...) {
		name := sel.Name.Value
		if strings.HasPrefix(name, "__") {
			continue
		}
		var children []translator.Field
		if sel.SelectionSet != nil && len(sel.SelectionSet.Selections) > 0 {
			children = requestedFields(p, sel)
		}
		if i, ok := index[name]; ok {
			out[i].Children = unionFields(out[i].Children, children)
			continue
		}
		index[name] = len(out)
		out = append(out, translator.Field{Name: name, Children: children})
	}
	return out
}

func unionFields(a, b []translator.Field) []translator.Field {
	index := make(map[string]int, len(a))
	for i, f := range a {
		index[f.Name] = i
	}
	for _, f := range b {
		if i, ok := index[f.Name]; ok {
			a[i].Children = unionFields(a[i].Children, f.Children)
			continue
		}
		index[f.Name] = len(a)
		a = append(a, f)
	}
	return a
}

// objectEntries reads an object argument keeping the written key order for
// literals; objects supplied through variables are read in sorted key order.
func objectEntries(p graphql.ResolveParams, name string) ([]string, map[string]any, error) {
	raw, ok := p.Args[name]
	if !ok || raw == nil {
		return nil, nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, apperrors.NewValidationError(name, "must be an object")
	}

	var keys []string
	if literal := objectLiteral(currentField(p), name); literal != nil {
		for _, f := range literal.Fields {
			keys = append(keys, f.Name.Value)
		}
	} else {
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}
	return keys, obj, nil
}

func objectLiteral(f *ast.Field, name string) *ast.ObjectValue {
	if f == nil {
		return nil
	}
	for _, a := range f.Arguments {
		if a.Name.Value == name {
			obj, _ := a.Value.(*ast.ObjectValue)
			return obj
		}
	}
	return nil
}

func filterArg(p graphql.ResolveParams) (translator.Filter, error) {
	var f translator.Filter
	keys, obj, err := objectEntries(p, ArgWhere)
	if err != nil {
		return f, err
	}
	for _, key := range keys {
		v, ok := obj[key].(string)
		if !ok {
			return f, apperrors.NewValidationError(ArgWhere, fmt.Sprintf("value of %s must be a string", key))
		}
		f.Where = append(f.Where, query.FilterEntry{Key: key, Value: v})
	}
	if expr, ok := p.Args[ArgWhereExpr].(string); ok {
		f.WhereExpr = expr
	}
	return f, nil
}

func orderArg(p graphql.ResolveParams) ([]translator.OrderTerm, error) {
	keys, obj, err := objectEntries(p, ArgOrderBy)
	if err != nil {
		return nil, err
	}
	out := make([]translator.OrderTerm, 0, len(keys))
	for _, key := range keys {
		dir, ok := obj[key].(string)
		if !ok {
			return nil, apperrors.NewValidationError(ArgOrderBy, fmt.Sprintf("direction of %s must be a string", key))
		}
		out = append(out, translator.OrderTerm{Field: key, Direction: dir})
	}
	return out, nil
}

func intArg(p graphql.ResolveParams, name string) (int, error) {
	v, ok := p.Args[name]
	if !ok || v == nil {
		return 0, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, apperrors.NewValidationError(name, err.Error())
	}
	return int(n), nil
}
