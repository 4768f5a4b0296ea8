package query

import (
	"strings"
)

// Combinator joins the children of a Branch
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// Predicate is a node of a WHERE tree: either a Leaf or a Branch
type Predicate interface {
	isPredicate()
}

// Leaf compares one column. When Fragment is set it is appended raw after
// the column and Operator/Value are ignored.
type Leaf struct {
	Column   string
	Operator string
	Value    any
	Fragment string
}

// Branch combines child predicates
type Branch struct {
	Combinator Combinator
	Children   []Predicate
}

func (Leaf) isPredicate()   {}
func (Branch) isPredicate() {}

// Eq builds a bound equality leaf
func Eq(column string, value any) Leaf {
	return Leaf{Column: column, Operator: "=", Value: value}
}

// AllOf ANDs the non-nil predicates
func AllOf(preds ...Predicate) Predicate {
	return combine(And, preds)
}

// AnyOf ORs the non-nil predicates
func AnyOf(preds ...Predicate) Predicate {
	return combine(Or, preds)
}

func combine(c Combinator, preds []Predicate) Predicate {
	var children []Predicate
	for _, p := range preds {
		if p != nil {
			children = append(children, p)
		}
	}
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	}
	return Branch{Combinator: c, Children: children}
}

// binder accumulates parameters in render order
type binder struct {
	dialect Dialect
	params  []any
}

func (b *binder) bind(v any) string {
	b.params = append(b.params, v)
	return b.dialect.Placeholder(len(b.params))
}

// Render turns a predicate tree into SQL text. Nested branches with more than
// one child are parenthesized; the root is not.
func Render(d Dialect, p Predicate) (string, []any) {
	b := &binder{dialect: d}
	return b.render(p, true), b.params
}

func (b *binder) render(p Predicate, root bool) string {
	switch node := p.(type) {
	case Leaf:
		if node.Fragment != "" {
			return node.Column + " " + strings.TrimSpace(node.Fragment)
		}
		if node.Value == nil {
			switch node.Operator {
			case "=", "IS":
				return node.Column + " IS NULL"
			case "!=", "<>", "IS NOT":
				return node.Column + " IS NOT NULL"
			}
		}
		if list, ok := node.Value.([]any); ok {
			marks := make([]string, len(list))
			for i, v := range list {
				marks[i] = b.bind(v)
			}
			return node.Column + " " + node.Operator + " (" + strings.Join(marks, ", ") + ")"
		}
		return node.Column + " " + node.Operator + " " + b.bind(node.Value)
	case Branch:
		parts := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			if s := b.render(child, false); s != "" {
				parts = append(parts, s)
			}
		}
		out := strings.Join(parts, " "+string(node.Combinator)+" ")
		if !root && len(parts) > 1 {
			out = "(" + out + ")"
		}
		return out
	}
	return ""
}
