package expression

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/omnihive/backend/pkg/query"
)

// isNilNode checks if a node represents a null/nil value
// In expr-lang, null can be either a NilNode or an IdentifierNode with value "null", "nil", or "NULL"
func isNilNode(node ast.Node) bool {
	if _, ok := node.(*ast.NilNode); ok {
		return true
	}
	if id, ok := node.(*ast.IdentifierNode); ok {
		val := strings.ToLower(id.Value)
		return val == "null" || val == "nil"
	}
	return false
}

var flipped = map[string]string{">": "<", "<": ">", ">=": "<=", "<=": ">=", "=": "=", "!=": "!="}

// predicateWalker converts an expr AST to a predicate tree
type predicateWalker struct {
	resolve query.ColumnResolver
}

// ToPredicate converts a boolean expression such as
// `age > 18 && (name == 'Ann' || name == nil)` into a predicate tree with
// bound values. Identifiers are mapped to rendered columns through resolve.
func ToPredicate(expression string, resolve query.ColumnResolver) (query.Predicate, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression: %w", err)
	}
	w := &predicateWalker{resolve: resolve}
	return w.walk(tree.Node)
}

func (w *predicateWalker) walk(node ast.Node) (query.Predicate, error) {
	switch v := node.(type) {
	case *ast.BinaryNode:
		return w.visitBinary(v)
	case *ast.UnaryNode:
		return w.visitUnary(v)
	case *ast.CallNode:
		return w.visitCall(v)
	case *ast.IdentifierNode:
		// bare boolean column
		col, err := w.column(v)
		if err != nil {
			return nil, err
		}
		return query.Leaf{Column: col, Operator: "=", Value: true}, nil
	}
	return nil, fmt.Errorf("unsupported node type: %T", node)
}

func (w *predicateWalker) column(node ast.Node) (string, error) {
	id, ok := node.(*ast.IdentifierNode)
	if !ok {
		return "", fmt.Errorf("expected a column name, got %T", node)
	}
	col, ok := w.resolve(id.Value)
	if !ok {
		return "", fmt.Errorf("unknown column: %s", id.Value)
	}
	return col, nil
}

func literal(node ast.Node) (any, error) {
	switch v := node.(type) {
	case *ast.IntegerNode:
		return v.Value, nil
	case *ast.FloatNode:
		return v.Value, nil
	case *ast.StringNode:
		return v.Value, nil
	case *ast.BoolNode:
		return v.Value, nil
	case *ast.ArrayNode:
		out := make([]any, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			lit, err := literal(n)
			if err != nil {
				return nil, err
			}
			out = append(out, lit)
		}
		return out, nil
	}
	if isNilNode(node) {
		return nil, nil
	}
	return nil, fmt.Errorf("expected a literal, got %T", node)
}

func (w *predicateWalker) visitBinary(node *ast.BinaryNode) (query.Predicate, error) {
	switch node.Operator {
	case "&&", "and", "||", "or":
		left, err := w.walk(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := w.walk(node.Right)
		if err != nil {
			return nil, err
		}
		if node.Operator == "&&" || node.Operator == "and" {
			return query.AllOf(left, right), nil
		}
		return query.AnyOf(left, right), nil
	case "in":
		return w.membership(node, "IN")
	}

	op := node.Operator
	if op == "==" {
		op = "="
	}
	if _, ok := flipped[op]; !ok {
		return nil, fmt.Errorf("unsupported operator: %s", node.Operator)
	}

	colNode, litNode := node.Left, node.Right
	if _, isIdent := colNode.(*ast.IdentifierNode); !isIdent || isNilNode(colNode) {
		colNode, litNode = node.Right, node.Left
		op = flipped[op]
	}

	col, err := w.column(colNode)
	if err != nil {
		return nil, err
	}
	val, err := literal(litNode)
	if err != nil {
		return nil, err
	}
	if val == nil && op != "=" && op != "!=" {
		return nil, fmt.Errorf("unsupported operator for null comparison: %s", node.Operator)
	}
	return query.Leaf{Column: col, Operator: op, Value: val}, nil
}

func (w *predicateWalker) membership(node *ast.BinaryNode, op string) (query.Predicate, error) {
	col, err := w.column(node.Left)
	if err != nil {
		return nil, err
	}
	val, err := literal(node.Right)
	if err != nil {
		return nil, err
	}
	list, ok := val.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("%s requires a non-empty array", strings.ToLower(op))
	}
	return query.Leaf{Column: col, Operator: op, Value: list}, nil
}

func (w *predicateWalker) visitUnary(node *ast.UnaryNode) (query.Predicate, error) {
	if node.Operator != "not" && node.Operator != "!" {
		return nil, fmt.Errorf("unsupported unary operator: %s", node.Operator)
	}
	if bin, ok := node.Node.(*ast.BinaryNode); ok && bin.Operator == "in" {
		return w.membership(bin, "NOT IN")
	}
	if id, ok := node.Node.(*ast.IdentifierNode); ok {
		col, err := w.column(id)
		if err != nil {
			return nil, err
		}
		return query.Leaf{Column: col, Operator: "=", Value: false}, nil
	}
	return nil, fmt.Errorf("negation is only supported for columns and 'in'")
}

func (w *predicateWalker) visitCall(node *ast.CallNode) (query.Predicate, error) {
	callee, ok := node.Callee.(*ast.IdentifierNode)
	if !ok {
		return nil, fmt.Errorf("unsupported callee type: %T", node.Callee)
	}
	if len(node.Arguments) != 2 {
		return nil, fmt.Errorf("%s requires 2 arguments", callee.Value)
	}
	col, err := w.column(node.Arguments[0])
	if err != nil {
		return nil, err
	}
	strArg, ok := node.Arguments[1].(*ast.StringNode)
	if !ok {
		return nil, fmt.Errorf("%s second argument must be a string", callee.Value)
	}

	switch strings.ToUpper(callee.Value) {
	case "CONTAINS":
		return query.Leaf{Column: col, Operator: "LIKE", Value: "%" + strArg.Value + "%"}, nil
	case "STARTS_WITH":
		return query.Leaf{Column: col, Operator: "LIKE", Value: strArg.Value + "%"}, nil
	case "ENDS_WITH":
		return query.Leaf{Column: col, Operator: "LIKE", Value: "%" + strArg.Value}, nil
	}
	return nil, fmt.Errorf("unsupported function: %s", callee.Value)
}
