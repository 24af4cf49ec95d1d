// Package visitor provides AST traversal utilities used by the executor
// (to validate GROUP BY/aggregate usage) and the planner (to collect the
// table sources touched by a statement).
package visitor

import "github.com/latticedb/lattice/ast"

// Visitor is the interface for AST traversal.
type Visitor interface {
	Visit(node ast.Node) Visitor
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node ast.Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	walkChildren(v, node)
}

func walkChildren(v Visitor, node ast.Node) {
	switch n := node.(type) {
	case *ast.SelectStmt:
		for _, col := range n.Columns {
			Walk(v, col)
		}
		if n.From != nil {
			Walk(v, n.From)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}
		for _, expr := range n.GroupBy {
			Walk(v, expr)
		}
		if n.Having != nil {
			Walk(v, n.Having)
		}
		for _, ob := range n.OrderBy {
			Walk(v, ob.Expr)
		}

	case *ast.InsertStmt:
		Walk(v, n.Table)
		for _, row := range n.Values {
			for _, val := range row {
				Walk(v, val)
			}
		}

	case *ast.UpdateStmt:
		Walk(v, n.Table)
		for _, ue := range n.Set {
			Walk(v, ue.Expr)
		}
		if n.Where != nil {
			Walk(v, n.Where)
		}

	case *ast.DeleteStmt:
		Walk(v, n.Table)
		if n.Where != nil {
			Walk(v, n.Where)
		}

	case *ast.BinaryExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)

	case *ast.UnaryExpr:
		Walk(v, n.Operand)

	case *ast.ParenExpr:
		Walk(v, n.Expr)

	case *ast.FuncExpr:
		if n.Arg != nil {
			Walk(v, n.Arg)
		}

	case *ast.InExpr:
		Walk(v, n.Expr)
		for _, val := range n.List {
			Walk(v, val)
		}

	case *ast.LikeExpr:
		Walk(v, n.Expr)
		Walk(v, n.Pattern)

	case *ast.IsExpr:
		Walk(v, n.Expr)

	case *ast.ColName:
		// leaf node, no children

	case *ast.AliasedExpr:
		Walk(v, n.Expr)

	case *ast.AliasedTableExpr:
		Walk(v, n.Expr)

	case *ast.JoinExpr:
		Walk(v, n.Left)
		Walk(v, n.Right)
		if n.On != nil {
			Walk(v, n.On)
		}

	case *ast.CreateTableStmt:
		Walk(v, n.Table)

	case *ast.DropTableStmt:
		Walk(v, n.Table)

	case *ast.CreateIndexStmt:
		Walk(v, n.Table)

	case *ast.ExplainStmt:
		Walk(v, n.Stmt)
	}
}

// WalkFunc is a convenience wrapper that calls a function for each node.
func WalkFunc(node ast.Node, fn func(ast.Node) bool) {
	Walk(&funcVisitor{fn: fn}, node)
}

type funcVisitor struct {
	fn func(ast.Node) bool
}

func (v *funcVisitor) Visit(node ast.Node) Visitor {
	if v.fn(node) {
		return v
	}
	return nil
}

// Inspect calls f for each node in the AST. If f returns false, children
// are not visited.
func Inspect(node ast.Node, f func(ast.Node) bool) {
	WalkFunc(node, f)
}
