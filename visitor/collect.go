package visitor

import "github.com/latticedb/lattice/ast"

// ColumnRefs returns every ColName referenced anywhere under node, in
// traversal order.
func ColumnRefs(node ast.Node) []*ast.ColName {
	var cols []*ast.ColName
	Inspect(node, func(n ast.Node) bool {
		if c, ok := n.(*ast.ColName); ok {
			cols = append(cols, c)
		}
		return true
	})
	return cols
}

// HasAggregate reports whether node contains an aggregate function call.
func HasAggregate(node ast.Node) bool {
	found := false
	Inspect(node, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := n.(*ast.FuncExpr); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// TableRefs walks a FROM/JOIN tree and returns every TableName reached,
// left to right. The EXPLAIN planner uses this to enumerate table sources
// without touching row data.
func TableRefs(expr ast.TableExpr) []*ast.TableName {
	var tables []*ast.TableName
	var walk func(ast.TableExpr)
	walk = func(e ast.TableExpr) {
		switch n := e.(type) {
		case *ast.TableName:
			tables = append(tables, n)
		case *ast.AliasedTableExpr:
			walk(n.Expr)
		case *ast.JoinExpr:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(expr)
	return tables
}

// TableAlias returns the alias bound to a FROM/JOIN operand, or the bare
// table name if it carries no alias.
func TableAlias(expr ast.TableExpr) string {
	switch n := expr.(type) {
	case *ast.TableName:
		return n.Name
	case *ast.AliasedTableExpr:
		if n.Alias != "" {
			return n.Alias
		}
		return TableAlias(n.Expr)
	}
	return ""
}
