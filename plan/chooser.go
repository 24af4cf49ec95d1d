package plan

import (
	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
)

// ScanChoice is the outcome of choosing a single-table index scan to
// replace a full scan for a WHERE predicate.
type ScanChoice struct {
	Index  *catalog.Index
	Column string
	Op     ast.BinaryOp
	Value  ast.Expr // the comparand; contains no column references
}

// ChooseScan inspects where's AND-connected terms and picks the first
// one of the form "indexed_column OP constant_expr" it finds, for use
// as an index scan in place of a full table scan. Both exec and plan
// call this so EXPLAIN always names the same index execution uses.
func ChooseScan(cat *catalog.Catalog, table string, where ast.Expr) *ScanChoice {
	if where == nil {
		return nil
	}
	for _, term := range flattenAnd(where) {
		b, ok := term.(*ast.BinaryExpr)
		if !ok || !isComparisonOp(b.Op) || b.Op == ast.OpNeq {
			continue
		}
		col, other, op, ok := splitColumnComparison(b)
		if !ok || hasColumnRef(other) {
			continue
		}
		if idx, found := cat.IndexOnColumn(table, col.Name); found {
			return &ScanChoice{Index: idx, Column: col.Name, Op: op, Value: other}
		}
	}
	return nil
}

// ChooseJoinIndex inspects a join's ON predicate for an equality term
// naming a column of the right-hand table, and returns the index
// covering it, if one exists. Per the engine's tie-break rule, only
// the right side is ever considered — the left side of a join is, in
// general, an already-computed multi-table tuple stream with no index
// of its own.
func ChooseJoinIndex(cat *catalog.Catalog, rightTable, rightAlias string, on ast.Expr) (idx *catalog.Index, rightColumn string, otherSide *ast.ColName, ok bool) {
	if on == nil {
		return nil, "", nil, false
	}
	for _, term := range flattenAnd(on) {
		b, isBin := term.(*ast.BinaryExpr)
		if !isBin || b.Op != ast.OpEq {
			continue
		}
		lc, lok := b.Left.(*ast.ColName)
		rc, rok := b.Right.(*ast.ColName)
		if !lok || !rok {
			continue
		}
		var rightCol, other *ast.ColName
		switch {
		case rc.Qualifier == rightAlias || rc.Qualifier == rightTable:
			rightCol, other = rc, lc
		case lc.Qualifier == rightAlias || lc.Qualifier == rightTable:
			rightCol, other = lc, rc
		default:
			continue
		}
		if i, found := cat.IndexOnColumn(rightTable, rightCol.Name); found {
			return i, rightCol.Name, other, true
		}
	}
	return nil, "", nil, false
}

// ResidualAfterJoinIndex returns every ON conjunct other than the one
// the chosen index probe already accounts for, to be applied as a
// post-filter over the candidate rows the probe returns.
func ResidualAfterJoinIndex(on ast.Expr, usedColumn string, usedIsLeft bool) []ast.Expr {
	var residual []ast.Expr
	for _, term := range flattenAnd(on) {
		b, isBin := term.(*ast.BinaryExpr)
		if isBin && b.Op == ast.OpEq {
			lc, lok := b.Left.(*ast.ColName)
			rc, rok := b.Right.(*ast.ColName)
			if lok && rok {
				if (usedIsLeft && lc.Name == usedColumn) || (!usedIsLeft && rc.Name == usedColumn) {
					continue
				}
			}
		}
		residual = append(residual, term)
	}
	return residual
}

func flattenAnd(e ast.Expr) []ast.Expr {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Op == ast.OpAnd {
		return append(flattenAnd(b.Left), flattenAnd(b.Right)...)
	}
	return []ast.Expr{e}
}

func isComparisonOp(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		return true
	}
	return false
}

func splitColumnComparison(b *ast.BinaryExpr) (col *ast.ColName, other ast.Expr, op ast.BinaryOp, ok bool) {
	if c, isCol := b.Left.(*ast.ColName); isCol {
		return c, b.Right, b.Op, true
	}
	if c, isCol := b.Right.(*ast.ColName); isCol {
		return c, b.Left, flipOp(b.Op), true
	}
	return nil, nil, 0, false
}

func flipOp(op ast.BinaryOp) ast.BinaryOp {
	switch op {
	case ast.OpLt:
		return ast.OpGt
	case ast.OpGt:
		return ast.OpLt
	case ast.OpLte:
		return ast.OpGte
	case ast.OpGte:
		return ast.OpLte
	default:
		return op
	}
}

func hasColumnRef(e ast.Expr) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(ex ast.Expr) {
		if found || ex == nil {
			return
		}
		switch n := ex.(type) {
		case *ast.ColName:
			found = true
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.ParenExpr:
			walk(n.Expr)
		case *ast.FuncExpr:
			walk(n.Arg)
		}
	}
	walk(e)
	return found
}
