// Package render prints expression and predicate fragments of the AST
// back to SQL text, for EXPLAIN plan output and error messages.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/latticedb/lattice/ast"
)

// Expr renders an expression to its SQL text.
func Expr(e ast.Expr) string {
	var buf bytes.Buffer
	writeExpr(&buf, e)
	return buf.String()
}

// ColumnRef renders a qualified column reference (table.column, or just
// column if unqualified).
func ColumnRef(c *ast.ColName) string {
	if c.Qualifier != "" {
		return c.Qualifier + "." + c.Name
	}
	return c.Name
}

func writeExpr(buf *bytes.Buffer, e ast.Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.ColName:
		buf.WriteString(ColumnRef(n))
	case *ast.Literal:
		writeLiteral(buf, n)
	case *ast.StarExpr:
		buf.WriteString("*")
	case *ast.BinaryExpr:
		writeExpr(buf, n.Left)
		buf.WriteString(" ")
		buf.WriteString(binaryOpText(n.Op))
		buf.WriteString(" ")
		writeExpr(buf, n.Right)
	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			buf.WriteString("NOT ")
		} else {
			buf.WriteString("-")
		}
		writeExpr(buf, n.Operand)
	case *ast.ParenExpr:
		buf.WriteString("(")
		writeExpr(buf, n.Expr)
		buf.WriteString(")")
	case *ast.FuncExpr:
		buf.WriteString(n.Name)
		buf.WriteString("(")
		if n.Star {
			buf.WriteString("*")
		} else {
			writeExpr(buf, n.Arg)
		}
		buf.WriteString(")")
	case *ast.InExpr:
		writeExpr(buf, n.Expr)
		if n.Not {
			buf.WriteString(" NOT IN (")
		} else {
			buf.WriteString(" IN (")
		}
		for i, v := range n.List {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeExpr(buf, v)
		}
		buf.WriteString(")")
	case *ast.IsExpr:
		writeExpr(buf, n.Expr)
		buf.WriteString(" IS ")
		buf.WriteString(isCheckText(n.Check))
	case *ast.LikeExpr:
		writeExpr(buf, n.Expr)
		if n.Not {
			buf.WriteString(" NOT LIKE ")
		} else {
			buf.WriteString(" LIKE ")
		}
		writeExpr(buf, n.Pattern)
	default:
		fmt.Fprintf(buf, "<%T>", e)
	}
}

func writeLiteral(buf *bytes.Buffer, l *ast.Literal) {
	switch l.Type {
	case ast.LiteralString, ast.LiteralDate:
		buf.WriteString("'")
		buf.WriteString(strings.ReplaceAll(l.Value, "'", "''"))
		buf.WriteString("'")
	default:
		buf.WriteString(l.Value)
	}
}

func binaryOpText(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpEq:
		return "="
	case ast.OpNeq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpGt:
		return ">"
	case ast.OpLte:
		return "<="
	case ast.OpGte:
		return ">="
	case ast.OpAnd:
		return "AND"
	case ast.OpOr:
		return "OR"
	}
	return "?"
}

func isCheckText(c ast.IsCheck) string {
	switch c {
	case ast.IsNull:
		return "NULL"
	case ast.IsNotNull:
		return "NOT NULL"
	case ast.IsTrue:
		return "TRUE"
	case ast.IsNotTrue:
		return "NOT TRUE"
	case ast.IsFalse:
		return "FALSE"
	case ast.IsNotFalse:
		return "NOT FALSE"
	}
	return ""
}
