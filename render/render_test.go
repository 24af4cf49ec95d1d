package render

import (
	"testing"

	"github.com/latticedb/lattice/ast"
)

func TestExprColumnAndLiteral(t *testing.T) {
	col := &ast.ColName{Qualifier: "e", Name: "id"}
	if got := Expr(col); got != "e.id" {
		t.Fatalf("got %q, want e.id", got)
	}

	lit := &ast.Literal{Type: ast.LiteralInt, Value: "42"}
	if got := Expr(lit); got != "42" {
		t.Fatalf("got %q, want 42", got)
	}

	str := &ast.Literal{Type: ast.LiteralString, Value: "it's"}
	if got := Expr(str); got != "'it''s'" {
		t.Fatalf("got %q, want 'it''s'", got)
	}
}

func TestExprBinary(t *testing.T) {
	bin := &ast.BinaryExpr{
		Op:   ast.OpEq,
		Left: &ast.ColName{Name: "id"},
		Right: &ast.Literal{Type: ast.LiteralInt, Value: "1"},
	}
	if got := Expr(bin); got != "id = 1" {
		t.Fatalf("got %q, want id = 1", got)
	}
}

func TestExprIn(t *testing.T) {
	in := &ast.InExpr{
		Expr: &ast.ColName{Name: "id"},
		List: []ast.Expr{
			&ast.Literal{Type: ast.LiteralInt, Value: "1"},
			&ast.Literal{Type: ast.LiteralInt, Value: "2"},
		},
	}
	if got := Expr(in); got != "id IN (1, 2)" {
		t.Fatalf("got %q, want id IN (1, 2)", got)
	}
}

func TestExprIsNull(t *testing.T) {
	is := &ast.IsExpr{Expr: &ast.ColName{Name: "x"}, Check: ast.IsNotNull}
	if got := Expr(is); got != "x IS NOT NULL" {
		t.Fatalf("got %q, want x IS NOT NULL", got)
	}
}
