package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/value"
)

type mapEnv map[string]value.Value

func (m mapEnv) Resolve(qualifier, name string) (value.Value, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return value.Null, nil
}

func intLit(s string) *ast.Literal  { return &ast.Literal{Type: ast.LiteralInt, Value: s} }
func col(name string) *ast.ColName { return &ast.ColName{Name: name} }

func TestEvalArithmeticAndNullPropagation(t *testing.T) {
	env := mapEnv{"a": value.Integer(3)}
	v, err := Eval(&ast.BinaryExpr{Op: ast.OpAdd, Left: col("a"), Right: intLit("4")}, env)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.AsInteger())

	v, err = Eval(&ast.BinaryExpr{Op: ast.OpAdd, Left: col("missing"), Right: intLit("4")}, env)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestPredicateComparisonWithNullIsUnknown(t *testing.T) {
	env := mapEnv{}
	tri, err := Predicate(&ast.BinaryExpr{Op: ast.OpEq, Left: col("missing"), Right: intLit("1")}, env)
	require.NoError(t, err)
	assert.Equal(t, value.TriUnknown, tri)
	assert.False(t, tri.IsTrue())
}

func TestPredicateAndOrThreeValued(t *testing.T) {
	env := mapEnv{"f": value.Boolean(false)}
	and := &ast.BinaryExpr{
		Op:   ast.OpAnd,
		Left: &ast.IsExpr{Expr: col("missing"), Check: ast.IsNull},
		Right: &ast.BinaryExpr{Op: ast.OpEq, Left: col("f"), Right: &ast.Literal{Type: ast.LiteralBool, Value: "false"}},
	}
	tri, err := Predicate(and, env)
	require.NoError(t, err)
	assert.Equal(t, value.TriTrue, tri)
}

func TestInExprWithNullList(t *testing.T) {
	env := mapEnv{"a": value.Integer(5)}
	in := &ast.InExpr{Expr: col("a"), List: []ast.Expr{intLit("1"), col("missing")}}
	tri, err := Predicate(in, env)
	require.NoError(t, err)
	assert.Equal(t, value.TriUnknown, tri)
}

func TestLikeMatchPercentAndUnderscore(t *testing.T) {
	assert.True(t, likeMatch("hello", "h%o"))
	assert.True(t, likeMatch("hello", "h_llo"))
	assert.False(t, likeMatch("hello", "h_l"))
	assert.True(t, likeMatch("", "%"))
}

func TestIsTrueIsNotTrue(t *testing.T) {
	env := mapEnv{"b": value.Boolean(true)}
	tri, err := Predicate(&ast.IsExpr{Expr: col("b"), Check: ast.IsTrue}, env)
	require.NoError(t, err)
	assert.Equal(t, value.TriTrue, tri)

	tri, err = Predicate(&ast.IsExpr{Expr: col("missing"), Check: ast.IsNotTrue}, env)
	require.NoError(t, err)
	assert.Equal(t, value.TriTrue, tri)
}

func TestDivisionByZeroInExpressionYieldsNull(t *testing.T) {
	v, err := Eval(&ast.BinaryExpr{Op: ast.OpDiv, Left: intLit("1"), Right: intLit("0")}, mapEnv{})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
