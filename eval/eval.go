// Package eval is the tree-walking expression evaluator: it turns an
// AST expression plus a row context into a runtime value.Value, and
// exposes the three-valued predicate form WHERE/HAVING/ON filtering
// needs.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/value"
)

// Env resolves a (possibly table-qualified) column reference to its
// current value. The executor supplies one per row under evaluation;
// a joined row's Env knows about every table in the FROM/JOIN tree.
type Env interface {
	Resolve(qualifier, name string) (value.Value, error)
}

// Eval evaluates an expression to a value.Value against env.
func Eval(e ast.Expr, env Env) (value.Value, error) {
	switch n := e.(type) {
	case *ast.ColName:
		return env.Resolve(n.Qualifier, n.Name)

	case *ast.Literal:
		return literalValue(n)

	case *ast.BinaryExpr:
		return evalBinary(n, env)

	case *ast.UnaryExpr:
		return evalUnary(n, env)

	case *ast.ParenExpr:
		return Eval(n.Expr, env)

	case *ast.InExpr:
		t, err := evalIn(n, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ValueFromTri(t), nil

	case *ast.IsExpr:
		t, err := evalIs(n, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ValueFromTri(t), nil

	case *ast.LikeExpr:
		t, err := evalLike(n, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ValueFromTri(t), nil

	case *ast.FuncExpr:
		return value.Value{}, fmt.Errorf("aggregate function %s cannot be evaluated row-by-row; it must be handled by the aggregation stage", n.Name)

	default:
		return value.Value{}, fmt.Errorf("cannot evaluate expression of type %T", e)
	}
}

// Predicate evaluates e as a three-valued boolean: the form WHERE,
// HAVING and ON clauses require.
func Predicate(e ast.Expr, env Env) (value.Tri, error) {
	switch n := e.(type) {
	case nil:
		return value.TriTrue, nil

	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAnd:
			l, err := Predicate(n.Left, env)
			if err != nil {
				return 0, err
			}
			r, err := Predicate(n.Right, env)
			if err != nil {
				return 0, err
			}
			return value.And(l, r), nil
		case ast.OpOr:
			l, err := Predicate(n.Left, env)
			if err != nil {
				return 0, err
			}
			r, err := Predicate(n.Right, env)
			if err != nil {
				return 0, err
			}
			return value.Or(l, r), nil
		default:
			return comparisonTri(n, env)
		}

	case *ast.UnaryExpr:
		if n.Op == ast.OpNot {
			t, err := Predicate(n.Operand, env)
			if err != nil {
				return 0, err
			}
			return value.Not(t), nil
		}
		return 0, fmt.Errorf("unary operator cannot be used as a predicate")

	case *ast.ParenExpr:
		return Predicate(n.Expr, env)

	case *ast.InExpr:
		return evalIn(n, env)

	case *ast.IsExpr:
		return evalIs(n, env)

	case *ast.LikeExpr:
		return evalLike(n, env)

	default:
		v, err := Eval(e, env)
		if err != nil {
			return 0, err
		}
		if v.Kind() != value.KindBoolean && !v.IsNull() {
			return 0, errs.TypeMismatch("expected boolean predicate, got %s", v.Kind())
		}
		return value.TriFromValue(v), nil
	}
}

func comparisonTri(n *ast.BinaryExpr, env Env) (value.Tri, error) {
	l, err := Eval(n.Left, env)
	if err != nil {
		return 0, err
	}
	r, err := Eval(n.Right, env)
	if err != nil {
		return 0, err
	}
	if isArithOp(n.Op) {
		return 0, fmt.Errorf("arithmetic expression used where a predicate was expected")
	}
	if l.IsNull() || r.IsNull() {
		return value.TriUnknown, nil
	}
	c, err := value.Compare(l, r)
	if err != nil {
		return 0, err
	}
	var b bool
	switch n.Op {
	case ast.OpEq:
		b = c == 0
	case ast.OpNeq:
		b = c != 0
	case ast.OpLt:
		b = c < 0
	case ast.OpGt:
		b = c > 0
	case ast.OpLte:
		b = c <= 0
	case ast.OpGte:
		b = c >= 0
	default:
		return 0, fmt.Errorf("operator cannot be used as a comparison")
	}
	if b {
		return value.TriTrue, nil
	}
	return value.TriFalse, nil
}

func isArithOp(op ast.BinaryOp) bool {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		return true
	}
	return false
}

func evalBinary(n *ast.BinaryExpr, env Env) (value.Value, error) {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		t, err := Predicate(n, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ValueFromTri(t), nil
	}
	if isArithOp(n.Op) {
		l, err := Eval(n.Left, env)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(n.Right, env)
		if err != nil {
			return value.Value{}, err
		}
		switch n.Op {
		case ast.OpAdd:
			return value.Add(l, r)
		case ast.OpSub:
			return value.Sub(l, r)
		case ast.OpMul:
			return value.Mul(l, r)
		case ast.OpDiv:
			return value.Div(l, r)
		}
	}
	t, err := comparisonTri(n, env)
	if err != nil {
		return value.Value{}, err
	}
	return value.ValueFromTri(t), nil
}

func evalUnary(n *ast.UnaryExpr, env Env) (value.Value, error) {
	if n.Op == ast.OpNot {
		t, err := Predicate(n.Operand, env)
		if err != nil {
			return value.Value{}, err
		}
		return value.ValueFromTri(value.Not(t)), nil
	}
	v, err := Eval(n.Operand, env)
	if err != nil {
		return value.Value{}, err
	}
	if v.IsNull() {
		return value.Null, nil
	}
	switch v.Kind() {
	case value.KindInteger:
		return value.Integer(-v.AsInteger()), nil
	case value.KindFloat:
		return value.Float(-v.AsFloat()), nil
	default:
		return value.Value{}, errs.TypeMismatch("cannot negate %s", v.Kind())
	}
}

func evalIn(n *ast.InExpr, env Env) (value.Tri, error) {
	v, err := Eval(n.Expr, env)
	if err != nil {
		return 0, err
	}
	if v.IsNull() {
		return value.TriUnknown, nil
	}
	sawUnknown := false
	for _, item := range n.List {
		iv, err := Eval(item, env)
		if err != nil {
			return 0, err
		}
		if iv.IsNull() {
			sawUnknown = true
			continue
		}
		c, err := value.Compare(v, iv)
		if err != nil {
			return 0, err
		}
		if c == 0 {
			if n.Not {
				return value.TriFalse, nil
			}
			return value.TriTrue, nil
		}
	}
	if sawUnknown {
		return value.TriUnknown, nil
	}
	if n.Not {
		return value.TriTrue, nil
	}
	return value.TriFalse, nil
}

func evalIs(n *ast.IsExpr, env Env) (value.Tri, error) {
	v, err := Eval(n.Expr, env)
	if err != nil {
		return 0, err
	}
	switch n.Check {
	case ast.IsNull:
		return triBool(v.IsNull()), nil
	case ast.IsNotNull:
		return triBool(!v.IsNull()), nil
	case ast.IsTrue:
		return triBool(!v.IsNull() && v.Kind() == value.KindBoolean && v.AsBool()), nil
	case ast.IsNotTrue:
		return triBool(v.IsNull() || v.Kind() != value.KindBoolean || !v.AsBool()), nil
	case ast.IsFalse:
		return triBool(!v.IsNull() && v.Kind() == value.KindBoolean && !v.AsBool()), nil
	case ast.IsNotFalse:
		return triBool(v.IsNull() || v.Kind() != value.KindBoolean || v.AsBool()), nil
	}
	return 0, fmt.Errorf("unknown IS check")
}

func triBool(b bool) value.Tri {
	if b {
		return value.TriTrue
	}
	return value.TriFalse
}

func evalLike(n *ast.LikeExpr, env Env) (value.Tri, error) {
	v, err := Eval(n.Expr, env)
	if err != nil {
		return 0, err
	}
	p, err := Eval(n.Pattern, env)
	if err != nil {
		return 0, err
	}
	if v.IsNull() || p.IsNull() {
		return value.TriUnknown, nil
	}
	if v.Kind() != value.KindText || p.Kind() != value.KindText {
		return 0, errs.TypeMismatch("LIKE requires text operands, got %s and %s", v.Kind(), p.Kind())
	}
	matched := likeMatch(v.AsText(), p.AsText())
	if n.Not {
		matched = !matched
	}
	return triBool(matched), nil
}

// likeMatch implements SQL LIKE: % matches any run of characters
// (including none), _ matches exactly one character.
func likeMatch(s, pattern string) bool {
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	if len(p) == 0 {
		return len(s) == 0
	}
	switch p[0] {
	case '%':
		if likeMatchRunes(s, p[1:]) {
			return true
		}
		for i := 0; i < len(s); i++ {
			if likeMatchRunes(s[i+1:], p[1:]) {
				return true
			}
		}
		return false
	case '_':
		if len(s) == 0 {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	default:
		if len(s) == 0 || s[0] != p[0] {
			return false
		}
		return likeMatchRunes(s[1:], p[1:])
	}
}

func literalValue(l *ast.Literal) (value.Value, error) {
	switch l.Type {
	case ast.LiteralNull:
		return value.Null, nil
	case ast.LiteralInt:
		i, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid integer literal %q: %w", l.Value, err)
		}
		return value.Integer(i), nil
	case ast.LiteralFloat:
		f, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid float literal %q: %w", l.Value, err)
		}
		return value.Float(f), nil
	case ast.LiteralString:
		return value.Text(l.Value), nil
	case ast.LiteralBool:
		return value.Boolean(strings.EqualFold(l.Value, "true")), nil
	case ast.LiteralDate:
		var y, m, d int
		if _, err := fmt.Sscanf(l.Value, "%04d-%02d-%02d", &y, &m, &d); err != nil {
			return value.Value{}, fmt.Errorf("invalid date literal %q: %w", l.Value, err)
		}
		return value.DateOf(value.Date{Year: y, Month: m, Day: d}), nil
	}
	return value.Value{}, fmt.Errorf("unknown literal type %v", l.Type)
}
