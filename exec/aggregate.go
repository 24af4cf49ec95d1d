package exec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/eval"
	"github.com/latticedb/lattice/render"
	"github.com/latticedb/lattice/value"
)

// group is one GROUP BY bucket: the key values, and every member tuple
// (needed both for aggregate computation and to evaluate non-aggregate
// projection expressions, which must name a GROUP BY column).
type group struct {
	keyVals []value.Value
	members []*Tuple
}

// groupEnv implements eval.Env for a finished group: a bare column
// reference resolves against the group's key columns (the only columns
// SQL permits outside an aggregate in a grouped SELECT), and an
// aggregate FuncExpr is computed over the group's member tuples.
type groupEnv struct {
	g          *group
	groupExprs []ast.Expr
}

func (ge groupEnv) Resolve(qualifier, name string) (value.Value, error) {
	for i, e := range ge.groupExprs {
		if col, ok := e.(*ast.ColName); ok && col.Name == name && (qualifier == "" || qualifier == col.Qualifier) {
			return ge.g.keyVals[i], nil
		}
	}
	if len(ge.g.members) == 1 {
		return ge.g.members[0].Resolve(qualifier, name)
	}
	return value.Value{}, errs.UnknownColumn(name)
}

func (c *Context) selectGrouped(stmt *ast.SelectStmt, tuples []*Tuple) (*ResultSet, error) {
	groups, err := buildGroups(stmt.GroupBy, tuples)
	if err != nil {
		return nil, err
	}
	if err := validateProjection(stmt.Columns, stmt.GroupBy); err != nil {
		return nil, err
	}

	var envs []groupEnv
	for _, g := range groups {
		ge := groupEnv{g: g, groupExprs: stmt.GroupBy}
		if stmt.Having != nil {
			tri, err := evalHaving(stmt.Having, ge)
			if err != nil {
				return nil, err
			}
			if !tri.IsTrue() {
				continue
			}
		}
		envs = append(envs, ge)
	}

	if len(stmt.OrderBy) > 0 {
		if err := orderGroups(envs, stmt.OrderBy); err != nil {
			return nil, err
		}
	}
	if stmt.Limit != nil && stmt.Limit.Count < int64(len(envs)) {
		envs = envs[:stmt.Limit.Count]
	}

	names, err := groupedProjectionNames(stmt.Columns)
	if err != nil {
		return nil, err
	}
	rs := &ResultSet{Columns: names, Rows: make([][]value.Value, 0, len(envs))}
	for _, ge := range envs {
		row, err := groupedProjectRow(stmt.Columns, ge)
		if err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

func buildGroups(groupBy []ast.Expr, tuples []*Tuple) ([]*group, error) {
	if len(groupBy) == 0 {
		// No GROUP BY but an aggregate projection: the whole result is
		// one implicit group, even when there are no rows at all.
		return []*group{{members: tuples}}, nil
	}
	index := make(map[string]*group)
	var order []string
	for _, t := range tuples {
		key, vals, err := groupKeyText(groupBy, t)
		if err != nil {
			return nil, err
		}
		g, ok := index[key]
		if !ok {
			g = &group{keyVals: vals}
			index[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, t)
	}
	groups := make([]*group, len(order))
	for i, k := range order {
		groups[i] = index[k]
	}
	return groups, nil
}

// validateProjection enforces the rule that every non-aggregate
// projection expression in a grouped SELECT must textually match one of
// the GROUP BY expressions.
func validateProjection(cols []ast.SelectExpr, groupBy []ast.Expr) error {
	groupText := make(map[string]bool, len(groupBy))
	for _, e := range groupBy {
		groupText[render.Expr(e)] = true
	}
	for _, se := range cols {
		ae, ok := se.(*ast.AliasedExpr)
		if !ok {
			continue
		}
		if _, isFunc := ae.Expr.(*ast.FuncExpr); isFunc {
			continue
		}
		if len(groupBy) == 0 {
			return errs.AggregateMisuse(render.Expr(ae.Expr))
		}
		if !groupText[render.Expr(ae.Expr)] {
			return errs.AggregateMisuse(render.Expr(ae.Expr))
		}
	}
	return nil
}

func evalHaving(having ast.Expr, env eval.Env) (value.Tri, error) {
	return evalGroupPredicate(having, env)
}

// evalGroupPredicate mirrors eval.Predicate but additionally handles
// bare FuncExpr nodes appearing directly as a HAVING predicate
// (e.g. HAVING COUNT(*) > 3 is parsed as a BinaryExpr whose left side
// is a FuncExpr, which the groupEnv's Resolve cannot answer — FuncExpr
// values must be computed by computeAggregate instead).
func evalGroupPredicate(e ast.Expr, env eval.Env) (value.Tri, error) {
	ge, ok := env.(groupEnv)
	if !ok {
		return eval.Predicate(e, env)
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		switch n.Op {
		case ast.OpAnd:
			l, err := evalGroupPredicate(n.Left, env)
			if err != nil {
				return 0, err
			}
			r, err := evalGroupPredicate(n.Right, env)
			if err != nil {
				return 0, err
			}
			return value.And(l, r), nil
		case ast.OpOr:
			l, err := evalGroupPredicate(n.Left, env)
			if err != nil {
				return 0, err
			}
			r, err := evalGroupPredicate(n.Right, env)
			if err != nil {
				return 0, err
			}
			return value.Or(l, r), nil
		}
		if _, leftIsFunc := n.Left.(*ast.FuncExpr); leftIsFunc {
			l, err := computeAggregate(n.Left.(*ast.FuncExpr), ge.g)
			if err != nil {
				return 0, err
			}
			r, err := evalGroupValue(n.Right, ge)
			if err != nil {
				return 0, err
			}
			return compareValues(n.Op, l, r)
		}
	}
	return eval.Predicate(e, env)
}

func evalGroupValue(e ast.Expr, ge groupEnv) (value.Value, error) {
	if fn, ok := e.(*ast.FuncExpr); ok {
		return computeAggregate(fn, ge.g)
	}
	return eval.Eval(e, ge)
}

func compareValues(op ast.BinaryOp, l, r value.Value) (value.Tri, error) {
	if l.IsNull() || r.IsNull() {
		return value.TriUnknown, nil
	}
	c, err := value.Compare(l, r)
	if err != nil {
		return 0, err
	}
	var b bool
	switch op {
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

func orderGroups(envs []groupEnv, orderBy []*ast.OrderByExpr) error {
	var evalErr error
	sort.SliceStable(envs, func(i, j int) bool {
		if evalErr != nil {
			return false
		}
		for _, ob := range orderBy {
			vi, err := evalGroupValue(ob.Expr, envs[i])
			if err != nil {
				evalErr = err
				return false
			}
			vj, err := evalGroupValue(ob.Expr, envs[j])
			if err != nil {
				evalErr = err
				return false
			}
			less, eq := compareForOrder(vi, vj, ob.Desc)
			if !eq {
				return less
			}
		}
		return false
	})
	return evalErr
}

func groupedProjectionNames(cols []ast.SelectExpr) ([]string, error) {
	var names []string
	for _, se := range cols {
		ae, ok := se.(*ast.AliasedExpr)
		if !ok {
			return nil, fmt.Errorf("SELECT * cannot be combined with GROUP BY or aggregates")
		}
		if ae.Alias != "" {
			names = append(names, ae.Alias)
		} else {
			names = append(names, render.Expr(ae.Expr))
		}
	}
	return names, nil
}

func groupedProjectRow(cols []ast.SelectExpr, ge groupEnv) ([]value.Value, error) {
	row := make([]value.Value, 0, len(cols))
	for _, se := range cols {
		ae := se.(*ast.AliasedExpr)
		v, err := evalGroupValue(ae.Expr, ge)
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	return row, nil
}

// computeAggregate evaluates a single aggregate function over a
// group's member tuples, skipping NULLs per the usual SQL aggregate
// semantics.
func computeAggregate(fn *ast.FuncExpr, g *group) (value.Value, error) {
	name := strings.ToUpper(fn.Name)
	if name == "COUNT" && fn.Star {
		return value.Integer(int64(len(g.members))), nil
	}

	var nums []float64
	var allInt = true
	count := 0
	var first value.Value
	haveFirst := false
	for _, t := range g.members {
		v, err := eval.Eval(fn.Arg, t)
		if err != nil {
			return value.Value{}, err
		}
		if v.IsNull() {
			continue
		}
		count++
		switch v.Kind() {
		case value.KindInteger:
			nums = append(nums, float64(v.AsInteger()))
		case value.KindFloat:
			nums = append(nums, v.AsFloat())
			allInt = false
		default:
			if name == "SUM" || name == "AVG" {
				return value.Value{}, errs.TypeMismatch("%s requires a numeric argument, got %s", name, v.Kind())
			}
		}
		if !haveFirst {
			first = v
			haveFirst = true
		}
		if name == "MIN" || name == "MAX" {
			c, err := value.Compare(v, first)
			if err != nil {
				return value.Value{}, err
			}
			if (name == "MIN" && c < 0) || (name == "MAX" && c > 0) {
				first = v
			}
		}
	}

	switch name {
	case "COUNT":
		return value.Integer(int64(count)), nil
	case "SUM":
		if count == 0 {
			return value.Null, nil
		}
		return sumResult(nums, allInt), nil
	case "AVG":
		if count == 0 {
			return value.Null, nil
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return value.Float(total / float64(count)), nil
	case "MIN", "MAX":
		if count == 0 {
			return value.Null, nil
		}
		return first, nil
	default:
		return value.Value{}, fmt.Errorf("unknown aggregate function %s", fn.Name)
	}
}

func sumResult(nums []float64, allInt bool) value.Value {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	if allInt {
		return value.Integer(int64(total))
	}
	return value.Float(total)
}
