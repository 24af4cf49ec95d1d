package exec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/eval"
	"github.com/latticedb/lattice/render"
	"github.com/latticedb/lattice/value"
	"github.com/latticedb/lattice/visitor"
)

// ResultSet is a statement's tabular result: column names plus rows of
// values in the same order.
type ResultSet struct {
	Columns []string
	Rows    [][]value.Value
}

// Select runs the full SELECT pipeline: source resolution, filtering,
// grouping/aggregation, having, ordering, limiting and projection.
func (c *Context) Select(stmt *ast.SelectStmt) (*ResultSet, error) {
	tuples, err := c.execFrom(stmt.From, stmt.Where)
	if err != nil {
		return nil, err
	}

	if stmt.Where != nil {
		tuples, err = filterTuples(tuples, stmt.Where)
		if err != nil {
			return nil, err
		}
	}

	grouped := len(stmt.GroupBy) > 0 || hasProjectionAggregate(stmt.Columns)
	if grouped {
		return c.selectGrouped(stmt, tuples)
	}

	if len(stmt.OrderBy) > 0 {
		if err := orderTuples(tuples, stmt.OrderBy); err != nil {
			return nil, err
		}
	}
	tuples = applyLimit(tuples, stmt.Limit)

	return projectTuples(stmt.Columns, tuples)
}

func filterTuples(tuples []*Tuple, where ast.Expr) ([]*Tuple, error) {
	out := tuples[:0:0]
	for _, t := range tuples {
		tri, err := eval.Predicate(where, t)
		if err != nil {
			return nil, err
		}
		if tri.IsTrue() {
			out = append(out, t)
		}
	}
	return out, nil
}

func hasProjectionAggregate(cols []ast.SelectExpr) bool {
	for _, se := range cols {
		if ae, ok := se.(*ast.AliasedExpr); ok && visitor.HasAggregate(ae.Expr) {
			return true
		}
	}
	return false
}

func orderTuples(tuples []*Tuple, orderBy []*ast.OrderByExpr) error {
	var evalErr error
	sort.SliceStable(tuples, func(i, j int) bool {
		if evalErr != nil {
			return false
		}
		for _, ob := range orderBy {
			vi, err := eval.Eval(ob.Expr, tuples[i])
			if err != nil {
				evalErr = err
				return false
			}
			vj, err := eval.Eval(ob.Expr, tuples[j])
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

// compareForOrder reports whether a sorts before b under the given
// direction, and whether they compare equal. NULLs sort last in
// ascending order and first in descending order.
func compareForOrder(a, b value.Value, desc bool) (less bool, eq bool) {
	if a.IsNull() && b.IsNull() {
		return false, true
	}
	if a.IsNull() {
		return desc, false
	}
	if b.IsNull() {
		return !desc, false
	}
	c, err := value.Compare(a, b)
	if err != nil {
		return false, true
	}
	if c == 0 {
		return false, true
	}
	if desc {
		return c > 0, false
	}
	return c < 0, false
}

func applyLimit(tuples []*Tuple, limit *ast.Limit) []*Tuple {
	if limit == nil {
		return tuples
	}
	if limit.Count < int64(len(tuples)) {
		return tuples[:limit.Count]
	}
	return tuples
}

func projectTuples(cols []ast.SelectExpr, tuples []*Tuple) (*ResultSet, error) {
	names, err := projectionNames(cols, tuples)
	if err != nil {
		return nil, err
	}
	rs := &ResultSet{Columns: names, Rows: make([][]value.Value, 0, len(tuples))}
	for _, t := range tuples {
		row, err := projectRow(cols, t)
		if err != nil {
			return nil, err
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

func projectionNames(cols []ast.SelectExpr, tuples []*Tuple) ([]string, error) {
	var names []string
	for _, se := range cols {
		switch n := se.(type) {
		case *ast.StarExpr:
			if len(tuples) > 0 {
				names = append(names, tuples[0].ColumnNames()...)
			}
		case *ast.AliasedExpr:
			if n.Alias != "" {
				names = append(names, n.Alias)
			} else if col, ok := n.Expr.(*ast.ColName); ok {
				names = append(names, col.Name)
			} else {
				names = append(names, render.Expr(n.Expr))
			}
		default:
			return nil, fmt.Errorf("unsupported projection item %T", se)
		}
	}
	return names, nil
}

func projectRow(cols []ast.SelectExpr, t *Tuple) ([]value.Value, error) {
	var row []value.Value
	for _, se := range cols {
		switch n := se.(type) {
		case *ast.StarExpr:
			row = append(row, t.Values()...)
		case *ast.AliasedExpr:
			v, err := eval.Eval(n.Expr, t)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		default:
			return nil, fmt.Errorf("unsupported projection item %T", se)
		}
	}
	return row, nil
}

func groupKeyText(exprs []ast.Expr, env eval.Env) (string, []value.Value, error) {
	vals := make([]value.Value, len(exprs))
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		v, err := eval.Eval(e, env)
		if err != nil {
			return "", nil, err
		}
		vals[i] = v
		parts[i] = v.String()
	}
	return strings.Join(parts, "\x1f"), vals, nil
}
