// Package exec carries out every statement the engine accepts: the
// full SELECT pipeline (source resolution, joins, filtering, grouping,
// aggregation, ordering, limiting, projection), DDL (CREATE/DROP TABLE,
// CREATE INDEX) and DML (INSERT/UPDATE/DELETE), enforcing every
// constraint the catalog declares along the way.
package exec

import (
	"fmt"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/eval"
	"github.com/latticedb/lattice/index"
	"github.com/latticedb/lattice/plan"
	"github.com/latticedb/lattice/storage"
	"github.com/latticedb/lattice/value"
	"github.com/latticedb/lattice/visitor"
)

// Context bundles the engine state a statement executes against.
type Context struct {
	Store *storage.Store
	Cat   *catalog.Catalog
	Idx   *index.Registry

	// MaxVarchar caps the N in a VARCHAR(N) column declaration. Zero
	// means no ceiling beyond what the parser's integer literal allows.
	MaxVarchar int
}

func columnNames(t *catalog.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (c *Context) scanBase(table, alias string) ([]*Tuple, []string, error) {
	schema, err := c.Cat.MustTable(table)
	if err != nil {
		return nil, nil, err
	}
	st, ok := c.Store.Table(table)
	if !ok {
		return nil, nil, errs.UnknownTable(table)
	}
	cols := columnNames(schema)
	out := make([]*Tuple, 0, len(st.Rows()))
	for _, row := range st.Rows() {
		out = append(out, newTuple(alias, cols, storage.RowValues(row), row.ID))
	}
	return out, cols, nil
}

// scanBaseFiltered applies an index-scan in place of a full scan when
// plan.ChooseScan finds an eligible indexed predicate in where.
func (c *Context) scanBaseFiltered(table, alias string, where ast.Expr) ([]*Tuple, []string, error) {
	schema, err := c.Cat.MustTable(table)
	if err != nil {
		return nil, nil, err
	}
	st, ok := c.Store.Table(table)
	if !ok {
		return nil, nil, errs.UnknownTable(table)
	}
	cols := columnNames(schema)

	choice := plan.ChooseScan(c.Cat, table, where)
	if choice == nil {
		return c.scanBase(table, alias)
	}
	tree, ok := c.Idx.Tree(choice.Index.Name)
	if !ok {
		return c.scanBase(table, alias)
	}
	cmpVal, err := eval.Eval(choice.Value, emptyEnv{})
	if err != nil || cmpVal.IsNull() {
		return c.scanBase(table, alias)
	}

	var rowIDs []int64
	switch choice.Op {
	case ast.OpEq:
		rowIDs = tree.PointLookup(cmpVal)
	case ast.OpLt:
		rowIDs = tree.RangeLookup(nil, &cmpVal, false, false)
	case ast.OpLte:
		rowIDs = tree.RangeLookup(nil, &cmpVal, false, true)
	case ast.OpGt:
		rowIDs = tree.RangeLookup(&cmpVal, nil, false, false)
	case ast.OpGte:
		rowIDs = tree.RangeLookup(&cmpVal, nil, true, false)
	default:
		return c.scanBase(table, alias)
	}

	out := make([]*Tuple, 0, len(rowIDs))
	for _, id := range rowIDs {
		row := st.RowByID(id)
		if row == nil {
			continue
		}
		out = append(out, newTuple(alias, cols, storage.RowValues(*row), row.ID))
	}
	return out, cols, nil
}

type emptyEnv struct{}

func (emptyEnv) Resolve(qualifier, name string) (value.Value, error) {
	return value.Value{}, fmt.Errorf("no column %q available in this context", name)
}

// execFrom resolves a FROM/JOIN tree into the joined tuple stream. Only
// the top-level call may pass a non-nil where, to let a single-table
// source use an index scan.
func (c *Context) execFrom(te ast.TableExpr, where ast.Expr) ([]*Tuple, error) {
	switch n := te.(type) {
	case *ast.TableName:
		tuples, _, err := c.scanBaseFiltered(n.Name, n.Name, where)
		return tuples, err

	case *ast.AliasedTableExpr:
		tn, ok := n.Expr.(*ast.TableName)
		if !ok {
			return nil, fmt.Errorf("unsupported table expression %T", n.Expr)
		}
		alias := n.Alias
		if alias == "" {
			alias = tn.Name
		}
		tuples, _, err := c.scanBaseFiltered(tn.Name, alias, where)
		return tuples, err

	case *ast.JoinExpr:
		left, err := c.execFrom(n.Left, nil)
		if err != nil {
			return nil, err
		}
		return c.execJoin(left, n)

	default:
		return nil, fmt.Errorf("unsupported FROM clause %T", te)
	}
}

func (c *Context) execJoin(left []*Tuple, join *ast.JoinExpr) ([]*Tuple, error) {
	rightAlias := visitor.TableAlias(join.Right)
	rightTables := visitor.TableRefs(join.Right)
	if len(rightTables) != 1 {
		return nil, fmt.Errorf("join's right-hand side must be a single table")
	}
	rightTable := rightTables[0].Name

	rightTuples, rightCols, err := c.scanBase(rightTable, rightAlias)
	if err != nil {
		return nil, err
	}

	var probeTree *index.Tree
	var otherCol *ast.ColName
	if idxMeta, _, other, ok := plan.ChooseJoinIndex(c.Cat, rightTable, rightAlias, join.On); ok {
		if t, ok := c.Idx.Tree(idxMeta.Name); ok {
			probeTree = t
			otherCol = other
		}
	}
	byRowID := make(map[int64]*Tuple, len(rightTuples))
	if probeTree != nil {
		for _, rt := range rightTuples {
			if id, ok := rt.RowID(rightAlias); ok {
				byRowID[id] = rt
			}
		}
	}

	var out []*Tuple
	for _, lt := range left {
		var candidates []*Tuple
		if probeTree != nil {
			probeVal, err := lt.Resolve(otherCol.Qualifier, otherCol.Name)
			if err == nil && !probeVal.IsNull() {
				for _, id := range probeTree.PointLookup(probeVal) {
					if rt, ok := byRowID[id]; ok {
						candidates = append(candidates, rt)
					}
				}
			}
		} else {
			candidates = rightTuples
		}

		matched := false
		for _, rt := range candidates {
			merged := lt.Merge(rt)
			tri, err := eval.Predicate(join.On, merged)
			if err != nil {
				return nil, err
			}
			if tri.IsTrue() {
				out = append(out, merged)
				matched = true
			}
		}
		if !matched && join.Type == ast.JoinLeft {
			out = append(out, lt.MergeNulls(rightAlias, rightCols))
		}
	}
	return out, nil
}
