package exec

import (
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/value"
)

// colKey identifies one column of a tuple by the table/alias that
// contributed it and its name.
type colKey struct {
	table string
	name  string
}

// Tuple is one row flowing through a SELECT pipeline: a flat list of
// (table, column) -> value pairs, potentially spanning several tables
// once a join has run. It implements eval.Env so expressions can be
// evaluated directly against it.
type Tuple struct {
	keys   []colKey
	vals   []value.Value
	rowIDs map[string]int64 // table/alias -> source row id, for single-table ops
}

func newTuple(alias string, cols []string, vals []value.Value, rowID int64) *Tuple {
	t := &Tuple{
		keys:   make([]colKey, len(cols)),
		vals:   append([]value.Value(nil), vals...),
		rowIDs: map[string]int64{alias: rowID},
	}
	for i, c := range cols {
		t.keys[i] = colKey{table: alias, name: c}
	}
	return t
}

// Resolve implements eval.Env: it finds the value for a (possibly
// qualified) column reference, returning AmbiguousColumn if more than
// one candidate matches an unqualified name and UnknownColumn if none
// does.
func (t *Tuple) Resolve(qualifier, name string) (value.Value, error) {
	idx := -1
	for i, k := range t.keys {
		if k.name != name {
			continue
		}
		if qualifier != "" && k.table != qualifier {
			continue
		}
		if idx != -1 {
			return value.Value{}, errs.AmbiguousColumn(name)
		}
		idx = i
	}
	if idx == -1 {
		return value.Value{}, errs.UnknownColumn(name)
	}
	return t.vals[idx], nil
}

// Merge combines two tuples from a join's two sides into one wider
// tuple.
func (t *Tuple) Merge(o *Tuple) *Tuple {
	nt := &Tuple{
		keys: append(append([]colKey(nil), t.keys...), o.keys...),
		vals: append(append([]value.Value(nil), t.vals...), o.vals...),
	}
	if len(t.rowIDs) > 0 || len(o.rowIDs) > 0 {
		nt.rowIDs = make(map[string]int64, len(t.rowIDs)+len(o.rowIDs))
		for k, v := range t.rowIDs {
			nt.rowIDs[k] = v
		}
		for k, v := range o.rowIDs {
			nt.rowIDs[k] = v
		}
	}
	return nt
}

// MergeNulls widens a tuple with NULL-valued columns for a table that
// a LEFT JOIN found no matching row for.
func (t *Tuple) MergeNulls(alias string, cols []string) *Tuple {
	nt := &Tuple{
		keys: append([]colKey(nil), t.keys...),
		vals: append([]value.Value(nil), t.vals...),
	}
	for _, c := range cols {
		nt.keys = append(nt.keys, colKey{table: alias, name: c})
		nt.vals = append(nt.vals, value.Null)
	}
	if len(t.rowIDs) > 0 {
		nt.rowIDs = make(map[string]int64, len(t.rowIDs))
		for k, v := range t.rowIDs {
			nt.rowIDs[k] = v
		}
	}
	return nt
}

// RowID returns the source row-id a single-table tuple came from.
func (t *Tuple) RowID(alias string) (int64, bool) {
	id, ok := t.rowIDs[alias]
	return id, ok
}

// ColumnNames returns every column name carried by the tuple, in order,
// for SELECT * projection.
func (t *Tuple) ColumnNames() []string {
	names := make([]string, len(t.keys))
	for i, k := range t.keys {
		names[i] = k.name
	}
	return names
}

// Values returns every column value carried by the tuple, in the same
// order as ColumnNames.
func (t *Tuple) Values() []value.Value {
	return append([]value.Value(nil), t.vals...)
}
