package exec

import (
	"unicode/utf8"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/eval"
	"github.com/latticedb/lattice/storage"
	"github.com/latticedb/lattice/value"
)

// Insert evaluates and validates every VALUES row, then commits them
// as a single batch: if any row fails validation, nothing is written.
// Validation carries a shadow copy of each UNIQUE/PRIMARY KEY index
// forward across the batch, so two rows in the same statement sharing
// a key are caught even though neither is in the live index yet.
func (c *Context) Insert(stmt *ast.InsertStmt) (int, error) {
	schema, err := c.Cat.MustTable(stmt.Table.Name)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]map[string]bool)
	rows := make([][]value.Value, 0, len(stmt.Values))
	for _, rowExprs := range stmt.Values {
		vals, err := c.resolveInsertRow(schema, stmt.Columns, rowExprs)
		if err != nil {
			return 0, err
		}
		if err := c.checkConstraints(schema, vals, -1, seen); err != nil {
			return 0, err
		}
		c.recordBatchKeys(schema, vals, seen)
		rows = append(rows, vals)
	}

	for _, vals := range rows {
		id, err := c.Store.AppendRow(stmt.Table.Name, vals)
		if err != nil {
			return 0, err
		}
		c.indexRow(schema, vals, id)
	}
	return len(rows), nil
}

func (c *Context) resolveInsertRow(schema *catalog.Table, columns []string, rowExprs []ast.Expr) ([]value.Value, error) {
	vals := make([]value.Value, len(schema.Columns))
	for i := range vals {
		vals[i] = value.Null
	}

	if columns == nil {
		if len(rowExprs) != len(schema.Columns) {
			return nil, errs.TypeMismatch("expected %d values, got %d", len(schema.Columns), len(rowExprs))
		}
		for i, e := range rowExprs {
			v, err := eval.Eval(e, emptyEnv{})
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return vals, nil
	}

	if len(columns) != len(rowExprs) {
		return nil, errs.TypeMismatch("expected %d values, got %d", len(columns), len(rowExprs))
	}
	for i, name := range columns {
		pos := columnPos(schema, name)
		if pos == -1 {
			return nil, errs.UnknownColumn(name)
		}
		v, err := eval.Eval(rowExprs[i], emptyEnv{})
		if err != nil {
			return nil, err
		}
		vals[pos] = v
	}
	return vals, nil
}

func columnPos(schema *catalog.Table, name string) int {
	for i, c := range schema.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// typeCheck enforces strict write-time typing: a non-NULL value must
// match its column's declared type exactly (no INTEGER->FLOAT widening
// on storage, unlike expression evaluation), and a VARCHAR(N) value
// may hold at most N characters.
func typeCheck(col *catalog.Column, v value.Value) error {
	if v.IsNull() {
		return nil
	}
	var wantKind value.Kind
	switch col.Type {
	case catalog.TypeInteger:
		wantKind = value.KindInteger
	case catalog.TypeFloat:
		wantKind = value.KindFloat
	case catalog.TypeVarchar:
		wantKind = value.KindText
	case catalog.TypeDate:
		wantKind = value.KindDate
	case catalog.TypeBoolean:
		wantKind = value.KindBoolean
	}
	if v.Kind() != wantKind {
		return errs.TypeMismatch("column %q is %s, got %s", col.Name, col.Type, v.Kind())
	}
	if col.Type == catalog.TypeVarchar && col.Length > 0 {
		if n := utf8.RuneCountInString(v.AsText()); n > col.Length {
			return errs.TypeMismatch("column %q is VARCHAR(%d), got a value of %d characters", col.Name, col.Length, n)
		}
	}
	return nil
}

// checkConstraints validates types, NOT NULL, UNIQUE/PRIMARY KEY and
// FOREIGN KEY for one row's values. excludeRowID, when >= 0, is the row
// being updated, so its own current key value doesn't collide with
// itself. seen, when non-nil, is a shadow index of UNIQUE/PRIMARY KEY
// values already claimed earlier in the same batch (see
// recordBatchKeys), so a batch can't commit two rows that collide with
// each other even though neither is in the live index yet.
func (c *Context) checkConstraints(schema *catalog.Table, vals []value.Value, excludeRowID int64, seen map[string]map[string]bool) error {
	for i, col := range schema.Columns {
		if err := typeCheck(col, vals[i]); err != nil {
			return err
		}
		if col.NotNull && vals[i].IsNull() {
			return errs.NullViolation(col.Name)
		}
		if (col.PrimaryKey || col.Unique) && !vals[i].IsNull() {
			idx, ok := c.Cat.IndexOnColumn(schema.Name, col.Name)
			if ok {
				if tree, ok := c.Idx.Tree(idx.Name); ok {
					for _, existing := range tree.PointLookup(vals[i]) {
						if existing != excludeRowID {
							return errs.UniqueViolation(idx.Name, vals[i].String())
						}
					}
				}
				if seen[idx.Name][vals[i].String()] {
					return errs.UniqueViolation(idx.Name, vals[i].String())
				}
			}
		}
		if col.References != nil && !vals[i].IsNull() {
			parentIdx, ok := c.Cat.IndexOnColumn(col.References.Table, col.References.Column)
			if !ok {
				return errs.NoSuchIndex(col.References.Table + "." + col.References.Column)
			}
			tree, ok := c.Idx.Tree(parentIdx.Name)
			if !ok || len(tree.PointLookup(vals[i])) == 0 {
				return errs.FKViolation(col.Name, col.References.Table, vals[i].String())
			}
		}
	}
	return nil
}

// recordBatchKeys claims vals' UNIQUE/PRIMARY KEY values in seen, so a
// later row in the same batch collides with this one even before
// either is committed to the live index.
func (c *Context) recordBatchKeys(schema *catalog.Table, vals []value.Value, seen map[string]map[string]bool) {
	for i, col := range schema.Columns {
		if !(col.PrimaryKey || col.Unique) || vals[i].IsNull() {
			continue
		}
		idx, ok := c.Cat.IndexOnColumn(schema.Name, col.Name)
		if !ok {
			continue
		}
		if seen[idx.Name] == nil {
			seen[idx.Name] = make(map[string]bool)
		}
		seen[idx.Name][vals[i].String()] = true
	}
}

func (c *Context) indexRow(schema *catalog.Table, vals []value.Value, rowID int64) {
	for i, col := range schema.Columns {
		if idx, ok := c.Cat.IndexOnColumn(schema.Name, col.Name); ok {
			if tree, ok := c.Idx.Tree(idx.Name); ok {
				tree.Insert(vals[i], rowID)
			}
		}
	}
}

func (c *Context) deindexRow(schema *catalog.Table, vals []value.Value, rowID int64) {
	for i, col := range schema.Columns {
		if idx, ok := c.Cat.IndexOnColumn(schema.Name, col.Name); ok {
			if tree, ok := c.Idx.Tree(idx.Name); ok {
				tree.Remove(vals[i], rowID)
			}
		}
	}
}

// Update evaluates the SET list against each matching row's current
// values, validates the whole batch, then commits it. Like Insert, it
// carries a shadow copy of each UNIQUE/PRIMARY KEY index forward
// across the matched rows, so two rows set to the same key in one
// statement are caught even though neither has been written yet.
func (c *Context) Update(stmt *ast.UpdateStmt) (int, error) {
	schema, err := c.Cat.MustTable(stmt.Table.Name)
	if err != nil {
		return 0, err
	}
	st, ok := c.Store.Table(stmt.Table.Name)
	if !ok {
		return 0, errs.UnknownTable(stmt.Table.Name)
	}

	type pending struct {
		id   int64
		vals []value.Value
		old  []value.Value
	}
	var updates []pending
	seen := make(map[string]map[string]bool)

	for _, row := range st.Rows() {
		current := storage.RowValues(row)
		tuple := newTuple(stmt.Table.Name, columnNames(schema), current, row.ID)
		if stmt.Where != nil {
			tri, err := eval.Predicate(stmt.Where, tuple)
			if err != nil {
				return 0, err
			}
			if !tri.IsTrue() {
				continue
			}
		}
		next := append([]value.Value(nil), current...)
		for _, set := range stmt.Set {
			pos := columnPos(schema, set.Column)
			if pos == -1 {
				return 0, errs.UnknownColumn(set.Column)
			}
			v, err := eval.Eval(set.Expr, tuple)
			if err != nil {
				return 0, err
			}
			next[pos] = v
		}
		if err := c.checkConstraints(schema, next, row.ID, seen); err != nil {
			return 0, err
		}
		c.recordBatchKeys(schema, next, seen)
		updates = append(updates, pending{id: row.ID, vals: next, old: current})
	}

	for _, u := range updates {
		if err := c.Store.MutateRow(stmt.Table.Name, u.id, u.vals); err != nil {
			return 0, err
		}
		c.deindexRow(schema, u.old, u.id)
		c.indexRow(schema, u.vals, u.id)
	}
	return len(updates), nil
}

// Delete removes every row matching where, refusing any row a foreign
// key elsewhere still references.
func (c *Context) Delete(stmt *ast.DeleteStmt) (int, error) {
	schema, err := c.Cat.MustTable(stmt.Table.Name)
	if err != nil {
		return 0, err
	}
	st, ok := c.Store.Table(stmt.Table.Name)
	if !ok {
		return 0, errs.UnknownTable(stmt.Table.Name)
	}
	referencers := c.Cat.ReferencingTables(stmt.Table.Name)

	var toDelete []storage.Row
	for _, row := range st.Rows() {
		current := storage.RowValues(row)
		tuple := newTuple(stmt.Table.Name, columnNames(schema), current, row.ID)
		if stmt.Where != nil {
			tri, err := eval.Predicate(stmt.Where, tuple)
			if err != nil {
				return 0, err
			}
			if !tri.IsTrue() {
				continue
			}
		}
		if err := c.checkReferencingRows(schema, current, referencers); err != nil {
			return 0, err
		}
		toDelete = append(toDelete, row)
	}

	for _, row := range toDelete {
		vals := storage.RowValues(row)
		if err := c.Store.RemoveRow(stmt.Table.Name, row.ID); err != nil {
			return 0, err
		}
		c.deindexRow(schema, vals, row.ID)
	}
	return len(toDelete), nil
}

// checkReferencingRows refuses a delete when some other table holds a
// foreign key whose value matches this row's referenced columns.
func (c *Context) checkReferencingRows(schema *catalog.Table, vals []value.Value, referencers []string) error {
	for _, refTable := range referencers {
		refSchema, err := c.Cat.MustTable(refTable)
		if err != nil {
			continue
		}
		for _, col := range refSchema.Columns {
			if col.References == nil || col.References.Table != schema.Name {
				continue
			}
			targetPos := columnPos(schema, col.References.Column)
			if targetPos == -1 {
				continue
			}
			targetVal := vals[targetPos]
			if targetVal.IsNull() {
				continue
			}
			refStore, ok := c.Store.Table(refTable)
			if !ok {
				continue
			}
			refColPos := columnPos(refSchema, col.Name)
			for _, refRow := range refStore.Rows() {
				refVals := storage.RowValues(refRow)
				if refVals[refColPos].IsNull() {
					continue
				}
				cmp, err := value.Compare(refVals[refColPos], targetVal)
				if err == nil && cmp == 0 {
					return errs.RefusedDelete(schema.Name, refTable)
				}
			}
		}
	}
	return nil
}
