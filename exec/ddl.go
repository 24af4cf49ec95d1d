package exec

import (
	"time"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/storage"
)

func (c *Context) columnFromDef(def *ast.ColumnDef) (*catalog.Column, error) {
	col := &catalog.Column{Name: def.Name}
	switch def.Type.Name {
	case "INTEGER":
		col.Type = catalog.TypeInteger
	case "FLOAT":
		col.Type = catalog.TypeFloat
	case "VARCHAR":
		col.Type = catalog.TypeVarchar
		if def.Type.Length == nil {
			return nil, errs.TypeMismatch("VARCHAR requires a length, e.g. VARCHAR(%d)", 255)
		}
		col.Length = *def.Type.Length
		if col.Length <= 0 {
			return nil, errs.TypeMismatch("VARCHAR length must be positive, got %d", col.Length)
		}
		if c.MaxVarchar > 0 && col.Length > c.MaxVarchar {
			return nil, errs.TypeMismatch("VARCHAR(%d) exceeds the configured maximum of %d", col.Length, c.MaxVarchar)
		}
	case "DATE":
		col.Type = catalog.TypeDate
	case "BOOLEAN":
		col.Type = catalog.TypeBoolean
	default:
		return nil, errs.TypeMismatch("unknown column type %q", def.Type.Name)
	}
	for _, cons := range def.Constraints {
		switch cons.Type {
		case ast.ConstraintPrimaryKey:
			col.PrimaryKey = true
		case ast.ConstraintUnique:
			col.Unique = true
		case ast.ConstraintNotNull:
			col.NotNull = true
		case ast.ConstraintForeignKey:
			col.References = &catalog.ForeignKey{Table: cons.References.Table, Column: cons.References.Column}
		}
	}
	return col, nil
}

// CreateTable registers a new table's schema, persists it, and seeds
// any index the schema implies (PRIMARY KEY/UNIQUE columns) into the
// in-memory registry, empty.
func (c *Context) CreateTable(stmt *ast.CreateTableStmt) error {
	t := &catalog.Table{Name: stmt.Table.Name, CreatedAt: time.Now()}
	for _, def := range stmt.Columns {
		col, err := c.columnFromDef(def)
		if err != nil {
			return err
		}
		t.Columns = append(t.Columns, col)
	}
	for _, tc := range stmt.Constraints {
		switch tc.Type {
		case ast.ConstraintPrimaryKey:
			if col := t.ColumnByName(tc.Column); col != nil {
				col.PrimaryKey = true
			}
		case ast.ConstraintForeignKey:
			if col := t.ColumnByName(tc.Column); col != nil {
				col.References = &catalog.ForeignKey{Table: tc.References.Table, Column: tc.References.Column}
			}
		}
	}

	newIndexes, err := c.Cat.CreateTable(t)
	if err != nil {
		return err
	}
	if err := c.Store.CreateTable(t); err != nil {
		return err
	}
	for _, idx := range newIndexes {
		c.Idx.Ensure(idx.Name, idx.Unique)
	}
	return nil
}

// DropTable removes a table's schema, storage artefacts and indexes,
// refusing if another table holds a foreign key into it.
func (c *Context) DropTable(stmt *ast.DropTableStmt) error {
	indexes := c.Cat.IndexesOnTable(stmt.Table.Name)
	if err := c.Cat.DropTable(stmt.Table.Name); err != nil {
		return err
	}
	if err := c.Store.DropTable(stmt.Table.Name); err != nil {
		return err
	}
	for _, idx := range indexes {
		c.Idx.Drop(idx.Name)
	}
	return nil
}

// CreateIndex registers a new named index and populates its tree by
// scanning the table's current rows, skipping NULL keys.
func (c *Context) CreateIndex(stmt *ast.CreateIndexStmt) error {
	idx, err := c.Cat.CreateIndex(stmt.Name, stmt.Table.Name, stmt.Column, false)
	if err != nil {
		return err
	}
	tree := c.Idx.Ensure(idx.Name, idx.Unique)

	schema, err := c.Cat.MustTable(stmt.Table.Name)
	if err != nil {
		return err
	}
	colPos := -1
	for i, col := range schema.Columns {
		if col.Name == stmt.Column {
			colPos = i
			break
		}
	}
	st, ok := c.Store.Table(stmt.Table.Name)
	if !ok {
		return errs.UnknownTable(stmt.Table.Name)
	}
	for _, row := range st.Rows() {
		vals := storage.RowValues(row)
		if vals[colPos].IsNull() {
			continue
		}
		if err := tree.Insert(vals[colPos], row.ID); err != nil {
			return err
		}
	}
	return nil
}
