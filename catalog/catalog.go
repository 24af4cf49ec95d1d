// Package catalog holds the schema metadata for every table and index in
// a database: column definitions, constraints, and the reverse foreign-key
// map used to enforce RefusedDrop/RefusedDelete. The catalog never touches
// row data; that's storage's job.
package catalog

import (
	"fmt"
	"time"

	"github.com/latticedb/lattice/errs"
)

// ColumnType is the declared type of a column. Scale differs from a
// runtime value.Kind only in that Varchar carries a length bound.
type ColumnType int

const (
	TypeInteger ColumnType = iota
	TypeFloat
	TypeVarchar
	TypeDate
	TypeBoolean
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeVarchar:
		return "VARCHAR"
	case TypeDate:
		return "DATE"
	case TypeBoolean:
		return "BOOLEAN"
	}
	return "UNKNOWN"
}

// Column is a single column's schema, serialized as part of a table's
// T.schema TOML document.
type Column struct {
	Name       string      `toml:"name"`
	Type       ColumnType  `toml:"type"`
	Length     int         `toml:"length,omitempty"` // VARCHAR(N) bound; 0 otherwise
	PrimaryKey bool        `toml:"primary_key"`
	Unique     bool        `toml:"unique"`
	NotNull    bool        `toml:"not_null"`
	References *ForeignKey `toml:"references,omitempty"`
}

// ForeignKey names the table/column a column's FOREIGN KEY constraint
// targets. The target must resolve to a UNIQUE or PRIMARY KEY column.
type ForeignKey struct {
	Table  string `toml:"table"`
	Column string `toml:"column"`
}

// Index is a named index over one column of one table.
type Index struct {
	Name   string `toml:"name"`
	Table  string `toml:"table"`
	Column string `toml:"column"`
	Unique bool   `toml:"unique"`
}

// Table is one table's full schema document, the T.schema artefact that
// storage persists via TOML.
type Table struct {
	Name      string    `toml:"name"`
	Columns   []*Column `toml:"columns"`
	CreatedAt time.Time `toml:"created_at"`
}

// ColumnByName looks up a column by name, or nil if it doesn't exist.
func (t *Table) ColumnByName(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumn returns the table's PRIMARY KEY column, or nil if it
// declares none (at most one is permitted by Catalog.CreateTable).
func (t *Table) PrimaryKeyColumn() *Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return nil
}

// Catalog holds every table and index in the database, keyed by name,
// plus the reverse foreign-key map used to check RefusedDrop/RefusedDelete
// without scanning every table's columns on each call.
type Catalog struct {
	tables  map[string]*Table
	indexes map[string]*Index

	// referencedBy maps a table name to the set of tables whose columns
	// hold a FOREIGN KEY into it. Backward links for foreign keys,
	// maintained incrementally by CreateTable/DropTable.
	referencedBy map[string]map[string]bool
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		tables:       make(map[string]*Table),
		indexes:      make(map[string]*Index),
		referencedBy: make(map[string]map[string]bool),
	}
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// MustTable looks up a table by name, returning UnknownTable if absent.
func (c *Catalog) MustTable(name string) (*Table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, errs.UnknownTable(name)
	}
	return t, nil
}

// Tables returns every table, for introspection and storage's load-all.
func (c *Catalog) Tables() []*Table {
	out := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		out = append(out, t)
	}
	return out
}

// Index looks up an index by name.
func (c *Catalog) Index(name string) (*Index, bool) {
	idx, ok := c.indexes[name]
	return idx, ok
}

// Indexes returns every index, for introspection.
func (c *Catalog) Indexes() []*Index {
	out := make([]*Index, 0, len(c.indexes))
	for _, idx := range c.indexes {
		out = append(out, idx)
	}
	return out
}

// IndexesOnTable returns every index defined on a table's column.
func (c *Catalog) IndexesOnTable(table string) []*Index {
	var out []*Index
	for _, idx := range c.indexes {
		if idx.Table == table {
			out = append(out, idx)
		}
	}
	return out
}

// IndexOnColumn returns the index (if any) covering table.column.
func (c *Catalog) IndexOnColumn(table, column string) (*Index, bool) {
	for _, idx := range c.indexes {
		if idx.Table == table && idx.Column == column {
			return idx, true
		}
	}
	return nil, false
}

// CreateTable validates and registers a new table. Validation rejects
// duplicate column names, more than one PRIMARY KEY, and foreign keys
// whose target isn't an existing UNIQUE or PRIMARY KEY column. On
// success it also synthesizes the implicit unique index every
// PRIMARY KEY/UNIQUE column gets, named "{table}_{col}_idx".
func (c *Catalog) CreateTable(t *Table) ([]*Index, error) {
	if _, exists := c.tables[t.Name]; exists {
		return nil, fmt.Errorf("table %q already exists", t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	pkCount := 0
	for _, col := range t.Columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true
		if col.PrimaryKey {
			pkCount++
			col.NotNull = true
			col.Unique = true
		}
	}
	if pkCount > 1 {
		return nil, fmt.Errorf("table %q declares more than one PRIMARY KEY", t.Name)
	}

	for _, col := range t.Columns {
		if col.References == nil {
			continue
		}
		target, ok := c.tables[col.References.Table]
		if !ok {
			return nil, errs.UnknownTable(col.References.Table)
		}
		targetCol := target.ColumnByName(col.References.Column)
		if targetCol == nil {
			return nil, errs.UnknownColumn(col.References.Column)
		}
		if !targetCol.PrimaryKey && !targetCol.Unique {
			return nil, fmt.Errorf("foreign key target %s.%s is not UNIQUE or PRIMARY KEY", col.References.Table, col.References.Column)
		}
	}

	var newIndexes []*Index
	for _, col := range t.Columns {
		if col.PrimaryKey || col.Unique {
			idx := &Index{
				Name:   fmt.Sprintf("%s_%s_idx", t.Name, col.Name),
				Table:  t.Name,
				Column: col.Name,
				Unique: true,
			}
			c.indexes[idx.Name] = idx
			newIndexes = append(newIndexes, idx)
		}
	}

	c.tables[t.Name] = t
	for _, col := range t.Columns {
		if col.References != nil {
			c.addReference(col.References.Table, t.Name)
		}
	}
	return newIndexes, nil
}

// DropTable removes a table after checking that no other table holds a
// foreign key into it.
func (c *Catalog) DropTable(name string) error {
	if _, ok := c.tables[name]; !ok {
		return errs.UnknownTable(name)
	}
	if referencers := c.referencedBy[name]; len(referencers) > 0 {
		for referencer := range referencers {
			return errs.RefusedDrop(name, referencer)
		}
	}
	delete(c.tables, name)
	for idxName, idx := range c.indexes {
		if idx.Table == name {
			delete(c.indexes, idxName)
		}
	}
	delete(c.referencedBy, name)
	for _, refs := range c.referencedBy {
		delete(refs, name)
	}
	return nil
}

// CreateIndex registers a new named index over a table's column.
func (c *Catalog) CreateIndex(name, table, column string, unique bool) (*Index, error) {
	if _, exists := c.indexes[name]; exists {
		return nil, fmt.Errorf("index %q already exists", name)
	}
	t, ok := c.tables[table]
	if !ok {
		return nil, errs.UnknownTable(table)
	}
	if t.ColumnByName(column) == nil {
		return nil, errs.UnknownColumn(column)
	}
	idx := &Index{Name: name, Table: table, Column: column, Unique: unique}
	c.indexes[name] = idx
	return idx, nil
}

func (c *Catalog) addReference(target, referencer string) {
	if c.referencedBy[target] == nil {
		c.referencedBy[target] = make(map[string]bool)
	}
	c.referencedBy[target][referencer] = true
}

// ReferencingTables returns the tables that hold a foreign key into the
// named table, used by RefusedDrop/RefusedDelete checks.
func (c *Catalog) ReferencingTables(table string) []string {
	refs := c.referencedBy[table]
	out := make([]string, 0, len(refs))
	for name := range refs {
		out = append(out, name)
	}
	return out
}

// TableDescriptor is the introspection projection for one table, per the
// synthetic "tables" result set (table, columns, rows, primary_key, indexes).
type TableDescriptor struct {
	Table      string
	Columns    []string
	Rows       int
	PrimaryKey string
	Indexes    []string
}

// IndexDescriptor is the introspection projection for one index, per the
// synthetic "indexes" result set (name, table, column, unique, size).
type IndexDescriptor struct {
	Name   string
	Table  string
	Column string
	Unique bool
	Size   int
}
