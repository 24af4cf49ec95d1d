// Package storage is the durable row and schema store: per table, a
// schema descriptor and a row file, both TOML documents, written with
// a temp-file-then-atomic-rename discipline so a crash mid-write never
// leaves a half-written artefact on disk. Everything is also mirrored
// fully in memory; reads never touch disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/value"
)

// Row is one stored record: an ordered slice of cell values matching
// the owning table's column order.
type Row struct {
	ID     int64     `toml:"id"`
	Values []rawCell `toml:"values"`
}

// rawCell is a Value's TOML-serializable shape. value.Value has no
// exported fields to tag directly, so storage encodes/decodes through
// this intermediate form.
type rawCell struct {
	Kind  string `toml:"kind"`
	Text  string `toml:"text,omitempty"`
	Int   int64  `toml:"int,omitempty"`
	Float float64 `toml:"float,omitempty"`
	Bool  bool   `toml:"bool,omitempty"`
}

func encodeValue(v value.Value) rawCell {
	switch v.Kind() {
	case value.KindNull:
		return rawCell{Kind: "null"}
	case value.KindInteger:
		return rawCell{Kind: "int", Int: v.AsInteger()}
	case value.KindFloat:
		return rawCell{Kind: "float", Float: v.AsFloat()}
	case value.KindText:
		return rawCell{Kind: "text", Text: v.AsText()}
	case value.KindDate:
		d := v.AsDate()
		return rawCell{Kind: "date", Text: fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)}
	case value.KindBoolean:
		return rawCell{Kind: "bool", Bool: v.AsBool()}
	}
	return rawCell{Kind: "null"}
}

func decodeValue(c rawCell) value.Value {
	switch c.Kind {
	case "int":
		return value.Integer(c.Int)
	case "float":
		return value.Float(c.Float)
	case "text":
		return value.Text(c.Text)
	case "date":
		var y, m, d int
		fmt.Sscanf(c.Text, "%04d-%02d-%02d", &y, &m, &d)
		return value.DateOf(value.Date{Year: y, Month: m, Day: d})
	case "bool":
		return value.Boolean(c.Bool)
	default:
		return value.Null
	}
}

// rowFile is the T.data TOML document: the table's rows in insertion
// order, plus the next row-id to assign.
type rowFile struct {
	NextID int64 `toml:"next_id"`
	Rows   []Row `toml:"rows"`
}

// Table is the in-memory mirror of one table: its schema plus its rows,
// kept in sync with the two on-disk artefacts.
type Table struct {
	Schema *catalog.Table
	rows   []Row
	nextID int64
}

// Rows returns every live row, in insertion order.
func (t *Table) Rows() []Row { return t.rows }

// RowByID returns a row by id, or nil if it no longer exists.
func (t *Table) RowByID(id int64) *Row {
	for i := range t.rows {
		if t.rows[i].ID == id {
			return &t.rows[i]
		}
	}
	return nil
}

// Store is the durable storage engine: one directory holding a
// schema/data file pair per table, fully mirrored in memory.
type Store struct {
	dir    string
	sync   bool
	tables map[string]*Table
}

// Open loads every table found in dir into memory. dir is created if
// it doesn't exist. When sync is true, every write additionally calls
// File.Sync before the atomic rename.
func Open(dir string, sync bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.IOError("open storage directory", err)
	}
	s := &Store{dir: dir, sync: sync, tables: make(map[string]*Table)}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) schemaPath(table string) string { return filepath.Join(s.dir, table+".schema") }
func (s *Store) dataPath(table string) string   { return filepath.Join(s.dir, table+".data") }

// loadAll scans the storage directory for *.schema files and loads
// each table's schema and row data fully into memory. Stray .tmp files
// left behind by a crash mid-rename are ignored: the atomic rename
// contract guarantees the non-tmp target is always in a consistent
// pre- or post-write state.
func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errs.IOError("read storage directory", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		const suffix = ".schema"
		if entry.IsDir() || len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		tableName := name[:len(name)-len(suffix)]
		if err := s.loadTable(tableName); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadTable(name string) error {
	var schema catalog.Table
	if _, err := toml.DecodeFile(s.schemaPath(name), &schema); err != nil {
		return errs.IOError("decode schema for "+name, err)
	}

	var data rowFile
	if _, err := os.Stat(s.dataPath(name)); err == nil {
		if _, err := toml.DecodeFile(s.dataPath(name), &data); err != nil {
			return errs.IOError("decode rows for "+name, err)
		}
	}

	s.tables[name] = &Table{Schema: &schema, rows: data.Rows, nextID: data.NextID}
	return nil
}

// Table looks up a table's in-memory mirror.
func (s *Store) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns every loaded table.
func (s *Store) Tables() map[string]*Table { return s.tables }

// CreateTable registers a brand new table's schema in memory and
// persists it, with an empty row file.
func (s *Store) CreateTable(schema *catalog.Table) error {
	t := &Table{Schema: schema}
	s.tables[schema.Name] = t
	if err := s.writeSchema(t); err != nil {
		return err
	}
	return s.writeRows(t)
}

// DropTable removes a table's in-memory mirror and its on-disk
// artefacts.
func (s *Store) DropTable(name string) error {
	delete(s.tables, name)
	if err := os.Remove(s.schemaPath(name)); err != nil && !os.IsNotExist(err) {
		return errs.IOError("remove schema for "+name, err)
	}
	if err := os.Remove(s.dataPath(name)); err != nil && !os.IsNotExist(err) {
		return errs.IOError("remove rows for "+name, err)
	}
	return nil
}

// AppendRow appends a new row to table, assigns it a row-id, and
// triggers exactly one atomic save of the table's row file.
func (s *Store) AppendRow(table string, values []value.Value) (int64, error) {
	t, ok := s.tables[table]
	if !ok {
		return 0, errs.UnknownTable(table)
	}
	id := t.nextID
	t.nextID++
	cells := make([]rawCell, len(values))
	for i, v := range values {
		cells[i] = encodeValue(v)
	}
	t.rows = append(t.rows, Row{ID: id, Values: cells})
	if err := s.writeRows(t); err != nil {
		return 0, err
	}
	return id, nil
}

// MutateRow replaces a row's values in place and triggers one atomic
// save of the table's row file.
func (s *Store) MutateRow(table string, rowID int64, values []value.Value) error {
	t, ok := s.tables[table]
	if !ok {
		return errs.UnknownTable(table)
	}
	for i := range t.rows {
		if t.rows[i].ID == rowID {
			cells := make([]rawCell, len(values))
			for j, v := range values {
				cells[j] = encodeValue(v)
			}
			t.rows[i].Values = cells
			return s.writeRows(t)
		}
	}
	return fmt.Errorf("no such row %d in table %q", rowID, table)
}

// RemoveRow deletes a row and triggers one atomic save of the table's
// row file.
func (s *Store) RemoveRow(table string, rowID int64) error {
	t, ok := s.tables[table]
	if !ok {
		return errs.UnknownTable(table)
	}
	for i := range t.rows {
		if t.rows[i].ID == rowID {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return s.writeRows(t)
		}
	}
	return fmt.Errorf("no such row %d in table %q", rowID, table)
}

// RowValues decodes a stored Row's cells back into value.Value.
func RowValues(r Row) []value.Value {
	out := make([]value.Value, len(r.Values))
	for i, c := range r.Values {
		out[i] = decodeValue(c)
	}
	return out
}

func (s *Store) writeSchema(t *Table) error {
	return s.atomicWrite(s.schemaPath(t.Schema.Name), t.Schema)
}

func (s *Store) writeRows(t *Table) error {
	return s.atomicWrite(s.dataPath(t.Schema.Name), &rowFile{NextID: t.nextID, Rows: t.rows})
}

// atomicWrite encodes v to TOML, writes it to a sibling temp file,
// flushes it, and renames it over path — the durability contract that
// guarantees path is always either its pre-write or post-write
// contents, never a mixture.
func (s *Store) atomicWrite(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errs.IOError("create "+tmp, err)
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tmp)
		return errs.IOError("encode "+path, err)
	}
	if s.sync {
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(tmp)
			return errs.IOError("sync "+tmp, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errs.IOError("close "+tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.IOError("rename "+tmp+" to "+path, err)
	}
	return nil
}
