// Package engine is the public facade over the rest of the database:
// it wires storage, catalog, the in-memory index registry, and the
// executor together, and exposes the three operations a caller needs —
// Execute, Explain, and Introspect.
package engine

import (
	"fmt"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/config"
	"github.com/latticedb/lattice/errs"
	"github.com/latticedb/lattice/exec"
	"github.com/latticedb/lattice/index"
	"github.com/latticedb/lattice/logging"
	"github.com/latticedb/lattice/parser"
	"github.com/latticedb/lattice/plan"
	"github.com/latticedb/lattice/storage"
	"github.com/latticedb/lattice/value"
)

// asSyntaxError lifts a parser.ParseError into the errs taxonomy so
// every error the facade returns is classifiable by band, per the
// SyntaxError entry in §6/§7 of the spec this engine implements.
func asSyntaxError(err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(parser.ParseError); ok {
		return errs.SyntaxError(pe.Pos.Offset, "%s", pe.Message)
	}
	return err
}

// Engine is an open database: one data directory, fully loaded into
// memory, with its PRIMARY KEY and UNIQUE indexes rebuilt from current
// row data.
type Engine struct {
	store *storage.Store
	cat   *catalog.Catalog
	idx   *index.Registry
	ctx   *exec.Context
}

// Open loads (or creates) the database at cfg.DataDir and rebuilds its
// catalog and its PRIMARY KEY and UNIQUE indexes from the rows it finds on
// disk. Indexes made by CREATE INDEX are not persisted, so they are absent
// after reopening.
func Open(cfg *config.Config) (*Engine, error) {
	log := logging.GetLogger("engine")
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.DataDir, cfg.Sync)
	if err != nil {
		return nil, err
	}

	cat := catalog.New()
	reg := index.NewRegistry()
	var pending []*storage.Table
	for _, t := range store.Tables() {
		pending = append(pending, t)
	}
	for len(pending) > 0 {
		var deferred []*storage.Table
		var lastErr error
		for _, t := range pending {
			newIndexes, err := cat.CreateTable(t.Schema)
			if err != nil {
				deferred, lastErr = append(deferred, t), fmt.Errorf("rebuilding catalog for table %q: %w", t.Schema.Name, err)
				continue
			}
			for _, idxMeta := range newIndexes {
				tree := reg.Ensure(idxMeta.Name, idxMeta.Unique)
				if err := populateIndex(tree, t, idxColumnPos(t.Schema, idxMeta.Column)); err != nil {
					return nil, err
				}
			}
		}
		if len(deferred) == len(pending) {
			return nil, lastErr
		}
		pending = deferred
	}
	log.Info("opened database", "data_dir", cfg.DataDir, "tables", len(store.Tables()))

	e := &Engine{
		store: store,
		cat:   cat,
		idx:   reg,
		ctx:   &exec.Context{Store: store, Cat: cat, Idx: reg, MaxVarchar: cfg.MaxVarchar},
	}
	return e, nil
}

func idxColumnPos(schema *catalog.Table, column string) int {
	for i, c := range schema.Columns {
		if c.Name == column {
			return i
		}
	}
	return -1
}

func populateIndex(tree *index.Tree, t *storage.Table, colPos int) error {
	if colPos == -1 {
		return fmt.Errorf("indexed column not found in table %q", t.Schema.Name)
	}
	for _, row := range t.Rows() {
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

// Execute parses and runs one SQL statement, returning a result set
// for SELECT and a summary result set with an affected-row count for
// INSERT/UPDATE/DELETE. DDL statements return an empty result set.
func (e *Engine) Execute(sql string) (*exec.ResultSet, error) {
	stmt, err := parser.New(sql).Parse()
	if err != nil {
		return nil, asSyntaxError(err)
	}
	return e.ExecuteStatement(stmt)
}

// ExecuteStatement runs an already-parsed statement.
func (e *Engine) ExecuteStatement(stmt ast.Statement) (*exec.ResultSet, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return e.ctx.Select(s)

	case *ast.InsertStmt:
		n, err := e.ctx.Insert(s)
		return rowsAffected(n, err)

	case *ast.UpdateStmt:
		n, err := e.ctx.Update(s)
		return rowsAffected(n, err)

	case *ast.DeleteStmt:
		n, err := e.ctx.Delete(s)
		return rowsAffected(n, err)

	case *ast.CreateTableStmt:
		if err := e.ctx.CreateTable(s); err != nil {
			return nil, err
		}
		return &exec.ResultSet{}, nil

	case *ast.DropTableStmt:
		if err := e.ctx.DropTable(s); err != nil {
			return nil, err
		}
		return &exec.ResultSet{}, nil

	case *ast.CreateIndexStmt:
		if err := e.ctx.CreateIndex(s); err != nil {
			return nil, err
		}
		return &exec.ResultSet{}, nil

	case *ast.ExplainStmt:
		doc, err := plan.Explain(e.cat, s.Stmt)
		if err != nil {
			return nil, err
		}
		return explainResultSet(doc), nil

	default:
		return nil, fmt.Errorf("unsupported statement type %T", stmt)
	}
}

func rowsAffected(n int, err error) (*exec.ResultSet, error) {
	if err != nil {
		return nil, err
	}
	return &exec.ResultSet{
		Columns: []string{"rows_affected"},
		Rows:    [][]value.Value{{value.Integer(int64(n))}},
	}, nil
}

// Explain parses sql and returns its structural EXPLAIN document.
func (e *Engine) Explain(sql string) (*plan.Document, error) {
	stmt, err := parser.New(sql).Parse()
	if err != nil {
		return nil, asSyntaxError(err)
	}
	if ex, ok := stmt.(*ast.ExplainStmt); ok {
		stmt = ex.Stmt
	}
	return plan.Explain(e.cat, stmt)
}

// IntrospectKind selects which synthetic system result set Introspect
// produces.
type IntrospectKind int

const (
	IntrospectTables IntrospectKind = iota
	IntrospectIndexes
)

// Introspect returns a synthetic result set describing the database's
// tables or indexes, per the catalog's descriptor shapes.
func (e *Engine) Introspect(kind IntrospectKind) (*exec.ResultSet, error) {
	switch kind {
	case IntrospectTables:
		return e.introspectTables(), nil
	case IntrospectIndexes:
		return e.introspectIndexes(), nil
	default:
		return nil, fmt.Errorf("unknown introspection kind %d", kind)
	}
}

func (e *Engine) introspectTables() *exec.ResultSet {
	rs := &exec.ResultSet{Columns: []string{"table", "columns", "rows", "primary_key", "indexes"}}
	for _, t := range e.cat.Tables() {
		var colNames []string
		for _, c := range t.Columns {
			colNames = append(colNames, c.Name)
		}
		pk := ""
		if pkCol := t.PrimaryKeyColumn(); pkCol != nil {
			pk = pkCol.Name
		}
		var idxNames []string
		for _, idx := range e.cat.IndexesOnTable(t.Name) {
			idxNames = append(idxNames, idx.Name)
		}
		rowCount := 0
		if st, ok := e.store.Table(t.Name); ok {
			rowCount = len(st.Rows())
		}
		rs.Rows = append(rs.Rows, []value.Value{
			value.Text(t.Name),
			value.Text(joinNames(colNames)),
			value.Integer(int64(rowCount)),
			value.Text(pk),
			value.Text(joinNames(idxNames)),
		})
	}
	return rs
}

func (e *Engine) introspectIndexes() *exec.ResultSet {
	rs := &exec.ResultSet{Columns: []string{"name", "table", "column", "unique", "size"}}
	for _, idx := range e.cat.Indexes() {
		size := 0
		if tree, ok := e.idx.Tree(idx.Name); ok {
			size = tree.Size()
		}
		rs.Rows = append(rs.Rows, []value.Value{
			value.Text(idx.Name),
			value.Text(idx.Table),
			value.Text(idx.Column),
			value.Boolean(idx.Unique),
			value.Integer(int64(size)),
		})
	}
	return rs
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

func explainResultSet(doc *plan.Document) *exec.ResultSet {
	rs := &exec.ResultSet{Columns: []string{"step", "detail"}}
	rs.Rows = append(rs.Rows, []value.Value{value.Text("kind"), value.Text(doc.Kind)})
	for _, s := range doc.Sources {
		detail := fmt.Sprintf("%s as %s: %s", s.Table, s.Alias, s.Method)
		if s.Method == "index-scan" {
			detail += fmt.Sprintf(" via %s on %s", s.IndexName, s.ProbeColumn)
		}
		rs.Rows = append(rs.Rows, []value.Value{value.Text("source"), value.Text(detail)})
	}
	for _, j := range doc.Joins {
		detail := fmt.Sprintf("%s JOIN ON %s", j.Type, j.Condition)
		if j.IndexAware {
			detail += fmt.Sprintf(" (index %s on %s)", j.IndexName, j.ProbeColumn)
		}
		rs.Rows = append(rs.Rows, []value.Value{value.Text("join"), value.Text(detail)})
	}
	if doc.Grouping != nil {
		detail := fmt.Sprintf("group by %v, aggregates %v", doc.Grouping.Columns, doc.Grouping.Aggregates)
		rs.Rows = append(rs.Rows, []value.Value{value.Text("grouping"), value.Text(detail)})
	}
	if doc.HasHaving {
		rs.Rows = append(rs.Rows, []value.Value{value.Text("having"), value.Text("present")})
	}
	if len(doc.OrderBy) > 0 {
		rs.Rows = append(rs.Rows, []value.Value{value.Text("order_by"), value.Text(fmt.Sprintf("%v", doc.OrderBy))})
	}
	if doc.Limit != nil {
		rs.Rows = append(rs.Rows, []value.Value{value.Text("limit"), value.Text(fmt.Sprintf("%d", *doc.Limit))})
	}
	return rs
}
