// Package plan builds the structural EXPLAIN document for a statement:
// which access method each table source uses, how joins are carried
// out, and whether grouping/ordering/limiting apply. It consults only
// the catalog, never row data, and shares its index-selection logic
// with the executor so EXPLAIN never diverges from what actually runs.
package plan

import (
	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/catalog"
	"github.com/latticedb/lattice/render"
	"github.com/latticedb/lattice/visitor"
)

// SourceStep describes how one table source in a FROM/JOIN tree is
// accessed.
type SourceStep struct {
	Table       string
	Alias       string
	Method      string // "full-scan" or "index-scan"
	IndexName   string // set when Method == "index-scan"
	ProbeColumn string // set when Method == "index-scan"
}

// JoinStep describes how one JOIN in a FROM tree is carried out.
type JoinStep struct {
	Type        string // "INNER" or "LEFT"
	IndexAware  bool
	IndexName   string
	ProbeColumn string
	Condition   string
}

// GroupingStep describes a SELECT's GROUP BY/aggregate shape.
type GroupingStep struct {
	Columns    []string
	Aggregates []string
}

// Document is the full structural plan for one statement.
type Document struct {
	Kind      string // "SELECT", "INSERT", "UPDATE", "DELETE", "CREATE TABLE", ...
	Sources   []SourceStep
	Joins     []JoinStep
	Grouping  *GroupingStep
	HasHaving bool
	OrderBy   []string
	Limit     *int64
}

// Explain builds the structural plan for stmt against cat.
func Explain(cat *catalog.Catalog, stmt ast.Statement) (*Document, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return explainSelect(cat, s)
	case *ast.InsertStmt:
		return &Document{Kind: "INSERT"}, nil
	case *ast.UpdateStmt:
		return &Document{Kind: "UPDATE", Sources: []SourceStep{{Table: s.Table.Name, Alias: s.Table.Name, Method: "full-scan"}}}, nil
	case *ast.DeleteStmt:
		return &Document{Kind: "DELETE", Sources: []SourceStep{{Table: s.Table.Name, Alias: s.Table.Name, Method: "full-scan"}}}, nil
	case *ast.CreateTableStmt:
		return &Document{Kind: "CREATE TABLE"}, nil
	case *ast.DropTableStmt:
		return &Document{Kind: "DROP TABLE"}, nil
	case *ast.CreateIndexStmt:
		return &Document{Kind: "CREATE INDEX"}, nil
	default:
		return &Document{Kind: "UNKNOWN"}, nil
	}
}

func explainSelect(cat *catalog.Catalog, s *ast.SelectStmt) (*Document, error) {
	doc := &Document{Kind: "SELECT"}

	if s.From != nil {
		tables := visitor.TableRefs(s.From)
		joins := collectJoins(s.From)

		singleTable := len(joins) == 0 && len(tables) == 1
		for _, tn := range tables {
			step := SourceStep{Table: tn.Name, Alias: tn.Name, Method: "full-scan"}
			if singleTable {
				if sc := ChooseScan(cat, tn.Name, s.Where); sc != nil {
					step.Method = "index-scan"
					step.IndexName = sc.Index.Name
					step.ProbeColumn = sc.Column
				}
			}
			doc.Sources = append(doc.Sources, step)
		}

		for _, j := range joins {
			rightAlias := visitor.TableAlias(j.Right)
			rightTables := visitor.TableRefs(j.Right)
			js := JoinStep{Type: joinTypeName(j.Type)}
			if j.On != nil {
				js.Condition = render.Expr(j.On)
			}
			if len(rightTables) == 1 {
				if idx, col, _, ok := ChooseJoinIndex(cat, rightTables[0].Name, rightAlias, j.On); ok {
					js.IndexAware = true
					js.IndexName = idx.Name
					js.ProbeColumn = col
				}
			}
			doc.Joins = append(doc.Joins, js)
		}
	}

	if len(s.GroupBy) > 0 || selectHasAggregate(s) {
		g := &GroupingStep{}
		for _, e := range s.GroupBy {
			g.Columns = append(g.Columns, render.Expr(e))
		}
		for _, c := range s.Columns {
			ae, ok := c.(*ast.AliasedExpr)
			if !ok {
				continue
			}
			if fe, ok := ae.Expr.(*ast.FuncExpr); ok {
				g.Aggregates = append(g.Aggregates, render.Expr(fe))
			}
		}
		doc.Grouping = g
	}
	doc.HasHaving = s.Having != nil

	for _, ob := range s.OrderBy {
		text := render.Expr(ob.Expr)
		if ob.Desc {
			text += " DESC"
		} else {
			text += " ASC"
		}
		doc.OrderBy = append(doc.OrderBy, text)
	}

	if s.Limit != nil {
		n := s.Limit.Count
		doc.Limit = &n
	}

	return doc, nil
}

func selectHasAggregate(s *ast.SelectStmt) bool {
	for _, c := range s.Columns {
		if ae, ok := c.(*ast.AliasedExpr); ok && visitor.HasAggregate(ae.Expr) {
			return true
		}
	}
	return false
}

func collectJoins(te ast.TableExpr) []*ast.JoinExpr {
	var joins []*ast.JoinExpr
	var walk func(ast.TableExpr)
	walk = func(e ast.TableExpr) {
		if j, ok := e.(*ast.JoinExpr); ok {
			walk(j.Left)
			joins = append(joins, j)
		}
	}
	walk(te)
	return joins
}

func joinTypeName(t ast.JoinType) string {
	if t == ast.JoinLeft {
		return "LEFT"
	}
	return "INNER"
}
