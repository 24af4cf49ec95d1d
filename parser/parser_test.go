package parser

import (
	"testing"

	"github.com/latticedb/lattice/ast"
)

func TestParseSelect(t *testing.T) {
	tests := []struct {
		input    string
		wantCols int
	}{
		{"SELECT * FROM users", 1},
		{"SELECT id, name FROM users", 2},
		{"SELECT id, name, email FROM users WHERE id = 1", 3},
		{"SELECT a.id, b.name FROM a JOIN b ON a.id = b.a_id", 2},
		{"SELECT COUNT(*) FROM users", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			sel, ok := stmt.(*ast.SelectStmt)
			if !ok {
				t.Fatalf("expected SelectStmt, got %T", stmt)
			}
			if len(sel.Columns) != tt.wantCols {
				t.Errorf("expected %d columns, got %d", tt.wantCols, len(sel.Columns))
			}
		})
	}
}

func TestParseSelectJoinNormalization(t *testing.T) {
	p := New("SELECT * FROM a RIGHT JOIN b ON a.id = b.a_id")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	join, ok := sel.From.(*ast.JoinExpr)
	if !ok {
		t.Fatalf("expected JoinExpr, got %T", sel.From)
	}
	if join.Type != ast.JoinLeft {
		t.Errorf("expected RIGHT JOIN to normalize to JoinLeft, got %v", join.Type)
	}
	left, ok := join.Left.(*ast.TableName)
	if !ok || left.Name != "b" {
		t.Errorf("expected normalized left side to be 'b', got %+v", join.Left)
	}
}

func TestParseSelectCrossJoin(t *testing.T) {
	p := New("SELECT * FROM a CROSS JOIN b")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	join, ok := sel.From.(*ast.JoinExpr)
	if !ok {
		t.Fatalf("expected JoinExpr, got %T", sel.From)
	}
	if join.Type != ast.JoinInner || join.On != nil {
		t.Errorf("expected CROSS JOIN to normalize to JoinInner with nil ON, got type=%v on=%v", join.Type, join.On)
	}
}

func TestParseSelectGroupByHavingOrderByLimit(t *testing.T) {
	p := New("SELECT dept, COUNT(*) FROM emp GROUP BY dept HAVING COUNT(*) >= 3 ORDER BY dept DESC LIMIT 10")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	if len(sel.GroupBy) != 1 {
		t.Fatalf("expected 1 GROUP BY expr, got %d", len(sel.GroupBy))
	}
	if sel.Having == nil {
		t.Fatal("expected HAVING clause")
	}
	if len(sel.OrderBy) != 1 || !sel.OrderBy[0].Desc {
		t.Fatalf("expected single DESC order item, got %+v", sel.OrderBy)
	}
	if sel.Limit == nil || sel.Limit.Count != 10 {
		t.Fatalf("expected LIMIT 10, got %+v", sel.Limit)
	}
}

func TestParseInsert(t *testing.T) {
	tests := []struct {
		input string
		want  int // expected number of value rows
	}{
		{"INSERT INTO users (id, name) VALUES (1, 'test')", 1},
		{"INSERT INTO users VALUES (1, 'test'), (2, 'test2')", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(tt.input)
			stmt, err := p.Parse()
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			ins, ok := stmt.(*ast.InsertStmt)
			if !ok {
				t.Fatalf("expected InsertStmt, got %T", stmt)
			}
			if len(ins.Values) != tt.want {
				t.Errorf("expected %d value rows, got %d", tt.want, len(ins.Values))
			}
		})
	}
}

func TestParseUpdate(t *testing.T) {
	p := New("UPDATE users SET name = 'bob', age = age + 1 WHERE id = 1")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	upd, ok := stmt.(*ast.UpdateStmt)
	if !ok {
		t.Fatalf("expected UpdateStmt, got %T", stmt)
	}
	if len(upd.Set) != 2 {
		t.Fatalf("expected 2 SET assignments, got %d", len(upd.Set))
	}
	if upd.Where == nil {
		t.Fatal("expected WHERE clause")
	}
}

func TestParseDelete(t *testing.T) {
	p := New("DELETE FROM users WHERE id = 1")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := stmt.(*ast.DeleteStmt); !ok {
		t.Fatalf("expected DeleteStmt, got %T", stmt)
	}
}

func TestParseCreateTable(t *testing.T) {
	p := New(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		dept_id INTEGER REFERENCES dept(id)
	)`)
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ct, ok := stmt.(*ast.CreateTableStmt)
	if !ok {
		t.Fatalf("expected CreateTableStmt, got %T", stmt)
	}
	if len(ct.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(ct.Columns))
	}
	if ct.Columns[2].Constraints[0].References.Table != "dept" {
		t.Errorf("expected FK reference to dept, got %+v", ct.Columns[2].Constraints[0].References)
	}
}

func TestParseCreateTablePrimaryKeyConstraint(t *testing.T) {
	p := New("CREATE TABLE t (a INTEGER, b INTEGER, PRIMARY KEY (a))")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ct := stmt.(*ast.CreateTableStmt)
	if len(ct.Constraints) != 1 || ct.Constraints[0].Type != ast.ConstraintPrimaryKey {
		t.Fatalf("expected one PRIMARY KEY table constraint, got %+v", ct.Constraints)
	}
}

func TestParseDropTable(t *testing.T) {
	p := New("DROP TABLE users")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := stmt.(*ast.DropTableStmt); !ok {
		t.Fatalf("expected DropTableStmt, got %T", stmt)
	}
}

func TestParseCreateIndex(t *testing.T) {
	p := New("CREATE INDEX idx_name ON users (name)")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ci, ok := stmt.(*ast.CreateIndexStmt)
	if !ok {
		t.Fatalf("expected CreateIndexStmt, got %T", stmt)
	}
	if ci.Column != "name" {
		t.Errorf("expected indexed column 'name', got %q", ci.Column)
	}
}

func TestParseExplainSelect(t *testing.T) {
	p := New("EXPLAIN SELECT * FROM users WHERE id = 1")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ex, ok := stmt.(*ast.ExplainStmt)
	if !ok {
		t.Fatalf("expected ExplainStmt, got %T", stmt)
	}
	if _, ok := ex.Stmt.(*ast.SelectStmt); !ok {
		t.Fatalf("expected wrapped SelectStmt, got %T", ex.Stmt)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	p := New("SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	or, ok := sel.Where.(*ast.BinaryExpr)
	if !ok || or.Op != ast.OpOr {
		t.Fatalf("expected top-level OR, got %+v", sel.Where)
	}
	and, ok := or.Left.(*ast.BinaryExpr)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("expected AND to bind tighter than OR, got %+v", or.Left)
	}
}

func TestParseInAndLike(t *testing.T) {
	p := New("SELECT * FROM t WHERE a IN (1, 2, 3) AND b NOT LIKE '%x%'")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	and := sel.Where.(*ast.BinaryExpr)
	in, ok := and.Left.(*ast.InExpr)
	if !ok || len(in.List) != 3 {
		t.Fatalf("expected IN with 3 values, got %+v", and.Left)
	}
	like, ok := and.Right.(*ast.LikeExpr)
	if !ok || !like.Not {
		t.Fatalf("expected NOT LIKE, got %+v", and.Right)
	}
}

func TestParseIsNullAndIsTrue(t *testing.T) {
	p := New("SELECT * FROM t WHERE a IS NULL AND b IS NOT TRUE")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	sel := stmt.(*ast.SelectStmt)
	and := sel.Where.(*ast.BinaryExpr)
	isNull, ok := and.Left.(*ast.IsExpr)
	if !ok || isNull.Check != ast.IsNull {
		t.Fatalf("expected IS NULL, got %+v", and.Left)
	}
	isNotTrue, ok := and.Right.(*ast.IsExpr)
	if !ok || isNotTrue.Check != ast.IsNotTrue {
		t.Fatalf("expected IS NOT TRUE, got %+v", and.Right)
	}
}

func TestParsePoolRoundTrip(t *testing.T) {
	p := Get("SELECT * FROM t")
	stmt, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ast.ReleaseAST(stmt)
	Put(p)
}
