package ast

import "github.com/latticedb/lattice/token"

// SelectStmt represents a SELECT statement.
type SelectStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Columns  []SelectExpr // * or a list of projection expressions
	From     TableExpr    // FROM clause, possibly wrapping JoinExpr nodes
	Where    Expr         // optional
	GroupBy  []Expr
	Having   Expr // optional
	OrderBy  []*OrderByExpr
	Limit    *Limit // optional
}

func (*SelectStmt) statementNode()   {}
func (s *SelectStmt) Pos() token.Pos { return s.StartPos }
func (s *SelectStmt) End() token.Pos { return s.EndPos }

// InsertStmt represents an INSERT statement.
type InsertStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableName
	Columns  []string // explicit column list, or nil for positional
	Values   [][]Expr // one or more VALUES rows
}

func (*InsertStmt) statementNode()   {}
func (i *InsertStmt) Pos() token.Pos { return i.StartPos }
func (i *InsertStmt) End() token.Pos { return i.EndPos }

// UpdateStmt represents an UPDATE statement.
type UpdateStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableName
	Set      []*UpdateExpr
	Where    Expr // optional
}

func (*UpdateStmt) statementNode()   {}
func (u *UpdateStmt) Pos() token.Pos { return u.StartPos }
func (u *UpdateStmt) End() token.Pos { return u.EndPos }

// UpdateExpr represents a single SET column = value assignment.
type UpdateExpr struct {
	Column string
	Expr   Expr
}

// DeleteStmt represents a DELETE statement.
type DeleteStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableName
	Where    Expr // optional
}

func (*DeleteStmt) statementNode()   {}
func (d *DeleteStmt) Pos() token.Pos { return d.StartPos }
func (d *DeleteStmt) End() token.Pos { return d.EndPos }

// CreateTableStmt represents CREATE TABLE.
type CreateTableStmt struct {
	StartPos    token.Pos
	EndPos      token.Pos
	Table       *TableName
	Columns     []*ColumnDef
	Constraints []*TableConstraint
}

func (*CreateTableStmt) statementNode()   {}
func (c *CreateTableStmt) Pos() token.Pos { return c.StartPos }
func (c *CreateTableStmt) End() token.Pos { return c.EndPos }

// ColumnDef represents a column definition.
type ColumnDef struct {
	Name        string
	Type        *DataType
	Constraints []*ColumnConstraint
}

// DataType represents a SQL data type, possibly length-bounded (VARCHAR).
type DataType struct {
	Name   string // INTEGER, FLOAT, VARCHAR, DATE, BOOLEAN
	Length *int   // VARCHAR(N)
}

// ColumnConstraint represents a column-level constraint.
type ColumnConstraint struct {
	Type       ConstraintType
	References *ForeignKeyRef // set when Type == ConstraintForeignKey
}

// ConstraintType indicates the kind of constraint.
type ConstraintType int

const (
	ConstraintPrimaryKey ConstraintType = iota
	ConstraintUnique
	ConstraintNotNull
	ConstraintForeignKey
)

// ForeignKeyRef represents a REFERENCES table(column) clause.
type ForeignKeyRef struct {
	Table  string
	Column string
}

// TableConstraint represents a table-level constraint:
// PRIMARY KEY(col) or FOREIGN KEY(col) REFERENCES table(col).
type TableConstraint struct {
	Type       ConstraintType
	Column     string
	References *ForeignKeyRef // set when Type == ConstraintForeignKey
}

// DropTableStmt represents DROP TABLE.
type DropTableStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Table    *TableName
}

func (*DropTableStmt) statementNode()   {}
func (d *DropTableStmt) Pos() token.Pos { return d.StartPos }
func (d *DropTableStmt) End() token.Pos { return d.EndPos }

// CreateIndexStmt represents CREATE INDEX.
type CreateIndexStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
	Table    *TableName
	Column   string
}

func (*CreateIndexStmt) statementNode()   {}
func (c *CreateIndexStmt) Pos() token.Pos { return c.StartPos }
func (c *CreateIndexStmt) End() token.Pos { return c.EndPos }

// ExplainStmt represents EXPLAIN <select-stmt>.
type ExplainStmt struct {
	StartPos token.Pos
	EndPos   token.Pos
	Stmt     Statement
}

func (*ExplainStmt) statementNode()   {}
func (e *ExplainStmt) Pos() token.Pos { return e.StartPos }
func (e *ExplainStmt) End() token.Pos { return e.EndPos }
