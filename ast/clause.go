package ast

import "github.com/latticedb/lattice/token"

// TableName represents a bare table reference.
type TableName struct {
	StartPos token.Pos
	EndPos   token.Pos
	Name     string
}

func (*TableName) tableExprNode()   {}
func (t *TableName) Pos() token.Pos { return t.StartPos }
func (t *TableName) End() token.Pos { return t.EndPos }

// AliasedTableExpr represents a table (or join) with an optional alias.
type AliasedTableExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     TableExpr
	Alias    string // empty if no alias given
}

func (*AliasedTableExpr) tableExprNode()   {}
func (a *AliasedTableExpr) Pos() token.Pos { return a.StartPos }
func (a *AliasedTableExpr) End() token.Pos { return a.EndPos }

// JoinExpr represents a JOIN.
type JoinExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Type     JoinType
	Left     TableExpr
	Right    TableExpr
	On       Expr // ON condition; nil for CROSS JOIN
}

// JoinType indicates the kind of join, already normalized by the parser:
// RIGHT JOIN is rewritten to JoinLeft with Left/Right swapped, and
// CROSS JOIN is rewritten to JoinInner with On == nil (treated as TRUE).
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
)

func (j JoinType) String() string {
	if j == JoinLeft {
		return "LEFT"
	}
	return "INNER"
}

func (*JoinExpr) tableExprNode()   {}
func (j *JoinExpr) Pos() token.Pos { return j.StartPos }
func (j *JoinExpr) End() token.Pos { return j.EndPos }

// OrderByExpr represents a single ORDER BY item.
type OrderByExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Desc     bool
}

func (o *OrderByExpr) Pos() token.Pos { return o.StartPos }
func (o *OrderByExpr) End() token.Pos { return o.EndPos }

// Limit represents a LIMIT clause.
type Limit struct {
	StartPos token.Pos
	EndPos   token.Pos
	Count    int64
}

func (l *Limit) Pos() token.Pos { return l.StartPos }
func (l *Limit) End() token.Pos { return l.EndPos }

// AliasedExpr represents a projection item: expr [AS alias].
type AliasedExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
	Expr     Expr
	Alias    string // empty if no alias given
}

func (*AliasedExpr) selectExprNode()  {}
func (a *AliasedExpr) Pos() token.Pos { return a.StartPos }
func (a *AliasedExpr) End() token.Pos { return a.EndPos }

// StarExpr represents * in a projection list. COUNT(*) is represented by
// FuncExpr.Star instead.
type StarExpr struct {
	StartPos token.Pos
	EndPos   token.Pos
}

func (*StarExpr) selectExprNode()  {}
func (*StarExpr) exprNode()        {}
func (s *StarExpr) Pos() token.Pos { return s.StartPos }
func (s *StarExpr) End() token.Pos { return s.EndPos }
