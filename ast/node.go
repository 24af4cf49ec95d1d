// Package ast defines the abstract syntax tree for the lattice SQL dialect.
package ast

import "github.com/latticedb/lattice/token"

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Statement represents a SQL statement.
type Statement interface {
	Node
	statementNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
}

// TableExpr represents a table expression (in a FROM or JOIN clause).
type TableExpr interface {
	Node
	tableExprNode()
}

// SelectExpr represents a projection expression (in a SELECT clause).
type SelectExpr interface {
	Node
	selectExprNode()
}
