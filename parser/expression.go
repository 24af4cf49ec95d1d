package parser

import (
	"reflect"
	"strings"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/token"
)

// isNilExpr checks if an expression is nil, handling typed nils.
func isNilExpr(e ast.Expr) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Operator precedence levels (higher = tighter binding).
const (
	precLowest     = 0
	precOr         = 1 // OR
	precAnd        = 2 // AND
	precComparison = 3 // =, !=, <>, <, >, <=, >=, IS, LIKE, IN
	precAdditive   = 4 // +, -
	precMultiply   = 5 // *, /
)

func precedence(t token.Token) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE:
		return precComparison
	case token.PLUS, token.MINUS:
		return precAdditive
	case token.ASTERISK, token.SLASH:
		return precMultiply
	default:
		return precLowest
	}
}

func binaryOpFor(t token.Token) ast.BinaryOp {
	switch t {
	case token.PLUS:
		return ast.OpAdd
	case token.MINUS:
		return ast.OpSub
	case token.ASTERISK:
		return ast.OpMul
	case token.SLASH:
		return ast.OpDiv
	case token.EQ:
		return ast.OpEq
	case token.NEQ:
		return ast.OpNeq
	case token.LT:
		return ast.OpLt
	case token.GT:
		return ast.OpGt
	case token.LTE:
		return ast.OpLte
	case token.GTE:
		return ast.OpGte
	case token.AND:
		return ast.OpAnd
	case token.OR:
		return ast.OpOr
	}
	return ast.OpEq
}

func isBinaryOp(t token.Token) bool {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.GT, token.LTE, token.GTE,
		token.AND, token.OR:
		return true
	default:
		return false
	}
}

// parseExpr parses an expression using precedence climbing.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrec(precLowest)
}

func (p *Parser) parseExprPrec(minPrec int) ast.Expr {
	left := p.parsePrimaryExpr()
	if left == nil {
		return nil
	}

	for {
		if minPrec <= precComparison && p.curIs(token.IS) {
			if isNilExpr(left) {
				return nil
			}
			left = p.parseIsExpr(left)
			if isNilExpr(left) {
				return nil
			}
			continue
		}
		if minPrec <= precComparison && p.curIs(token.IN) {
			if isNilExpr(left) {
				return nil
			}
			left = p.parseInExpr(left, false)
			if isNilExpr(left) {
				return nil
			}
			continue
		}
		if minPrec <= precComparison && p.curIs(token.LIKE) {
			if isNilExpr(left) {
				return nil
			}
			left = p.parseLikeExpr(left, false)
			if isNilExpr(left) {
				return nil
			}
			continue
		}
		if minPrec <= precComparison && p.curIs(token.NOT) {
			next := p.peek()
			switch next.Type {
			case token.IN:
				if isNilExpr(left) {
					return nil
				}
				p.advance() // consume NOT
				left = p.parseInExpr(left, true)
				if isNilExpr(left) {
					return nil
				}
				continue
			case token.LIKE:
				if isNilExpr(left) {
					return nil
				}
				p.advance() // consume NOT
				left = p.parseLikeExpr(left, true)
				if isNilExpr(left) {
					return nil
				}
				continue
			}
		}

		op := p.cur.Type
		prec := precedence(op)
		if prec < minPrec || !isBinaryOp(op) {
			break
		}

		pos := p.cur.Pos
		p.advance() // consume operator

		right := p.parseExprPrec(prec + 1)
		if right == nil {
			return nil
		}

		bin := ast.GetBinaryExpr()
		bin.StartPos = pos
		bin.EndPos = p.cur.Pos
		bin.Op = binaryOpFor(op)
		bin.Left = left
		bin.Right = right
		left = bin
	}

	return left
}

// parsePrimaryExpr parses primary expressions (atoms and prefix operators).
func (p *Parser) parsePrimaryExpr() ast.Expr {
	switch p.cur.Type {
	case token.INT:
		return p.parseLiteral(ast.LiteralInt)
	case token.FLOAT:
		return p.parseLiteral(ast.LiteralFloat)
	case token.STRING:
		return p.parseLiteral(ast.LiteralString)
	case token.DATE:
		return p.parseLiteral(ast.LiteralDate)
	case token.NULL:
		pos := p.cur.Pos
		p.advance()
		return &ast.Literal{StartPos: pos, EndPos: pos, Type: ast.LiteralNull, Value: "NULL"}
	case token.TRUE:
		pos := p.cur.Pos
		p.advance()
		return &ast.Literal{StartPos: pos, EndPos: pos, Type: ast.LiteralBool, Value: "TRUE"}
	case token.FALSE:
		pos := p.cur.Pos
		p.advance()
		return &ast.Literal{StartPos: pos, EndPos: pos, Type: ast.LiteralBool, Value: "FALSE"}
	case token.ASTERISK:
		pos := p.cur.Pos
		p.advance()
		return &ast.StarExpr{StartPos: pos, EndPos: pos}
	case token.LPAREN:
		return p.parseParenExpr()
	case token.NOT:
		return p.parseNotExpr()
	case token.MINUS:
		return p.parseUnaryMinus()
	case token.COUNT, token.SUM, token.AVG, token.MIN, token.MAX:
		return p.parseAggFuncCall()
	case token.IDENT:
		return p.parseIdentifier()
	default:
		p.errorf("unexpected token %v in expression", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseLiteral(litType ast.LiteralType) *ast.Literal {
	lit := ast.GetLiteral()
	lit.StartPos = p.cur.Pos
	lit.EndPos = p.cur.Pos
	lit.Type = litType
	lit.Value = p.cur.Value
	p.advance()
	return lit
}

func (p *Parser) parseIdentifier() ast.Expr {
	pos := p.cur.Pos
	name := p.cur.Value
	p.advance()

	if p.curIs(token.DOT) {
		p.advance()
		if !p.curIs(token.IDENT) {
			p.errorf("expected identifier after '.'")
			return nil
		}
		col := ast.GetColName()
		col.StartPos = pos
		col.EndPos = p.cur.Pos
		col.Qualifier = name
		col.Name = p.cur.Value
		p.advance()
		return col
	}

	col := ast.GetColName()
	col.StartPos = pos
	col.EndPos = pos
	col.Name = name
	return col
}

func (p *Parser) parseAggFuncCall() *ast.FuncExpr {
	pos := p.cur.Pos
	name := strings.ToUpper(p.cur.Value)
	p.advance()

	fn := ast.GetFuncExpr()
	fn.StartPos = pos
	fn.Name = name

	if !p.expect(token.LPAREN) {
		return fn
	}

	if p.curIs(token.ASTERISK) {
		fn.Star = true
		p.advance()
	} else {
		fn.Arg = p.parseExpr()
	}

	p.expect(token.RPAREN)
	fn.EndPos = p.cur.Pos
	return fn
}

func (p *Parser) parseParenExpr() *ast.ParenExpr {
	pos := p.cur.Pos
	p.advance() // consume '('
	inner := p.parseExpr()
	p.expect(token.RPAREN)
	return &ast.ParenExpr{StartPos: pos, EndPos: p.cur.Pos, Expr: inner}
}

func (p *Parser) parseNotExpr() *ast.UnaryExpr {
	pos := p.cur.Pos
	p.advance() // consume NOT
	// NOT binds tighter than AND/OR but looser than comparison, so its
	// operand stops before a trailing AND/OR rather than absorbing it:
	// "NOT a = b AND c" parses as "(NOT a = b) AND c".
	operand := p.parseExprPrec(precComparison)
	u := ast.GetUnaryExpr()
	u.StartPos = pos
	u.EndPos = p.cur.Pos
	u.Op = ast.OpNot
	u.Operand = operand
	return u
}

func (p *Parser) parseUnaryMinus() *ast.UnaryExpr {
	pos := p.cur.Pos
	p.advance() // consume '-'
	operand := p.parseExprPrec(precMultiply)
	u := ast.GetUnaryExpr()
	u.StartPos = pos
	u.EndPos = p.cur.Pos
	u.Op = ast.OpNeg
	u.Operand = operand
	return u
}

func (p *Parser) parseIsExpr(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume IS

	not := false
	if p.curIs(token.NOT) {
		not = true
		p.advance()
	}

	var check ast.IsCheck
	switch p.cur.Type {
	case token.NULL:
		if not {
			check = ast.IsNotNull
		} else {
			check = ast.IsNull
		}
		p.advance()
	case token.TRUE:
		if not {
			check = ast.IsNotTrue
		} else {
			check = ast.IsTrue
		}
		p.advance()
	case token.FALSE:
		if not {
			check = ast.IsNotFalse
		} else {
			check = ast.IsFalse
		}
		p.advance()
	default:
		p.errorf("expected NULL, TRUE, or FALSE after IS")
		return nil
	}

	return &ast.IsExpr{StartPos: pos, EndPos: p.cur.Pos, Expr: left, Check: check}
}

func (p *Parser) parseInExpr(left ast.Expr, not bool) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume IN
	if !p.expect(token.LPAREN) {
		return nil
	}

	in := &ast.InExpr{StartPos: pos, Expr: left, Not: not}
	for {
		e := p.parseExpr()
		if e == nil {
			break
		}
		in.List = append(in.List, e)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	in.EndPos = p.cur.Pos
	return in
}

func (p *Parser) parseLikeExpr(left ast.Expr, not bool) ast.Expr {
	pos := p.cur.Pos
	p.advance() // consume LIKE
	pattern := p.parseExprPrec(precComparison + 1)
	return &ast.LikeExpr{StartPos: pos, EndPos: p.cur.Pos, Expr: left, Pattern: pattern, Not: not}
}
