package parser

import (
	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/token"
)

func (p *Parser) parseSelect() *ast.SelectStmt {
	pos := p.cur.Pos
	if !p.expect(token.SELECT) {
		return nil
	}

	stmt := ast.GetSelectStmt()
	stmt.StartPos = pos

	stmt.Columns = p.parseSelectExprs()

	if p.curIs(token.FROM) {
		p.advance()
		stmt.From = p.parseTableExpr()
	}

	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
	}

	if p.curIs(token.GROUP) {
		p.advance()
		if !p.expect(token.BY) {
			return nil
		}
		stmt.GroupBy = p.parseExprList()
	}

	if p.curIs(token.HAVING) {
		p.advance()
		stmt.Having = p.parseExpr()
	}

	if p.curIs(token.ORDER) {
		stmt.OrderBy = p.parseOrderBy()
	}

	if p.curIs(token.LIMIT) {
		stmt.Limit = p.parseLimit()
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseSelectExprs() []ast.SelectExpr {
	slicePtr := ast.GetSelectExprSlice()
	exprs := *slicePtr
	for {
		expr := p.parseSelectExpr()
		if expr == nil {
			break
		}
		exprs = append(exprs, expr)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

func (p *Parser) parseSelectExpr() ast.SelectExpr {
	pos := p.cur.Pos

	if p.curIs(token.ASTERISK) {
		p.advance()
		return &ast.StarExpr{StartPos: pos, EndPos: pos}
	}

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if star, ok := expr.(*ast.StarExpr); ok {
		return star
	}

	alias := ""
	if p.curIs(token.AS) {
		p.advance()
		if !p.curIsIdent() {
			p.errorf("expected alias after AS")
			return nil
		}
		alias = p.curIdentValue()
		p.advance()
	} else if p.curIs(token.IDENT) {
		alias = p.cur.Value
		p.advance()
	}

	ae := ast.GetAliasedExpr()
	ae.StartPos = pos
	ae.EndPos = p.cur.Pos
	ae.Expr = expr
	ae.Alias = alias
	return ae
}

func (p *Parser) parseExprList() []ast.Expr {
	slicePtr := ast.GetExprSlice()
	exprs := *slicePtr
	for {
		e := p.parseExpr()
		if e == nil {
			break
		}
		exprs = append(exprs, e)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

// parseTableExpr parses a FROM source followed by zero or more JOIN
// clauses. RIGHT JOIN is normalized to a LEFT JOIN with its operands
// swapped; CROSS JOIN is normalized to an INNER JOIN with a nil ON
// (treated as always-TRUE by the evaluator). Both normalizations keep
// the executor and planner free of a fourth join shape.
func (p *Parser) parseTableExpr() ast.TableExpr {
	left := p.parseTablePrimary()
	if left == nil {
		return nil
	}

	for {
		joinTok, ok := p.joinKeyword()
		if !ok {
			break
		}

		startPos := p.cur.Pos
		p.consumeJoinKeywords()

		right := p.parseTablePrimary()
		if right == nil {
			return nil
		}

		join := ast.GetJoinExpr()
		join.StartPos = startPos
		join.Left = left
		join.Right = right

		switch joinTok {
		case token.RIGHT:
			join.Type = ast.JoinLeft
			join.Left, join.Right = right, left
		case token.CROSS:
			join.Type = ast.JoinInner
		case token.LEFT:
			join.Type = ast.JoinLeft
		default:
			join.Type = ast.JoinInner
		}

		if joinTok != token.CROSS {
			if !p.expect(token.ON) {
				return nil
			}
			join.On = p.parseExpr()
		}

		join.EndPos = p.cur.Pos
		left = join
	}

	return left
}

func (p *Parser) parseTablePrimary() ast.TableExpr {
	if !p.curIsIdent() {
		p.errorf("expected table name")
		return nil
	}

	tn := p.parseTableName()
	if tn == nil {
		return nil
	}

	alias := ""
	if p.curIs(token.AS) {
		p.advance()
	}
	if p.curIs(token.IDENT) {
		alias = p.cur.Value
		p.advance()
	}

	if alias == "" {
		return tn
	}

	aliased := ast.GetAliasedTableExpr()
	aliased.StartPos = tn.Pos()
	aliased.EndPos = p.cur.Pos
	aliased.Expr = tn
	aliased.Alias = alias
	return aliased
}

// joinKeyword reports the join keyword at the current position, if any.
func (p *Parser) joinKeyword() (token.Token, bool) {
	switch p.cur.Type {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.CROSS:
		return p.cur.Type, true
	default:
		return 0, false
	}
}

func (p *Parser) consumeJoinKeywords() {
	for p.curIs(token.INNER) || p.curIs(token.LEFT) || p.curIs(token.RIGHT) ||
		p.curIs(token.OUTER) || p.curIs(token.CROSS) || p.curIs(token.JOIN) {
		p.advance()
	}
}

func (p *Parser) parseOrderBy() []*ast.OrderByExpr {
	p.advance() // consume ORDER
	if !p.expect(token.BY) {
		return nil
	}

	slicePtr := ast.GetOrderBySlice()
	items := *slicePtr
	for {
		pos := p.cur.Pos
		expr := p.parseExpr()
		if expr == nil {
			break
		}

		item := ast.GetOrderByExpr()
		item.StartPos = pos
		item.Expr = expr

		if p.curIs(token.ASC) {
			p.advance()
		} else if p.curIs(token.DESC) {
			item.Desc = true
			p.advance()
		}

		item.EndPos = p.cur.Pos
		items = append(items, item)

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	return items
}

func (p *Parser) parseLimit() *ast.Limit {
	pos := p.cur.Pos
	p.advance() // consume LIMIT

	limit := &ast.Limit{StartPos: pos}
	if p.curIs(token.INT) {
		limit.Count = int64(parseInt(p.cur.Value))
		p.advance()
	} else {
		p.errorf("expected integer after LIMIT")
	}
	limit.EndPos = p.cur.Pos
	return limit
}
