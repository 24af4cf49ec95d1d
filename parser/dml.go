package parser

import (
	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/token"
)

func (p *Parser) parseInsert() *ast.InsertStmt {
	pos := p.cur.Pos
	p.advance() // consume INSERT

	stmt := &ast.InsertStmt{StartPos: pos}

	if !p.expect(token.INTO) {
		return nil
	}
	stmt.Table = p.parseTableName()

	if p.curIs(token.LPAREN) {
		p.advance()
		for {
			if !p.curIsIdent() {
				break
			}
			stmt.Columns = append(stmt.Columns, p.curIdentValue())
			p.advance()
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	if !p.expect(token.VALUES) {
		return nil
	}
	stmt.Values = p.parseValuesList()

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseValuesList() [][]ast.Expr {
	var rows [][]ast.Expr

	for {
		if !p.curIs(token.LPAREN) {
			break
		}
		p.advance()

		var row []ast.Expr
		for {
			e := p.parseExpr()
			if e == nil {
				break
			}
			row = append(row, e)
			if !p.curIs(token.COMMA) {
				break
			}
			p.advance()
		}
		rows = append(rows, row)

		p.expect(token.RPAREN)

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	return rows
}

func (p *Parser) parseUpdate() *ast.UpdateStmt {
	pos := p.cur.Pos
	p.advance() // consume UPDATE

	stmt := &ast.UpdateStmt{StartPos: pos}
	stmt.Table = p.parseTableName()

	if !p.expect(token.SET) {
		return nil
	}
	stmt.Set = p.parseUpdateExprs()

	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseUpdateExprs() []*ast.UpdateExpr {
	var exprs []*ast.UpdateExpr
	for {
		if !p.curIsIdent() {
			break
		}
		col := p.curIdentValue()
		p.advance()
		if !p.expect(token.EQ) {
			break
		}
		val := p.parseExpr()
		exprs = append(exprs, &ast.UpdateExpr{Column: col, Expr: val})

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return exprs
}

func (p *Parser) parseDelete() *ast.DeleteStmt {
	pos := p.cur.Pos
	p.advance() // consume DELETE

	if !p.expect(token.FROM) {
		return nil
	}

	stmt := &ast.DeleteStmt{StartPos: pos}
	stmt.Table = p.parseTableName()

	if p.curIs(token.WHERE) {
		p.advance()
		stmt.Where = p.parseExpr()
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}
