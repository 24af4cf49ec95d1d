// Package parser provides a recursive descent SQL parser.
package parser

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/latticedb/lattice/ast"
	"github.com/latticedb/lattice/lexer"
	"github.com/latticedb/lattice/token"
)

// Parser is a recursive descent SQL parser.
type Parser struct {
	lexer  *lexer.Lexer
	errors []ParseError
	cur    token.Item // current token
}

// ParseError represents a parse error with position.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// New creates a new parser for the given input.
func New(input string) *Parser {
	p := &Parser{
		lexer: lexer.New(input),
	}
	p.advance() // prime the first token
	return p
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// Get returns a parser from the pool for the given input.
// Call Put(p) when done to return it to the pool.
func Get(input string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(input)
	p.errors = p.errors[:0]
	p.cur = token.Item{}
	p.advance()
	return p
}

// Put returns the parser and its lexer to the pool.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

// Parse parses a single statement.
func (p *Parser) Parse() (ast.Statement, error) {
	if p.curIs(token.EOF) {
		return nil, nil
	}
	stmt := p.parseStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	for p.curIs(token.SEMICOLON) {
		p.advance()
	}
	if !p.curIs(token.EOF) {
		p.errorf("unexpected token %v after statement", p.cur.Type)
		return nil, p.errors[0]
	}
	return stmt, nil
}

// Token navigation methods

func (p *Parser) advance() {
	p.cur = p.lexer.Next()
}

func (p *Parser) curIs(t token.Token) bool {
	return p.cur.Type == t
}

// curIsIdent returns true if the current token can be used as an identifier.
// This includes both IDENT tokens and keywords, which double as identifiers
// in contexts like table and column names.
func (p *Parser) curIsIdent() bool {
	return p.cur.Type == token.IDENT || p.cur.Type.IsKeyword()
}

func (p *Parser) curIdentValue() string {
	return p.cur.Value
}

func (p *Parser) peek() token.Item {
	return p.lexer.Peek()
}

func (p *Parser) peekIs(t token.Token) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t token.Token) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	p.errorf("expected %v, got %v", t, p.cur.Type)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{
		Pos:     p.cur.Pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// parseStatement dispatches to the appropriate statement parser.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.CREATE:
		return p.parseCreate()
	case token.DROP:
		return p.parseDropTable()
	case token.EXPLAIN:
		return p.parseExplain()
	default:
		p.errorf("unexpected token %v at start of statement", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseCreate() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume CREATE

	switch p.cur.Type {
	case token.TABLE:
		return p.parseCreateTable(pos)
	case token.INDEX:
		return p.parseCreateIndex(pos)
	default:
		p.errorf("expected TABLE or INDEX after CREATE")
		return nil
	}
}

func (p *Parser) parseCreateTable(pos token.Pos) ast.Statement {
	p.advance() // consume TABLE

	stmt := &ast.CreateTableStmt{StartPos: pos}
	stmt.Table = p.parseTableName()

	if !p.expect(token.LPAREN) {
		return nil
	}

	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.PRIMARY) || p.curIs(token.FOREIGN) {
			constraint := p.parseTableConstraint()
			if constraint != nil {
				stmt.Constraints = append(stmt.Constraints, constraint)
			}
		} else {
			col := p.parseColumnDef()
			if col != nil {
				stmt.Columns = append(stmt.Columns, col)
			}
		}

		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}

	p.expect(token.RPAREN)
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseColumnDef() *ast.ColumnDef {
	if !p.curIsIdent() {
		p.errorf("expected column name")
		return nil
	}

	col := &ast.ColumnDef{Name: p.cur.Value}
	p.advance()

	col.Type = p.parseDataType()
	col.Constraints = p.parseColumnConstraints()
	return col
}

func (p *Parser) parseDataType() *ast.DataType {
	dt := &ast.DataType{}

	if !p.curIsIdent() {
		p.errorf("expected data type")
		return dt
	}
	dt.Name = p.cur.Value
	p.advance()

	if p.curIs(token.LPAREN) {
		p.advance()
		if p.curIs(token.INT) {
			n := parseInt(p.cur.Value)
			dt.Length = &n
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	return dt
}

func (p *Parser) parseColumnConstraints() []*ast.ColumnConstraint {
	var constraints []*ast.ColumnConstraint

	for {
		switch p.cur.Type {
		case token.NOT:
			p.advance()
			if p.curIs(token.NULL) {
				p.advance()
				constraints = append(constraints, &ast.ColumnConstraint{Type: ast.ConstraintNotNull})
			} else {
				p.errorf("expected NULL after NOT")
			}
		case token.PRIMARY:
			p.advance()
			p.expect(token.KEY)
			constraints = append(constraints, &ast.ColumnConstraint{Type: ast.ConstraintPrimaryKey})
		case token.UNIQUE:
			p.advance()
			constraints = append(constraints, &ast.ColumnConstraint{Type: ast.ConstraintUnique})
		case token.REFERENCES:
			p.advance()
			constraints = append(constraints, &ast.ColumnConstraint{
				Type:       ast.ConstraintForeignKey,
				References: p.parseForeignKeyRef(),
			})
		default:
			return constraints
		}
	}
}

func (p *Parser) parseForeignKeyRef() *ast.ForeignKeyRef {
	ref := &ast.ForeignKeyRef{}
	if !p.curIsIdent() {
		p.errorf("expected referenced table name")
		return ref
	}
	ref.Table = p.cur.Value
	p.advance()

	if p.expect(token.LPAREN) {
		if p.curIsIdent() {
			ref.Column = p.cur.Value
			p.advance()
		}
		p.expect(token.RPAREN)
	}
	return ref
}

func (p *Parser) parseTableConstraint() *ast.TableConstraint {
	tc := &ast.TableConstraint{}

	switch p.cur.Type {
	case token.PRIMARY:
		p.advance()
		p.expect(token.KEY)
		tc.Type = ast.ConstraintPrimaryKey
		if p.expect(token.LPAREN) {
			if p.curIsIdent() {
				tc.Column = p.cur.Value
				p.advance()
			}
			p.expect(token.RPAREN)
		}
	case token.FOREIGN:
		p.advance()
		p.expect(token.KEY)
		tc.Type = ast.ConstraintForeignKey
		if p.expect(token.LPAREN) {
			if p.curIsIdent() {
				tc.Column = p.cur.Value
				p.advance()
			}
			p.expect(token.RPAREN)
		}
		p.expect(token.REFERENCES)
		tc.References = p.parseForeignKeyRef()
	default:
		p.errorf("expected PRIMARY KEY or FOREIGN KEY")
	}

	return tc
}

func (p *Parser) parseCreateIndex(pos token.Pos) ast.Statement {
	p.advance() // consume INDEX

	stmt := &ast.CreateIndexStmt{StartPos: pos}

	if p.curIsIdent() {
		stmt.Name = p.cur.Value
		p.advance()
	}

	p.expect(token.ON)
	stmt.Table = p.parseTableName()

	if p.expect(token.LPAREN) {
		if p.curIsIdent() {
			stmt.Column = p.cur.Value
			p.advance()
		}
		p.expect(token.RPAREN)
	}

	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseDropTable() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume DROP
	if !p.expect(token.TABLE) {
		return nil
	}

	stmt := &ast.DropTableStmt{StartPos: pos}
	stmt.Table = p.parseTableName()
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseExplain() ast.Statement {
	pos := p.cur.Pos
	p.advance() // consume EXPLAIN

	stmt := &ast.ExplainStmt{StartPos: pos}
	stmt.Stmt = p.parseStatement()
	stmt.EndPos = p.cur.Pos
	return stmt
}

func (p *Parser) parseTableName() *ast.TableName {
	if !p.curIsIdent() {
		p.errorf("expected table name")
		return nil
	}

	pos := p.cur.Pos
	name := p.curIdentValue()
	p.advance()

	tn := ast.GetTableName()
	tn.StartPos = pos
	tn.EndPos = p.cur.Pos
	tn.Name = name
	return tn
}

func parseInt(s string) int {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	if n > int64(int(^uint(0)>>1)) {
		return int(^uint(0) >> 1)
	}
	if n < int64(-int(^uint(0)>>1)-1) {
		return -int(^uint(0)>>1) - 1
	}
	return int(n)
}
