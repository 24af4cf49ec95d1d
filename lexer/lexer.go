// Package lexer provides a lexical scanner for the lattice SQL dialect.
package lexer

import (
	"sync"

	"github.com/latticedb/lattice/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	start   int        // start position of current token
	pos     int        // current position in input
	line    int        // current line number (1-indexed)
	linePos int        // position of current line start
	item    token.Item // most recently scanned item
	peeked  bool       // whether item contains a peeked token
}

var lexerPool = sync.Pool{
	New: func() any { return &Lexer{} },
}

// New creates a new Lexer for the input string.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Get returns a Lexer from the pool, initialized with the input.
func Get(input string) *Lexer {
	l := lexerPool.Get().(*Lexer)
	l.Reset(input)
	return l
}

// Put returns the Lexer to the pool.
func Put(l *Lexer) {
	lexerPool.Put(l)
}

// Reset resets the lexer to scan new input.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.start = 0
	l.pos = 0
	l.line = 1
	l.linePos = 0
	l.item = token.Item{}
	l.peeked = false
}

// Next returns the next token.
func (l *Lexer) Next() token.Item {
	if l.peeked {
		l.peeked = false
		return l.item
	}
	l.item = l.scan()
	return l.item
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Item {
	if !l.peeked {
		l.item = l.scan()
		l.peeked = true
	}
	return l.item
}

func (l *Lexer) scan() token.Item {
	l.skipWhitespaceAndComments()
	l.start = l.pos

	if l.pos >= len(l.input) {
		return l.makeItem(token.EOF, "")
	}

	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return l.makeItem(token.LPAREN, "(")
	case ')':
		l.pos++
		return l.makeItem(token.RPAREN, ")")
	case ',':
		l.pos++
		return l.makeItem(token.COMMA, ",")
	case ';':
		l.pos++
		return l.makeItem(token.SEMICOLON, ";")
	case '+':
		l.pos++
		return l.makeItem(token.PLUS, "+")
	case '-':
		l.pos++
		return l.makeItem(token.MINUS, "-")
	case '*':
		l.pos++
		return l.makeItem(token.ASTERISK, "*")
	case '/':
		l.pos++
		return l.makeItem(token.SLASH, "/")
	case '.':
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			return l.scanNumber()
		}
		l.pos++
		return l.makeItem(token.DOT, ".")
	case '\'':
		return l.scanStringOrDate()
	case '=':
		l.pos++
		return l.makeItem(token.EQ, "=")
	case '<':
		return l.scanLessThan()
	case '>':
		return l.scanGreaterThan()
	case '!':
		return l.scanBang()
	}

	if isIdentStart(ch) {
		return l.scanIdentifier()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	l.pos++
	return l.makeItem(token.ILLEGAL, string(ch))
}

func (l *Lexer) makeItem(typ token.Token, val string) token.Item {
	return token.Item{
		Type:  typ,
		Value: val,
		Pos: token.Pos{
			Offset: l.start,
			Line:   l.line,
			Column: l.start - l.linePos + 1,
		},
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '\n':
			l.pos++
			l.line++
			l.linePos = l.pos
		case ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-':
			l.pos += 2
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '*':
			l.pos += 2
			for l.pos < len(l.input) {
				if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
					l.pos += 2
					break
				}
				if l.input[l.pos] == '\n' {
					l.line++
					l.linePos = l.pos + 1
				}
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() token.Item {
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	val := l.input[l.start:l.pos]
	return l.makeItem(token.LookupIdent(val), val)
}

func (l *Lexer) scanNumber() token.Item {
	tok := token.INT
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		tok = token.FLOAT
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		tok = token.FLOAT
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return l.makeItem(tok, l.input[l.start:l.pos])
}

// scanStringOrDate scans a single-quoted literal with '' as an embedded
// quote, then classifies it as DATE if its content matches YYYY-MM-DD.
func (l *Lexer) scanStringOrDate() token.Item {
	l.pos++ // skip opening quote
	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				buf = append(buf, '\'')
				l.pos += 2
				continue
			}
			l.pos++
			val := string(buf)
			typ := token.STRING
			if looksLikeDate(val) {
				typ = token.DATE
			}
			return l.makeItem(typ, val)
		}
		if ch == '\n' {
			l.line++
			l.linePos = l.pos + 1
		}
		buf = append(buf, ch)
		l.pos++
	}
	return l.makeItem(token.ILLEGAL, l.input[l.start:l.pos])
}

// looksLikeDate reports whether s has the exact shape YYYY-MM-DD.
func looksLikeDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i, ch := range []byte(s) {
		switch i {
		case 4, 7:
			if ch != '-' {
				return false
			}
		default:
			if !isDigit(ch) {
				return false
			}
		}
	}
	return true
}

func (l *Lexer) scanLessThan() token.Item {
	l.pos++
	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '=':
			l.pos++
			return l.makeItem(token.LTE, "<=")
		case '>':
			l.pos++
			return l.makeItem(token.NEQ, "<>")
		}
	}
	return l.makeItem(token.LT, "<")
}

func (l *Lexer) scanGreaterThan() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '=' {
		l.pos++
		return l.makeItem(token.GTE, ">=")
	}
	return l.makeItem(token.GT, ">")
}

func (l *Lexer) scanBang() token.Item {
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '=' {
		l.pos++
		return l.makeItem(token.NEQ, "!=")
	}
	return l.makeItem(token.ILLEGAL, "!")
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
