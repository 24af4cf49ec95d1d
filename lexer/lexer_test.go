package lexer

import (
	"testing"

	"github.com/latticedb/lattice/token"
)

func collect(input string) []token.Item {
	l := New(input)
	var items []token.Item
	for {
		it := l.Next()
		items = append(items, token.Item{Type: it.Type, Value: it.Value})
		if it.Type == token.EOF {
			break
		}
	}
	return items
}

func assertTypes(t *testing.T, input string, want []token.Token) {
	t.Helper()
	got := collect(input)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens, want %d: %v", input, len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Type != w {
			t.Fatalf("%q: token %d: got %v, want %v", input, i, got[i].Type, w)
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	assertTypes(t, "SELECT * FROM users", []token.Token{
		token.SELECT, token.ASTERISK, token.FROM, token.IDENT, token.EOF,
	})
	assertTypes(t, "SELECT id, name FROM users WHERE id = 1", []token.Token{
		token.SELECT, token.IDENT, token.COMMA, token.IDENT, token.FROM,
		token.IDENT, token.WHERE, token.IDENT, token.EQ, token.INT, token.EOF,
	})
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	assertTypes(t, "select * from Users", []token.Token{
		token.SELECT, token.ASTERISK, token.FROM, token.IDENT, token.EOF,
	})
}

func TestLexerOperators(t *testing.T) {
	assertTypes(t, "a != b <> c <= d >= e", []token.Token{
		token.IDENT, token.NEQ, token.IDENT, token.NEQ, token.IDENT,
		token.LTE, token.IDENT, token.GTE, token.IDENT, token.EOF,
	})
}

func TestLexerStringWithEmbeddedQuote(t *testing.T) {
	items := collect(`'it''s fine'`)
	if items[0].Type != token.STRING || items[0].Value != "it's fine" {
		t.Fatalf("got %+v", items[0])
	}
}

func TestLexerStringWithCommaAndOperators(t *testing.T) {
	items := collect(`'a, b = c'`)
	if items[0].Type != token.STRING || items[0].Value != "a, b = c" {
		t.Fatalf("got %+v, want single STRING token preserving comma/operator chars", items[0])
	}
}

func TestLexerDateLiteral(t *testing.T) {
	items := collect(`'2024-01-15'`)
	if items[0].Type != token.DATE || items[0].Value != "2024-01-15" {
		t.Fatalf("got %+v, want DATE token", items[0])
	}
}

func TestLexerNonDateStringNotReclassified(t *testing.T) {
	items := collect(`'2024-01-1'`)
	if items[0].Type != token.STRING {
		t.Fatalf("got %+v, want STRING (not a valid date shape)", items[0])
	}
}

func TestLexerFloatAndExponent(t *testing.T) {
	assertTypes(t, "1.5 2e10 3.2e-3", []token.Token{
		token.FLOAT, token.FLOAT, token.FLOAT, token.EOF,
	})
}

func TestLexerLineComment(t *testing.T) {
	assertTypes(t, "SELECT 1 -- trailing comment\nFROM t", []token.Token{
		token.SELECT, token.INT, token.FROM, token.IDENT, token.EOF,
	})
}

func TestLexerBlockComment(t *testing.T) {
	assertTypes(t, "SELECT /* mid */ 1 FROM t", []token.Token{
		token.SELECT, token.INT, token.FROM, token.IDENT, token.EOF,
	})
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	l := New("SELECT 1")
	p1 := l.Peek()
	p2 := l.Peek()
	if p1.Type != token.SELECT || p2.Type != token.SELECT {
		t.Fatalf("peek should be idempotent, got %v %v", p1, p2)
	}
	n := l.Next()
	if n.Type != token.SELECT {
		t.Fatalf("next after peek should return the peeked token, got %v", n)
	}
	n2 := l.Next()
	if n2.Type != token.INT {
		t.Fatalf("got %v, want INT", n2.Type)
	}
}

func TestLexerPool(t *testing.T) {
	l := Get("SELECT 1")
	if l.Next().Type != token.SELECT {
		t.Fatal("expected SELECT")
	}
	Put(l)
}

func TestLexerIllegalCharacter(t *testing.T) {
	items := collect("SELECT ~ FROM t")
	if items[1].Type != token.ILLEGAL {
		t.Fatalf("got %+v, want ILLEGAL", items[1])
	}
}
