package token

// keywords maps lowercase keyword strings to token types.
var keywords map[string]Token

func init() {
	keywords = map[string]Token{
		"select":     SELECT,
		"from":       FROM,
		"where":      WHERE,
		"group":      GROUP,
		"by":         BY,
		"having":     HAVING,
		"order":      ORDER,
		"asc":        ASC,
		"desc":       DESC,
		"limit":      LIMIT,
		"insert":     INSERT,
		"into":       INTO,
		"values":     VALUES,
		"update":     UPDATE,
		"set":        SET,
		"delete":     DELETE,
		"create":     CREATE,
		"table":      TABLE,
		"index":      INDEX,
		"drop":       DROP,
		"on":         ON,
		"as":         AS,
		"and":        AND,
		"or":         OR,
		"not":        NOT,
		"in":         IN,
		"like":       LIKE,
		"is":         IS,
		"null":       NULL,
		"true":       TRUE,
		"false":      FALSE,
		"join":       JOIN,
		"inner":      INNER,
		"left":       LEFT,
		"right":      RIGHT,
		"outer":      OUTER,
		"cross":      CROSS,
		"using":      USING,
		"primary":    PRIMARY,
		"key":        KEY,
		"unique":     UNIQUE,
		"references": REFERENCES,
		"foreign":    FOREIGN,
		"count":      COUNT,
		"sum":        SUM,
		"avg":        AVG,
		"min":        MIN,
		"max":        MAX,
		"int":        INT_KW,
		"integer":    INTEGER,
		"varchar":    VARCHAR,
		"float":      FLOAT_KW,
		"date":       DATE_KW,
		"boolean":    BOOLEAN,
		"explain":    EXPLAIN,
	}
}

// LookupIdent returns the token type for an identifier. If the identifier
// is a reserved keyword (matched case-insensitively), the keyword token is
// returned; otherwise IDENT.
func LookupIdent(ident string) Token {
	if isLowercase(ident) {
		if tok, ok := keywords[ident]; ok {
			return tok
		}
		return IDENT
	}
	if len(ident) <= 32 {
		var buf [32]byte
		for i := 0; i < len(ident); i++ {
			c := ident[i]
			if c >= 'A' && c <= 'Z' {
				buf[i] = c + 32
			} else {
				buf[i] = c
			}
		}
		lower := string(buf[:len(ident)])
		if tok, ok := keywords[lower]; ok {
			return tok
		}
		return IDENT
	}
	return IDENT
}

func isLowercase(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			return false
		}
	}
	return true
}

// IsKeyword returns true if ident names a reserved keyword.
func IsKeyword(ident string) bool {
	return LookupIdent(ident) != IDENT
}
