package compiler

import (
	"unicode"
)

// keywords maps source words to their TokenType. Words are scanned whole
// before lookup, so "printable" or "format" never match a keyword prefix.
var keywords = map[string]TokenType{
	"RG":        RG_KEYWORD,
	"int":       INT_KEYWORD,
	"float":     FLOAT_KEYWORD,
	"bool":      BOOL_KEYWORD,
	"if":        IF,
	"else":      ELSE,
	"while":     WHILE,
	"for":       FOR,
	"break":     BREAK,
	"continue":  CONTINUE,
	"RG_Print":  PRINT,
	"true":      TRUE,
	"false":     FALSE,
	"insert":    INSERT,
	"delete":    DELETE,
	"sqrt":      SQRT,
	"pow":       POW,
	"sin":       SIN,
	"cos":       COS,
	"tan":       TAN,
	"log":       LOG,
	"factorial": FACTORIAL,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	prev TokenType
	seen bool // at least one token emitted; prev is valid
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// operandExpected reports whether a '-' directly followed by a digit
// belongs to a numeric literal. After anything that ends an operand the
// minus is the binary operator, so "x-1" stays a subtraction.
func (l *Lexer) operandExpected() bool {
	if !l.seen {
		return true
	}
	switch l.prev {
	case IDENTIFIER, NUMBER, STRING, TRUE, FALSE, RPAREN, RBRACKET:
		return false
	}
	return true
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Offset: start, Line: line}
}

// scanNumber collects an optionally signed decimal literal with an
// optional fractional part. A '.' only belongs to the literal when a
// digit follows it.
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Offset: start, Line: line}
}

// scanString collects a string literal "...". The lexeme keeps its quotes.
// There are no escape sequences; a literal may span lines.
func (l *Lexer) scanString() (Token, error) {
	line := l.line
	start := l.pos
	l.advance() // consume opening "
	for l.pos < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{}, &LexError{Offset: start, Line: line, Char: '"', Msg: "unterminated string literal"}
	}
	l.advance() // consume closing "
	return Token{Type: STRING, Lexeme: string(l.src[start:l.pos]), Offset: start, Line: line}, nil
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Offset: l.pos, Line: l.line}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line
	start := l.pos

	if isIdentStart(ch) {
		return l.scanIdent(), nil
	}
	if isDigit(ch) || (ch == '-' && isDigit(l.peek2()) && l.operandExpected()) {
		return l.scanNumber(), nil
	}
	if ch == '"' {
		return l.scanString()
	}

	tok := func(tt TokenType, lexeme string) (Token, error) {
		return Token{Type: tt, Lexeme: lexeme, Offset: start, Line: line}, nil
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return tok(LBRACE, "{")
	case '}':
		return tok(RBRACE, "}")
	case '(':
		return tok(LPAREN, "(")
	case ')':
		return tok(RPAREN, ")")
	case '[':
		return tok(LBRACKET, "[")
	case ']':
		return tok(RBRACKET, "]")
	case ';':
		return tok(SEMICOLON, ";")
	case ',':
		return tok(COMMA, ",")
	case ':':
		return tok(COLON, ":")
	case '+':
		return tok(PLUS, "+")
	case '-':
		return tok(MINUS, "-")
	case '*':
		return tok(STAR, "*")
	case '/':
		return tok(SLASH, "/")
	case '%':
		return tok(PERCENT, "%")
	case '<':
		if l.peek() == '=' {
			l.advance()
			return tok(LESS_EQ, "<=")
		}
		return tok(LESS, "<")
	case '>':
		if l.peek() == '=' {
			l.advance()
			return tok(GREATER_EQ, ">=")
		}
		return tok(GREATER, ">")
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return tok(EQUALS, "==")
		}
		return tok(ASSIGN, "=")
	case '!':
		if l.peek() == '=' {
			l.advance()
			return tok(NOT_EQ, "!=")
		}
		return tok(NOT, "!")
	case '&':
		if l.peek() == '&' {
			l.advance()
			return tok(AND_LOGICAL, "&&")
		}
	case '|':
		if l.peek() == '|' {
			l.advance()
			return tok(OR_LOGICAL, "||")
		}
	}
	return Token{}, &LexError{Offset: start, Line: line, Char: ch}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a *LexError on the first character no token can start with.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
		l.prev = tok.Type
		l.seen = true
	}
}
