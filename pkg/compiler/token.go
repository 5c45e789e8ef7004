package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	NUMBER     // 10, -3, 3.14
	STRING     // "..." (no escapes)
	TRUE       // "true"
	FALSE      // "false"

	// Declaration keywords
	RG_KEYWORD    // "RG"
	INT_KEYWORD   // "int"
	FLOAT_KEYWORD // "float"
	BOOL_KEYWORD  // "bool"

	// Control flow
	IF       // "if"
	ELSE     // "else"
	WHILE    // "while"
	FOR      // "for"
	BREAK    // "break"
	CONTINUE // "continue"

	// Built-in statements
	PRINT  // "RG_Print"
	INSERT // "insert"
	DELETE // "delete"

	// Math functions
	SQRT      // "sqrt"
	POW       // "pow"
	SIN       // "sin"
	COS       // "cos"
	TAN       // "tan"
	LOG       // "log"
	FACTORIAL // "factorial"

	// Arithmetic operators
	ASSIGN  // =
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	// Comparison (order matters: two-rune forms are matched first)
	LESS_EQ    // <=
	GREATER_EQ // >=
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >

	// Logical
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	NOT         // ! (never followed by =)

	// Paired delimiters
	LBRACKET // [
	RBRACKET // ]
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }

	// Punctuation
	SEMICOLON // ;
	COLON     // :
	COMMA     // ,
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	NUMBER:        "NUMBER",
	STRING:        "STRING",
	TRUE:          "TRUE",
	FALSE:         "FALSE",
	RG_KEYWORD:    "RG_KEYWORD",
	INT_KEYWORD:   "INT_KEYWORD",
	FLOAT_KEYWORD: "FLOAT_KEYWORD",
	BOOL_KEYWORD:  "BOOL_KEYWORD",
	IF:            "IF",
	ELSE:          "ELSE",
	WHILE:         "WHILE",
	FOR:           "FOR",
	BREAK:         "BREAK",
	CONTINUE:      "CONTINUE",
	PRINT:         "PRINT",
	INSERT:        "INSERT",
	DELETE:        "DELETE",
	SQRT:          "SQRT",
	POW:           "POW",
	SIN:           "SIN",
	COS:           "COS",
	TAN:           "TAN",
	LOG:           "LOG",
	FACTORIAL:     "FACTORIAL",
	ASSIGN:        "ASSIGN",
	PLUS:          "PLUS",
	MINUS:         "MINUS",
	STAR:          "MULTIPLY",
	SLASH:         "DIVIDE",
	PERCENT:       "MODULO",
	LESS_EQ:       "LESS_EQUAL",
	GREATER_EQ:    "GREATER_EQUAL",
	EQUALS:        "EQUAL_EQUAL",
	NOT_EQ:        "NOT_EQUAL",
	LESS:          "LESS_THAN",
	GREATER:       "GREATER_THAN",
	AND_LOGICAL:   "AND",
	OR_LOGICAL:    "OR",
	NOT:           "NOT",
	LBRACKET:      "LBRACKET",
	RBRACKET:      "RBRACKET",
	LPAREN:        "LPAREN",
	RPAREN:        "RPAREN",
	LBRACE:        "LBRACE",
	RBRACE:        "RBRACE",
	SEMICOLON:     "SEMICOLON",
	COLON:         "COLON",
	COMMA:         "COMMA",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// opSymbols gives the source spelling of operator tokens; the code
// generator and the AST String methods both render through it.
var opSymbols = map[TokenType]string{
	ASSIGN:      "=",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	LESS_EQ:     "<=",
	GREATER_EQ:  ">=",
	EQUALS:      "==",
	NOT_EQ:      "!=",
	LESS:        "<",
	GREATER:     ">",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	NOT:         "!",
}

// Symbol returns the source spelling of an operator token, or its name.
func (tt TokenType) Symbol() string {
	if s, ok := opSymbols[tt]; ok {
		return s
	}
	return tt.String()
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Offset int    // 0-based rune index of the first rune
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-14s %-16q  offset %d", t.Type, t.Lexeme, t.Offset)
}
