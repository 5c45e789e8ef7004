package compiler

import (
	"fmt"
	"strconv"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program     = statement* EOF
//	statement   = decl ";" | print ";" | if | while | for | block
//	            | "break" ";" | "continue" ";" | insert ";" | delete ";"
//	            | expression ";"
//	decl        = "RG" ("int" | "float" | "bool") IDENTIFIER ("[" expression "]")? ("=" expression)?
//	print       = "RG_Print" "(" (expression ("," expression)*)? ")"
//	if          = "if" "(" expression ")" block ("else" (if | block))?
//	while       = "while" "(" expression ")" block
//	for         = "for" "(" (decl | expression)? ";" expression? ";" expression? ")" block
//	block       = "{" statement* "}"
//	insert      = "insert" "(" IDENTIFIER "," expression ")"
//	delete      = "delete" "(" IDENTIFIER "," expression ")"
//	expression  = assignment
//	assignment  = logical_or ("=" assignment)?
//	logical_or  = logical_and ("||" logical_and)*
//	logical_and = equality ("&&" equality)*
//	equality    = comparison (("==" | "!=") comparison)*
//	comparison  = additive (("<" | "<=" | ">" | ">=") additive)*
//	additive    = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary       = ("-" | "!") unary | mathcall
//	mathcall    = MATHFN "(" args? ")" | primary
//	primary     = NUMBER | STRING | "true" | "false" | "(" expression ")"
//	            | IDENTIFIER ("[" expression "]" | "(" args? ")")?
//
// Missing semicolons are recorded as warnings. Any other error inside a
// statement is recorded and the parser skips ahead to the next statement
// boundary, so one pass reports every independent error.
type Parser struct {
	tokens   []Token
	pos      int
	errs     ErrorList
	warnings []Warning
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+offset]
}

// eof synthesises an end marker for token slices that lack one.
func (p *Parser) eof() Token {
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		return Token{Type: EOF, Offset: last.Offset + len([]rune(last.Lexeme)), Line: last.Line}
	}
	return Token{Type: EOF, Line: 1}
}

// previous returns the most recently consumed token.
func (p *Parser) previous() Token {
	if p.pos == 0 || p.pos > len(p.tokens) {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

// advance consumes and returns the current token. It never moves past EOF.
func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Type != EOF && p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt. On a mismatch the
// token is left in place so recovery can resynchronise on it.
func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorAt(tok, "expected %s %s, got %s", describe(tt), context, describeToken(tok))
	}
	return p.advance(), nil
}

// expectSemicolon consumes a ';' or records a warning if it is missing.
func (p *Parser) expectSemicolon(after string) {
	if p.peek().Type == SEMICOLON {
		p.advance()
		return
	}
	prev := p.previous()
	p.warnings = append(p.warnings, Warning{
		Offset: prev.Offset,
		Line:   prev.Line,
		Msg:    "missing ';' after " + after,
	})
}

func (p *Parser) errorAt(tok Token, format string, args ...any) *ParseError {
	return &ParseError{Token: tok, Msg: fmt.Sprintf(format, args...)}
}

func describe(tt TokenType) string {
	switch tt {
	case IDENTIFIER:
		return "identifier"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case EOF:
		return "end of input"
	}
	if s, ok := opSymbols[tt]; ok {
		return "'" + s + "'"
	}
	if s, ok := punctSymbols[tt]; ok {
		return "'" + s + "'"
	}
	return tt.String()
}

var punctSymbols = map[TokenType]string{
	LBRACKET:  "[",
	RBRACKET:  "]",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	SEMICOLON: ";",
	COLON:     ":",
	COMMA:     ",",
}

func describeToken(tok Token) string {
	if tok.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Lexeme)
}

// record keeps a statement-level error for the final ErrorList.
func (p *Parser) record(err error) {
	if pe, ok := err.(*ParseError); ok {
		p.errs = append(p.errs, pe)
		return
	}
	p.errs = append(p.errs, &ParseError{Token: p.peek(), Msg: err.Error()})
}

// synchronize discards tokens up to the next statement boundary: just past
// a ';' or '}', or just before a token that starts a statement. Inside a
// block a '}' is left for the block to close itself. start is the position
// the failed statement began at; at least one token is always consumed.
func (p *Parser) synchronize(start int, inBlock bool) {
	if p.pos == start {
		tok := p.advance()
		if tok.Type == SEMICOLON || tok.Type == RBRACE {
			return
		}
	}
	for {
		switch p.peek().Type {
		case EOF, RG_KEYWORD, IF, ELSE, FOR, WHILE, BREAK, CONTINUE, PRINT, LBRACE:
			return
		case RBRACE:
			if !inBlock {
				p.advance()
			}
			return
		case SEMICOLON:
			p.advance()
			return
		}
		p.advance()
	}
}

// Parse builds a Program from tokens. Statement-level errors are recovered
// from; if any occurred the returned error is an ErrorList and the Program
// holds every statement that did parse. Tokens left after the end-of-input
// marker are a fatal ErrTrailingInput.
func Parse(tokens []Token) (*Program, []Warning, error) {
	p := NewParser(tokens)
	prog := &Program{}
	for p.peek().Type != EOF {
		start := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			p.record(err)
			p.synchronize(start, false)
			continue
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	if rest := len(p.tokens) - p.pos; rest > 1 {
		tok := p.tokens[p.pos+1]
		p.errs = append(p.errs, &ParseError{
			Token: tok,
			Msg:   fmt.Sprintf("%d unconsumed token(s) after end of program", rest-1),
			Err:   ErrTrailingInput,
		})
	}
	if len(p.errs) > 0 {
		p.errs.sort()
		return prog, p.warnings, p.errs
	}
	return prog, p.warnings, nil
}

// parseStatement dispatches to the correct sub-parser based on the leading token.
func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case RG_KEYWORD:
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		p.expectSemicolon("declaration")
		return decl, nil
	case PRINT:
		return p.parsePrint()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case LBRACE:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return block, nil
	case BREAK:
		p.advance()
		p.expectSemicolon("break")
		return &BreakStmt{Line: tok.Line}, nil
	case CONTINUE:
		p.advance()
		p.expectSemicolon("continue")
		return &ContinueStmt{Line: tok.Line}, nil
	case INSERT, DELETE:
		return p.parseArrayOp()
	case ELSE:
		return nil, p.errorAt(tok, "'else' without a matching 'if'")
	case RBRACE:
		return nil, p.errorAt(tok, "unexpected '}'")
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.expectSemicolon("expression")
	return exprToStmt(expr), nil
}

// exprToStmt lifts top-level assignments into their statement forms.
func exprToStmt(expr Expr) Stmt {
	switch e := expr.(type) {
	case *AssignExpr:
		return &AssignStmt{Name: e.Name, Value: e.Value}
	case *IndexAssignExpr:
		return &ArrayAssignStmt{Name: e.Name, Index: e.Index, Value: e.Value}
	}
	return &ExprStmt{Expr: expr}
}

// parseDeclaration parses RG type name [ '[' size ']' ] [ '=' init ].
// The trailing ';' is left to the caller.
func (p *Parser) parseDeclaration() (Stmt, error) {
	rg := p.advance()
	typeTok := p.peek()
	var dt DataType
	switch typeTok.Type {
	case INT_KEYWORD:
		dt = TypeInt
	case FLOAT_KEYWORD:
		dt = TypeFloat
	case BOOL_KEYWORD:
		dt = TypeBool
	default:
		return nil, p.errorAt(typeTok, "expected type (int, float or bool) after 'RG', got %s", describeToken(typeTok))
	}
	p.advance()

	name, err := p.expect(IDENTIFIER, "for variable name")
	if err != nil {
		return nil, err
	}

	var size Expr
	if p.peek().Type == LBRACKET {
		p.advance()
		if size, err = p.parseExpression(); err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET, "after array size"); err != nil {
			return nil, err
		}
	}

	var init Expr
	if p.peek().Type == ASSIGN {
		p.advance()
		if init, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if size != nil {
		return &ArrayDecl{Type: dt, Name: name.Lexeme, Size: size, Init: init, Line: rg.Line}, nil
	}
	return &VariableDecl{Type: dt, Name: name.Lexeme, Init: init, Line: rg.Line}, nil
}

// parsePrint parses RG_Print(args...).
func (p *Parser) parsePrint() (Stmt, error) {
	p.advance() // RG_Print
	if _, err := p.expect(LPAREN, "after RG_Print"); err != nil {
		return nil, err
	}
	args, err := p.parseArgs("RG_Print")
	if err != nil {
		return nil, err
	}
	p.expectSemicolon("RG_Print")
	return &PrintStmt{Args: args}, nil
}

// parseArgs parses a possibly empty comma-separated list up to and
// including the closing ')'. The '(' has already been consumed.
func (p *Parser) parseArgs(what string) ([]Expr, error) {
	var args []Expr
	if p.peek().Type == RPAREN {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type != COMMA {
			break
		}
		p.advance()
	}
	if _, err := p.expect(RPAREN, "to close "+what+" arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArrayOp parses insert(name, value) and delete(name, index).
func (p *Parser) parseArrayOp() (Stmt, error) {
	kw := p.advance()
	if _, err := p.expect(LPAREN, "after "+kw.Lexeme); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "for array name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA, "after array name"); err != nil {
		return nil, err
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "to close "+kw.Lexeme); err != nil {
		return nil, err
	}
	p.expectSemicolon(kw.Lexeme)
	if kw.Type == INSERT {
		return &InsertStmt{Name: name.Lexeme, Value: arg}, nil
	}
	return &DeleteStmt{Name: name.Lexeme, Index: arg}, nil
}

// parseBlock parses { statement* }. Errors inside the block are recorded
// and recovered from without leaving the block.
func (p *Parser) parseBlock() (*BlockStmt, error) {
	if _, err := p.expect(LBRACE, "to open block"); err != nil {
		return nil, err
	}
	block := &BlockStmt{}
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		start := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			p.record(err)
			p.synchronize(start, true)
			continue
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(RBRACE, "to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseCondition parses ( expression ) after a control-flow keyword.
func (p *Parser) parseCondition(kw string) (Expr, error) {
	if _, err := p.expect(LPAREN, "after '"+kw+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "after "+kw+" condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseIf parses if ( cond ) { body } [ else { ... } | else if ... ]
func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // if
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Condition: cond, Body: body}
	if p.peek().Type != ELSE {
		return stmt, nil
	}
	p.advance()
	if p.peek().Type == IF {
		if stmt.ElseBody, err = p.parseIf(); err != nil {
			return nil, err
		}
		return stmt, nil
	}
	elseBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.ElseBody = elseBody
	return stmt, nil
}

// parseWhile parses while ( cond ) { body }
func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // while
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body}, nil
}

// parseFor parses for ( init ; cond ; post ) { body }. The semicolons
// inside the header are mandatory.
func (p *Parser) parseFor() (Stmt, error) {
	p.advance() // for
	if _, err := p.expect(LPAREN, "after 'for'"); err != nil {
		return nil, err
	}

	var init Stmt
	switch p.peek().Type {
	case SEMICOLON:
	case RG_KEYWORD:
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		init = decl
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = exprToStmt(expr)
	}
	if _, err := p.expect(SEMICOLON, "after for initializer"); err != nil {
		return nil, err
	}

	var cond Expr
	if p.peek().Type != SEMICOLON {
		var err error
		if cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON, "after for condition"); err != nil {
		return nil, err
	}

	var post Expr
	if p.peek().Type != RPAREN {
		var err error
		if post, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN, "to close for header"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles right-associative '='. Only a variable or an
// array element may appear on the left.
func (p *Parser) parseAssignment() (Expr, error) {
	expr, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != ASSIGN {
		return expr, nil
	}
	eq := p.advance()
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *VarRef:
		return &AssignExpr{Name: target.Name, Value: value}, nil
	case *IndexExpr:
		return &IndexAssignExpr{Name: target.Name, Index: target.Index, Value: value}, nil
	}
	return nil, p.errorAt(eq, "invalid assignment target %s", expr)
}

// parseLogicalOr handles ||
func (p *Parser) parseLogicalOr() (Expr, error) {
	expr, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR_LOGICAL {
		op := p.advance().Type
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseLogicalAnd handles &&
func (p *Parser) parseLogicalAnd() (Expr, error) {
	expr, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND_LOGICAL {
		op := p.advance().Type
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for matches(p.peek().Type, ops) {
		op := p.advance().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func matches(tt TokenType, ops []TokenType) bool {
	for _, op := range ops {
		if tt == op {
			return true
		}
	}
	return false
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	return p.binaryLevel(p.parseComparison, EQUALS, NOT_EQ)
}

// parseComparison handles < <= > >=
func (p *Parser) parseComparison() (Expr, error) {
	return p.binaryLevel(p.parseAdditive, LESS, LESS_EQ, GREATER, GREATER_EQ)
}

func (p *Parser) parseAdditive() (Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	return p.binaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

// parseUnary handles prefix - and !
func (p *Parser) parseUnary() (Expr, error) {
	switch p.peek().Type {
	case MINUS, NOT:
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Right: right}, nil
	}
	return p.parseMathCall()
}

var mathFuncNames = map[TokenType]string{
	SQRT:      "sqrt",
	POW:       "pow",
	SIN:       "sin",
	COS:       "cos",
	TAN:       "tan",
	LOG:       "log",
	FACTORIAL: "factorial",
}

// parseMathCall handles the built-in math keywords: sqrt(x), pow(x, y), ...
// Argument counts are checked by the analyzer.
func (p *Parser) parseMathCall() (Expr, error) {
	fn := p.peek()
	name, ok := mathFuncNames[fn.Type]
	if !ok {
		return p.parsePrimary()
	}
	p.advance()
	if _, err := p.expect(LPAREN, "after "+name); err != nil {
		return nil, err
	}
	args, err := p.parseArgs(name)
	if err != nil {
		return nil, err
	}
	return &MathCall{Func: fn.Type, Args: args}, nil
}

// parsePrimary handles literals, names, indexing, calls and parentheses.
func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number literal %q", tok.Lexeme)
		}
		return &Literal{Value: Number(f)}, nil
	case STRING:
		p.advance()
		s := tok.Lexeme
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		}
		return &Literal{Value: String(s)}, nil
	case TRUE, FALSE:
		p.advance()
		return &Literal{Value: Bool(tok.Type == TRUE)}, nil
	case IDENTIFIER:
		p.advance()
		switch p.peek().Type {
		case LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET, "after index"); err != nil {
				return nil, err
			}
			return &IndexExpr{Name: tok.Lexeme, Index: idx}, nil
		case LPAREN:
			p.advance()
			args, err := p.parseArgs(tok.Lexeme)
			if err != nil {
				return nil, err
			}
			return &FunctionCall{Name: tok.Lexeme, Args: args}, nil
		}
		return &VarRef{Name: tok.Lexeme}, nil
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "to close parenthesised expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorAt(tok, "expected expression, got %s", describeToken(tok))
}
