package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels for the error taxonomy. Concrete errors wrap exactly one of
// them, so callers test with errors.Is.
var (
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
	ErrUndefinedReference   = errors.New("undefined reference")
	ErrType                 = errors.New("type error")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrInvalidArraySize     = errors.New("invalid array size")
	ErrIndexOutOfBounds     = errors.New("index out of bounds")
	ErrBreakOutsideLoop     = errors.New("break outside loop")
	ErrDomain               = errors.New("domain error")
	ErrStepLimit            = errors.New("step limit exceeded")
	ErrUnknownNode          = errors.New("unknown node kind")
	ErrTrailingInput        = errors.New("unconsumed trailing input")
	ErrVersionMismatch      = errors.New("language version mismatch")
)

// LexError reports a character no token can start with.
type LexError struct {
	Offset int  // rune index into the source
	Line   int  // 1-based
	Char   rune // offending character
	Msg    string
}

func (e *LexError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("unexpected character %q", e.Char)
	}
	return fmt.Sprintf("line %d, offset %d: %s", e.Line, e.Offset, msg)
}

// ParseError is a grammar violation at Token.
type ParseError struct {
	Token Token
	Msg   string
	Err   error // optional sentinel, e.g. ErrTrailingInput
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("%q", e.Token.Lexeme)
	if e.Token.Type == EOF {
		where = "end of input"
	}
	return fmt.Sprintf("line %d, offset %d at %s (%s): %s",
		e.Token.Line, e.Token.Offset, where, e.Token.Type, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorList collects every parse error found in one pass, in source order.
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d parse errors:", len(l))
	for _, e := range l {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes every member to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

func (l ErrorList) sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Token.Offset < l[j].Token.Offset })
}

// SemanticError is raised while the analyzer executes the program.
// Kind is one of the sentinels above.
type SemanticError struct {
	Kind error
	Msg  string
}

func (e *SemanticError) Error() string { return e.Kind.Error() + ": " + e.Msg }
func (e *SemanticError) Unwrap() error { return e.Kind }

func semErr(kind error, format string, args ...any) *SemanticError {
	return &SemanticError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Warning is a recoverable diagnostic: a missing semicolon or a lint finding.
type Warning struct {
	Offset int
	Line   int
	Msg    string
}

func (w Warning) String() string {
	if w.Line == 0 {
		return w.Msg
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}

// FormatError renders lexer and parser errors with the offending source
// line and a caret under the column. Other errors are returned as their
// plain message.
//
//	parse error at 2:9: expected ';' after declaration
//	   2 | RG int x
//	     |         ^
func FormatError(err error, src string) string {
	if err == nil {
		return ""
	}
	var list ErrorList
	if errors.As(err, &list) {
		parts := make([]string, len(list))
		for i, pe := range list {
			parts[i] = snippet(src, "parse error", pe.Token.Offset, pe.Msg)
		}
		return strings.Join(parts, "\n")
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return snippet(src, "parse error", pe.Token.Offset, pe.Msg)
	}
	var le *LexError
	if errors.As(err, &le) {
		msg := le.Msg
		if msg == "" {
			msg = fmt.Sprintf("unexpected character %q", le.Char)
		}
		return snippet(src, "lex error", le.Offset, msg)
	}
	return err.Error()
}

// Position converts a rune offset into 1-based line and column numbers.
// Offsets past the end clamp to the end of input.
func Position(src string, offset int) (line, col int) {
	line, col = 1, 1
	for i, r := range []rune(src) {
		if i >= offset {
			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func snippet(src, header string, offset int, msg string) string {
	line, col := Position(src, offset)
	lines := strings.Split(src, "\n")
	text := ""
	if line-1 < len(lines) {
		text = strings.TrimRight(lines[line-1], "\r")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n", header, line, col, msg)
	fmt.Fprintf(&b, "%4d | %s\n", line, text)
	fmt.Fprintf(&b, "     | %s^", strings.Repeat(" ", col-1))
	return b.String()
}
