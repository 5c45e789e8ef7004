package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeGen walks an AST and renders it as indented C-like source text.
// It only reads the tree; it never evaluates or validates it.
type CodeGen struct {
	out    strings.Builder
	indent int
}

func newCodeGen() *CodeGen {
	return &CodeGen{}
}

// line writes one indented line.
func (cg *CodeGen) line(format string, args ...any) {
	cg.out.WriteString(strings.Repeat("  ", cg.indent))
	fmt.Fprintf(&cg.out, format, args...)
	cg.out.WriteByte('\n')
}

// Generate renders prog. The output depends only on the tree, so calling
// it twice on the same Program yields identical text.
func Generate(prog *Program) (string, error) {
	cg := newCodeGen()
	if prog == nil {
		return "", nil
	}
	for _, s := range prog.Stmts {
		if err := cg.genStmt(s); err != nil {
			return "", err
		}
	}
	return cg.out.String(), nil
}

func (cg *CodeGen) genStmt(s Stmt) error {
	switch n := s.(type) {

	case *VariableDecl, *ArrayDecl, *ExprStmt, *AssignStmt, *ArrayAssignStmt:
		text, err := cg.simpleStmt(n)
		if err != nil {
			return err
		}
		cg.line("%s;", text)

	case *PrintStmt:
		args, err := cg.genArgs(n.Args)
		if err != nil {
			return err
		}
		cg.line("print(%s);", args)

	case *BlockStmt:
		cg.line("{")
		if err := cg.genBody(n); err != nil {
			return err
		}
		cg.line("}")

	case *IfStmt:
		return cg.genIf(n, "")

	case *WhileStmt:
		cond, err := cg.genExpr(n.Condition)
		if err != nil {
			return err
		}
		cg.line("while (%s) {", cond)
		if err := cg.genBody(n.Body); err != nil {
			return err
		}
		cg.line("}")

	case *ForStmt:
		var init, cond, post string
		var err error
		if n.Init != nil {
			if init, err = cg.simpleStmt(n.Init); err != nil {
				return err
			}
		}
		if n.Cond != nil {
			if cond, err = cg.genExpr(n.Cond); err != nil {
				return err
			}
		}
		if n.Post != nil {
			if post, err = cg.genExpr(n.Post); err != nil {
				return err
			}
		}
		cg.line("for (%s; %s; %s) {", init, cond, post)
		if err := cg.genBody(n.Body); err != nil {
			return err
		}
		cg.line("}")

	case *BreakStmt:
		cg.line("break;")

	case *ContinueStmt:
		cg.line("continue;")

	case *InsertStmt:
		v, err := cg.genExpr(n.Value)
		if err != nil {
			return err
		}
		cg.line("insert(%s, %s);", n.Name, v)

	case *DeleteStmt:
		idx, err := cg.genExpr(n.Index)
		if err != nil {
			return err
		}
		cg.line("delete(%s, %s);", n.Name, idx)

	default:
		return fmt.Errorf("codegen: unknown statement node %T: %w", s, ErrUnknownNode)
	}
	return nil
}

// genBody renders the statements of a block one level deeper.
func (cg *CodeGen) genBody(b *BlockStmt) error {
	if b == nil {
		return fmt.Errorf("codegen: missing block: %w", ErrUnknownNode)
	}
	cg.indent++
	defer func() { cg.indent-- }()
	for _, s := range b.Stmts {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// genIf renders an if/else-if/else chain. prefix is "} else " for the
// links after the first.
func (cg *CodeGen) genIf(n *IfStmt, prefix string) error {
	cond, err := cg.genExpr(n.Condition)
	if err != nil {
		return err
	}
	cg.line("%sif (%s) {", prefix, cond)
	if err := cg.genBody(n.Body); err != nil {
		return err
	}
	switch e := n.ElseBody.(type) {
	case nil:
	case *IfStmt:
		return cg.genIf(e, "} else ")
	case *BlockStmt:
		cg.line("} else {")
		if err := cg.genBody(e); err != nil {
			return err
		}
	default:
		return fmt.Errorf("codegen: unknown else node %T: %w", e, ErrUnknownNode)
	}
	cg.line("}")
	return nil
}

// simpleStmt renders a statement that fits on one line, without the
// trailing ';'. It is shared by statement lines and for-loop headers.
func (cg *CodeGen) simpleStmt(s Stmt) (string, error) {
	switch n := s.(type) {
	case *VariableDecl:
		if n.Init == nil {
			return fmt.Sprintf("%s %s", n.Type, n.Name), nil
		}
		init, err := cg.genExpr(n.Init)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s = %s", n.Type, n.Name, init), nil

	case *ArrayDecl:
		size, err := cg.genExpr(n.Size)
		if err != nil {
			return "", err
		}
		if n.Init == nil {
			return fmt.Sprintf("%s %s[%s]", n.Type, n.Name, size), nil
		}
		init, err := cg.genExpr(n.Init)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s[%s] = %s", n.Type, n.Name, size, init), nil

	case *ExprStmt:
		return cg.genExpr(n.Expr)

	case *AssignStmt:
		v, err := cg.genExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", n.Name, v), nil

	case *ArrayAssignStmt:
		idx, err := cg.genExpr(n.Index)
		if err != nil {
			return "", err
		}
		v, err := cg.genExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s] = %s", n.Name, idx, v), nil
	}
	return "", fmt.Errorf("codegen: unknown statement node %T: %w", s, ErrUnknownNode)
}

func (cg *CodeGen) genArgs(args []Expr) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := cg.genExpr(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// isStringExpr reports whether e is statically a string: a string literal
// or a concatenation.
func isStringExpr(e Expr) bool {
	switch n := e.(type) {
	case *Literal:
		return n.Value.Kind == StringValue
	case *BinaryExpr:
		return n.Op == PLUS && (isStringExpr(n.Left) || isStringExpr(n.Right))
	}
	return false
}

// formatLiteral renders a constant canonically: quoted strings, bare numbers.
func formatLiteral(v Value) string {
	switch v.Kind {
	case StringValue:
		return strconv.Quote(v.Str)
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	}
	return FormatNumber(v.Num)
}

func (cg *CodeGen) genExpr(e Expr) (string, error) {
	switch n := e.(type) {

	case *Literal:
		return formatLiteral(n.Value), nil

	case *VarRef:
		return n.Name, nil

	case *IndexExpr:
		idx, err := cg.genExpr(n.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", n.Name, idx), nil

	case *BinaryExpr:
		l, err := cg.genExpr(n.Left)
		if err != nil {
			return "", err
		}
		r, err := cg.genExpr(n.Right)
		if err != nil {
			return "", err
		}
		if n.Op == PLUS && (isStringExpr(n.Left) || isStringExpr(n.Right)) {
			return fmt.Sprintf("concat(%s, %s)", l, r), nil
		}
		return fmt.Sprintf("(%s %s %s)", l, n.Op.Symbol(), r), nil

	case *LogicalExpr:
		l, err := cg.genExpr(n.Left)
		if err != nil {
			return "", err
		}
		r, err := cg.genExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, n.Op.Symbol(), r), nil

	case *UnaryExpr:
		operand, err := cg.genExpr(n.Right)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "!") {
			operand = "(" + operand + ")"
		}
		return n.Op.Symbol() + operand, nil

	case *AssignExpr:
		v, err := cg.genExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", n.Name, v), nil

	case *IndexAssignExpr:
		idx, err := cg.genExpr(n.Index)
		if err != nil {
			return "", err
		}
		v, err := cg.genExpr(n.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s] = %s", n.Name, idx, v), nil

	case *MathCall:
		name, ok := mathFuncNames[n.Func]
		if !ok {
			return "", fmt.Errorf("codegen: unknown math function %s: %w", n.Func, ErrUnknownNode)
		}
		args, err := cg.genArgs(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", name, args), nil

	case *FunctionCall:
		args, err := cg.genArgs(n.Args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", n.Name, args), nil
	}
	return "", fmt.Errorf("codegen: unknown expression node %T: %w", e, ErrUnknownNode)
}
