package compiler

import "fmt"

// Lint reports variables that are declared but never read and statements
// that follow a break or continue in the same block. It only inspects the
// tree; nothing is executed.
func Lint(prog *Program) []Warning {
	l := &linter{}
	if prog == nil {
		return nil
	}
	l.enter()
	l.stmts(prog.Stmts)
	l.exit()
	return l.warnings
}

type lintVar struct {
	name string
	line int
	read bool
}

type linter struct {
	scopes   [][]*lintVar
	warnings []Warning
}

func (l *linter) warn(line int, format string, args ...any) {
	l.warnings = append(l.warnings, Warning{Line: line, Msg: fmt.Sprintf(format, args...)})
}

func (l *linter) enter() { l.scopes = append(l.scopes, nil) }

// exit closes the innermost scope and reports its unread names in
// declaration order.
func (l *linter) exit() {
	top := l.scopes[len(l.scopes)-1]
	l.scopes = l.scopes[:len(l.scopes)-1]
	for _, v := range top {
		if !v.read {
			l.warn(v.line, "variable %q is declared but never read", v.name)
		}
	}
}

func (l *linter) declare(name string, line int) {
	i := len(l.scopes) - 1
	l.scopes[i] = append(l.scopes[i], &lintVar{name: name, line: line})
}

// use marks the innermost visible declaration of name as read.
func (l *linter) use(name string) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		for _, v := range l.scopes[i] {
			if v.name == name {
				v.read = true
				return
			}
		}
	}
}

// stmts walks one statement list and flags code after a jump.
func (l *linter) stmts(list []Stmt) {
	for i, s := range list {
		l.stmt(s)
		switch s.(type) {
		case *BreakStmt, *ContinueStmt:
			if i < len(list)-1 {
				l.warn(jumpLine(s), "unreachable statement after %s", jumpName(s))
			}
			return
		}
	}
}

func jumpLine(s Stmt) int {
	switch j := s.(type) {
	case *BreakStmt:
		return j.Line
	case *ContinueStmt:
		return j.Line
	}
	return 0
}

func jumpName(s Stmt) string {
	if _, ok := s.(*BreakStmt); ok {
		return "break"
	}
	return "continue"
}

func (l *linter) block(b *BlockStmt) {
	if b == nil {
		return
	}
	l.enter()
	l.stmts(b.Stmts)
	l.exit()
}

func (l *linter) stmt(s Stmt) {
	switch n := s.(type) {
	case *VariableDecl:
		l.expr(n.Init)
		l.declare(n.Name, n.Line)
	case *ArrayDecl:
		l.expr(n.Size)
		l.expr(n.Init)
		l.declare(n.Name, n.Line)
	case *PrintStmt:
		for _, a := range n.Args {
			l.expr(a)
		}
	case *ExprStmt:
		l.expr(n.Expr)
	case *AssignStmt:
		l.expr(n.Value)
	case *ArrayAssignStmt:
		l.use(n.Name)
		l.expr(n.Index)
		l.expr(n.Value)
	case *BlockStmt:
		l.block(n)
	case *IfStmt:
		l.expr(n.Condition)
		l.block(n.Body)
		if n.ElseBody != nil {
			l.stmt(n.ElseBody)
		}
	case *WhileStmt:
		l.expr(n.Condition)
		l.block(n.Body)
	case *ForStmt:
		l.enter()
		if n.Init != nil {
			l.stmt(n.Init)
		}
		l.expr(n.Cond)
		l.expr(n.Post)
		l.block(n.Body)
		l.exit()
	case *InsertStmt:
		l.use(n.Name)
		l.expr(n.Value)
	case *DeleteStmt:
		l.use(n.Name)
		l.expr(n.Index)
	case *BreakStmt, *ContinueStmt:
		// nothing to read
	}
}

func (l *linter) expr(e Expr) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *VarRef:
		l.use(n.Name)
	case *IndexExpr:
		l.use(n.Name)
		l.expr(n.Index)
	case *BinaryExpr:
		l.expr(n.Left)
		l.expr(n.Right)
	case *LogicalExpr:
		l.expr(n.Left)
		l.expr(n.Right)
	case *UnaryExpr:
		l.expr(n.Right)
	case *AssignExpr:
		l.expr(n.Value)
	case *IndexAssignExpr:
		l.use(n.Name)
		l.expr(n.Index)
		l.expr(n.Value)
	case *MathCall:
		for _, a := range n.Args {
			l.expr(a)
		}
	case *FunctionCall:
		for _, a := range n.Args {
			l.expr(a)
		}
	case *Literal:
		// No names here
	}
}
