package compiler

import (
	"fmt"
	"strings"
)

// DataType is a declared scalar or array element type.
type DataType int

const (
	TypeInt DataType = iota
	TypeFloat
	TypeBool
)

func (d DataType) String() string {
	switch d {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
// Nodes are never mutated after parsing; the analyzer and the code
// generator walk the same tree independently.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a number, string or boolean constant.
//
//	RG int x = 10;
//	           ^^  Literal{Value: Number(10)}
type Literal struct {
	Value Value
}

func (*Literal) exprNode() {}
func (l *Literal) String() string {
	if l.Value.Kind == StringValue {
		return fmt.Sprintf("%q", l.Value.Str)
	}
	return l.Value.String()
}

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// IndexExpr represents Name[Index].
type IndexExpr struct {
	Name  string
	Index Expr
}

func (*IndexExpr) exprNode()        {}
func (e *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", e.Name, e.Index) }

// BinaryExpr represents an arithmetic or comparison operation: Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}

// LogicalExpr represents Left && Right or Left || Right.
// It is separate from BinaryExpr because the right operand may be skipped.
type LogicalExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*LogicalExpr) exprNode() {}
func (l *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", l.Left, l.Op.Symbol(), l.Right)
}

// UnaryExpr represents -Right or !Right.
type UnaryExpr struct {
	Op    TokenType
	Right Expr
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", u.Op.Symbol(), u.Right) }

// AssignExpr is a scalar assignment used as an expression, e.g. the
// increment clause of a for loop or the right side of a = b = 1.
type AssignExpr struct {
	Name  string
	Value Expr
}

func (*AssignExpr) exprNode()        {}
func (a *AssignExpr) String() string { return fmt.Sprintf("%s = %s", a.Name, a.Value) }

// IndexAssignExpr is Name[Index] = Value used as an expression.
type IndexAssignExpr struct {
	Name  string
	Index Expr
	Value Expr
}

func (*IndexAssignExpr) exprNode() {}
func (a *IndexAssignExpr) String() string {
	return fmt.Sprintf("%s[%s] = %s", a.Name, a.Index, a.Value)
}

// MathCall is a call of one of the built-in math functions, which are
// keywords rather than identifiers.
type MathCall struct {
	Func TokenType // SQRT, POW, SIN, COS, TAN, LOG, FACTORIAL
	Args []Expr
}

func (*MathCall) exprNode() {}
func (c *MathCall) String() string {
	return fmt.Sprintf("%s(%s)", mathFuncNames[c.Func], joinExprs(c.Args))
}

// FunctionCall represents name(args) where name is an ordinary identifier.
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*FunctionCall) exprNode() {}
func (c *FunctionCall) String() string {
	return fmt.Sprintf("%s(%s)", c.Name, joinExprs(c.Args))
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, ", ")
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Program is the root node: the top-level statements in source order.
type Program struct {
	Stmts []Stmt
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(len=%d)", len(p.Stmts))
}

// VariableDecl represents  RG type name [= expr];
type VariableDecl struct {
	Type DataType
	Name string
	Init Expr // nil: zero value of Type
	Line int
}

func (*VariableDecl) stmtNode() {}
func (d *VariableDecl) String() string {
	if d.Init == nil {
		return fmt.Sprintf("VariableDecl(%s %s)", d.Type, d.Name)
	}
	return fmt.Sprintf("VariableDecl(%s %s = %s)", d.Type, d.Name, d.Init)
}

// ArrayDecl represents  RG type name[size] [= expr];
type ArrayDecl struct {
	Type DataType
	Name string
	Size Expr
	Init Expr // nil: zero-filled
	Line int
}

func (*ArrayDecl) stmtNode() {}
func (d *ArrayDecl) String() string {
	if d.Init == nil {
		return fmt.Sprintf("ArrayDecl(%s %s[%s])", d.Type, d.Name, d.Size)
	}
	return fmt.Sprintf("ArrayDecl(%s %s[%s] = %s)", d.Type, d.Name, d.Size, d.Init)
}

// PrintStmt represents  RG_Print(args...);
type PrintStmt struct {
	Args []Expr
}

func (*PrintStmt) stmtNode() {}
func (p *PrintStmt) String() string {
	return fmt.Sprintf("PrintStmt(%s)", joinExprs(p.Args))
}

// ExprStmt represents an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}
func (e *ExprStmt) String() string {
	return fmt.Sprintf("ExprStmt(%s)", e.Expr)
}

// AssignStmt represents  name = expr;
type AssignStmt struct {
	Name  string
	Value Expr
}

func (*AssignStmt) stmtNode() {}
func (a *AssignStmt) String() string {
	return fmt.Sprintf("AssignStmt(%s = %s)", a.Name, a.Value)
}

// ArrayAssignStmt represents  name[index] = expr;
type ArrayAssignStmt struct {
	Name  string
	Index Expr
	Value Expr
}

func (*ArrayAssignStmt) stmtNode() {}
func (a *ArrayAssignStmt) String() string {
	return fmt.Sprintf("ArrayAssignStmt(%s[%s] = %s)", a.Name, a.Index, a.Value)
}

// BlockStmt represents { statement; ... }
type BlockStmt struct {
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}
func (b *BlockStmt) String() string {
	return fmt.Sprintf("BlockStmt(len=%d)", len(b.Stmts))
}

// IfStmt represents if (cond) { body } [else { elseBody } | else if ...]
type IfStmt struct {
	Condition Expr
	Body      *BlockStmt
	ElseBody  Stmt // nil, *BlockStmt or *IfStmt
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.ElseBody != nil {
		return fmt.Sprintf("IfStmt(if %s then %s else %s)", i.Condition, i.Body, i.ElseBody)
	}
	return fmt.Sprintf("IfStmt(if %s then %s)", i.Condition, i.Body)
}

// WhileStmt represents while (cond) { body }
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %s)", w.Condition, w.Body)
}

// ForStmt represents for (init; cond; post) { body }. Every clause is optional.
type ForStmt struct {
	Init Stmt // *VariableDecl, *ArrayDecl, *AssignStmt, *ArrayAssignStmt or *ExprStmt
	Cond Expr
	Post Expr
	Body *BlockStmt
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	return fmt.Sprintf("ForStmt(init=%v, cond=%v, post=%v, body=%s)", f.Init, f.Cond, f.Post, f.Body)
}

// BreakStmt represents break;
type BreakStmt struct{ Line int }

func (*BreakStmt) stmtNode()        {}
func (s *BreakStmt) String() string { return "BreakStmt" }

// ContinueStmt represents continue;
type ContinueStmt struct{ Line int }

func (*ContinueStmt) stmtNode()        {}
func (s *ContinueStmt) String() string { return "ContinueStmt" }

// InsertStmt represents insert(name, value); appending to an array.
type InsertStmt struct {
	Name  string
	Value Expr
}

func (*InsertStmt) stmtNode() {}
func (s *InsertStmt) String() string {
	return fmt.Sprintf("InsertStmt(%s, %s)", s.Name, s.Value)
}

// DeleteStmt represents delete(name, index); removing one element.
type DeleteStmt struct {
	Name  string
	Index Expr
}

func (*DeleteStmt) stmtNode() {}
func (s *DeleteStmt) String() string {
	return fmt.Sprintf("DeleteStmt(%s, %s)", s.Name, s.Index)
}
