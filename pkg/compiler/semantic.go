package compiler

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MaxArraySize bounds array declarations regardless of MaxSteps.
const MaxArraySize = 1 << 24

// LoopLabel names the jump targets of the innermost running loop.
type LoopLabel struct {
	Start string
	End   string
	Post  string // where 'continue' jumps to
}

// flow tells enclosing statements how control left a statement.
type flow int

const (
	flowNormal flow = iota
	flowBreak
	flowContinue
)

// Result is everything one analysis run produced. It is returned even
// when the run fails, holding the state at the point of failure.
type Result struct {
	Symbols *SymbolTable
	Trace   []string
	Output  []string
}

// JSON encodes the symbol table with the output log and the trace under
// their reserved keys.
func (r *Result) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Symbols.Export(r.Output, r.Trace), "", "  ")
}

// Analyzer type-checks and executes a Program in a single walk. Each node
// is evaluated once, in program order, and every operation performed
// appends to the trace. The first error stops the walk.
//
// An Analyzer keeps its state between Run calls, so a REPL can feed it
// one statement at a time.
type Analyzer struct {
	syms   *SymbolTable
	trace  []string
	output []string

	nextReg   int
	nextLabel int
	labels    map[Stmt]int    // label number per control-flow node
	emitted   map[string]bool // labels already placed in the trace
	loops     []LoopLabel

	steps    int
	maxSteps int
}

func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{
		syms:     NewSymbolTable(),
		labels:   make(map[Stmt]int),
		emitted:  make(map[string]bool),
		maxSteps: opts.MaxSteps,
	}
}

// Analyze runs prog against a fresh symbol table.
func Analyze(prog *Program, opts Options) (*Result, error) {
	a := NewAnalyzer(opts)
	err := a.Run(prog)
	return a.Result(), err
}

// Run executes prog's statements in order against the analyzer's state.
// Symbols, output and trace carry over between calls; the step budget
// starts again for each call.
func (a *Analyzer) Run(prog *Program) error {
	if prog == nil {
		return nil
	}
	a.steps = 0
	for _, s := range prog.Stmts {
		fl, err := a.execStmt(s)
		if err != nil {
			return err
		}
		if fl == flowBreak {
			return semErr(ErrBreakOutsideLoop, "'break' outside of a loop")
		}
		if fl == flowContinue {
			return semErr(ErrBreakOutsideLoop, "'continue' outside of a loop")
		}
	}
	return nil
}

// Result snapshots the analyzer state. The slices are shared, not copied.
func (a *Analyzer) Result() *Result {
	return &Result{Symbols: a.syms, Trace: a.trace, Output: a.output}
}

func (a *Analyzer) Symbols() *SymbolTable { return a.syms }
func (a *Analyzer) Output() []string      { return a.output }
func (a *Analyzer) Trace() []string       { return a.trace }

//  Trace helpers

func (a *Analyzer) emit(format string, args ...any) {
	a.trace = append(a.trace, fmt.Sprintf(format, args...))
}

func (a *Analyzer) comment(format string, args ...any) {
	a.trace = append(a.trace, "; "+fmt.Sprintf(format, args...))
}

// reg allocates the next synthetic register number.
func (a *Analyzer) reg() int {
	r := a.nextReg
	a.nextReg++
	return r
}

// labelFor returns the stable label number of a control-flow node.
func (a *Analyzer) labelFor(s Stmt) int {
	if k, ok := a.labels[s]; ok {
		return k
	}
	k := a.nextLabel
	a.nextLabel++
	a.labels[s] = k
	return k
}

// place puts a label into the trace the first time control reaches it.
// A label executed again in a later iteration is not repeated.
func (a *Analyzer) place(label string) {
	if a.emitted[label] {
		return
	}
	a.emitted[label] = true
	a.trace = append(a.trace, label+":")
}

// step counts one unit of work against MaxSteps.
func (a *Analyzer) step() error {
	a.steps++
	if a.maxSteps > 0 && a.steps > a.maxSteps {
		return semErr(ErrStepLimit, "program exceeded %d steps", a.maxSteps)
	}
	return nil
}

//  Statements

func (a *Analyzer) execStmt(s Stmt) (flow, error) {
	switch s := s.(type) {
	case *VariableDecl:
		return flowNormal, a.execVariableDecl(s)
	case *ArrayDecl:
		return flowNormal, a.execArrayDecl(s)
	case *PrintStmt:
		return flowNormal, a.execPrint(s)
	case *ExprStmt:
		_, _, err := a.evalExpr(s.Expr)
		return flowNormal, err
	case *AssignStmt:
		_, _, err := a.assign(s.Name, s.Value)
		return flowNormal, err
	case *ArrayAssignStmt:
		_, _, err := a.assignIndex(s.Name, s.Index, s.Value)
		return flowNormal, err
	case *BlockStmt:
		return a.execBlock(s)
	case *IfStmt:
		return a.execIf(s)
	case *WhileStmt:
		return a.execWhile(s)
	case *ForStmt:
		return a.execFor(s)
	case *BreakStmt:
		if len(a.loops) == 0 {
			return flowNormal, semErr(ErrBreakOutsideLoop, "'break' outside of a loop")
		}
		a.comment("Break statement")
		a.emit("JMP %s", a.loops[len(a.loops)-1].End)
		return flowBreak, nil
	case *ContinueStmt:
		if len(a.loops) == 0 {
			return flowNormal, semErr(ErrBreakOutsideLoop, "'continue' outside of a loop")
		}
		a.comment("Continue statement")
		a.emit("JMP %s", a.loops[len(a.loops)-1].Post)
		return flowContinue, nil
	case *InsertStmt:
		return flowNormal, a.execInsert(s)
	case *DeleteStmt:
		return flowNormal, a.execDelete(s)
	case nil:
		return flowNormal, semErr(ErrUnknownNode, "nil statement")
	}
	return flowNormal, semErr(ErrUnknownNode, "unknown statement node %T", s)
}

func zeroValue(dt DataType) Value {
	if dt == TypeBool {
		return Bool(false)
	}
	return Number(0)
}

// coerce converts v for storage in a variable of type dt: int truncates
// toward zero, float keeps the number, bool accepts only booleans.
func coerce(dt DataType, v Value, target string) (Value, error) {
	switch dt {
	case TypeInt:
		if v.Kind == NumberValue {
			if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
				return v, nil
			}
			return Number(math.Trunc(v.Num)), nil
		}
	case TypeFloat:
		if v.Kind == NumberValue {
			return v, nil
		}
	case TypeBool:
		if v.Kind == BoolValue {
			return v, nil
		}
	}
	return Value{}, semErr(ErrType, "cannot store %s value %s in %s %s", v.Kind, v.Operand(), dt, target)
}

// checkFree fails if name cannot be declared in the current scope.
func (a *Analyzer) checkFree(name string) error {
	if _, ok := a.syms.Function(name); ok {
		return semErr(ErrDuplicateDeclaration, "%q is a built-in function", name)
	}
	if prev, ok := a.syms.Lookup(name); ok {
		return semErr(ErrDuplicateDeclaration, "%q is already declared as %s %s", name, prev.Type, prev.Kind)
	}
	return nil
}

func (a *Analyzer) execVariableDecl(d *VariableDecl) error {
	if err := a.checkFree(d.Name); err != nil {
		return err
	}
	a.comment("Declare %s %s", d.Type, d.Name)
	var (
		v   Value
		r   int
		err error
	)
	if d.Init != nil {
		if v, r, err = a.evalExpr(d.Init); err != nil {
			return err
		}
	} else {
		v = zeroValue(d.Type)
		r = a.reg()
		a.emit("MOV R%d, %s", r, v.Operand())
	}
	if v, err = coerce(d.Type, v, d.Name); err != nil {
		return err
	}
	a.emit("STORE [%s], R%d", d.Name, r)
	return a.syms.Declare(&Symbol{Name: d.Name, Kind: ScalarSymbol, Type: d.Type, Value: v})
}

func (a *Analyzer) execArrayDecl(d *ArrayDecl) error {
	if err := a.checkFree(d.Name); err != nil {
		return err
	}
	a.comment("Declare array %s %s", d.Type, d.Name)
	sv, _, err := a.evalExpr(d.Size)
	if err != nil {
		return err
	}
	if !sv.IsInteger() || sv.Num <= 0 {
		return semErr(ErrInvalidArraySize, "size of %s must be a positive integer, got %s", d.Name, sv.Operand())
	}
	if sv.Num > MaxArraySize {
		return semErr(ErrInvalidArraySize, "size of %s is %s, the largest array is %d", d.Name, sv.Operand(), MaxArraySize)
	}
	if a.maxSteps > 0 && sv.Num > float64(a.maxSteps) {
		return semErr(ErrStepLimit, "array %s of size %s exceeds the %d step limit", d.Name, sv.Operand(), a.maxSteps)
	}
	size := int(sv.Num)

	var (
		init Value
		r    int
	)
	if d.Init != nil {
		if init, r, err = a.evalExpr(d.Init); err != nil {
			return err
		}
	} else {
		init = zeroValue(d.Type)
		r = a.reg()
		a.emit("MOV R%d, %s", r, init.Operand())
	}
	if init, err = coerce(d.Type, init, d.Name); err != nil {
		return err
	}

	elems := make([]Value, size)
	for i := range elems {
		elems[i] = init
	}
	a.emit("ALLOC [%s], %d", d.Name, size)
	a.emit("FILL [%s], R%d, %d", d.Name, r, size)
	return a.syms.Declare(&Symbol{Name: d.Name, Kind: ArraySymbol, Type: d.Type, Elements: elems})
}

func (a *Analyzer) execPrint(p *PrintStmt) error {
	a.comment("Print statement")
	parts := make([]string, len(p.Args))
	for i, arg := range p.Args {
		v, r, err := a.evalExpr(arg)
		if err != nil {
			return err
		}
		a.emit("PUSH R%d", r)
		parts[i] = v.String()
	}
	a.emit("CALL PRINT, %d", len(p.Args))
	a.output = append(a.output, strings.Join(parts, " "))
	return nil
}

func (a *Analyzer) execBlock(b *BlockStmt) (flow, error) {
	a.syms.EnterScope()
	defer a.syms.ExitScope()
	for _, s := range b.Stmts {
		fl, err := a.execStmt(s)
		if err != nil || fl != flowNormal {
			return fl, err
		}
	}
	return flowNormal, nil
}

// condition evaluates a control-flow condition and emits the compare and
// the conditional jump to exit.
func (a *Analyzer) condition(cond Expr, exit string) (bool, error) {
	v, r, err := a.evalExpr(cond)
	if err != nil {
		return false, err
	}
	a.emit("CMP R%d, 0", r)
	a.emit("JE %s", exit)
	return v.Truthy(), nil
}

// execIf runs exactly one branch. Both labels are always placed so every
// jump in the trace has a target.
func (a *Analyzer) execIf(s *IfStmt) (flow, error) {
	k := a.labelFor(s)
	elseLabel := fmt.Sprintf("L_ELSE_%d", k)
	endLabel := fmt.Sprintf("L_END_IF_%d", k)

	a.comment("If statement condition")
	taken, err := a.condition(s.Condition, elseLabel)
	if err != nil {
		return flowNormal, err
	}

	fl := flowNormal
	if taken {
		a.comment("Then branch")
		if fl, err = a.execBlock(s.Body); err != nil {
			return fl, err
		}
		if fl == flowNormal {
			a.emit("JMP %s", endLabel)
		}
		a.place(elseLabel)
	} else {
		a.place(elseLabel)
		if s.ElseBody != nil {
			a.comment("Else branch")
			if fl, err = a.execStmt(s.ElseBody); err != nil {
				return fl, err
			}
		}
	}
	a.place(endLabel)
	return fl, nil
}

func (a *Analyzer) execWhile(s *WhileStmt) (flow, error) {
	k := a.labelFor(s)
	labels := LoopLabel{
		Start: fmt.Sprintf("L_WHILE_START_%d", k),
		End:   fmt.Sprintf("L_WHILE_END_%d", k),
	}
	labels.Post = labels.Start

	a.loops = append(a.loops, labels)
	defer func() { a.loops = a.loops[:len(a.loops)-1] }()

	for {
		if err := a.step(); err != nil {
			return flowNormal, err
		}
		a.place(labels.Start)
		a.comment("While loop condition")
		ok, err := a.condition(s.Condition, labels.End)
		if err != nil {
			return flowNormal, err
		}
		if !ok {
			break
		}
		fl, err := a.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		if fl == flowBreak {
			break
		}
		if fl == flowNormal {
			a.emit("JMP %s", labels.Start)
		}
	}
	a.place(labels.End)
	return flowNormal, nil
}

func (a *Analyzer) execFor(s *ForStmt) (flow, error) {
	k := a.labelFor(s)
	labels := LoopLabel{
		Start: fmt.Sprintf("L_FOR_START_%d", k),
		End:   fmt.Sprintf("L_FOR_END_%d", k),
		Post:  fmt.Sprintf("L_FOR_NEXT_%d", k),
	}

	// The header gets its own scope so the loop variable dies with the loop.
	a.syms.EnterScope()
	defer a.syms.ExitScope()

	if s.Init != nil {
		a.comment("For loop initializer")
		if _, err := a.execStmt(s.Init); err != nil {
			return flowNormal, err
		}
	}

	a.loops = append(a.loops, labels)
	defer func() { a.loops = a.loops[:len(a.loops)-1] }()

	for {
		if err := a.step(); err != nil {
			return flowNormal, err
		}
		a.place(labels.Start)
		if s.Cond != nil {
			a.comment("For loop condition")
			ok, err := a.condition(s.Cond, labels.End)
			if err != nil {
				return flowNormal, err
			}
			if !ok {
				break
			}
		}
		fl, err := a.execBlock(s.Body)
		if err != nil {
			return flowNormal, err
		}
		if fl == flowBreak {
			break
		}
		a.place(labels.Post)
		if s.Post != nil {
			a.comment("For loop increment")
			if _, _, err := a.evalExpr(s.Post); err != nil {
				return flowNormal, err
			}
		}
		a.emit("JMP %s", labels.Start)
	}
	a.place(labels.End)
	return flowNormal, nil
}

// lookupArray resolves name to a declared array.
func (a *Analyzer) lookupArray(name string) (*Symbol, error) {
	sym, ok := a.syms.Lookup(name)
	if !ok {
		if _, isFn := a.syms.Function(name); isFn {
			return nil, semErr(ErrType, "%q is a function, not an array", name)
		}
		return nil, semErr(ErrUndefinedReference, "undeclared array %q", name)
	}
	if sym.Kind != ArraySymbol {
		return nil, semErr(ErrType, "%q is not an array", name)
	}
	return sym, nil
}

// index evaluates an index expression and checks it against [0, size).
func (a *Analyzer) index(sym *Symbol, idx Expr) (int, error) {
	v, _, err := a.evalExpr(idx)
	if err != nil {
		return 0, err
	}
	if v.Kind != NumberValue {
		return 0, semErr(ErrType, "index of %s must be a number, got %s", sym.Name, v.Kind)
	}
	if !v.IsInteger() || v.Num < 0 || v.Num >= float64(sym.Size()) {
		return 0, semErr(ErrIndexOutOfBounds, "index %s out of bounds for %s of size %d", v.Operand(), sym.Name, sym.Size())
	}
	return int(v.Num), nil
}

func (a *Analyzer) execInsert(s *InsertStmt) error {
	sym, err := a.lookupArray(s.Name)
	if err != nil {
		return err
	}
	a.comment("Insert into %s", s.Name)
	v, r, err := a.evalExpr(s.Value)
	if err != nil {
		return err
	}
	if v, err = coerce(sym.Type, v, s.Name); err != nil {
		return err
	}
	sym.Elements = append(sym.Elements, v)
	a.emit("CALL INSERT, [%s], R%d", s.Name, r)
	return nil
}

func (a *Analyzer) execDelete(s *DeleteStmt) error {
	sym, err := a.lookupArray(s.Name)
	if err != nil {
		return err
	}
	a.comment("Delete from %s", s.Name)
	i, err := a.index(sym, s.Index)
	if err != nil {
		return err
	}
	sym.Elements = append(sym.Elements[:i], sym.Elements[i+1:]...)
	a.emit("CALL DELETE, [%s], %d", s.Name, i)
	return nil
}

//  Expressions

// evalExpr evaluates e and returns its value together with the register
// the trace holds it in.
func (a *Analyzer) evalExpr(e Expr) (Value, int, error) {
	switch e := e.(type) {
	case *Literal:
		r := a.reg()
		a.emit("MOV R%d, %s", r, e.Value.Operand())
		return e.Value, r, nil

	case *VarRef:
		sym, ok := a.syms.Lookup(e.Name)
		if !ok {
			if _, isFn := a.syms.Function(e.Name); isFn {
				return Value{}, 0, semErr(ErrType, "function %q used as a variable", e.Name)
			}
			return Value{}, 0, semErr(ErrUndefinedReference, "undeclared variable %q", e.Name)
		}
		if sym.Kind != ScalarSymbol {
			return Value{}, 0, semErr(ErrType, "array %q used without an index", e.Name)
		}
		r := a.reg()
		a.emit("LOAD R%d, [%s]", r, e.Name)
		return sym.Value, r, nil

	case *IndexExpr:
		sym, err := a.lookupArray(e.Name)
		if err != nil {
			return Value{}, 0, err
		}
		i, err := a.index(sym, e.Index)
		if err != nil {
			return Value{}, 0, err
		}
		r := a.reg()
		a.emit("LOAD R%d, [%s+%d]", r, e.Name, i)
		return sym.Elements[i], r, nil

	case *BinaryExpr:
		return a.evalBinary(e)

	case *LogicalExpr:
		return a.evalLogical(e)

	case *UnaryExpr:
		v, rr, err := a.evalExpr(e.Right)
		if err != nil {
			return Value{}, 0, err
		}
		switch e.Op {
		case MINUS:
			if v.Kind != NumberValue {
				return Value{}, 0, semErr(ErrType, "unary '-' needs a number, got %s", v.Kind)
			}
			r := a.reg()
			a.emit("NEG R%d, R%d", r, rr)
			return Number(-v.Num), r, nil
		case NOT:
			r := a.reg()
			a.emit("NOT R%d, R%d", r, rr)
			return Bool(!v.Truthy()), r, nil
		}
		return Value{}, 0, semErr(ErrUnknownNode, "unknown unary operator %s", e.Op)

	case *AssignExpr:
		return a.assign(e.Name, e.Value)

	case *IndexAssignExpr:
		return a.assignIndex(e.Name, e.Index, e.Value)

	case *MathCall:
		return a.callBuiltin(e.Func, e.Args)

	case *FunctionCall:
		if tt, ok := builtinByName(e.Name); ok {
			return a.callBuiltin(tt, e.Args)
		}
		if _, ok := a.syms.Lookup(e.Name); ok {
			return Value{}, 0, semErr(ErrType, "%q is not a function", e.Name)
		}
		return Value{}, 0, semErr(ErrUndefinedReference, "undefined function %q", e.Name)

	case nil:
		return Value{}, 0, semErr(ErrUnknownNode, "nil expression")
	}
	return Value{}, 0, semErr(ErrUnknownNode, "unknown expression node %T", e)
}

var arithMnemonics = map[TokenType]string{
	PLUS:    "ADD",
	MINUS:   "SUB",
	STAR:    "MUL",
	SLASH:   "DIV",
	PERCENT: "MOD",
}

var compareMnemonics = map[TokenType]string{
	LESS:       "SETL",
	LESS_EQ:    "SETLE",
	GREATER:    "SETG",
	GREATER_EQ: "SETGE",
	EQUALS:     "SETE",
	NOT_EQ:     "SETNE",
}

func (a *Analyzer) evalBinary(e *BinaryExpr) (Value, int, error) {
	l, rl, err := a.evalExpr(e.Left)
	if err != nil {
		return Value{}, 0, err
	}
	rv, rr, err := a.evalExpr(e.Right)
	if err != nil {
		return Value{}, 0, err
	}

	if set, ok := compareMnemonics[e.Op]; ok {
		res, err := compare(e.Op, l, rv)
		if err != nil {
			return Value{}, 0, err
		}
		r := a.reg()
		a.emit("CMP R%d, R%d", rl, rr)
		a.emit("%s R%d", set, r)
		return Bool(res), r, nil
	}

	mn, ok := arithMnemonics[e.Op]
	if !ok {
		return Value{}, 0, semErr(ErrUnknownNode, "unknown binary operator %s", e.Op)
	}
	if e.Op == PLUS && (l.Kind == StringValue || rv.Kind == StringValue) {
		r := a.reg()
		a.emit("CONCAT R%d, R%d, R%d", r, rl, rr)
		return String(l.String() + rv.String()), r, nil
	}
	if l.Kind != NumberValue || rv.Kind != NumberValue {
		return Value{}, 0, semErr(ErrType, "operator '%s' needs numbers, got %s and %s", e.Op.Symbol(), l.Kind, rv.Kind)
	}
	if (e.Op == SLASH || e.Op == PERCENT) && rv.Num == 0 {
		return Value{}, 0, semErr(ErrDivisionByZero, "%s %s 0", FormatNumber(l.Num), e.Op.Symbol())
	}

	var res float64
	switch e.Op {
	case PLUS:
		res = l.Num + rv.Num
	case MINUS:
		res = l.Num - rv.Num
	case STAR:
		res = l.Num * rv.Num
	case SLASH:
		res = l.Num / rv.Num
	case PERCENT:
		res = math.Mod(l.Num, rv.Num)
	}
	r := a.reg()
	a.emit("%s R%d, R%d, R%d", mn, r, rl, rr)
	return Number(res), r, nil
}

// compare applies a comparison operator. Equality accepts any two values;
// ordering needs two numbers or two strings.
func compare(op TokenType, l, r Value) (bool, error) {
	switch op {
	case EQUALS:
		return l.Equal(r), nil
	case NOT_EQ:
		return !l.Equal(r), nil
	}
	var c int
	switch {
	case l.Kind == NumberValue && r.Kind == NumberValue:
		if math.IsNaN(l.Num) || math.IsNaN(r.Num) {
			return false, nil
		}
		switch {
		case l.Num < r.Num:
			c = -1
		case l.Num > r.Num:
			c = 1
		}
	case l.Kind == StringValue && r.Kind == StringValue:
		c = strings.Compare(l.Str, r.Str)
	default:
		return false, semErr(ErrType, "operator '%s' cannot compare %s with %s", op.Symbol(), l.Kind, r.Kind)
	}
	switch op {
	case LESS:
		return c < 0, nil
	case LESS_EQ:
		return c <= 0, nil
	case GREATER:
		return c > 0, nil
	case GREATER_EQ:
		return c >= 0, nil
	}
	return false, semErr(ErrUnknownNode, "unknown comparison operator %s", op)
}

// evalLogical short-circuits: when the left operand decides the result the
// right operand is never evaluated and leaves nothing in the trace.
func (a *Analyzer) evalLogical(e *LogicalExpr) (Value, int, error) {
	l, rl, err := a.evalExpr(e.Left)
	if err != nil {
		return Value{}, 0, err
	}
	lb := l.Truthy()
	if (e.Op == AND_LOGICAL && !lb) || (e.Op == OR_LOGICAL && lb) {
		r := a.reg()
		a.emit("MOV R%d, %s ; short-circuit %s", r, Bool(lb).Operand(), e.Op.Symbol())
		return Bool(lb), r, nil
	}
	if e.Op != AND_LOGICAL && e.Op != OR_LOGICAL {
		return Value{}, 0, semErr(ErrUnknownNode, "unknown logical operator %s", e.Op)
	}
	rv, rr, err := a.evalExpr(e.Right)
	if err != nil {
		return Value{}, 0, err
	}
	mn := "AND"
	if e.Op == OR_LOGICAL {
		mn = "OR"
	}
	r := a.reg()
	a.emit("%s R%d, R%d, R%d", mn, r, rl, rr)
	return Bool(rv.Truthy()), r, nil
}

// assign stores into a scalar variable.
func (a *Analyzer) assign(name string, valueExpr Expr) (Value, int, error) {
	sym, ok := a.syms.Lookup(name)
	if !ok {
		return Value{}, 0, semErr(ErrUndefinedReference, "assignment to undeclared variable %q", name)
	}
	if sym.Kind != ScalarSymbol {
		return Value{}, 0, semErr(ErrType, "cannot assign to array %q without an index", name)
	}
	a.comment("Assignment to %s", name)
	v, r, err := a.evalExpr(valueExpr)
	if err != nil {
		return Value{}, 0, err
	}
	if v, err = coerce(sym.Type, v, name); err != nil {
		return Value{}, 0, err
	}
	a.emit("STORE [%s], R%d", name, r)
	sym.Value = v
	return v, r, nil
}

// assignIndex stores into one array element.
func (a *Analyzer) assignIndex(name string, idx, valueExpr Expr) (Value, int, error) {
	sym, err := a.lookupArray(name)
	if err != nil {
		return Value{}, 0, err
	}
	a.comment("Assignment to %s[]", name)
	i, err := a.index(sym, idx)
	if err != nil {
		return Value{}, 0, err
	}
	v, r, err := a.evalExpr(valueExpr)
	if err != nil {
		return Value{}, 0, err
	}
	if v, err = coerce(sym.Type, v, name); err != nil {
		return Value{}, 0, err
	}
	a.emit("STORE [%s+%d], R%d", name, i, r)
	sym.Elements[i] = v
	return v, r, nil
}
