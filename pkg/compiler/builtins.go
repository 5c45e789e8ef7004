package compiler

import (
	"math"
)

// builtinFunc describes one math function. Names are language keywords,
// so the parser produces MathCall nodes for them.
type builtinFunc struct {
	Name     string
	Arity    int
	Returns  DataType
	Mnemonic string
}

var builtinFuncs = map[TokenType]builtinFunc{
	SQRT:      {Name: "sqrt", Arity: 1, Returns: TypeFloat, Mnemonic: "SQRT"},
	POW:       {Name: "pow", Arity: 2, Returns: TypeFloat, Mnemonic: "POW"},
	SIN:       {Name: "sin", Arity: 1, Returns: TypeFloat, Mnemonic: "SIN"},
	COS:       {Name: "cos", Arity: 1, Returns: TypeFloat, Mnemonic: "COS"},
	TAN:       {Name: "tan", Arity: 1, Returns: TypeFloat, Mnemonic: "TAN"},
	LOG:       {Name: "log", Arity: 1, Returns: TypeFloat, Mnemonic: "LOG"},
	FACTORIAL: {Name: "factorial", Arity: 1, Returns: TypeInt, Mnemonic: "MUL"},
}

// builtinByName resolves a function name to its keyword token.
func builtinByName(name string) (TokenType, bool) {
	for tt, fn := range builtinFuncs {
		if fn.Name == name {
			return tt, true
		}
	}
	return EOF, false
}

// callBuiltin evaluates the arguments left to right, validates count, type
// and domain, then computes the result into a fresh register.
func (a *Analyzer) callBuiltin(fnTok TokenType, args []Expr) (Value, int, error) {
	fn, ok := builtinFuncs[fnTok]
	if !ok {
		return Value{}, 0, semErr(ErrUnknownNode, "unknown math function %s", fnTok)
	}
	if len(args) != fn.Arity {
		return Value{}, 0, semErr(ErrType, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, len(args))
	}

	a.comment("Math function %s", fn.Name)
	vals := make([]float64, len(args))
	regs := make([]int, len(args))
	for i, arg := range args {
		v, r, err := a.evalExpr(arg)
		if err != nil {
			return Value{}, 0, err
		}
		if v.Kind != NumberValue {
			return Value{}, 0, semErr(ErrType, "%s argument %d must be a number, got %s", fn.Name, i+1, v.Kind)
		}
		vals[i], regs[i] = v.Num, r
	}

	switch fnTok {
	case SQRT:
		if vals[0] < 0 {
			return Value{}, 0, semErr(ErrDomain, "sqrt of negative number %s", FormatNumber(vals[0]))
		}
	case LOG:
		if vals[0] <= 0 {
			return Value{}, 0, semErr(ErrDomain, "log of non-positive number %s", FormatNumber(vals[0]))
		}
	case FACTORIAL:
		return a.factorial(vals[0])
	}

	var result float64
	switch fnTok {
	case SQRT:
		result = math.Sqrt(vals[0])
	case POW:
		result = math.Pow(vals[0], vals[1])
	case SIN:
		result = math.Sin(vals[0])
	case COS:
		result = math.Cos(vals[0])
	case TAN:
		result = math.Tan(vals[0])
	case LOG:
		result = math.Log(vals[0])
	}

	r := a.reg()
	if fn.Arity == 2 {
		a.emit("%s R%d, R%d, R%d", fn.Mnemonic, r, regs[0], regs[1])
	} else {
		a.emit("%s R%d, R%d", fn.Mnemonic, r, regs[0])
	}
	return Number(result), r, nil
}

// factorial multiplies iteratively so every step shows in the trace and
// counts against the step limit.
func (a *Analyzer) factorial(n float64) (Value, int, error) {
	if n < 0 || n != math.Trunc(n) || math.IsInf(n, 0) {
		return Value{}, 0, semErr(ErrDomain, "factorial needs a non-negative integer, got %s", FormatNumber(n))
	}
	r := a.reg()
	a.comment("Calculate factorial(%s)", FormatNumber(n))
	a.emit("MOV R%d, 1", r)
	result := 1.0
	for i := 2.0; i <= n; i++ {
		if err := a.step(); err != nil {
			return Value{}, 0, err
		}
		result *= i
		a.emit("MUL R%d, R%d, %s", r, r, FormatNumber(i))
	}
	return Number(result), r, nil
}
