package compiler

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type SymbolKind int

const (
	ScalarSymbol SymbolKind = iota
	ArraySymbol
	FunctionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case ScalarSymbol:
		return "scalar"
	case ArraySymbol:
		return "array"
	case FunctionSymbol:
		return "function"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is one named entry. Scalars use Value, arrays use Elements;
// function entries carry only their result Type.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     DataType
	Value    Value
	Elements []Value
	Depth    int // scope depth at declaration; 0 is global
}

// Size is the current array length. It is always len(Elements).
func (s *Symbol) Size() int { return len(s.Elements) }

func (s *Symbol) String() string {
	switch s.Kind {
	case ArraySymbol:
		parts := make([]string, len(s.Elements))
		for i, v := range s.Elements {
			parts[i] = v.String()
		}
		return fmt.Sprintf("%s[%d] = [%s]", s.Type, s.Size(), strings.Join(parts, ", "))
	case FunctionSymbol:
		return fmt.Sprintf("func -> %s", s.Type)
	}
	return fmt.Sprintf("%s = %s", s.Type, s.Value.Operand())
}

// SymbolTable maps declared names to their current state.
// Globals live in their own map; every open block pushes a local scope.
// Built-in function names are kept apart so a lookup for a variable can
// never return one.
type SymbolTable struct {
	globals map[string]*Symbol

	// Stack of block scopes, innermost last.
	locals []map[string]*Symbol

	functions map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	s := &SymbolTable{
		globals:   make(map[string]*Symbol),
		functions: make(map[string]*Symbol),
	}
	for _, fn := range builtinFuncs {
		s.functions[fn.Name] = &Symbol{Name: fn.Name, Kind: FunctionSymbol, Type: fn.Returns}
	}
	return s
}

func (s *SymbolTable) EnterScope() {
	s.locals = append(s.locals, make(map[string]*Symbol))
}

// ExitScope drops every name declared since the matching EnterScope.
func (s *SymbolTable) ExitScope() {
	if len(s.locals) > 0 {
		s.locals = s.locals[:len(s.locals)-1]
	}
}

// Depth is the number of open block scopes.
func (s *SymbolTable) Depth() int { return len(s.locals) }

// Declare inserts sym into the innermost scope. A name that is already
// visible in any scope, or that names a built-in function, is a
// DuplicateDeclaration and leaves the table untouched.
func (s *SymbolTable) Declare(sym *Symbol) error {
	if _, ok := s.functions[sym.Name]; ok {
		return semErr(ErrDuplicateDeclaration, "%q is a built-in function", sym.Name)
	}
	if prev, ok := s.Lookup(sym.Name); ok {
		return semErr(ErrDuplicateDeclaration, "%q is already declared as %s %s", sym.Name, prev.Type, prev.Kind)
	}
	sym.Depth = len(s.locals)
	if len(s.locals) > 0 {
		s.locals[len(s.locals)-1][sym.Name] = sym
		return nil
	}
	s.globals[sym.Name] = sym
	return nil
}

// Lookup returns the variable or array visible under name.
func (s *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if sym, ok := s.locals[i][name]; ok {
			return sym, true
		}
	}
	sym, ok := s.globals[name]
	return sym, ok
}

// Function returns the built-in function entry for name.
func (s *SymbolTable) Function(name string) (*Symbol, bool) {
	sym, ok := s.functions[name]
	return sym, ok
}

// Symbols returns every visible variable and array sorted by name.
func (s *SymbolTable) Symbols() []*Symbol {
	seen := make(map[string]*Symbol)
	for name, sym := range s.globals {
		seen[name] = sym
	}
	for _, scope := range s.locals {
		for name, sym := range scope {
			seen[name] = sym
		}
	}
	return sortedSymbols(seen)
}

// Functions returns the built-in function entries sorted by name.
func (s *SymbolTable) Functions() []*Symbol {
	return sortedSymbols(s.functions)
}

func sortedSymbols(m map[string]*Symbol) []*Symbol {
	out := make([]*Symbol, 0, len(m))
	for _, sym := range m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.globals) > 0 {
		sb.WriteString("Globals:\n")
		for _, sym := range sortedSymbols(s.globals) {
			fmt.Fprintf(&sb, "  %-20s  %s\n", sym.Name, sym)
		}
	} else {
		sb.WriteString("Globals: (empty)\n")
	}

	for i, scope := range s.locals {
		fmt.Fprintf(&sb, "Scope %d:\n", i+1)
		for _, sym := range sortedSymbols(scope) {
			fmt.Fprintf(&sb, "  %-20s  %s\n", sym.Name, sym)
		}
	}

	sb.WriteString("Functions:\n")
	for _, sym := range s.Functions() {
		fmt.Fprintf(&sb, "  %-20s  %s\n", sym.Name, sym)
	}
	return sb.String()
}

// Reserved keys for the output log and the trace in Export.
const (
	OutputKey = "__output__"
	TraceKey  = "__assembly__"
)

// Export builds a JSON-ready map of the visible symbols, the built-in
// functions and both logs. User entries are nested under "symbols" so a
// variable named __output__ cannot shadow the log.
func (s *SymbolTable) Export(output, trace []string) map[string]any {
	vars := make(map[string]any)
	for _, sym := range s.Symbols() {
		vars[sym.Name] = exportSymbol(sym)
	}
	funcs := make(map[string]any)
	for _, sym := range s.Functions() {
		funcs[sym.Name] = exportSymbol(sym)
	}
	if output == nil {
		output = []string{}
	}
	if trace == nil {
		trace = []string{}
	}
	return map[string]any{
		"symbols":   vars,
		"functions": funcs,
		OutputKey:   output,
		TraceKey:    trace,
	}
}

func exportSymbol(sym *Symbol) map[string]any {
	m := map[string]any{
		"kind": sym.Kind.String(),
		"type": sym.Type.String(),
	}
	switch sym.Kind {
	case ScalarSymbol:
		m["value"] = exportValue(sym.Value)
	case ArraySymbol:
		elems := make([]any, len(sym.Elements))
		for i, v := range sym.Elements {
			elems[i] = exportValue(v)
		}
		m["size"] = sym.Size()
		m["elements"] = elems
	}
	return m
}

// exportValue maps a Value onto a JSON-encodable Go value. JSON has no
// NaN or infinities, so those travel as their printed form.
func exportValue(v Value) any {
	switch v.Kind {
	case NumberValue:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return FormatNumber(v.Num)
		}
		return v.Num
	case StringValue:
		return v.Str
	case BoolValue:
		return v.Bool
	}
	return nil
}
