package compiler

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"rglang/pkg/asm"
)

func analyzeSrc(t *testing.T, src string, opts Options) (*Result, error) {
	t.Helper()
	prog, _, err := parseSrc(t, src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return Analyze(prog, opts)
}

func scalar(t *testing.T, res *Result, name string) Value {
	t.Helper()
	sym, ok := res.Symbols.Lookup(name)
	if !ok {
		t.Fatalf("symbol %q not declared", name)
	}
	return sym.Value
}

func TestAnalyzeSumProgram(t *testing.T) {
	src := `RG int x = 10; RG int y = 20; RG int sum = x + y; RG_Print("The sum is:", sum);`
	res, err := analyzeSrc(t, src, Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if want := []string{"The sum is: 30"}; !reflect.DeepEqual(res.Output, want) {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
	for name, want := range map[string]float64{"x": 10, "y": 20, "sum": 30} {
		if got := scalar(t, res, name); got != Number(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestAnalyzeArrayRoundTrip(t *testing.T) {
	res, err := analyzeSrc(t, "RG int a[3] = 0;\ninsert(a, 5);\ndelete(a, 0);", Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	sym, ok := res.Symbols.Lookup("a")
	if !ok {
		t.Fatal("array a not declared")
	}
	if sym.Size() != 3 {
		t.Errorf("size = %d, want 3", sym.Size())
	}
	want := []Value{Number(0), Number(0), Number(5)}
	if !reflect.DeepEqual(sym.Elements, want) {
		t.Errorf("elements = %v, want %v", sym.Elements, want)
	}
}

func TestAnalyzeDivisionByZeroStopsTrace(t *testing.T) {
	res, err := analyzeSrc(t, "RG int a = 1;\nRG int z = 5 / 0;", Options{})
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("error = %v, want ErrDivisionByZero", err)
	}
	want := []string{
		"; Declare int a",
		"MOV R0, 1",
		"STORE [a], R0",
		"; Declare int z",
		"MOV R1, 5",
		"MOV R2, 0",
	}
	if !reflect.DeepEqual(res.Trace, want) {
		t.Errorf("trace =\n%s\nwant\n%s", strings.Join(res.Trace, "\n"), strings.Join(want, "\n"))
	}
	if len(res.Output) != 0 {
		t.Errorf("output = %q, want none", res.Output)
	}
	if _, ok := res.Symbols.Lookup("z"); ok {
		t.Error("z was declared despite the failed initializer")
	}
}

func TestAnalyzeShortCircuit(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"And", "RG bool b = false && (1 / 0 == 1);", false},
		{"Or", "RG bool b = true || undefinedName;", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := analyzeSrc(t, tt.src, Options{})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if got := scalar(t, res, "b"); got != Bool(tt.want) {
				t.Errorf("b = %v, want %v", got, tt.want)
			}
			for _, line := range res.Trace {
				if strings.HasPrefix(line, "DIV") || strings.Contains(line, "undefinedName") {
					t.Errorf("right operand left %q in the trace", line)
				}
			}
			if !strings.Contains(strings.Join(res.Trace, "\n"), "short-circuit") {
				t.Error("trace does not record the short-circuit")
			}
		})
	}
}

func TestAnalyzeDuplicateLeavesTableUnchanged(t *testing.T) {
	a := NewAnalyzer(Options{})
	first, _, err := parseSrc(t, "RG int x = 1; RG float f[2] = 0.5;")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(first); err != nil {
		t.Fatalf("Run: %v", err)
	}
	before := a.Symbols().String()
	traceLen := len(a.Trace())

	for _, src := range []string{"RG int x = 2;", "RG bool f;", "{ RG int x = 3; }"} {
		prog, _, err := parseSrc(t, src)
		if err != nil {
			t.Fatal(err)
		}
		if err := a.Run(prog); !errors.Is(err, ErrDuplicateDeclaration) {
			t.Errorf("Run(%q) error = %v, want ErrDuplicateDeclaration", src, err)
		}
		if after := a.Symbols().String(); after != before {
			t.Errorf("Run(%q) changed the table:\n%s\nwas\n%s", src, after, before)
		}
	}
	if len(a.Trace()) != traceLen {
		t.Errorf("failed declarations added %d trace lines", len(a.Trace())-traceLen)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		maxSteps int
		want     error
	}{
		{"Undeclared Assignment", "x = 1;", 0, ErrUndefinedReference},
		{"Undeclared Read", "RG_Print(y);", 0, ErrUndefinedReference},
		{"Undefined Function", "RG int y = foo(2);", 0, ErrUndefinedReference},
		{"Loop Variable Out Of Scope", "for (RG int i = 0; i < 1; i = i + 1) { } RG_Print(i);", 0, ErrUndefinedReference},
		{"Zero Array Size", "RG int a[0];", 0, ErrInvalidArraySize},
		{"Fractional Array Size", "RG int a[2.5];", 0, ErrInvalidArraySize},
		{"Array Size Beyond Int Range", "RG int a[99999999999999999999];", 0, ErrInvalidArraySize},
		{"Array Size Beyond Int Range With Limit", "RG int a[99999999999999999999];", 1_000_000, ErrInvalidArraySize},
		{"Array Size Over Maximum", "RG bool a[16777217];", 0, ErrInvalidArraySize},
		{"Index Past End", "RG int a[2]; a[2] = 1;", 0, ErrIndexOutOfBounds},
		{"Negative Index", "RG int a[2]; RG int b = a[-1];", 0, ErrIndexOutOfBounds},
		{"Delete Past End", "RG int a[2]; delete(a, 5);", 0, ErrIndexOutOfBounds},
		{"Break Outside Loop", "break;", 0, ErrBreakOutsideLoop},
		{"Continue In Block", "{ continue; }", 0, ErrBreakOutsideLoop},
		{"Sqrt Of Negative", "RG float f = sqrt(-1);", 0, ErrDomain},
		{"Log Of Zero", "RG float f = log(0);", 0, ErrDomain},
		{"Fractional Factorial", "RG int f = factorial(2.5);", 0, ErrDomain},
		{"Modulo By Zero", "RG int x = 1 % 0;", 0, ErrDivisionByZero},
		{"String Arithmetic", `RG int x = "s" - 1;`, 0, ErrType},
		{"Number Into Bool", "RG bool b = 1;", 0, ErrType},
		{"Bool Into Int", "RG int n = true;", 0, ErrType},
		{"Call Of Variable", "RG int x = 1; RG int y = x(2);", 0, ErrType},
		{"Wrong Arity", "RG float y = pow(2);", 0, ErrType},
		{"Array Without Index", "RG int a[2]; RG int y = a;", 0, ErrType},
		{"Index Of Scalar", "RG int x = 1; RG int y = x[0];", 0, ErrType},
		{"Mixed Ordering", `RG bool b = "a" < 1;`, 0, ErrType},
		{"Infinite Loop", "while (true) { }", 100, ErrStepLimit},
		{"Large Factorial", "RG int f = factorial(20);", 5, ErrStepLimit},
		{"Large Array", "RG int a[10];", 5, ErrStepLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeSrc(t, tt.src, Options{MaxSteps: tt.maxSteps})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			var se *SemanticError
			if !errors.As(err, &se) {
				t.Errorf("error %T is not a *SemanticError", err)
			}
		})
	}
}

func TestAnalyzeOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "Else If Chain",
			src:  `RG int x = 5; if (x > 10) { RG_Print("big"); } else if (x > 3) { RG_Print("mid"); } else { RG_Print("small"); }`,
			want: []string{"mid"},
		},
		{
			name: "While With Break And Continue",
			src: `RG int i = 0;
while (i < 10) {
  i = i + 1;
  if (i % 2 == 0) { continue; }
  if (i > 5) { break; }
  RG_Print(i);
}`,
			want: []string{"1", "3", "5"},
		},
		{
			name: "For Loop Sum",
			src:  `RG int s = 0; for (RG int i = 1; i <= 4; i = i + 1) { s = s + i; } RG_Print("s", s);`,
			want: []string{"s 10"},
		},
		{
			name: "Break Leaves Only Inner Loop",
			src:  `for (RG int i = 0; i < 2; i = i + 1) { for (RG int j = 0; j < 5; j = j + 1) { if (j == 1) { break; } RG_Print(i, j); } }`,
			want: []string{"0 0", "1 0"},
		},
		{
			name: "Int Truncates Float Keeps",
			src:  "RG int x = 7 / 2; RG float y = 7 / 2; RG_Print(x, y);",
			want: []string{"3 3.5"},
		},
		{
			name: "Concatenation",
			src:  `RG_Print("a" + 1 + true);`,
			want: []string{"a1true"},
		},
		{
			name: "Math Functions",
			src:  "RG int f = factorial(5); RG_Print(f, pow(2, 10), sqrt(16));",
			want: []string{"120 1024 4"},
		},
		{
			name: "Block Scope",
			src:  "RG int x = 1; { RG int y = 2; RG_Print(x + y); } RG int y = 3; RG_Print(y);",
			want: []string{"3", "3"},
		},
		{
			name: "Logical And Comparison",
			src:  `RG_Print(1 && 0, 0 || 2, !0, "a" < "b", 1 == true);`,
			want: []string{"false true true true false"},
		},
		{
			name: "Empty Print",
			src:  "RG_Print();",
			want: []string{""},
		},
		{
			name: "Array Elements",
			src:  "RG float a[2] = 1.5; a[1] = a[0] * 2; insert(a, 9); RG_Print(a[0], a[1], a[2]);",
			want: []string{"1.5 3 9"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := analyzeSrc(t, tt.src, Options{MaxSteps: 1000})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if !reflect.DeepEqual(res.Output, tt.want) {
				t.Errorf("output = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

func TestAnalyzeTraceFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "Declaration",
			src:  "RG int x = 10;",
			want: []string{"; Declare int x", "MOV R0, 10", "STORE [x], R0"},
		},
		{
			name: "Default Value",
			src:  "RG bool b;",
			want: []string{"; Declare bool b", "MOV R0, 0", "STORE [b], R0"},
		},
		{
			name: "Comparison",
			src:  "RG bool b = 1 < 2;",
			want: []string{"; Declare bool b", "MOV R0, 1", "MOV R1, 2", "CMP R0, R1", "SETL R2", "STORE [b], R2"},
		},
		{
			name: "Factorial",
			src:  "RG int f = factorial(3);",
			want: []string{
				"; Declare int f",
				"; Math function factorial",
				"MOV R0, 3",
				"; Calculate factorial(3)",
				"MOV R1, 1",
				"MUL R1, R1, 2",
				"MUL R1, R1, 3",
				"STORE [f], R1",
			},
		},
		{
			name: "Array",
			src:  "RG int a[2] = 7; RG_Print(a[1]);",
			want: []string{
				"; Declare array int a",
				"MOV R0, 2",
				"MOV R1, 7",
				"ALLOC [a], 2",
				"FILL [a], R1, 2",
				"; Print statement",
				"MOV R2, 1",
				"LOAD R3, [a+1]",
				"PUSH R3",
				"CALL PRINT, 1",
			},
		},
		{
			name: "Untaken If",
			src:  "if (false) { RG_Print(1); }",
			want: []string{
				"; If statement condition",
				"MOV R0, 0",
				"CMP R0, 0",
				"JE L_ELSE_0",
				"L_ELSE_0:",
				"L_END_IF_0:",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := analyzeSrc(t, tt.src, Options{})
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if !reflect.DeepEqual(res.Trace, tt.want) {
				t.Errorf("trace =\n%s\nwant\n%s", strings.Join(res.Trace, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func TestAnalyzeLoopTraceLists(t *testing.T) {
	src := `RG int n = 0;
while (n < 3) {
  n = n + 1;
  if (n == 2) { continue; }
}
for (RG int i = 0; i < 3; i = i + 1) {
  if (i == 1) { break; }
}`
	res, err := analyzeSrc(t, src, Options{MaxSteps: 100})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	counts := make(map[string]int)
	for _, line := range res.Trace {
		if strings.HasSuffix(line, ":") {
			counts[line]++
		}
	}
	for label, n := range counts {
		if n != 1 {
			t.Errorf("label %s placed %d times", label, n)
		}
	}
	listing, err := asm.List(res.Trace)
	if err != nil {
		t.Fatalf("asm.List: %v", err)
	}
	if err := listing.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
	for _, label := range []string{"L_WHILE_START_0", "L_WHILE_END_0", "L_FOR_START_2", "L_FOR_END_2"} {
		if _, ok := listing.Target(label); !ok {
			t.Errorf("label %s missing from listing", label)
		}
	}
}

func TestAnalyzerRunIsIncremental(t *testing.T) {
	a := NewAnalyzer(Options{})
	for _, src := range []string{"RG int x = 4;", "x = x * 2;", "RG_Print(x);"} {
		prog, _, err := parseSrc(t, src)
		if err != nil {
			t.Fatal(err)
		}
		if err := a.Run(prog); err != nil {
			t.Fatalf("Run(%q): %v", src, err)
		}
	}
	if want := []string{"8"}; !reflect.DeepEqual(a.Output(), want) {
		t.Errorf("output = %q, want %q", a.Output(), want)
	}
}

func TestAnalyzerStepBudgetIsPerRun(t *testing.T) {
	a := NewAnalyzer(Options{MaxSteps: 8})
	run := func(src string) error {
		t.Helper()
		prog, _, err := parseSrc(t, src)
		if err != nil {
			t.Fatal(err)
		}
		return a.Run(prog)
	}
	if err := run("RG int n = 0;"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := run("n = 0; while (n < 5) { n = n + 1; }"); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if err := run("while (true) { }"); !errors.Is(err, ErrStepLimit) {
		t.Errorf("error = %v, want ErrStepLimit", err)
	}
}

func TestResultJSON(t *testing.T) {
	res, err := analyzeSrc(t, `RG int __output__ = 1; RG bool a[1] = true; RG_Print("hi");`, Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	data, err := res.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var doc struct {
		Symbols map[string]struct {
			Kind     string `json:"kind"`
			Type     string `json:"type"`
			Value    any    `json:"value"`
			Size     int    `json:"size"`
			Elements []any  `json:"elements"`
		} `json:"symbols"`
		Functions map[string]any `json:"functions"`
		Output    []string       `json:"__output__"`
		Trace     []string       `json:"__assembly__"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(doc.Output, []string{"hi"}) {
		t.Errorf("__output__ = %q, want [hi]", doc.Output)
	}
	if len(doc.Trace) != len(res.Trace) {
		t.Errorf("__assembly__ has %d lines, want %d", len(doc.Trace), len(res.Trace))
	}
	if v := doc.Symbols["__output__"].Value; v != 1.0 {
		t.Errorf("user variable __output__ = %v, want 1", v)
	}
	if arr := doc.Symbols["a"]; arr.Kind != "array" || arr.Size != 1 || !reflect.DeepEqual(arr.Elements, []any{true}) {
		t.Errorf("array a = %+v", arr)
	}
	if _, ok := doc.Functions["factorial"]; !ok {
		t.Error("functions missing factorial")
	}
}
