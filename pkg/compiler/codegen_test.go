package compiler

import (
	"errors"
	"strings"
	"testing"
)

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected output to contain %q\n--- got ---\n%s", needle, haystack)
	}
}

func generateSrc(t *testing.T, src string) string {
	t.Helper()
	prog, _, err := parseSrc(t, src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	out, err := Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Declaration", "RG int x = 10;", "int x = 10;\n"},
		{"Declaration Without Initializer", "RG bool done;", "bool done;\n"},
		{"Array", "RG float a[3] = 1.5;", "float a[3] = 1.5;\n"},
		{"Print", `RG_Print("sum", x + 1);`, "print(\"sum\", (x + 1));\n"},
		{"Concatenation", `s = "a" + n + 1;`, "s = concat(concat(\"a\", n), 1);\n"},
		{"Unary", "RG int n = -x; RG bool b = !!t;", "int n = -x;\nbool b = !(!t);\n"},
		{"Math", "RG float p = pow(2, sqrt(16));", "float p = pow(2, sqrt(16));\n"},
		{"Indexed", "a[i] = a[i - 1] * 2;", "a[i] = (a[(i - 1)] * 2);\n"},
		{"Logical", "ok = a && !b || c;", "ok = ((a && !b) || c);\n"},
		{
			"Else If Chain",
			"if (x) { break; } else if (y) { } else { continue; }",
			"if (x) {\n  break;\n} else if (y) {\n} else {\n  continue;\n}\n",
		},
		{
			"For Loop",
			"for (RG int i = 0; i < 3; i = i + 1) { RG_Print(i); }",
			"for (int i = 0; (i < 3); i = (i + 1)) {\n  print(i);\n}\n",
		},
		{
			"For Without Clauses",
			"for (;;) { break; }",
			"for (; ; ) {\n  break;\n}\n",
		},
		{
			"While With Array Ops",
			"while (n > 0) { insert(a, n); delete(a, 0); }",
			"while ((n > 0)) {\n  insert(a, n);\n  delete(a, 0);\n}\n",
		},
		{
			"Nested Block",
			"{ RG int y = 1; { y = 2; } }",
			"{\n  int y = 1;\n  {\n    y = 2;\n  }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateSrc(t, tt.input); got != tt.want {
				t.Errorf("Generate() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

const calculatorSrc = `RG int num1 = 10;
RG float pi = 3.14159;
RG_Print("Addition:", num1 + 5);
RG int n = 5;
RG int fact = factorial(n);
RG_Print("Factorial:", fact);
RG int numbers[5] = 0;
for (RG int i = 0; i < 5; i = i + 1) {
  numbers[i] = i * 2;
}
for (RG int i = 0; i < 5; i = i + 1) {
  RG_Print("numbers[", i, "] =", numbers[i]);
}
RG int score = 85;
if (score >= 90) {
  RG_Print("Grade: A");
} else if (score >= 80) {
  RG_Print("Grade: B");
} else {
  RG_Print("Grade: F");
}
RG int counter = 0;
while (counter < 10) {
  counter = counter + 1;
  if (counter == 3) {
    break;
  }
}
RG_Print("Area:", pi * pow(2, 2));
`

func TestGenerateWellFormed(t *testing.T) {
	out := generateSrc(t, calculatorSrc)
	if open, closed := strings.Count(out, "{"), strings.Count(out, "}"); open != closed {
		t.Errorf("unbalanced braces: %d '{' vs %d '}'", open, closed)
	}
	for i, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasSuffix(trimmed, ";") && !strings.HasSuffix(trimmed, "{") && trimmed != "}" {
			t.Errorf("line %d %q ends neither a statement nor a block", i+1, line)
		}
	}
	assertContains(t, out, "int fact = factorial(n);")
	assertContains(t, out, "} else if ((score >= 80)) {")
	assertContains(t, out, "    break;")
	assertContains(t, out, "print(\"numbers[\", i, \"] =\", numbers[i]);")
}

func TestGenerateIsIdempotent(t *testing.T) {
	prog, _, err := parseSrc(t, calculatorSrc)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Generate(prog)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Analyze(prog, Options{MaxSteps: 1000}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := Generate(prog)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second Generate differs:\n%s\nvs\n%s", first, second)
	}
}

func TestGenerateUnknownNode(t *testing.T) {
	_, err := Generate(&Program{Stmts: []Stmt{nil}})
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("error = %v, want ErrUnknownNode", err)
	}
	_, err = Generate(&Program{Stmts: []Stmt{&ExprStmt{}}})
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("nil expression: error = %v, want ErrUnknownNode", err)
	}
}
