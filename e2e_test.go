package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"rglang/pkg/compiler"
)

func assertContains(t *testing.T, lines []string, want string) {
	t.Helper()
	for _, l := range lines {
		if l == want {
			return
		}
	}
	t.Errorf("output is missing %q\nGot:\n%s", want, strings.Join(lines, "\n"))
}

func TestExamplePrograms(t *testing.T) {
	tests := []struct {
		file   string
		want   []string
		absent []string
	}{
		{
			file: "calculator.rg",
			want: []string{
				"===== Basic Arithmetic =====",
				"Sum (x + y): 15",
				"Quotient (x / y): 2",
				"Power of 10 ^2 is 100",
				"x > y: true",
				"isTrue && isFalse: false",
				"x is greater than y",
				"isFalse is false",
				"numbers[ 3 ] = 30",
				"Factorial of 5 is 120",
				"Sum of numbers from 1 to 10 is 55",
				"Counter: 1",
				"Breaking at i = 5",
				"Loop iteration: 4",
				`\nProgram completed successfully!`,
			},
			absent: []string{"Loop iteration: 5", "x is less than y", "Counter: 0"},
		},
		{
			file: "arrays.rg",
			want: []string{
				"after insert: 7 0 9 11",
				"after delete: 7 9 11",
				"total weight: 2.5",
				"seen: false true",
			},
		},
		{
			file: "loops.rg",
			want: []string{
				"row 1 odd columns 135",
				"row 3 odd columns 135",
				"collatz steps: 111",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			j := compileFile(filepath.Join("examples", tt.file), compiler.Options{MaxSteps: 1_000_000})
			if j.err != nil {
				t.Fatalf("compile failed: %v", j.err)
			}
			out := j.c.Result.Output
			for _, w := range tt.want {
				assertContains(t, out, w)
			}
			for _, a := range tt.absent {
				for _, l := range out {
					if l == a {
						t.Errorf("unexpected output line %q", a)
					}
				}
			}
			if j.c.Listing == nil || j.c.Listing.Size == 0 {
				t.Error("trace was not listed")
			}
			if j.c.Generated == "" {
				t.Error("no code generated")
			}
		})
	}
}

func TestCalculatorLastLine(t *testing.T) {
	j := compileFile(filepath.Join("examples", "calculator.rg"), compiler.Options{})
	if j.err != nil {
		t.Fatal(j.err)
	}
	out := j.c.Result.Output
	if last := out[len(out)-1]; last != `\nProgram completed successfully!` {
		t.Errorf("last line = %q", last)
	}
}

func TestBrokenExampleReportsEveryError(t *testing.T) {
	j := compileFile(filepath.Join("examples", "broken.rg"), compiler.Options{})
	var list compiler.ErrorList
	if !errors.As(j.err, &list) {
		t.Fatalf("err = %v, want an ErrorList", j.err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(list), list)
	}
	if list[0].Token.Line != 3 || list[1].Token.Line != 6 {
		t.Errorf("error lines = %d, %d, want 3, 6", list[0].Token.Line, list[1].Token.Line)
	}
	if len(j.c.Warnings) != 1 || j.c.Warnings[0].Line != 2 {
		t.Errorf("warnings = %v, want one on line 2", j.c.Warnings)
	}
	if j.c.Result != nil {
		t.Error("analysis ran after a parse failure")
	}
}

func TestCompileFilesKeepsOrder(t *testing.T) {
	paths := []string{
		filepath.Join("examples", "loops.rg"),
		filepath.Join("examples", "broken.rg"),
		filepath.Join("examples", "arrays.rg"),
	}
	jobs, err := compileFiles(context.Background(), paths, compiler.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, j := range jobs {
		if j.path != paths[i] {
			t.Errorf("jobs[%d].path = %s, want %s", i, j.path, paths[i])
		}
	}
	if jobs[1].err == nil || jobs[0].err != nil || jobs[2].err != nil {
		t.Errorf("errors = %v, %v, %v", jobs[0].err, jobs[1].err, jobs[2].err)
	}
}

func TestCompileFilesMissingFile(t *testing.T) {
	_, err := compileFiles(context.Background(), []string{filepath.Join("examples", "nope.rg")}, compiler.Options{})
	if err == nil {
		t.Fatal("expected a read error")
	}
}

func TestRender(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := printer{stdout: &stdout, stderr: &stderr, multi: true}

	p.render(compileFile(filepath.Join("examples", "broken.rg"), compiler.Options{}), selection{lint: true})
	errText := stderr.String()
	if !strings.Contains(errText, "warning: line 2:") {
		t.Errorf("stderr has no warning:\n%s", errText)
	}
	for _, want := range []string{"parse error at 3:4:", "parse error at 6:"} {
		if !strings.Contains(errText, want) {
			t.Errorf("stderr is missing %q:\n%s", want, errText)
		}
	}
	if !strings.Contains(stdout.String(), "== examples/broken.rg ==") {
		t.Errorf("stdout has no header:\n%s", stdout.String())
	}

	stdout.Reset()
	stderr.Reset()
	p.multi = false
	p.render(compileFile(filepath.Join("examples", "arrays.rg"), compiler.Options{}), selection{json: true})
	var doc map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	out, ok := doc[compiler.OutputKey].([]any)
	if !ok || len(out) != 4 || out[3] != "seen: false true" {
		t.Errorf("%s = %v", compiler.OutputKey, doc[compiler.OutputKey])
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}
