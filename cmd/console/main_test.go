package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"RG int x = 1;", false},
		{"if (x > 0) {", true},
		{"if (x > 0) {\n RG_Print(x);\n}", false},
		{"RG_Print(\"{\");", false},
		{"RG_Print(x, // )\n", true},
		{"RG_Print(\"open", true},
		{"}", false},
	}
	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestSessionKeepsState(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out, false)
	s.eval("RG int x = 4;")
	s.eval(`RG_Print("x is", x);`)
	s.eval(`x = x * 2; RG_Print("now", x);`)
	if got, want := out.String(), "x is 4\nnow 8\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSessionReportsErrorsAndContinues(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out, false)
	s.eval("RG x = 1;")
	s.eval("RG int y = 1 / 0;")
	s.eval(`RG_Print("still here");`)
	text := out.String()
	if !strings.Contains(text, "parse error at 1:4") {
		t.Errorf("missing parse error:\n%s", text)
	}
	if !strings.Contains(text, "division by zero") {
		t.Errorf("missing semantic error:\n%s", text)
	}
	if !strings.HasSuffix(text, "still here\n") {
		t.Errorf("session stopped after errors:\n%s", text)
	}
}

func TestCommands(t *testing.T) {
	var out bytes.Buffer
	s := newSession(&out, false)
	s.eval("RG int x = 4;")
	if s.command(":symbols") {
		t.Fatal(":symbols ended the session")
	}
	if !strings.Contains(out.String(), "x") {
		t.Errorf(":symbols output = %q", out.String())
	}
	s.command(":reset")
	out.Reset()
	s.eval("RG int x = 5;")
	if strings.Contains(out.String(), "error") {
		t.Errorf("redeclaration after :reset failed: %q", out.String())
	}
	if !s.command(":quit") {
		t.Error(":quit did not end the session")
	}
}
