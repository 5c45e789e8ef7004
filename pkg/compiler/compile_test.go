package compiler

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	c, err := Compile(calculatorSrc, Options{MaxSteps: 1000})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(c.Tokens) == 0 || c.Program == nil {
		t.Fatal("tokens or program missing")
	}
	assertContains(t, c.Generated, "float pi = 3.14159;")
	want := []string{
		"Addition: 15",
		"Factorial: 120",
		"numbers[ 0 ] = 0",
		"numbers[ 1 ] = 2",
		"numbers[ 2 ] = 4",
		"numbers[ 3 ] = 6",
		"numbers[ 4 ] = 8",
		"Grade: B",
		"Area: 12.56636",
	}
	if !reflect.DeepEqual(c.Result.Output, want) {
		t.Errorf("output =\n%s\nwant\n%s", strings.Join(c.Result.Output, "\n"), strings.Join(want, "\n"))
	}
	if c.Listing == nil || c.Listing.Size == 0 {
		t.Fatal("listing missing")
	}
	if got := len(c.Listing.Instructions()); got != c.Listing.Size {
		t.Errorf("Instructions() = %d, Size = %d", got, c.Listing.Size)
	}
}

func TestCompileStopsAtFailingStage(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantErr   error
		tokens    bool
		program   bool
		generated bool
		listing   bool
	}{
		{
			name:    "Version",
			src:     "// rg:require >= 99\nRG int x = 1;",
			wantErr: ErrVersionMismatch,
		},
		{
			name:    "Parse",
			src:     "RG x = 1;",
			tokens:  true,
			program: true,
		},
		{
			name:      "Runtime",
			src:       "RG int x = 1;\nRG int y = x / 0;",
			wantErr:   ErrDivisionByZero,
			tokens:    true,
			program:   true,
			generated: true,
			listing:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(tt.src, Options{})
			if err == nil {
				t.Fatal("Compile succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := c.Tokens != nil; got != tt.tokens {
				t.Errorf("tokens present = %v, want %v", got, tt.tokens)
			}
			if got := c.Program != nil; got != tt.program {
				t.Errorf("program present = %v, want %v", got, tt.program)
			}
			if got := c.Generated != ""; got != tt.generated {
				t.Errorf("generated present = %v, want %v", got, tt.generated)
			}
			if got := c.Listing != nil; got != tt.listing {
				t.Errorf("listing present = %v, want %v", got, tt.listing)
			}
		})
	}
}

func TestCompileLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compile("RG float f = sqrt(-4);", Options{Logger: log.New(&buf, "", 0)})
	if !errors.Is(err, ErrDomain) {
		t.Fatalf("error = %v, want ErrDomain", err)
	}
	assertContains(t, buf.String(), "semantic error: domain error")
}

func TestCompileOversizedArrayFails(t *testing.T) {
	c, err := Compile("RG int a[99999999999999999999];", Options{MaxSteps: 1_000_000})
	if !errors.Is(err, ErrInvalidArraySize) {
		t.Fatalf("error = %v, want ErrInvalidArraySize", err)
	}
	if _, ok := c.Result.Symbols.Lookup("a"); ok {
		t.Error("oversized array was declared")
	}
}

func TestCompileCollectsWarnings(t *testing.T) {
	c, err := Compile("RG int unused = 1\nRG_Print(2);", Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var msgs []string
	for _, w := range c.Warnings {
		msgs = append(msgs, w.String())
	}
	want := []string{
		"line 1: missing ';' after declaration",
		`line 1: variable "unused" is declared but never read`,
	}
	if !reflect.DeepEqual(msgs, want) {
		t.Errorf("warnings = %q, want %q", msgs, want)
	}
}
