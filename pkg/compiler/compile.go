package compiler

import (
	"fmt"
	"log"

	"rglang/pkg/asm"
)

// Options configures one compile.
type Options struct {
	// MaxSteps bounds loop iterations, factorial steps and array sizes.
	// Zero means unbounded.
	MaxSteps int
	// Logger receives one line per failed stage. Nil is silent.
	Logger *log.Logger
	// Version is checked against rg:require pragmas. Empty means
	// LanguageVersion.
	Version string
}

// Compilation holds the artefacts of every stage that ran. Later fields
// stay nil when an earlier stage failed.
type Compilation struct {
	Source    string
	Tokens    []Token
	Program   *Program
	Warnings  []Warning
	Generated string
	Result    *Result
	Listing   *asm.Listing
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// Compile runs the whole pipeline on src: pragma check, lex, parse, lint,
// code generation and analysis, then lists the trace. Code generation does
// not depend on analysis, so Generated is filled in even when the program
// fails at run time.
func Compile(src string, opts Options) (*Compilation, error) {
	c := &Compilation{Source: src}

	if err := CheckVersion(src, opts.Version); err != nil {
		opts.logf("pragma error: %v", err)
		return c, err
	}

	tokens, err := Lex(src)
	if err != nil {
		opts.logf("lex error: %v", err)
		return c, err
	}
	c.Tokens = tokens

	prog, warnings, err := Parse(tokens)
	c.Program = prog
	c.Warnings = warnings
	if err != nil {
		opts.logf("parse error: %v", err)
		return c, err
	}
	c.Warnings = append(c.Warnings, Lint(prog)...)

	generated, err := Generate(prog)
	if err != nil {
		opts.logf("codegen error: %v", err)
		return c, err
	}
	c.Generated = generated

	res, runErr := Analyze(prog, opts)
	c.Result = res
	if runErr != nil {
		opts.logf("semantic error: %v", runErr)
	}

	listing, err := asm.List(res.Trace)
	if err != nil {
		opts.logf("listing error: %v", err)
		if runErr != nil {
			return c, runErr
		}
		return c, fmt.Errorf("trace listing: %w", err)
	}
	c.Listing = listing
	if runErr != nil {
		return c, runErr
	}
	if err := listing.Verify(); err != nil {
		opts.logf("listing error: %v", err)
		return c, fmt.Errorf("trace listing: %w", err)
	}
	return c, nil
}
