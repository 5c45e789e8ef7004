package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"rglang/pkg/compiler"
	"rglang/pkg/utils"
)

// selection picks the artefacts printed for each file. Errors are always
// shown, and program output is too unless json replaces it.
type selection struct {
	tokens, ast, trace, listing, symbols, gen, json, lint bool
}

// job is one compiled file.
type job struct {
	path string
	c    *compiler.Compilation
	err  error
}

func compileFile(path string, opts compiler.Options) job {
	src, err := os.ReadFile(path)
	if err != nil {
		return job{path: path, c: &compiler.Compilation{}, err: err}
	}
	c, err := compiler.Compile(string(src), opts)
	return job{path: path, c: c, err: err}
}

// compileFiles compiles every path concurrently. Results keep the order
// of paths. A file that cannot be read fails the whole batch; compile
// errors are reported per job.
func compileFiles(ctx context.Context, paths []string, opts compiler.Options) ([]job, error) {
	jobs := make([]job, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			c, err := compiler.Compile(string(src), opts)
			jobs[i] = job{path: path, c: c, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

type printer struct {
	stdout, stderr io.Writer
	color          bool
	multi          bool // print a header per file
}

func (p printer) section(title string) {
	fmt.Fprintln(p.stdout, utils.Colorize(p.color, utils.Dim, "-- "+title+" --"))
}

func (p printer) render(j job, sel selection) {
	c := j.c
	if p.multi {
		fmt.Fprintf(p.stdout, "== %s ==\n", j.path)
	}

	if sel.tokens && c.Tokens != nil {
		p.section(fmt.Sprintf("tokens (%d)", len(c.Tokens)))
		for _, tok := range c.Tokens {
			fmt.Fprintln(p.stdout, " ", tok)
		}
	}
	if sel.ast && c.Program != nil {
		p.section("ast")
		for _, s := range c.Program.Stmts {
			fmt.Fprintln(p.stdout, " ", s)
		}
	}
	if sel.gen && c.Generated != "" {
		p.section("generated")
		fmt.Fprint(p.stdout, c.Generated)
	}

	if c.Result != nil {
		if sel.trace {
			p.section("trace")
			for _, line := range c.Result.Trace {
				fmt.Fprintln(p.stdout, line)
			}
		}
		if sel.listing && c.Listing != nil {
			p.section("listing")
			fmt.Fprint(p.stdout, c.Listing)
		}
		if sel.symbols {
			p.section("symbols")
			fmt.Fprint(p.stdout, c.Result.Symbols)
		}
		if sel.json {
			data, err := c.Result.JSON()
			if err != nil {
				fmt.Fprintln(p.stderr, "json error:", err)
			} else {
				fmt.Fprintln(p.stdout, string(data))
			}
		} else {
			for _, line := range c.Result.Output {
				fmt.Fprintln(p.stdout, line)
			}
		}
	}

	if sel.lint {
		for _, w := range c.Warnings {
			fmt.Fprintln(p.stderr, utils.Colorize(p.color, utils.Yellow, j.path+": warning: "+w.String()))
		}
	}
	if j.err != nil {
		msg := compiler.FormatError(j.err, c.Source)
		fmt.Fprintln(p.stderr, utils.Colorize(p.color, utils.Red, indentAfterFirst(j.path+": "+msg)))
	}
}

func indentAfterFirst(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
