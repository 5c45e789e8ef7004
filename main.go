//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"rglang/pkg/compiler"
	"rglang/pkg/utils"
	"rglang/pkg/watch"
)

func main() {
	var sel selection
	flag.BoolVar(&sel.tokens, "tokens", false, "print the token stream")
	flag.BoolVar(&sel.ast, "ast", false, "print the parsed program")
	flag.BoolVar(&sel.trace, "trace", false, "print the raw pseudo-assembly trace")
	flag.BoolVar(&sel.listing, "listing", false, "print the trace as an addressed listing")
	flag.BoolVar(&sel.symbols, "symbols", false, "print the final symbol table")
	flag.BoolVar(&sel.gen, "gen", false, "print the generated C-like code")
	flag.BoolVar(&sel.json, "json", false, "print symbols, output and trace as one JSON document")
	flag.BoolVar(&sel.lint, "lint", true, "print warnings")
	watchMode := flag.Bool("watch", false, "recompile a file every time it is saved")
	maxSteps := flag.Int("max-steps", 1_000_000, "abort programs after this many loop iterations (0 = no limit)")
	colorMode := flag.String("color", "auto", "colour diagnostics: auto, always or never")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.rg [file.rg ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	switch utils.ColorMode(*colorMode) {
	case utils.ColorAuto, utils.ColorAlways, utils.ColorNever:
	default:
		fmt.Fprintf(os.Stderr, "invalid -color %q\n", *colorMode)
		os.Exit(2)
	}

	opts := compiler.Options{MaxSteps: *maxSteps}
	out := printer{
		stdout: os.Stdout,
		stderr: os.Stderr,
		color:  utils.UseColor(utils.ColorMode(*colorMode), os.Stderr),
		multi:  len(paths) > 1,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jobs, err := compileFiles(ctx, paths, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
	failed := false
	for _, j := range jobs {
		out.render(j, sel)
		failed = failed || j.err != nil
	}

	if *watchMode {
		if err := watchFiles(ctx, paths, opts, out, sel); err != nil {
			fmt.Fprintln(os.Stderr, "watch error:", err)
			os.Exit(1)
		}
		return
	}
	if failed {
		os.Exit(1)
	}
}

// watchFiles recompiles each file as it changes until ctx is cancelled.
func watchFiles(ctx context.Context, paths []string, opts compiler.Options, out printer, sel selection) error {
	w, err := watch.New(paths, 100*time.Millisecond)
	if err != nil {
		return err
	}
	defer w.Close()

	out.multi = true
	fmt.Fprintln(out.stderr, utils.Colorize(out.color, utils.Dim, "watching for changes, press Ctrl-C to stop"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Op&(watch.OpWrite|watch.OpCreate) == 0 {
				continue
			}
			out.render(compileFile(ev.Path, opts), sel)
		case err := <-w.Errors():
			fmt.Fprintln(out.stderr, "watch error:", err)
		}
	}
}
