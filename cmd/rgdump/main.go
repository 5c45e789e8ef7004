// Command rgdump prints every stage of the RG pipeline for one program:
// source, tokens, AST, warnings, generated code, trace listing, output
// and the final symbol table. With no argument it dumps a built-in sample.
package main

import (
	"fmt"
	"os"

	"rglang/pkg/asm"
	"rglang/pkg/compiler"
	"rglang/pkg/utils"
)

const testSource = `RG int x = 10;
RG int y = 20;
if (x < y) {
    RG_Print("max", y);
}
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		fullPath, _, err := utils.GetPathInfo(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "path error:", err)
			os.Exit(1)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	if err := compiler.CheckVersion(src, ""); err != nil {
		fmt.Fprintln(os.Stderr, "pragma error:", err)
		os.Exit(1)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.FormatError(err, src))
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	prog, warnings, err := compiler.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, compiler.FormatError(err, src))
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, s := range prog.Stmts {
		fmt.Println(" ", s)
	}
	fmt.Println()

	warnings = append(warnings, compiler.Lint(prog)...)
	if len(warnings) > 0 {
		fmt.Println("Warnings")
		for _, w := range warnings {
			fmt.Println(" ", w)
		}
		fmt.Println()
	}

	// code generation
	code, err := compiler.Generate(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}
	fmt.Println("Generated Code")
	fmt.Print(code)
	fmt.Println()

	res, runErr := compiler.Analyze(prog, compiler.Options{MaxSteps: 1_000_000})

	listing, err := asm.List(res.Trace)
	if err != nil {
		fmt.Fprintln(os.Stderr, "listing error:", err)
	} else {
		fmt.Println("Trace")
		fmt.Print(listing)
		fmt.Println()
	}

	fmt.Println("Output")
	for _, line := range res.Output {
		fmt.Println(" ", line)
	}
	fmt.Println()
	fmt.Print(res.Symbols)

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "semantic error:", runErr)
		os.Exit(1)
	}
}
