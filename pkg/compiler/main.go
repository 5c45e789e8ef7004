// Package compiler implements the RG language pipeline: a lexer, a
// recursive-descent parser with error recovery, an analyzer that
// type-checks and executes the program while writing a pseudo-assembly
// trace, and a code generator that renders the tree as C-like text.
//
// Pipeline: RG source → Lex → Parse → {Analyze, Generate}
package compiler
