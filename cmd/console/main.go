// Command console is an interactive RG session. Each entry runs against
// the same analyzer, so declarations persist between entries.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"rglang/pkg/asm"
	"rglang/pkg/compiler"
	"rglang/pkg/utils"
)

const (
	historyFile = ".rg_history"
	promptMain  = "rg> "
	promptCont  = "... "
)

const help = `Enter RG statements; blocks may span several lines.
  :symbols  show the symbol table
  :trace    list the trace produced so far
  :reset    forget every declaration
  :help     show this message
  :quit     leave (Ctrl-D also works)`

type session struct {
	an      *compiler.Analyzer
	out     io.Writer
	color   bool
	printed int // output lines already shown
}

func newSession(out io.Writer, color bool) *session {
	return &session{an: compiler.NewAnalyzer(compiler.Options{MaxSteps: 1_000_000}), out: out, color: color}
}

// eval runs one entry and prints only the output lines it produced.
func (s *session) eval(src string) {
	tokens, err := compiler.Lex(src)
	if err != nil {
		s.fail(compiler.FormatError(err, src))
		return
	}
	prog, warnings, err := compiler.Parse(tokens)
	if err != nil {
		s.fail(compiler.FormatError(err, src))
		return
	}
	for _, w := range warnings {
		fmt.Fprintln(s.out, utils.Colorize(s.color, utils.Yellow, "warning: "+w.String()))
	}

	runErr := s.an.Run(prog)
	for _, line := range s.an.Output()[s.printed:] {
		fmt.Fprintln(s.out, line)
	}
	s.printed = len(s.an.Output())
	if runErr != nil {
		s.fail(runErr.Error())
	}
}

func (s *session) fail(msg string) {
	fmt.Fprintln(s.out, utils.Colorize(s.color, utils.Red, msg))
}

// command handles a ':' line and reports whether the session should end.
func (s *session) command(cmd string) (quit bool) {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case ":quit", ":q":
		return true
	case ":symbols":
		fmt.Fprint(s.out, s.an.Symbols())
	case ":trace":
		listing, err := asm.List(s.an.Trace())
		if err != nil {
			s.fail(err.Error())
			break
		}
		fmt.Fprint(s.out, listing)
	case ":reset":
		*s = *newSession(s.out, s.color)
		fmt.Fprintln(s.out, "state cleared")
	case ":help":
		fmt.Fprintln(s.out, help)
	default:
		fmt.Fprintln(s.out, "unknown command, type :help")
	}
	return false
}

// incomplete reports whether src still has unclosed braces, parens or
// brackets. Text inside strings and comments is ignored.
func incomplete(src string) bool {
	depth := 0
	inString, inComment := false, false
	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inComment:
			inComment = r != '\n'
		case inString:
			inString = r != '"'
		case r == '"':
			inString = true
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			inComment = true
			i++
		case r == '{' || r == '(' || r == '[':
			depth++
		case r == '}' || r == ')' || r == ']':
			depth--
		}
	}
	return depth > 0 || inString
}

// readEntry collects lines until the brackets balance. ok is false on
// EOF or Ctrl-C.
func readEntry(ln *liner.State) (string, bool) {
	var buf []string
	for {
		prompt := promptMain
		if len(buf) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		buf = append(buf, line)
		src := strings.Join(buf, "\n")
		if !incomplete(src) {
			return src, true
		}
	}
}

func main() {
	fmt.Println("RG console, type :help for commands")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession(os.Stdout, utils.UseColor(utils.ColorAuto, os.Stdout))
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			if s.command(src) {
				return
			}
			continue
		}
		s.eval(src)
	}
}
