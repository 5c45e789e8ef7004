// Package asm reads the pseudo-assembly trace written by the analyzer
// back into structured lines: address, labels, mnemonic, operands and
// comment. It checks each line against the trace instruction set and can
// verify that every jump lands on a label the trace defines.
package asm

import (
	"fmt"
	"strings"
	"unicode"
)

// arity gives the allowed operand counts of each trace mnemonic.
type arity struct{ min, max int }

var oneOperandOps = map[string]arity{
	"PUSH":  {1, 1},
	"JMP":   {1, 1},
	"JE":    {1, 1},
	"SETL":  {1, 1},
	"SETLE": {1, 1},
	"SETG":  {1, 1},
	"SETGE": {1, 1},
	"SETE":  {1, 1},
	"SETNE": {1, 1},
}

var twoOperandOps = map[string]arity{
	"MOV":   {2, 2},
	"LOAD":  {2, 2},
	"STORE": {2, 2},
	"ALLOC": {2, 2},
	"CMP":   {2, 2},
	"NEG":   {2, 2},
	"NOT":   {2, 2},
	"SQRT":  {2, 2},
	"SIN":   {2, 2},
	"COS":   {2, 2},
	"TAN":   {2, 2},
	"LOG":   {2, 2},
}

var threeOperandOps = map[string]arity{
	"ADD":    {3, 3},
	"SUB":    {3, 3},
	"MUL":    {3, 3},
	"DIV":    {3, 3},
	"MOD":    {3, 3},
	"CONCAT": {3, 3},
	"AND":    {3, 3},
	"OR":     {3, 3},
	"POW":    {3, 3},
	"FILL":   {3, 3},
}

// CALL takes the routine name plus up to two arguments.
var variadicOps = map[string]arity{
	"CALL": {1, 3},
}

var jumpOps = map[string]bool{
	"JMP": true,
	"JE":  true,
}

// Line is one trace line split into its parts. Address is -1 for lines
// that hold no instruction (labels, comments, blanks).
type Line struct {
	LineNo   int
	Address  int
	Labels   []string
	Mnemonic string
	Operands []string
	Comment  string
	Raw      string
}

// Listing is a parsed trace. Labels maps each label to the address of the
// instruction that follows it.
type Listing struct {
	Lines  []Line
	Labels map[string]int
	Size   int // number of instructions
}

type Lister struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
	comment  string
}

func NewLister() *Lister {
	return &Lister{
		labels: make(map[string]int),
	}
}

// List parses trace into a Listing. It fails on malformed lines, unknown
// mnemonics, wrong operand counts and duplicate labels. Jump targets are
// not checked here; see Verify.
func List(trace []string) (*Listing, error) {
	return NewLister().List(trace)
}

func (l *Lister) List(trace []string) (*Listing, error) {
	parsed, err := l.pass1(trace)
	if err != nil {
		return nil, err
	}
	return l.pass2(trace, parsed), nil
}

// pass1 parses every line, assigns addresses and records labels.
func (l *Lister) pass1(trace []string) ([]parsedLine, error) {
	parsed := make([]parsedLine, len(trace))
	address := 0
	for i, raw := range trace {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}
		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if _, exists := l.labels[key]; exists {
				return nil, fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			l.labels[key] = address
		}
		if p.mnemonic != "" {
			want, ok := operandArity(p.mnemonic)
			if !ok {
				return nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
			}
			if n := len(p.operands); n < want.min || n > want.max {
				return nil, fmt.Errorf("%s expects %s operand(s) on line %d, got %d", p.mnemonic, want, lineNo, n)
			}
			address++
		}
		parsed[i] = p
	}
	return parsed, nil
}

// pass2 builds the Listing once all label addresses are known.
func (l *Lister) pass2(trace []string, parsed []parsedLine) *Listing {
	out := &Listing{Labels: l.labels}
	address := 0
	for i, p := range parsed {
		line := Line{
			LineNo:   p.lineNo,
			Address:  -1,
			Labels:   p.labels,
			Mnemonic: p.mnemonic,
			Operands: p.operands,
			Comment:  p.comment,
			Raw:      trace[i],
		}
		if p.mnemonic != "" {
			line.Address = address
			address++
		}
		out.Lines = append(out.Lines, line)
	}
	out.Size = address
	return out
}

func (a arity) String() string {
	if a.min == a.max {
		return fmt.Sprint(a.min)
	}
	return fmt.Sprintf("%d-%d", a.min, a.max)
}

func operandArity(mnemonic string) (arity, bool) {
	mnemonic = strings.ToUpper(mnemonic)
	for _, table := range []map[string]arity{oneOperandOps, twoOperandOps, threeOperandOps, variadicOps} {
		if a, ok := table[mnemonic]; ok {
			return a, true
		}
	}
	return arity{}, false
}

// Verify checks that every jump names a label defined somewhere in the
// listing. A trace cut short by a runtime error can legitimately fail
// this, so it is a separate step.
func (l *Listing) Verify() error {
	for _, line := range l.Lines {
		if !jumpOps[line.Mnemonic] {
			continue
		}
		target := line.Operands[0]
		if _, ok := l.Labels[normalizeLabel(target)]; ok {
			continue
		}
		if isIdentifier(target) {
			return fmt.Errorf("undefined label '%s' on line %d", target, line.LineNo)
		}
		return fmt.Errorf("invalid jump target '%s' on line %d", target, line.LineNo)
	}
	return nil
}

// Instructions returns only the lines that carry an instruction.
func (l *Listing) Instructions() []Line {
	var out []Line
	for _, line := range l.Lines {
		if line.Address >= 0 {
			out = append(out, line)
		}
	}
	return out
}

// Target returns the address a label resolves to.
func (l *Listing) Target(label string) (int, bool) {
	addr, ok := l.Labels[normalizeLabel(label)]
	return addr, ok
}

// String renders the listing in columns:
//
//	0x0000  MOV      R0, 10
//	0x0001  STORE    [x], R0         ; comment
//	        L_END_IF_0:
func (l *Listing) String() string {
	var b strings.Builder
	for _, line := range l.Lines {
		for _, lbl := range line.Labels {
			fmt.Fprintf(&b, "        %s:\n", lbl)
		}
		switch {
		case line.Mnemonic != "":
			text := fmt.Sprintf("0x%04X  %-8s %s", line.Address, line.Mnemonic, strings.Join(line.Operands, ", "))
			if line.Comment != "" {
				text = fmt.Sprintf("%-40s ; %s", text, line.Comment)
			}
			b.WriteString(strings.TrimRight(text, " "))
			b.WriteByte('\n')
		case line.Comment != "":
			fmt.Fprintf(&b, "        ; %s\n", line.Comment)
		}
	}
	return b.String()
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	code, comment, err := splitComment(raw)
	if err != nil {
		return p, fmt.Errorf("%v on line %d", err, lineNo)
	}
	p.comment = strings.TrimSpace(comment)

	line := strings.TrimSpace(code)
	for {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			break
		}
		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}
		if strings.ContainsAny(beforeColon, " \t\"") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}
		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
	}
	if line == "" {
		return p, nil
	}

	fields := strings.SplitN(line, " ", 2)
	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		ops, err := splitOperands(fields[1])
		if err != nil {
			return p, fmt.Errorf("%v on line %d", err, lineNo)
		}
		p.operands = ops
	}
	return p, nil
}

// splitComment cuts raw at the first ';' that is not inside a string
// operand.
func splitComment(raw string) (code, comment string, err error) {
	inString := false
	for i, r := range raw {
		switch {
		case r == '"':
			inString = !inString
		case r == ';' && !inString:
			return raw[:i], raw[i+1:], nil
		}
	}
	if inString {
		return raw, "", fmt.Errorf("unterminated string operand")
	}
	return raw, "", nil
}

// splitOperands splits on commas outside string operands.
func splitOperands(s string) ([]string, error) {
	var ops []string
	var cur strings.Builder
	inString := false
	for _, r := range s {
		switch {
		case r == '"':
			inString = !inString
			cur.WriteRune(r)
		case r == ',' && !inString:
			ops = append(ops, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if inString {
		return nil, fmt.Errorf("unterminated string operand")
	}
	last := strings.TrimSpace(cur.String())
	if last == "" && len(ops) == 0 {
		return nil, nil
	}
	ops = append(ops, last)
	for _, op := range ops {
		if op == "" {
			return nil, fmt.Errorf("empty operand")
		}
	}
	return ops, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
