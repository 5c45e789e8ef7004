// Package viewer holds the state behind the desktop window: one panel
// per compiler artefact, the active tab and its scroll position. It
// knows nothing about drawing, so it runs and tests without a display.
package viewer

import (
	"fmt"
	"strings"

	"rglang/pkg/compiler"
)

// Tab indexes the fixed panel set.
type Tab int

const (
	TabOutput Tab = iota
	TabErrors
	TabWarnings
	TabTokens
	TabTrace
	TabSymbols
	TabCode
	numTabs
)

var tabNames = [numTabs]string{
	TabOutput:   "Output",
	TabErrors:   "Errors",
	TabWarnings: "Warnings",
	TabTokens:   "Tokens",
	TabTrace:    "Trace",
	TabSymbols:  "Symbols",
	TabCode:     "Code",
}

func (t Tab) String() string {
	if t < 0 || t >= numTabs {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabNames[t]
}

// Panel is the text content of one tab.
type Panel struct {
	Title string
	Lines []string
}

// Model is the viewer state. Cols and Rows are the text area size in
// character cells; wrapping and scrolling are computed against them.
type Model struct {
	Panels [numTabs]Panel
	Active Tab
	Status string

	scroll     [numTabs]int
	cols, rows int
}

func New(cols, rows int) *Model {
	m := &Model{}
	for i := range m.Panels {
		m.Panels[i].Title = Tab(i).String()
	}
	m.Resize(cols, rows)
	return m
}

// Resize changes the text area and re-clamps every scroll offset.
func (m *Model) Resize(cols, rows int) {
	m.cols, m.rows = max(cols, 1), max(rows, 1)
	for i := range m.scroll {
		m.scroll[i] = m.clamp(Tab(i), m.scroll[i])
	}
}

func (m *Model) Size() (cols, rows int) { return m.cols, m.rows }

// Load replaces every panel with the artefacts of c. When err is not nil
// the Errors tab is brought to the front.
func (m *Model) Load(name string, c *compiler.Compilation, err error) {
	panels := Panels(c, err)
	for i := range m.Panels {
		m.Panels[i].Lines = panels[i]
		m.scroll[i] = 0
	}
	switch {
	case err != nil:
		m.Active = TabErrors
		m.Status = name + ": failed"
	default:
		m.Status = fmt.Sprintf("%s: ok, %d output line(s), %d warning(s)", name, len(c.Result.Output), len(c.Warnings))
	}
}

// Panels renders each tab's lines for c. Missing artefacts become a short
// placeholder line.
func Panels(c *compiler.Compilation, err error) [numTabs][]string {
	var p [numTabs][]string
	if c == nil {
		c = &compiler.Compilation{}
	}

	if c.Result != nil {
		p[TabOutput] = append(p[TabOutput], c.Result.Output...)
	}
	if len(p[TabOutput]) == 0 {
		p[TabOutput] = []string{"(no output)"}
	}

	if err != nil {
		p[TabErrors] = strings.Split(compiler.FormatError(err, c.Source), "\n")
	} else {
		p[TabErrors] = []string{"No errors."}
	}

	for _, w := range c.Warnings {
		p[TabWarnings] = append(p[TabWarnings], w.String())
	}
	if len(p[TabWarnings]) == 0 {
		p[TabWarnings] = []string{"No warnings."}
	}

	for _, tok := range c.Tokens {
		p[TabTokens] = append(p[TabTokens], tok.String())
	}

	switch {
	case c.Listing != nil:
		p[TabTrace] = splitLines(c.Listing.String())
	case c.Result != nil:
		p[TabTrace] = append(p[TabTrace], c.Result.Trace...)
	}

	if c.Result != nil {
		p[TabSymbols] = splitLines(c.Result.Symbols.String())
	}
	p[TabCode] = splitLines(c.Generated)

	for i := range p {
		if len(p[i]) == 0 {
			p[i] = []string{"(not available)"}
		}
	}
	return p
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Next and Prev cycle through the tabs.
func (m *Model) Next() { m.Active = (m.Active + 1) % numTabs }
func (m *Model) Prev() { m.Active = (m.Active + numTabs - 1) % numTabs }

// Select activates tab t if it exists.
func (m *Model) Select(t Tab) {
	if t >= 0 && t < numTabs {
		m.Active = t
	}
}

// ScrollBy moves the active panel by n rows, clamped to its content.
func (m *Model) ScrollBy(n int) {
	m.scroll[m.Active] = m.clamp(m.Active, m.scroll[m.Active]+n)
}

func (m *Model) PageDown() { m.ScrollBy(m.rows) }
func (m *Model) PageUp()   { m.ScrollBy(-m.rows) }

func (m *Model) Scroll() int { return m.scroll[m.Active] }

func (m *Model) clamp(t Tab, off int) int {
	limit := len(m.wrapped(t)) - m.rows
	return max(0, min(off, limit))
}

func (m *Model) wrapped(t Tab) []string {
	var out []string
	for _, line := range m.Panels[t].Lines {
		out = append(out, Wrap(line, m.cols)...)
	}
	return out
}

// Visible returns the rows of the active panel currently on screen.
func (m *Model) Visible() []string {
	lines := m.wrapped(m.Active)
	start := m.scroll[m.Active]
	end := min(start+m.rows, len(lines))
	if start >= end {
		return nil
	}
	return lines[start:end]
}

// TabBar renders the tab titles with the active one bracketed.
func (m *Model) TabBar() string {
	parts := make([]string, numTabs)
	for i := range parts {
		title := fmt.Sprintf("%d %s", i+1, m.Panels[i].Title)
		if Tab(i) == m.Active {
			title = "[" + title + "]"
		}
		parts[i] = title
	}
	return strings.Join(parts, "  ")
}

// Wrap splits line into pieces of at most width runes. Tabs expand to
// two spaces. An empty line stays one empty row.
func Wrap(line string, width int) []string {
	runes := []rune(strings.ReplaceAll(line, "\t", "  "))
	if width <= 0 || len(runes) <= width {
		return []string{string(runes)}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	return append(out, string(runes))
}
