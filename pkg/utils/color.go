package utils

import "os"

// ANSI colour codes used for diagnostics.
const (
	Red    = "31"
	Yellow = "33"
	Green  = "32"
	Dim    = "2"
)

// ColorMode decides when Colorize emits escape codes.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// UseColor resolves mode for f. Auto colours only terminals, and only
// when NO_COLOR is unset.
func UseColor(mode ColorMode, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || f == nil {
		return false
	}
	return IsTerminal(f.Fd())
}

// Colorize wraps s in the given SGR code when enabled.
func Colorize(enabled bool, code, s string) string {
	if !enabled || s == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
