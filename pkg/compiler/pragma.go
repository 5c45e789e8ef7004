package compiler

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LanguageVersion is the version of the language this package implements.
// Programs can pin a range with a "// rg:require <constraint>" comment.
const LanguageVersion = "1.2.0"

const requirePragma = "rg:require"

// Pragma is one "// rg:require" directive found in a source file.
type Pragma struct {
	Line       int
	Constraint string
}

// ParsePragmas scans src for line comments that start with rg:require.
// Only comments that begin a line are directives; a trailing comment
// after code is ignored.
func ParsePragmas(src string) []Pragma {
	var out []Pragma
	for i, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(trimmed, "//"))
		if !strings.HasPrefix(body, requirePragma) {
			continue
		}
		out = append(out, Pragma{
			Line:       i + 1,
			Constraint: strings.TrimSpace(strings.TrimPrefix(body, requirePragma)),
		})
	}
	return out
}

// CheckVersion verifies every rg:require pragma in src against version
// (LanguageVersion when empty). A malformed constraint or one that the
// version does not satisfy wraps ErrVersionMismatch.
func CheckVersion(src, version string) error {
	if version == "" {
		version = LanguageVersion
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid language version %q: %w", version, err)
	}
	for _, p := range ParsePragmas(src) {
		if p.Constraint == "" {
			return fmt.Errorf("line %d: empty %s constraint: %w", p.Line, requirePragma, ErrVersionMismatch)
		}
		c, err := semver.NewConstraint(p.Constraint)
		if err != nil {
			return fmt.Errorf("line %d: bad constraint %q: %v: %w", p.Line, p.Constraint, err, ErrVersionMismatch)
		}
		if ok, errs := c.Validate(v); !ok {
			reason := "not satisfied"
			if len(errs) > 0 {
				reason = errs[0].Error()
			}
			return fmt.Errorf("line %d: language %s does not satisfy %q (%s): %w", p.Line, v, p.Constraint, reason, ErrVersionMismatch)
		}
	}
	return nil
}
