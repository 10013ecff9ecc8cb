// Package output compares observed program output against the reference.
package output

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Comparator normalizes two text outputs and compares them line-wise.
// Normalization strips differences that carry no meaning for conformance:
// line-ending style and trailing blank lines.
type Comparator struct{}

func NewComparator() *Comparator {
	return &Comparator{}
}

// Normalize canonicalizes line endings to LF, strips trailing whitespace
// from each line and drops trailing blank lines. Idempotent.
func (c *Comparator) Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Equal reports whether a and b match after normalization.
func (c *Comparator) Equal(a, b string) bool {
	return c.Normalize(a) == c.Normalize(b)
}

// Diff renders a unified diff of expected vs actual over the same
// normalized line sequences Equal compares, so reported line numbers match
// what the comparator actually saw. Empty string when the outputs match.
func (c *Comparator) Diff(actual, expected string) string {
	na, ne := c.Normalize(actual), c.Normalize(expected)
	if na == ne {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(ne),
		B:        difflib.SplitLines(na),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
