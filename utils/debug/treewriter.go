// Package debug produces human readable dumps stored in debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter builds indented outline, one node per line.
type TreeWriter struct {
	sb     strings.Builder
	indent string
}

// NewTreeWriter returns writer indenting each level with two spaces.
func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// Bytes returns outline ready to be stored.
func (tw *TreeWriter) Bytes() []byte {
	return []byte(tw.sb.String())
}

func (tw *TreeWriter) pad(depth int) {
	tw.sb.WriteString(strings.Repeat(tw.indent, depth))
}

// Line writes formatted node.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// Field writes "label: value" with value quoted so whitespace and empty
// values are visible. important adds a marker after the value.
func (tw *TreeWriter) Field(depth int, label, value string, important bool) {
	tw.pad(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(strconv.Quote(value))
	if important {
		tw.sb.WriteString(" !important")
	}
	tw.sb.WriteByte('\n')
}

// Text writes multi-line text one level deeper than depth, skipping empty
// lines.
func (tw *TreeWriter) Text(depth int, text string) {
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tw.pad(depth + 1)
		tw.sb.WriteString(line)
		tw.sb.WriteByte('\n')
	}
}
