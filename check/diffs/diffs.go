// Package diffs implements the ordered, append-only log of
// human-readable comparison messages produced by the checking engine.
package diffs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Diffs accumulates comparison messages in order. Appending is the only
// mutation; consumers read the lines in order.
type Diffs struct {
	lines []string
}

func New() *Diffs {
	return &Diffs{}
}

func (d *Diffs) Append(line string) {
	d.lines = append(d.lines, line)
}

func (d *Diffs) Appendf(format string, args ...any) {
	d.Append(fmt.Sprintf(format, args...))
}

// Failure records a failing check, prefixed with a hint on how to
// inspect the underlying files manually when their paths are known.
func (d *Diffs) Failure(msg, actualPath, expectedPath string) {
	switch {
	case actualPath != "" && expectedPath != "":
		d.Appendf("Compare with: diff %s %s", filepath.Clean(actualPath), expectedPath)
	case expectedPath != "":
		d.Appendf("Expected file %s", expectedPath)
	case actualPath != "":
		d.Appendf("Actual file %s", filepath.Clean(actualPath))
	}
	d.Append(msg)
}

func (d *Diffs) Len() int {
	return len(d.lines)
}

func (d *Diffs) Lines() []string {
	return d.lines
}

func (d *Diffs) String() string {
	return strings.Join(d.lines, "\n")
}

// LogReporter emits each diff line through zerolog as it is produced.
type LogReporter struct {
	zerolog.Logger
}

func (l LogReporter) Report(d *Diffs) {
	for _, line := range d.Lines() {
		l.Warn().Msg(line)
	}
}
