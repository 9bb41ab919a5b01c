// Package report renders run output for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer writes the plain report lines of a fetch run. It satisfies
// geo.Reporter.
type Printer struct {
	out   io.Writer
	label *color.Color
}

// NewPrinter returns a Printer writing to out. Labels are coloured only when
// colored is true.
func NewPrinter(out io.Writer, colored bool) *Printer {
	label := color.New(color.FgCyan, color.Bold)
	if colored {
		label.EnableColor()
	} else {
		label.DisableColor()
	}
	return &Printer{out: out, label: label}
}

// ColorEnabled combines the configured preference with fatih/color's own
// detection (NO_COLOR, non-TTY stdout).
func ColorEnabled(configured bool) bool {
	return configured && !color.NoColor
}

// Field prints "Label: value".
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.label.Sprint(label+":"), value) //nolint:errcheck
}

// Sample prints the per-sample line.
func (p *Printer) Sample(name string) {
	p.Field("Processing sample", name)
}

// Downloading announces a supplementary file download.
func (p *Printer) Downloading(filename string) {
	p.Field("Downloading supplementary file", filename)
}
