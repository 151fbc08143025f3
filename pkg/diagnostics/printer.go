package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Printer writes diagnostics to a stream, one per report.
type Printer struct {
	out   io.Writer
	label *color.Color
	body  *color.Color
	line  *color.Color
}

// NewPrinter returns a Printer writing to w. Colour escapes are emitted only
// when colorize is set.
func NewPrinter(w io.Writer, colorize bool) *Printer {
	p := &Printer{
		out:   w,
		label: color.New(color.FgRed, color.Bold),
		body:  color.New(color.FgRed),
		line:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.label, p.body, p.line} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// NewStderrPrinter writes to the process stderr, colouring only terminals.
func NewStderrPrinter(noColor bool) *Printer {
	colorize := !noColor && !color.NoColor && isatty.IsTerminal(os.Stderr.Fd())
	return NewPrinter(colorable.NewColorableStderr(), colorize)
}

func (p *Printer) Report(d Diagnostic) {
	if d.Kind == KindRuntime {
		fmt.Fprintf(p.out, "%s\n%s\n", p.body.Sprint(d.Message), p.line.Sprintf("[line %d]", d.Line))
		return
	}
	fmt.Fprintf(p.out, "%s %s %s\n",
		p.line.Sprintf("[line %d]", d.Line),
		p.label.Sprintf("Error%s:", d.Where),
		p.body.Sprint(d.Message),
	)
}
