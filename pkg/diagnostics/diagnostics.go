// Package diagnostics carries scan, parse and runtime errors from the core to
// whichever host is driving it.
package diagnostics

import (
	"fmt"

	"lox/interpreter-go/pkg/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	KindScan Kind = iota
	KindParse
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindScan:
		return "scan"
	case KindParse:
		return "parse"
	case KindRuntime:
		return "runtime"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// CompileTime reports whether the diagnostic was raised before evaluation.
func (k Kind) CompileTime() bool {
	return k == KindScan || k == KindParse
}

// Diagnostic is a single reported problem. Where is the location suffix
// (" at 'x'", " at end") and is empty for line-only diagnostics.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Where   string
	Message string
}

// AtLine builds a diagnostic that only knows its line.
func AtLine(kind Kind, line int, message string) Diagnostic {
	return Diagnostic{Kind: kind, Line: line, Message: message}
}

// AtToken builds a diagnostic located at tok.
func AtToken(kind Kind, tok token.Token, message string) Diagnostic {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	return Diagnostic{Kind: kind, Line: tok.Line, Where: where, Message: message}
}

// String renders the canonical text. Runtime errors put the message first,
// compile-time errors lead with the line.
func (d Diagnostic) String() string {
	if d.Kind == KindRuntime {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Reporter is the sink the scanner, parser and interpreter report into.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Collector records diagnostics in order.
type Collector struct {
	Diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Count returns how many diagnostics of kind were collected.
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, d := range c.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Messages returns the collected messages.
func (c *Collector) Messages() []string {
	out := make([]string, 0, len(c.Diagnostics))
	for _, d := range c.Diagnostics {
		out = append(out, d.Message)
	}
	return out
}
