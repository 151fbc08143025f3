package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"lox/interpreter-go/pkg/token"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{"scan", AtLine(KindScan, 3, "Unexpected character."), "[line 3] Error: Unexpected character."},
		{"parse at token", AtToken(KindParse, token.New(token.Semicolon, ";", nil, 2), "Expect expression."), "[line 2] Error at ';': Expect expression."},
		{"parse at end", AtToken(KindParse, token.New(token.EOF, "", nil, 7), "Expect ';' after value."), "[line 7] Error at end: Expect ';' after value."},
		{"runtime", AtLine(KindRuntime, 4, "Operand must be a number."), "Operand must be a number.\n[line 4]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.diag.String(); got != tc.want {
				t.Fatalf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindCompileTime(t *testing.T) {
	if !KindScan.CompileTime() || !KindParse.CompileTime() {
		t.Fatalf("scan and parse diagnostics should be compile-time")
	}
	if KindRuntime.CompileTime() {
		t.Fatalf("runtime diagnostics should not be compile-time")
	}
	if got := Kind(9).String(); got != "unknown_kind_9" {
		t.Fatalf("Kind(9).String() = %q", got)
	}
}

func TestCollector(t *testing.T) {
	var c Collector
	var r Reporter = &c
	r.Report(AtLine(KindScan, 1, "Unterminated string."))
	r.Report(AtLine(KindParse, 1, "Expect expression."))
	r.Report(AtLine(KindParse, 2, "Expect ';' after value."))

	if got := c.Count(KindParse); got != 2 {
		t.Fatalf("Count(parse) = %d, want 2", got)
	}
	if got := c.Count(KindRuntime); got != 0 {
		t.Fatalf("Count(runtime) = %d, want 0", got)
	}
	msgs := strings.Join(c.Messages(), "|")
	if msgs != "Unterminated string.|Expect expression.|Expect ';' after value." {
		t.Fatalf("Messages() = %q", msgs)
	}
}

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	p.Report(AtToken(KindParse, token.New(token.Identifier, "x", nil, 1), "Expect ';' after expression."))
	p.Report(AtLine(KindRuntime, 5, "Undefined variable 'y'."))

	want := "[line 1] Error at 'x': Expect ';' after expression.\nUndefined variable 'y'.\n[line 5]\n"
	if got := buf.String(); got != want {
		t.Fatalf("printer output = %q, want %q", got, want)
	}
}

func TestPrinterColor(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Report(AtLine(KindScan, 1, "Unexpected character."))
	got := buf.String()
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes in %q", got)
	}
	if !strings.Contains(got, "Unexpected character.") {
		t.Fatalf("message missing from %q", got)
	}
}

func TestReporterFuncAndDiscard(t *testing.T) {
	var seen []Diagnostic
	ReporterFunc(func(d Diagnostic) { seen = append(seen, d) }).Report(AtLine(KindScan, 1, "a"))
	Discard.Report(AtLine(KindScan, 1, "b"))
	if len(seen) != 1 || seen[0].Message != "a" {
		t.Fatalf("ReporterFunc saw %#v", seen)
	}
}
