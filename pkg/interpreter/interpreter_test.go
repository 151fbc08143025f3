package interpreter

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/scanner"
)

type harness struct {
	interp    *Interpreter
	out       *bytes.Buffer
	collector *diagnostics.Collector
}

func newHarness() *harness {
	out := &bytes.Buffer{}
	collector := &diagnostics.Collector{}
	return &harness{
		interp:    New(Options{Stdout: out, Reporter: collector}),
		out:       out,
		collector: collector,
	}
}

func (h *harness) run(t *testing.T, source string) (runtime.Value, error) {
	t.Helper()
	parseErrors := &diagnostics.Collector{}
	stmts := parser.Parse(scanner.Scan(source, parseErrors), parseErrors)
	if len(parseErrors.Diagnostics) != 0 {
		t.Fatalf("unexpected compile errors: %v", parseErrors.Messages())
	}
	return h.interp.Interpret(stmts)
}

func (h *harness) mustRun(t *testing.T, source string) runtime.Value {
	t.Helper()
	val, err := h.run(t, source)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return val
}

func expectRuntimeError(t *testing.T, err error, message string, line int) {
	t.Helper()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rerr.Message != message {
		t.Fatalf("expected message %q, got %q", message, rerr.Message)
	}
	if rerr.Token.Line != line {
		t.Fatalf("expected error on line %d, got %d", line, rerr.Token.Line)
	}
}

func TestEvaluateArithmeticExpression(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Evaluate(ast.Bin("+",
		ast.Num(1),
		ast.Bin("*", ast.Num(2), ast.Group(ast.Bin("/", ast.Num(8), ast.Num(4)))),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, ok := val.(runtime.NumberValue)
	if !ok || num.Val != 5 {
		t.Fatalf("expected 5, got %#v", val)
	}
}

func TestEvaluateUnaryOperators(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Evaluate(ast.Un("-", ast.Num(1)))
	if err != nil || val.(runtime.NumberValue).Val != -1 {
		t.Fatalf("expected -1, got %#v (%v)", val, err)
	}
	val, err = interp.Evaluate(ast.Un("!", ast.Group(ast.Bool(true))))
	if err != nil || val.(runtime.BoolValue).Val {
		t.Fatalf("expected false, got %#v (%v)", val, err)
	}
	val, err = interp.Evaluate(ast.Un("!", ast.Nil()))
	if err != nil || !val.(runtime.BoolValue).Val {
		t.Fatalf("expected !nil to be true, got %#v (%v)", val, err)
	}
}

func TestEvaluateStringEqualityAndConcatenation(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Evaluate(ast.Bin("==", ast.Str("a"), ast.Str("a")))
	if err != nil || !val.(runtime.BoolValue).Val {
		t.Fatalf("expected string equality, got %#v (%v)", val, err)
	}
	val, err = interp.Evaluate(ast.Bin("+", ast.Str("foo"), ast.Str("bar")))
	if err != nil || val.(runtime.StringValue).Val != "foobar" {
		t.Fatalf("expected concatenation, got %#v (%v)", val, err)
	}
	val, err = interp.Evaluate(ast.Bin("!=", ast.Num(1), ast.Str("1")))
	if err != nil || !val.(runtime.BoolValue).Val {
		t.Fatalf("expected cross-kind inequality, got %#v (%v)", val, err)
	}
}

func TestEvaluateDivisionByZeroFollowsIEEE(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Evaluate(ast.Bin("/", ast.Num(1), ast.Num(0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(val.(runtime.NumberValue).Val, 1) {
		t.Fatalf("expected +inf, got %#v", val)
	}
	val, _ = interp.Evaluate(ast.Bin("/", ast.Num(0), ast.Num(0)))
	if !math.IsNaN(val.(runtime.NumberValue).Val) {
		t.Fatalf("expected NaN, got %#v", val)
	}
}

func TestEvaluateOperandTypeErrors(t *testing.T) {
	cases := []struct {
		source  string
		message string
	}{
		{`1 + "a";`, "Operands must be two numbers or two strings."},
		{`nil + nil;`, "Operands must be two numbers or two strings."},
		{`1 - "a";`, "Operand must be a number."},
		{`"a" < "b";`, "Operand must be a number."},
		{`true * 2;`, "Operand must be a number."},
		{`4 / nil;`, "Operand must be a number."},
		{`1 >= "1";`, "Operand must be a number."},
		{`-"a";`, "Operand must be a number."},
		{`"not a fn"();`, "Can only call functions."},
		{`print missing;`, "Undefined variable 'missing'."},
		{`missing = 1;`, "Undefined variable 'missing'."},
	}
	for _, tc := range cases {
		h := newHarness()
		_, err := h.run(t, tc.source)
		expectRuntimeError(t, err, tc.message, 1)
		if len(h.collector.Diagnostics) != 1 {
			t.Fatalf("%q: expected the error to be reported once, got %v", tc.source, h.collector.Messages())
		}
	}
}

func TestInterpretPrintsValues(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
print 1;
print 2.5;
print "hi";
print nil;
print true;
print 1 == 1;
fun f() {}
print f;
`)
	want := "1\n2.5\nhi\nnil\ntrue\ntrue\n<fn f>\n"
	if got := h.out.String(); got != want {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestInterpretReturnsTerminalValue(t *testing.T) {
	h := newHarness()
	val := h.mustRun(t, "var a = 1; a + 1; print a;")
	if num, ok := val.(runtime.NumberValue); !ok || num.Val != 2 {
		t.Fatalf("expected terminal value 2, got %#v", val)
	}
	val = h.mustRun(t, "var b = 1;")
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected nil terminal value, got %#v", val)
	}
}

func TestInterpretBlockScoping(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
var a = "global";
{
  var a = "inner";
  print a;
}
print a;
`)
	if got := h.out.String(); got != "inner\nglobal\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := h.interp.GlobalEnvironment().Get("a"); err != nil {
		t.Fatalf("expected global binding: %v", err)
	}
}

func TestInterpretAssignmentReachesEnclosingScope(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
var a = 1;
{
  a = 2;
  var b = a = 3;
  print b;
}
print a;
`)
	if got := h.out.String(); got != "3\n3\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretControlFlow(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
if (nil) print "no"; else print "else";
if (0) print "zero is truthy";
var i = 0;
while (i < 3) { print i; i = i + 1; }
for (var j = 0; j < 2; j = j + 1) print j;
`)
	want := "else\nzero is truthy\n0\n1\n2\n0\n1\n"
	if got := h.out.String(); got != want {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := h.interp.GlobalEnvironment().Get("j"); err == nil {
		t.Fatalf("for-loop variable must not leak into the global scope")
	}
}

func TestInterpretLogicalOperatorsShortCircuit(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
print "hi" or 2;
print nil or "yes";
print nil and missing;
print 1 and 2;
`)
	if got := h.out.String(); got != "hi\nyes\nnil\n2\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretFunctionsAndReturn(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
fun f(a) { if (a) { return 1; } return 2; }
print f(true);
print f(false);
fun g() { print "body"; }
print g();
fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(15);
`)
	if got := h.out.String(); got != "1\n2\nbody\nnil\n610\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretReturnUnwindsLoops(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
fun first() {
  var i = 0;
  while (true) {
    i = i + 1;
    if (i == 3) return i;
  }
}
print first();
`)
	if got := h.out.String(); got != "3\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretClosuresCaptureDefiningScope(t *testing.T) {
	h := newHarness()
	h.mustRun(t, `
fun makeCounter() {
  var count = 0;
  fun increment() {
    count = count + 1;
    return count;
  }
  return increment;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`)
	if got := h.out.String(); got != "1\n2\n1\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretArityMismatch(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "fun f(a, b) {}\nf(1);")
	expectRuntimeError(t, err, "Expected 2 arguments but got 1.", 2)
}

func TestInterpretStopsAtFirstRuntimeError(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "print 1;\nprint -nil;\nprint 3;")
	expectRuntimeError(t, err, "Operand must be a number.", 2)
	if got := h.out.String(); got != "1\n" {
		t.Fatalf("expected later statements to be skipped, got %q", got)
	}
	if got := h.collector.Diagnostics[0].String(); got != "Operand must be a number.\n[line 2]" {
		t.Fatalf("unexpected diagnostic %q", got)
	}

	// The session survives: globals persist into the next call.
	h.out.Reset()
	h.mustRun(t, "var x = 4; print x;")
	if got := h.out.String(); got != "4\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInterpretRunsStatementsAroundMalformedOne(t *testing.T) {
	h := newHarness()
	parseErrors := &diagnostics.Collector{}
	stmts := parser.Parse(scanner.Scan("print 1;\nvar = 3;\nprint 2;", parseErrors), parseErrors)
	if len(parseErrors.Diagnostics) != 1 {
		t.Fatalf("expected exactly one parse error, got %v", parseErrors.Messages())
	}
	if got := parseErrors.Diagnostics[0].String(); got != "[line 2] Error at '=': Expect variable name." {
		t.Fatalf("unexpected parse error %q", got)
	}
	if _, err := h.interp.Interpret(stmts); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if got := h.out.String(); got != "1\n2\n" {
		t.Fatalf("expected both well-formed statements to run, got %q", got)
	}
}

func TestInterpretTopLevelReturnIsAnError(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "print 1;\nreturn 2;")
	expectRuntimeError(t, err, "Can't return from top-level code.", 2)
}

func TestInterpretStackOverflow(t *testing.T) {
	out := &bytes.Buffer{}
	interp := New(Options{Stdout: out, MaxCallDepth: 64})
	stmts := parser.Parse(scanner.Scan("fun loop(n) { return loop(n + 1); }\nloop(0);", nil), nil)
	_, err := interp.Interpret(stmts)
	expectRuntimeError(t, err, "Stack overflow.", 1)

	// Depth resets for the next run.
	stmts = parser.Parse(scanner.Scan("fun down(n) { if (n > 0) return down(n - 1); return n; }\nprint down(60);", nil), nil)
	if _, err := interp.Interpret(stmts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "0\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestDefineNative(t *testing.T) {
	h := newHarness()
	h.interp.DefineNative("double", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		num, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, errors.New("double expects a number.")
		}
		return runtime.NumberValue{Val: num.Val * 2}, nil
	})
	h.interp.DefineNative("boom", 0, func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
		panic("exploded")
	})
	h.mustRun(t, "print double(21); print double;")
	if got := h.out.String(); got != "42\n<native fn>\n" {
		t.Fatalf("unexpected output %q", got)
	}

	_, err := h.run(t, `double("x");`)
	expectRuntimeError(t, err, "double expects a number.", 1)

	_, err = h.run(t, "double(1, 2);")
	expectRuntimeError(t, err, "Expected 1 arguments but got 2.", 1)

	_, err = h.run(t, "\nboom();")
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || !strings.Contains(rerr.Message, "exploded") || rerr.Token.Line != 2 {
		t.Fatalf("expected recovered panic, got %v", err)
	}
}

func TestInterpretContextCancellation(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	stmts := parser.Parse(scanner.Scan("var i = 0;\nwhile (true) { i = i + 1; }", nil), nil)
	_, err := h.interp.InterpretContext(ctx, stmts)
	expectRuntimeError(t, err, "Interrupted.", 2)

	// A fresh context runs normally afterwards.
	h.mustRun(t, "print i > 0;")
	if got := h.out.String(); got != "true\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEvaluateDoesNotReport(t *testing.T) {
	h := newHarness()
	if _, err := h.interp.Evaluate(ast.ID("nope")); err == nil {
		t.Fatalf("expected undefined variable error")
	}
	if len(h.collector.Diagnostics) != 0 {
		t.Fatalf("Evaluate must not report, got %v", h.collector.Messages())
	}
}

func TestInterpretHandBuiltTree(t *testing.T) {
	h := newHarness()
	program := []ast.Statement{
		ast.Fn("add", []string{"a", "b"}, ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b")))),
		ast.Var("total", ast.Call(ast.ID("add"), ast.Num(2), ast.Num(3))),
		ast.If(ast.Bin(">", ast.ID("total"), ast.Num(4)),
			ast.PrintStmt(ast.Str("big")),
			ast.PrintStmt(ast.Str("small")),
		),
		ast.ExprStmt(ast.ID("total")),
	}
	val, err := h.interp.Interpret(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.out.String() != "big\n" {
		t.Fatalf("unexpected output %q", h.out.String())
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Val != 5 {
		t.Fatalf("expected terminal value 5, got %#v", val)
	}
}
