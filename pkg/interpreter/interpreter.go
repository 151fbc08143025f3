// Package interpreter evaluates Lox syntax trees directly.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/token"
)

// DefaultMaxCallDepth bounds nested calls unless Options says otherwise.
const DefaultMaxCallDepth = 1024

// Options configures a new Interpreter. Zero values select defaults.
type Options struct {
	// Stdout receives print output. Defaults to io.Discard.
	Stdout io.Writer
	// Reporter receives runtime errors raised by Interpret.
	Reporter     diagnostics.Reporter
	MaxCallDepth int
}

// Interpreter drives evaluation of Lox statements against a persistent
// global environment.
type Interpreter struct {
	global   *runtime.Environment
	stdout   io.Writer
	reporter diagnostics.Reporter
	maxDepth int

	ctx   context.Context
	depth int
	// line of the most recently evaluated token, for errors raised by
	// nodes that carry no token of their own.
	line int
}

// New returns an interpreter with an empty global environment.
func New(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Reporter == nil {
		opts.Reporter = diagnostics.Discard
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Interpreter{
		global:   runtime.NewEnvironment(nil),
		stdout:   opts.Stdout,
		reporter: opts.Reporter,
		maxDepth: opts.MaxCallDepth,
		ctx:      context.Background(),
	}
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// DefineNative binds a host function in the global scope. A negative arity
// accepts any number of arguments.
func (i *Interpreter) DefineNative(name string, arity int, impl runtime.NativeFunc) {
	i.global.Define(name, &runtime.NativeFunctionValue{Name: name, ParamCount: arity, Impl: impl})
}

// Interpret runs statements in order against the global scope.
func (i *Interpreter) Interpret(statements []ast.Statement) (runtime.Value, error) {
	return i.InterpretContext(context.Background(), statements)
}

// InterpretContext runs statements in order against the global scope. The
// first runtime error is reported, returned, and ends the run. The returned
// value is that of the last expression statement executed, or nil.
func (i *Interpreter) InterpretContext(ctx context.Context, statements []ast.Statement) (runtime.Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	i.ctx = ctx
	i.depth = 0
	defer func() { i.ctx = context.Background() }()

	var last runtime.Value = runtime.Nil
	for _, stmt := range statements {
		val, err := i.evaluateStatement(stmt, i.global)
		if err != nil {
			rerr := i.topLevelError(err)
			i.reporter.Report(rerr.Diagnostic())
			return nil, rerr
		}
		if _, ok := stmt.(*ast.ExpressionStatement); ok {
			last = val
		}
	}
	return last, nil
}

// Evaluate computes a single expression in the global scope. Errors are
// returned, not reported.
func (i *Interpreter) Evaluate(expr ast.Expression) (runtime.Value, error) {
	val, err := i.evaluateExpression(expr, i.global)
	if err != nil {
		return nil, i.topLevelError(err)
	}
	return val, nil
}

func (i *Interpreter) topLevelError(err error) *RuntimeError {
	if ret, ok := err.(returnSignal); ok {
		return &RuntimeError{Token: ret.keyword, Message: "Can't return from top-level code."}
	}
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr
	}
	return &RuntimeError{Token: token.Token{Line: i.line}, Message: err.Error()}
}

// RuntimeError is an evaluation failure attributed to a source token.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func newRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().String()
}

// Diagnostic renders the error for a diagnostics.Reporter.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.AtLine(diagnostics.KindRuntime, e.Token.Line, e.Message)
}

// returnSignal unwinds a function body back to its call site.
type returnSignal struct {
	keyword token.Token
	value   runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}

func (i *Interpreter) checkInterrupt() error {
	if i.ctx.Err() != nil {
		return &RuntimeError{Token: token.Token{Line: i.line}, Message: "Interrupted."}
	}
	return nil
}
