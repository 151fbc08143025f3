// Package driver runs Lox sources end to end: scanning, parsing and
// evaluation in a session, plus the lox.yml project layer (manifest,
// lockfile and dependency installation).
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/scanner"
)

// Exit codes follow the sysexits convention.
const (
	ExitOK           = 0
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// ErrCompile is returned by Run when the source failed to scan or parse. The
// individual errors have already been reported.
var ErrCompile = errors.New("compile error")

// SessionOptions configures NewSession.
type SessionOptions struct {
	Stdout       io.Writer
	Diagnostics  diagnostics.Reporter
	MaxCallDepth int
}

// Session owns one interpreter, so globals persist across Run calls, along
// with the error flags a host uses to pick an exit status.
type Session struct {
	interp          *interpreter.Interpreter
	sink            diagnostics.Reporter
	hadError        bool
	hadRuntimeError bool
}

// Result is the outcome of a successful Run. Expression is set when the last
// top-level statement was an expression statement, whose value is Value.
type Result struct {
	Value      runtime.Value
	Expression bool
}

// NewSession creates a session with a fresh global scope.
func NewSession(opts SessionOptions) *Session {
	s := &Session{sink: opts.Diagnostics}
	if s.sink == nil {
		s.sink = diagnostics.Discard
	}
	s.interp = interpreter.New(interpreter.Options{
		Stdout:       opts.Stdout,
		Reporter:     s,
		MaxCallDepth: opts.MaxCallDepth,
	})
	return s
}

// Report records d in the session flags and forwards it to the sink.
func (s *Session) Report(d diagnostics.Diagnostic) {
	if d.Kind.CompileTime() {
		s.hadError = true
	} else {
		s.hadRuntimeError = true
	}
	s.sink.Report(d)
}

func (s *Session) HadError() bool        { return s.hadError }
func (s *Session) HadRuntimeError() bool { return s.hadRuntimeError }

// Reset clears both error flags; the global scope is kept.
func (s *Session) Reset() {
	s.hadError = false
	s.hadRuntimeError = false
}

// ExitCode maps the flags to a process status.
func (s *Session) ExitCode() int {
	switch {
	case s.hadError:
		return ExitCompileError
	case s.hadRuntimeError:
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// Interpreter exposes the underlying interpreter, e.g. to define natives.
func (s *Session) Interpreter() *interpreter.Interpreter {
	return s.interp
}

// Parse scans and parses source, reporting errors through the session.
func (s *Session) Parse(source string) ([]ast.Statement, error) {
	tokens := scanner.Scan(source, s)
	statements := parser.Parse(tokens, s)
	if s.hadError {
		return nil, ErrCompile
	}
	return statements, nil
}

// Run parses and evaluates source. Nothing runs if it fails to compile.
func (s *Session) Run(ctx context.Context, source string) (Result, error) {
	statements, err := s.Parse(source)
	if err != nil {
		return Result{}, err
	}
	val, err := s.interp.InterpretContext(ctx, statements)
	if err != nil {
		return Result{}, err
	}
	res := Result{Value: val}
	if n := len(statements); n > 0 {
		_, res.Expression = statements[n-1].(*ast.ExpressionStatement)
	}
	return res, nil
}

// RunFile reads and runs a script. Read failures are returned wrapped in
// *IOError.
func (s *Session) RunFile(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	_, err = s.Run(ctx, string(source))
	return err
}

// IOError reports a script that could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("could not read %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// ProjectScripts lists, in load order, the dependency scripts, the prelude
// and main (when set) of a project.
func ProjectScripts(manifest *Manifest, lock *Lockfile, cacheDir string) ([]string, error) {
	installer := NewInstaller(manifest, cacheDir)
	var scripts []string
	for _, dep := range manifest.Dependencies {
		dir, err := installer.PackageDir(dep, lock)
		if err != nil {
			return nil, err
		}
		for _, script := range dep.Scripts {
			scripts = append(scripts, filepath.Join(dir, script))
		}
	}
	for _, script := range manifest.Prelude {
		scripts = append(scripts, filepath.Join(manifest.Dir(), script))
	}
	if manifest.Main != "" {
		scripts = append(scripts, filepath.Join(manifest.Dir(), manifest.Main))
	}
	return scripts, nil
}

// RunProject runs every project script in one session, so later scripts see
// the globals of earlier ones. It stops at the first script that fails.
func (s *Session) RunProject(ctx context.Context, manifest *Manifest, lock *Lockfile, cacheDir string) error {
	scripts, err := ProjectScripts(manifest, lock, cacheDir)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if err := s.RunFile(ctx, script); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(script), err)
		}
	}
	return nil
}
