package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/runtime"
	"lox/interpreter-go/pkg/scanner"
	"lox/interpreter-go/pkg/token"
)

const (
	historyFile = ".lox_history"
	promptMain  = "> "
	promptCont  = ". "
)

// lineReader is satisfied by *liner.State.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// streamReader reads piped input line by line without prompting.
type streamReader struct {
	scanner *bufio.Scanner
}

func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{scanner: bufio.NewScanner(r)}
}

func (s *streamReader) Prompt(string) (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *streamReader) AppendHistory(string) {}

func (s *streamReader) Close() error { return nil }

// terminalReader adds persistent history to a liner prompt.
type terminalReader struct {
	*liner.State
	historyPath string
}

func newTerminalReader() *terminalReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	r := &terminalReader{State: ln}
	if home, err := os.UserHomeDir(); err == nil {
		r.historyPath = filepath.Join(home, historyFile)
		if f, err := os.Open(r.historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return r
}

func (r *terminalReader) Close() error {
	if r.historyPath != "" {
		if f, err := os.Create(r.historyPath); err == nil {
			_, _ = r.WriteHistory(f)
			_ = f.Close()
		}
	}
	return r.State.Close()
}

func (c *console) lineReader() lineReader {
	if f, ok := c.stdin.(*os.File); ok && f == os.Stdin && isatty.IsTerminal(f.Fd()) {
		return newTerminalReader()
	}
	return newStreamReader(c.stdin)
}

// repl evaluates inputs until end of input or :quit. Globals persist across
// inputs; error flags do not, so the status is always 0.
func (c *console) repl(session *driver.Session) int {
	in := c.lineReader()
	defer in.Close()

	for {
		source, ok := readInput(in)
		if !ok {
			return driver.ExitOK
		}
		trimmed := strings.TrimSpace(source)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return driver.ExitOK
		case trimmed == ":env" || strings.HasPrefix(trimmed, ":env "):
			c.printGlobals(session.Interpreter().GlobalEnvironment(), strings.Fields(trimmed)[1:])
			continue
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintln(c.stderr, "unknown command. Type :env [name...] or :quit.")
			continue
		}
		in.AppendHistory(strings.ReplaceAll(source, "\n", " "))
		c.evalInput(session, source)
		session.Reset()
	}
}

// printGlobals lists the global bindings, or only the named ones.
func (c *console) printGlobals(globals *runtime.Environment, names []string) {
	if len(names) == 0 {
		names = globals.Keys()
	}
	values := globals.Snapshot()
	for _, name := range names {
		if !globals.Has(name) {
			fmt.Fprintf(c.stderr, "%s is not defined\n", name)
			continue
		}
		fmt.Fprintf(c.stdout, "%s = %s\n", name, runtime.Stringify(values[name]))
	}
}

// evalInput runs one input; Ctrl-C while it runs interrupts the program
// instead of the REPL.
func (c *console) evalInput(session *driver.Session, source string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := session.Run(ctx, source)
	if err != nil || !res.Expression {
		return
	}
	fmt.Fprintln(c.stdout, runtime.Stringify(res.Value))
}

// readInput reads one complete input, prompting for continuation lines while
// brackets or a string literal are left open. It returns false at end of
// input.
func readInput(in lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsContinuation(b.String()) {
			return b.String(), true
		}
	}
}

// needsContinuation reports whether source has unclosed parentheses, braces
// or string literals.
func needsContinuation(source string) bool {
	var diags diagnostics.Collector
	depth := 0
	for _, tok := range scanner.Scan(source, &diags) {
		switch tok.Type {
		case token.LeftParen, token.LeftBrace:
			depth++
		case token.RightParen, token.RightBrace:
			depth--
		}
	}
	if depth > 0 {
		return true
	}
	for _, d := range diags.Diagnostics {
		if d.Message == "Unterminated string." {
			return true
		}
	}
	return false
}
