package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gopkg.in/urfave/cli.v1"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diagnostics"
	"lox/interpreter-go/pkg/driver"
)

const cliToolVersion = "lox-cli 0.1.0"

var (
	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable coloured diagnostics",
	}
	manifestFlag = cli.StringFlag{
		Name:  "manifest, m",
		Usage: "path to lox.yml (default: search upwards from the working directory)",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "interrupt evaluation after `DURATION`",
	}
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// statusError carries a process exit status out of a command action. It must
// not implement cli.ExitCoder, or App.Run exits the process itself.
type statusError struct {
	status int
}

func (e *statusError) Error() string { return fmt.Sprintf("exit status %d", e.status) }

func exitStatus(status int) error {
	if status == driver.ExitOK {
		return nil
	}
	return &statusError{status: status}
}

// console bundles the streams a single CLI invocation talks to.
type console struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &console{stdin: stdin, stdout: stdout, stderr: stderr}

	app := cli.NewApp()
	app.Name = "lox"
	app.Usage = "tree-walking Lox interpreter"
	app.UsageText = "lox [global options] [script]\n   lox [global options] command [command options] [arguments...]"
	app.Version = cliToolVersion
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{noColorFlag}
	app.Action = c.rootAction
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "Run a script, or the project's main script",
			ArgsUsage: "[script]",
			Flags:     []cli.Flag{timeoutFlag, manifestFlag},
			Action:    c.runAction,
		},
		{
			Name:      "parse",
			Usage:     "Print the syntax tree of a script",
			ArgsUsage: "<script>",
			Action:    c.parseAction,
		},
		{
			Name:  "deps",
			Usage: "Manage project dependencies",
			Subcommands: []cli.Command{
				{
					Name:   "install",
					Usage:  "Resolve dependencies and write lox.lock",
					Flags:  []cli.Flag{manifestFlag},
					Action: c.depsInstallAction,
				},
				{
					Name:   "list",
					Usage:  "List locked dependencies",
					Flags:  []cli.Flag{manifestFlag},
					Action: c.depsListAction,
				},
			},
		},
	}

	err := app.Run(append([]string{"lox"}, args...))
	if err == nil {
		return driver.ExitOK
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.status
	}
	// Flag parsing failures; urfave has already printed the usage.
	return driver.ExitUsage
}

func (c *console) rootAction(ctx *cli.Context) error {
	switch ctx.NArg() {
	case 0:
		return exitStatus(c.repl(c.newSession(ctx, 0)))
	case 1:
		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return exitStatus(c.runScript(runCtx, c.newSession(ctx, 0), ctx.Args().First()))
	default:
		fmt.Fprintln(c.stderr, "Usage: lox [script]")
		return exitStatus(driver.ExitUsage)
	}
}

func (c *console) runAction(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		fmt.Fprintln(c.stderr, "Usage: lox run [--timeout DURATION] [script]")
		return exitStatus(driver.ExitUsage)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx, cancel := withTimeout(runCtx, ctx.Duration("timeout"))
	defer cancel()

	if script := ctx.Args().First(); script != "" {
		manifest, err := c.scriptManifest(ctx.String("manifest"), script)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return exitStatus(driver.ExitIOError)
		}
		depth := 0
		if manifest != nil {
			depth = manifest.Settings.MaxCallDepth
		}
		return exitStatus(c.runScript(runCtx, c.newSession(ctx, depth), script))
	}

	manifest, err := c.loadManifest(ctx.String("manifest"))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}
	if manifest.Main == "" {
		fmt.Fprintf(c.stderr, "%s does not declare main; pass a script to run\n", manifest.Path)
		return exitStatus(driver.ExitUsage)
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}

	session := c.newSession(ctx, manifest.Settings.MaxCallDepth)
	if err := session.RunProject(runCtx, manifest, lock, driver.DefaultCacheDir()); err != nil {
		if status := session.ExitCode(); status != driver.ExitOK {
			return exitStatus(status)
		}
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}
	return exitStatus(session.ExitCode())
}

func (c *console) parseAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: lox parse <script>")
		return exitStatus(driver.ExitUsage)
	}
	path := ctx.Args().First()
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(c.stderr, &driver.IOError{Path: path, Err: err})
		return exitStatus(driver.ExitIOError)
	}
	session := c.newSession(ctx, 0)
	statements, err := session.Parse(string(source))
	if err != nil {
		return exitStatus(session.ExitCode())
	}
	for _, stmt := range statements {
		fmt.Fprintln(c.stdout, ast.Print(stmt))
	}
	return nil
}

// runScript runs one file and returns the exit status. Diagnostics have
// already gone through the session's reporter.
func (c *console) runScript(ctx context.Context, session *driver.Session, path string) int {
	if err := session.RunFile(ctx, path); err != nil {
		var ioErr *driver.IOError
		if errors.As(err, &ioErr) {
			fmt.Fprintln(c.stderr, ioErr)
			return driver.ExitIOError
		}
	}
	return session.ExitCode()
}

func (c *console) newSession(ctx *cli.Context, maxCallDepth int) *driver.Session {
	return driver.NewSession(driver.SessionOptions{
		Stdout:       c.stdout,
		Diagnostics:  c.printer(ctx.GlobalBool("no-color")),
		MaxCallDepth: maxCallDepth,
	})
}

// printer colours diagnostics only when they go to the real stderr.
func (c *console) printer(noColor bool) diagnostics.Reporter {
	if f, ok := c.stderr.(*os.File); ok && f == os.Stderr {
		return diagnostics.NewStderrPrinter(noColor)
	}
	return diagnostics.NewPrinter(c.stderr, false)
}

var errManifestNotFound = errors.New(driver.ManifestFileName + " not found")

// loadManifest loads an explicit manifest path, or searches upwards from the
// working directory when path is empty.
func (c *console) loadManifest(path string) (*driver.Manifest, error) {
	if path == "" {
		found, ok := driver.FindManifest(".")
		if !ok {
			return nil, errManifestNotFound
		}
		path = found
	}
	return driver.LoadManifest(path)
}

// scriptManifest returns the manifest configuring a single-script run: the
// explicit path when given, else the one governing the script's directory.
// It is nil when there is none.
func (c *console) scriptManifest(path, script string) (*driver.Manifest, error) {
	if path == "" {
		found, ok := driver.FindManifest(filepath.Dir(script))
		if !ok {
			return nil, nil
		}
		path = found
	}
	return driver.LoadManifest(path)
}

// loadLockfileForManifest returns nil when the project has no dependencies
// and no lockfile yet.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	path := manifest.LockfilePath()
	lock, err := driver.LoadLockfile(path)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(manifest.Dependencies) == 0 {
		return nil, nil
	}
	return nil, fmt.Errorf("%s missing; run `lox deps install`", driver.LockfileName)
}

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
