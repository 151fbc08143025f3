package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"lox/interpreter-go/pkg/driver"
)

func (c *console) depsInstallAction(ctx *cli.Context) error {
	manifest, err := c.loadManifest(ctx.String("manifest"))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}

	lockPath := manifest.LockfilePath()
	lock, err := driver.LoadLockfile(lockPath)
	existed := err == nil
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(c.stderr, err)
			return exitStatus(driver.ExitIOError)
		}
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
	}

	installer := driver.NewInstaller(manifest, driver.DefaultCacheDir())
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintln(c.stdout, line)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "install failed: %v\n", err)
		return exitStatus(driver.ExitIOError)
	}

	if !changed && existed {
		fmt.Fprintf(c.stdout, "%s is up to date\n", driver.LockfileName)
		return nil
	}
	lock.Tool = cliToolVersion
	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}
	fmt.Fprintf(c.stdout, "wrote %s (%d packages)\n", lockPath, len(lock.Packages))
	return nil
}

func (c *console) depsListAction(ctx *cli.Context) error {
	manifest, err := c.loadManifest(ctx.String("manifest"))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitStatus(driver.ExitIOError)
	}
	lock, err := driver.LoadLockfile(manifest.LockfilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(c.stderr, "%s missing; run `lox deps install`\n", driver.LockfileName)
		} else {
			fmt.Fprintln(c.stderr, err)
		}
		return exitStatus(driver.ExitIOError)
	}

	table := tablewriter.NewWriter(c.stdout)
	table.SetHeader([]string{"Name", "Declared", "Version", "Source", "Checksum"})
	table.SetAutoWrapText(false)
	for _, pkg := range lock.Packages {
		table.Append([]string{pkg.Name, declaredAs(manifest, pkg.Name), pkg.Version, pkg.Source, shortChecksum(pkg.Checksum)})
	}
	table.Render()
	return nil
}

// declaredAs names the manifest source kind of a locked package, flagging
// entries the manifest no longer declares.
func declaredAs(manifest *driver.Manifest, name string) string {
	dep, ok := manifest.Dependency(name)
	switch {
	case !ok:
		return "stale"
	case dep.Git != "":
		return "git"
	default:
		return "path"
	}
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
