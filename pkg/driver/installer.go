package driver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Installer resolves the dependencies a manifest declares and records them in
// a lockfile. Path dependencies are used in place; git dependencies are cloned
// into the cache directory.
type Installer struct {
	manifest *Manifest
	cacheDir string
	paths    *pathFetcher
	git      *gitFetcher
}

// NewInstaller returns an installer caching git checkouts under cacheDir.
func NewInstaller(manifest *Manifest, cacheDir string) *Installer {
	return &Installer{
		manifest: manifest,
		cacheDir: cacheDir,
		paths:    &pathFetcher{baseDir: manifest.Dir()},
		git:      newGitFetcher(cacheDir),
	}
}

// Install resolves every dependency into lock, dropping entries the manifest
// no longer declares. It reports whether lock changed, with one log line per
// resolved package.
func (i *Installer) Install(lock *Lockfile) (bool, []string, error) {
	if lock == nil {
		return false, nil, fmt.Errorf("install: nil lockfile")
	}
	changed := false
	if lock.Root != i.manifest.Name {
		lock.Root = i.manifest.Name
		changed = true
	}
	var logs []string
	keep := make(map[string]struct{}, len(i.manifest.Dependencies))
	for _, dep := range i.manifest.Dependencies {
		pkg, dir, err := i.fetch(dep)
		if err != nil {
			return changed, logs, err
		}
		for _, script := range dep.Scripts {
			if !fileExists(filepath.Join(dir, script)) {
				return changed, logs, fmt.Errorf("dependency %q: script %s not found in %s", dep.Name, script, dir)
			}
		}
		keep[pkg.Name] = struct{}{}
		if lock.Upsert(pkg) {
			changed = true
			logs = append(logs, fmt.Sprintf("locked %s %s (%s)", pkg.Name, pkg.Version, pkg.Source))
		} else {
			logs = append(logs, fmt.Sprintf("unchanged %s %s", pkg.Name, pkg.Version))
		}
	}
	if lock.Prune(keep) {
		changed = true
		logs = append(logs, "pruned packages no longer declared")
	}
	return changed, logs, nil
}

func (i *Installer) fetch(dep *DependencySpec) (*LockedPackage, string, error) {
	if dep.Path != "" {
		return i.paths.Fetch(dep)
	}
	return i.git.Fetch(dep)
}

// PackageDir locates the installed sources for dep. Git checkouts are
// verified against the locked checksum.
func (i *Installer) PackageDir(dep *DependencySpec, lock *Lockfile) (string, error) {
	pkg := lock.Find(dep.Name)
	if pkg == nil {
		return "", fmt.Errorf("dependency %q is not installed; run `lox deps install`", dep.Name)
	}
	if strings.HasPrefix(pkg.Source, "path:") {
		return strings.TrimPrefix(pkg.Source, "path:"), nil
	}
	dir := gitCheckoutDir(i.cacheDir, pkg)
	if !fileExists(dir) {
		return "", fmt.Errorf("dependency %q: checkout %s missing; run `lox deps install`", dep.Name, dir)
	}
	sum, err := dirChecksum(dir)
	if err != nil {
		return "", fmt.Errorf("dependency %q: checksum %s: %w", dep.Name, dir, err)
	}
	if sum != pkg.Checksum {
		return "", fmt.Errorf("dependency %q: checksum mismatch for %s", dep.Name, dir)
	}
	return dir, nil
}
