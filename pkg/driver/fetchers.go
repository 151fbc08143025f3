package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultCacheDir is $LOX_HOME, falling back to ~/.lox.
func DefaultCacheDir() string {
	if home := strings.TrimSpace(os.Getenv("LOX_HOME")); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".lox")
	}
	return ".lox"
}

// dirChecksum hashes every regular file below path in lexical order,
// keyed by its slash-separated relative path. VCS metadata is skipped.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type pathFetcher struct {
	baseDir string
}

func (p *pathFetcher) Fetch(spec *DependencySpec) (*LockedPackage, string, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.baseDir, dir)
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", spec.Name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: %s is not a directory", spec.Name, dir)
	}

	version := "0.0.0"
	if manifestPath := filepath.Join(dir, ManifestFileName); fileExists(manifestPath) {
		depManifest, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, "", fmt.Errorf("dependency %q: %w", spec.Name, err)
		}
		if depManifest.Version != "" {
			version = depManifest.Version
		}
	}

	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", spec.Name, dir, err)
	}
	return &LockedPackage{
		Name:     spec.Name,
		Version:  version,
		Source:   "path:" + dir,
		Checksum: checksum,
	}, dir, nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones the repository into the cache and checks out the requested
// revision. The returned directory is the pinned checkout.
func (g *gitFetcher) Fetch(spec *DependencySpec) (*LockedPackage, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", spec.Name)
	}

	baseDir := filepath.Join(g.cacheDir, "pkg", "src", spec.Name)
	version, commit, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", spec.Name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", err
	}
	return &LockedPackage{
		Name:     spec.Name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
	}, checkoutDir, nil
}

func ensureGitCheckout(baseDir, url string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	// A full commit hash never moves, so an existing checkout is reused.
	if rev := spec.Rev; plumbing.IsHash(rev) {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if fileExists(existing) {
			return rev, rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		Tags:              git.AllTags,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if fileExists(targetDir) {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	// A fresh clone only has a local branch for HEAD; others live under origin.
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag, or branch")
}

// gitCheckoutDir is where Fetch placed the checkout for a locked version.
func gitCheckoutDir(cacheDir string, pkg *LockedPackage) string {
	return filepath.Join(cacheDir, "pkg", "src", pkg.Name, sanitizePathSegment(pkg.Version))
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
