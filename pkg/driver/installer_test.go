package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallerPathDependency(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, ManifestFileName), `
name: app
dependencies:
  util:
    path: ../util
    scripts: [util.lox]
`)
	writeFile(t, filepath.Join(root, "util", ManifestFileName), "name: util\nversion: 0.2.0\n")
	writeFile(t, filepath.Join(root, "util", "util.lox"), "fun twice(x) { return x * 2; }\n")

	manifest, err := LoadManifest(filepath.Join(appDir, ManifestFileName))
	require.NoError(t, err)

	lock := NewLockfile(manifest.Name, "test")
	installer := NewInstaller(manifest, filepath.Join(root, "cache"))
	changed, logs, err := installer.Install(lock)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotEmpty(t, logs)

	pkg := lock.Find("util")
	require.NotNil(t, pkg)
	assert.Equal(t, "0.2.0", pkg.Version)
	assert.Equal(t, "path:"+filepath.Join(root, "util"), pkg.Source)
	assert.Len(t, pkg.Checksum, 64)

	changed, _, err = installer.Install(lock)
	require.NoError(t, err)
	assert.False(t, changed, "reinstalling unchanged sources is a no-op")

	writeFile(t, filepath.Join(root, "util", "util.lox"), "fun twice(x) { return x + x; }\n")
	changed, _, err = installer.Install(lock)
	require.NoError(t, err)
	assert.True(t, changed, "edited sources change the checksum")

	dir, err := installer.PackageDir(manifest.Dependencies[0], lock)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "util"), dir)
}

func TestInstallerMissingScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", ManifestFileName), `
name: app
dependencies:
  util:
    path: ../util
    scripts: [missing.lox]
`)
	writeFile(t, filepath.Join(root, "util", "util.lox"), "")
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFileName))
	require.NoError(t, err)

	_, _, err = NewInstaller(manifest, t.TempDir()).Install(NewLockfile("app", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.lox")
}

func TestInstallerGitDependency(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "greet")
	writeFile(t, filepath.Join(repoDir, "greet.lox"), "fun greet(name) { return \"hi \" + name; }\n")
	repo, rev := initGitRepo(t, repoDir)
	_, err := repo.CreateTag("v1.0.0", plumbing.NewHash(rev), nil)
	require.NoError(t, err)

	cases := []struct {
		name     string
		selector string
		version  string
	}{
		{"rev", "rev: " + rev, rev},
		{"tag", "tag: v1.0.0", "v1.0.0@" + rev},
		{"branch", "branch: master", "master@" + rev},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appDir := filepath.Join(root, "app-"+tc.name)
			writeFile(t, filepath.Join(appDir, ManifestFileName), fmt.Sprintf(`
name: app
dependencies:
  greet:
    git: %s
    %s
    scripts: [greet.lox]
`, repoDir, tc.selector))
			manifest, err := LoadManifest(filepath.Join(appDir, ManifestFileName))
			require.NoError(t, err)

			cacheDir := filepath.Join(root, "cache-"+tc.name)
			installer := NewInstaller(manifest, cacheDir)
			lock := NewLockfile(manifest.Name, "test")
			changed, _, err := installer.Install(lock)
			require.NoError(t, err)
			assert.True(t, changed)

			pkg := lock.Find("greet")
			require.NotNil(t, pkg)
			assert.Equal(t, tc.version, pkg.Version)
			assert.Equal(t, fmt.Sprintf("git+%s@%s", repoDir, rev), pkg.Source)

			dir, err := installer.PackageDir(manifest.Dependencies[0], lock)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(dir, filepath.Join(cacheDir, "pkg", "src", "greet")))
			data, err := os.ReadFile(filepath.Join(dir, "greet.lox"))
			require.NoError(t, err)
			assert.Contains(t, string(data), "fun greet")

			require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.lox"), []byte("tampered"), 0o644))
			_, err = installer.PackageDir(manifest.Dependencies[0], lock)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "checksum mismatch")
		})
	}
}

func TestPackageDirRequiresInstall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestFileName), `
name: app
dependencies:
  util:
    path: ./util
    scripts: [util.lox]
`)
	manifest, err := LoadManifest(filepath.Join(root, ManifestFileName))
	require.NoError(t, err)
	_, err = NewInstaller(manifest, t.TempDir()).PackageDir(manifest.Dependencies[0], NewLockfile("app", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lox deps install")
}

func TestDirChecksumIgnoresGitMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.lox"), "print 1;")
	before, err := dirChecksum(dir)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/master")
	after, err := dirChecksum(dir)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	writeFile(t, filepath.Join(dir, "b.lox"), "print 2;")
	changed, err := dirChecksum(dir)
	require.NoError(t, err)
	assert.NotEqual(t, before, changed)
}
