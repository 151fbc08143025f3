package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project manifest looked up by the CLI.
const ManifestFileName = "lox.yml"

// Manifest represents the parsed contents of lox.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Main         string
	Prelude      []string
	Settings     Settings
	Dependencies []*DependencySpec
}

// Settings tunes the interpreter for a project.
type Settings struct {
	MaxCallDepth int
}

// DependencySpec describes a dependency descriptor in the manifest. Exactly
// one of Path or Git is set; Rev, Tag and Branch select a git revision.
type DependencySpec struct {
	Name    string
	Git     string
	Rev     string
	Tag     string
	Branch  string
	Path    string
	Scripts []string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses lox.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from start looking for lox.yml.
func FindManifest(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Dir is the directory holding the manifest; relative paths resolve from it.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// LockfilePath is the lox.lock path next to the manifest.
func (m *Manifest) LockfilePath() string {
	return filepath.Join(m.Dir(), LockfileName)
}

// Dependency looks up a dependency by sanitized or original name.
func (m *Manifest) Dependency(name string) (*DependencySpec, bool) {
	key := sanitizeSegment(name)
	for _, dep := range m.Dependencies {
		if dep.Name == key {
			return dep, true
		}
	}
	return nil, false
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Main != "" {
		if issue := validateScriptPath(m.Main); issue != "" {
			errs.Issues = append(errs.Issues, "main: "+issue)
		}
	}
	for i, script := range m.Prelude {
		if issue := validateScriptPath(script); issue != "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("prelude[%d]: %s", i, issue))
		}
	}
	if m.Settings.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "settings.max_call_depth must not be negative")
	}

	seen := make(map[string]struct{}, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		if _, dup := seen[dep.Name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: declared more than once", dep.Name))
		}
		seen[dep.Name] = struct{}{}
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", dep.Name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d.Path != "" && d.Git != "" {
		errs = append(errs, "path and git sources are mutually exclusive")
	}
	if d.Path == "" && d.Git == "" {
		errs = append(errs, "must specify git or path")
	}
	selectors := 0
	for _, s := range []string{d.Rev, d.Tag, d.Branch} {
		if s != "" {
			selectors++
		}
	}
	if d.Git == "" && selectors > 0 {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if d.Git != "" && selectors != 1 {
		errs = append(errs, "git dependencies require exactly one of rev, tag, or branch")
	}
	if len(d.Scripts) == 0 {
		errs = append(errs, "scripts must list at least one file")
	}
	for i, script := range d.Scripts {
		if issue := validateScriptPath(script); issue != "" {
			errs = append(errs, fmt.Sprintf("scripts[%d]: %s", i, issue))
		}
	}
	return errs
}

func validateScriptPath(p string) string {
	switch {
	case filepath.IsAbs(p):
		return fmt.Sprintf("%q must be relative", p)
	case strings.HasPrefix(filepath.Clean(p), ".."):
		return fmt.Sprintf("%q escapes the project directory", p)
	case filepath.Ext(p) != ".lox":
		return fmt.Sprintf("%q must be a .lox file", p)
	default:
		return ""
	}
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Main         string        `yaml:"main"`
	Prelude      stringList    `yaml:"prelude"`
	Settings     settingsYAML  `yaml:"settings"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type settingsYAML struct {
	MaxCallDepth int `yaml:"max_call_depth"`
}

// dependencyMap keeps declaration order, which is also load order.
type dependencyMap struct {
	items []*DependencySpec
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:         path,
		Name:         sanitizeSegment(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Main:         strings.TrimSpace(mf.Main),
		Prelude:      mf.Prelude.Clone(),
		Settings:     Settings{MaxCallDepth: mf.Settings.MaxCallDepth},
		Dependencies: make([]*DependencySpec, 0, len(mf.Dependencies.items)),
	}
	for _, dep := range mf.Dependencies.items {
		result.Dependencies = append(result.Dependencies, dep.clone())
	}
	return result
}

func (d *DependencySpec) clone() *DependencySpec {
	copy := *d
	if len(d.Scripts) > 0 {
		copy.Scripts = append([]string{}, d.Scripts...)
	}
	return &copy
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		dm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	items := make([]*DependencySpec, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = sanitizeSegment(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		dep.Name = key
		items = append(items, &dep)
	}
	dm.items = items
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var raw struct {
			Git     string     `yaml:"git"`
			Rev     string     `yaml:"rev"`
			Tag     string     `yaml:"tag"`
			Branch  string     `yaml:"branch"`
			Path    string     `yaml:"path"`
			Scripts stringList `yaml:"scripts"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:     strings.TrimSpace(raw.Git),
			Rev:     strings.TrimSpace(raw.Rev),
			Tag:     strings.TrimSpace(raw.Tag),
			Branch:  strings.TrimSpace(raw.Branch),
			Path:    strings.TrimSpace(raw.Path),
			Scripts: raw.Scripts.Clone(),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected mapping, found %s", value.ShortTag())
	}
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
