package plugin

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/gamelib/internal/config/loader"
)

// Manifest file and entry point names.
const (
	ManifestFile = "plugin.toml"
	DefaultMain  = "init.lua"
)

// Manifest describes a plugin.
type Manifest struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`

	// Main is the entry point relative to the plugin directory.
	Main string `toml:"main"`

	// Declares optionally names a cvar and command manifest relative to
	// the plugin directory.
	Declares string `toml:"declares"`

	// Config is passed to the plugin's setup function.
	Config map[string]any `toml:"config"`

	// path to the plugin directory
	path string
}

// namePattern validates plugin names.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$|^[a-z]$`)

// semverPattern validates version strings (simplified semver).
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)

// LoadManifest loads and validates a plugin manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}

	m.path = filepath.Dir(path)
	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFromDir loads plugin.toml from a plugin directory.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	return LoadManifest(filepath.Join(dir, ManifestFile))
}

// NewManifestMinimal creates a manifest for a plugin without plugin.toml.
func NewManifestMinimal(name, dir string) *Manifest {
	return &Manifest{
		Name:    name,
		Version: "0.0.0",
		Main:    DefaultMain,
		path:    dir,
	}
}

func (m *Manifest) applyDefaults() {
	if m.Main == "" {
		m.Main = DefaultMain
	}
	if m.Version == "" {
		m.Version = "0.0.0"
	}
}

// Validate checks that the manifest is valid.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidManifest)
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: name %q must be lowercase alphanumeric with hyphens or underscores", ErrInvalidManifest, m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: version %q is not semver", ErrInvalidManifest, m.Version)
	}
	if filepath.Ext(m.Main) != ".lua" {
		return fmt.Errorf("%w: main %q must be a .lua file", ErrInvalidManifest, m.Main)
	}
	if m.Declares != "" {
		if _, err := loader.FormatOf(m.Declares); err != nil {
			return fmt.Errorf("%w: declares: %w", ErrInvalidManifest, err)
		}
	}
	return nil
}

// Path returns the plugin directory.
func (m *Manifest) Path() string {
	return m.path
}

// MainPath returns the full path to the entry point.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.path, m.Main)
}

// DeclaresPath returns the full path to the declarations manifest, or ""
// if the plugin declares nothing.
func (m *Manifest) DeclaresPath() string {
	if m.Declares == "" {
		return ""
	}
	return filepath.Join(m.path, m.Declares)
}

// String returns a string representation of the manifest.
func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
