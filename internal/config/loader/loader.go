// Package loader reads console manifests.
//
// A manifest declares cvars and command signatures so they can be registered
// with a console without writing Go code. Manifests are TOML or YAML:
//
//	include = ["base.toml"]
//
//	[[cvars]]
//	name = "volume"
//	kind = "float"
//	default = 0.8
//
//	[[commands]]
//	name = "kick"
//	args = 1
//	description = "Kick a player."
//
// The args field is a non-negative integer or "any". Included manifests are
// resolved relative to the including file. Definitions in the including file
// take precedence over included ones.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxIncludeDepth bounds nested includes.
const DefaultMaxIncludeDepth = 8

// Format is a manifest encoding.
type Format int

const (
	// FormatTOML is a TOML manifest.
	FormatTOML Format = iota
	// FormatYAML is a YAML manifest.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader reads manifests from a file system.
type Loader struct {
	fs       FileSystem
	maxDepth int
}

// New creates a loader backed by the OS file system.
func New() *Loader {
	return NewWithFS(DefaultFS())
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys, maxDepth: DefaultMaxIncludeDepth}
}

// SetMaxIncludeDepth changes the include nesting limit.
func (l *Loader) SetMaxIncludeDepth(depth int) {
	l.maxDepth = depth
}

// LoadFile reads the manifest at path and everything it includes.
func (l *Loader) LoadFile(path string) (*Manifest, error) {
	return l.load(path, l.maxDepth)
}

func (l *Loader) load(path string, depth int) (*Manifest, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncludeDepthExceeded, path)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	raw, err := decode(format, path, data)
	if err != nil {
		return nil, err
	}
	m, err := raw.build(path)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	for _, inc := range raw.Include {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}
		included, err := l.load(incPath, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		m.Merge(included)
	}

	return m, nil
}

// LoadFile reads the manifest at path from the OS file system.
func LoadFile(path string) (*Manifest, error) {
	return New().LoadFile(path)
}

// LoadTOML reads a TOML manifest from r. Includes are not resolved.
func LoadTOML(r io.Reader) (*Manifest, error) {
	return loadReader(FormatTOML, r)
}

// LoadYAML reads a YAML manifest from r. Includes are not resolved.
func LoadYAML(r io.Reader) (*Manifest, error) {
	return loadReader(FormatYAML, r)
}

func loadReader(format Format, r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	raw, err := decode(format, "<reader>", data)
	if err != nil {
		return nil, err
	}
	return raw.build("<reader>")
}

func decode(format Format, source string, data []byte) (*rawManifest, error) {
	switch format {
	case FormatTOML:
		return decodeTOML(source, data)
	case FormatYAML:
		return decodeYAML(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
