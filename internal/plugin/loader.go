package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader discovers plugins on the filesystem.
type Loader struct {
	// Search paths for plugins (checked in order)
	paths []string

	// Discovered plugins cache
	discovered map[string]*Info
}

// Info contains discovery information about a plugin.
type Info struct {
	Name     string
	Path     string
	Manifest *Manifest
	Err      error
}

// NewLoader creates a loader searching paths in order.
func NewLoader(paths ...string) *Loader {
	return &Loader{
		paths:      paths,
		discovered: make(map[string]*Info),
	}
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath adds a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover finds all plugins in the search paths. Missing search paths are
// skipped; when two paths hold a plugin of the same name the earlier path
// wins. Returns plugins sorted by name.
func (l *Loader) Discover() ([]*Info, error) {
	l.discovered = make(map[string]*Info)

	var errs []error
	for _, basePath := range l.paths {
		if err := l.discoverInPath(basePath); err != nil {
			errs = append(errs, err)
		}
	}

	plugins := make([]*Info, 0, len(l.discovered))
	for _, info := range l.discovered {
		plugins = append(plugins, info)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Name < plugins[j].Name
	})

	return plugins, errors.Join(errs...)
}

func (l *Loader) discoverInPath(basePath string) error {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("scan %s: %w", basePath, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			if filepath.Ext(entry.Name()) == ".lua" {
				name := strings.TrimSuffix(entry.Name(), ".lua")
				l.add(singleFileInfo(name, basePath, entry.Name()))
			}
			continue
		}
		l.add(inspectPlugin(entry.Name(), filepath.Join(basePath, entry.Name())))
	}
	return nil
}

func (l *Loader) add(info *Info) {
	if _, exists := l.discovered[info.Name]; !exists {
		l.discovered[info.Name] = info
	}
}

func singleFileInfo(name, dir, file string) *Info {
	manifest := NewManifestMinimal(name, dir)
	manifest.Main = file
	return &Info{Name: name, Path: dir, Manifest: manifest}
}

// inspectPlugin examines a plugin directory and returns its info.
func inspectPlugin(name, path string) *Info {
	info := &Info{Name: name, Path: path}

	if _, err := os.Stat(filepath.Join(path, ManifestFile)); err == nil {
		manifest, err := LoadManifestFromDir(path)
		if err != nil {
			info.Err = err
			return info
		}
		info.Manifest = manifest
		info.Name = manifest.Name
		return info
	}

	if _, err := os.Stat(filepath.Join(path, DefaultMain)); err == nil {
		info.Manifest = NewManifestMinimal(name, path)
		return info
	}

	info.Err = ErrNoEntryPoint
	return info
}

// Get returns discovery info for a plugin by name.
func (l *Loader) Get(name string) (*Info, bool) {
	info, ok := l.discovered[name]
	return info, ok
}

// FindPlugin returns the plugin named name, searching the paths if it was
// not discovered yet.
func (l *Loader) FindPlugin(name string) (*Info, error) {
	if info, ok := l.discovered[name]; ok {
		if info.Err != nil {
			return nil, fmt.Errorf("plugin %q: %w", name, info.Err)
		}
		return info, nil
	}

	for _, basePath := range l.paths {
		pluginPath := filepath.Join(basePath, name)
		if stat, err := os.Stat(pluginPath); err == nil && stat.IsDir() {
			info := inspectPlugin(name, pluginPath)
			if info.Err == nil {
				l.discovered[info.Name] = info
				return info, nil
			}
		}

		luaPath := filepath.Join(basePath, name+".lua")
		if _, err := os.Stat(luaPath); err == nil {
			info := singleFileInfo(name, basePath, name+".lua")
			l.discovered[name] = info
			return info, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// Names returns the names of all discovered plugins.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.discovered))
	for name := range l.discovered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errors returns the discovered plugins that cannot be loaded.
func (l *Loader) Errors() []*Info {
	var errored []*Info
	for _, info := range l.discovered {
		if info.Err != nil {
			errored = append(errored, info)
		}
	}
	sort.Slice(errored, func(i, j int) bool {
		return errored[i].Name < errored[j].Name
	})
	return errored
}
