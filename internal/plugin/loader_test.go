package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoaderDiscover(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	createTestPluginDir(t, filepath.Join(first, "scoreboard"), "-- first")
	createTestPluginDir(t, filepath.Join(second, "scoreboard"), "-- shadowed")
	writeTestFile(t, filepath.Join(second, "motd.lua"), "-- single file")
	if err := os.MkdirAll(filepath.Join(second, "bare", ""), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(second, "bare", "init.lua"), "-- no manifest")
	if err := os.MkdirAll(filepath.Join(second, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(second, "notes.txt"), "ignored")

	l := NewLoader(first, second, filepath.Join(first, "missing"))
	plugins, err := l.Discover()
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var names []string
	for _, p := range plugins {
		names = append(names, p.Name)
	}
	if want := []string{"bare", "empty", "motd", "scoreboard"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("Discover() names = %v, want %v", names, want)
	}

	sb, _ := l.Get("scoreboard")
	if sb.Path != filepath.Join(first, "scoreboard") {
		t.Errorf("scoreboard path = %q, want the first search path", sb.Path)
	}
	motd, _ := l.Get("motd")
	if motd.Manifest.MainPath() != filepath.Join(second, "motd.lua") {
		t.Errorf("motd main = %q", motd.Manifest.MainPath())
	}
	bare, _ := l.Get("bare")
	if bare.Err != nil || bare.Manifest.Name != "bare" {
		t.Errorf("bare = %+v, want minimal manifest", bare)
	}

	errored := l.Errors()
	if len(errored) != 1 || errored[0].Name != "empty" || !errors.Is(errored[0].Err, ErrNoEntryPoint) {
		t.Errorf("Errors() = %v, want empty with ErrNoEntryPoint", errored)
	}
	if got := l.Names(); !reflect.DeepEqual(got, names) {
		t.Errorf("Names() = %v, want %v", got, names)
	}
}

func TestLoaderFindPlugin(t *testing.T) {
	dir := t.TempDir()
	createTestPluginDir(t, filepath.Join(dir, "scoreboard"), "-- plugin")
	writeTestFile(t, filepath.Join(dir, "motd.lua"), "-- single file")

	l := NewLoader()
	l.AddPath(dir)
	if got := l.Paths(); len(got) != 1 || got[0] != dir {
		t.Fatalf("Paths() = %v", got)
	}

	for _, name := range []string{"scoreboard", "motd"} {
		info, err := l.FindPlugin(name)
		if err != nil {
			t.Fatalf("FindPlugin(%q) error = %v", name, err)
		}
		if info.Name != name {
			t.Errorf("FindPlugin(%q).Name = %q", name, info.Name)
		}
	}

	if _, err := l.FindPlugin("nothing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("FindPlugin(nothing) error = %v, want ErrPluginNotFound", err)
	}
}

func TestLoaderFindPluginWithError(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "broken"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(dir, "broken", ManifestFile), `version = "x"`)

	l := NewLoader(dir)
	if _, err := l.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if _, err := l.FindPlugin("broken"); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("FindPlugin(broken) error = %v, want ErrInvalidManifest", err)
	}
}
