package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/cvar"
)

type rawManifest struct {
	Include  []string     `toml:"include" yaml:"include"`
	Cvars    []rawCvar    `toml:"cvars" yaml:"cvars"`
	Commands []rawCommand `toml:"commands" yaml:"commands"`
}

type rawCvar struct {
	Name    string `toml:"name" yaml:"name"`
	Kind    string `toml:"kind" yaml:"kind"`
	Default any    `toml:"default" yaml:"default"`
}

type rawCommand struct {
	Name        string `toml:"name" yaml:"name"`
	Args        any    `toml:"args" yaml:"args"`
	Description string `toml:"description" yaml:"description"`
}

// build validates every entry and converts it into definitions.
func (raw *rawManifest) build(source string) (*Manifest, error) {
	m := &Manifest{Source: source}

	for i, rc := range raw.Cvars {
		kind, err := cvar.ParseKind(rc.Kind)
		if err != nil {
			return nil, entryError(source, "cvars", i, rc.Name, err)
		}
		def := cvar.Definition{Name: strings.TrimSpace(rc.Name), Kind: kind, Default: rc.Default}
		if def.Name == "" {
			return nil, entryError(source, "cvars", i, rc.Name, fmt.Errorf("%w: missing name", ErrInvalidEntry))
		}
		if _, err := def.Build(); err != nil {
			return nil, entryError(source, "cvars", i, rc.Name, err)
		}
		m.addCvar(def)
	}

	for i, rc := range raw.Commands {
		args, err := parseArgCount(rc.Args)
		if err != nil {
			return nil, entryError(source, "commands", i, rc.Name, err)
		}
		info := command.Info{Name: strings.TrimSpace(rc.Name), Args: args, Description: rc.Description}
		if info.Name == "" {
			return nil, entryError(source, "commands", i, rc.Name, fmt.Errorf("%w: missing name", ErrInvalidEntry))
		}
		m.addCommand(info)
	}

	return m, nil
}

func entryError(source, section string, index int, name string, err error) error {
	return &ParseError{
		Path:    source,
		Message: fmt.Sprintf("%s[%d] %q: %v", section, index, name, err),
		Err:     err,
	}
}

// parseArgCount accepts a non-negative integer, "any" or "*". A missing
// value means the command takes no arguments.
func parseArgCount(v any) (command.ArgCount, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt32 {
			return 0, fmt.Errorf("%w: args %d out of range", ErrInvalidEntry, x)
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: args %v is not an integer", ErrInvalidEntry, x)
		}
		n = int64(x)
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		if s == "any" || s == "*" {
			return command.Any, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: args %q", ErrInvalidEntry, x)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: args has type %T", ErrInvalidEntry, v)
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: args %d out of range", ErrInvalidEntry, n)
	}
	return command.ArgCount(n), nil
}

// Manifest is a loaded set of cvar definitions and command signatures.
// It implements the console's cvar and command provider interfaces.
type Manifest struct {
	// Source is the path the manifest was read from.
	Source string

	cvars    []cvar.Definition
	commands []command.Info
}

func (m *Manifest) addCvar(def cvar.Definition) {
	for _, existing := range m.cvars {
		if existing.Name == def.Name {
			return
		}
	}
	m.cvars = append(m.cvars, def)
}

func (m *Manifest) addCommand(info command.Info) {
	for _, existing := range m.commands {
		if existing.Name == info.Name {
			return
		}
	}
	m.commands = append(m.commands, info)
}

// Merge appends the entries of other that m does not already define.
func (m *Manifest) Merge(other *Manifest) {
	if other == nil {
		return
	}
	for _, def := range other.cvars {
		m.addCvar(def)
	}
	for _, info := range other.commands {
		m.addCommand(info)
	}
}

// Cvars returns the cvar definitions in declaration order.
func (m *Manifest) Cvars() []cvar.Definition {
	return append([]cvar.Definition(nil), m.cvars...)
}

// Commands returns the command signatures in declaration order.
func (m *Manifest) Commands() []command.Info {
	return append([]command.Info(nil), m.commands...)
}
