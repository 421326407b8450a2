package console

import (
	"errors"
	"io"
	"slices"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/cvar"
	"github.com/dshills/gamelib/internal/event"
)

// Console holds cvars, command signatures and console objects, and emits
// change and command events through an event.Dispatcher.
type Console struct {
	cvars    map[string]*cvar.Cvar
	commands map[string]command.Info

	objects map[ObjectID]Object

	dispatcher *event.Dispatcher
	out        io.Writer
	logger     zerolog.Logger
}

// New creates an empty console.
func New(opts ...Option) *Console {
	c := &Console{
		cvars:      make(map[string]*cvar.Cvar),
		commands:   make(map[string]command.Info),
		objects:    make(map[ObjectID]Object),
		dispatcher: event.NewDispatcher(),
		out:        io.Discard,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitCvars registers the cvars of every provider in order.
// Definitions whose name is already registered are skipped. Invalid
// definitions are reported in the joined error and do not stop the others.
func (c *Console) InitCvars(providers ...CvarProvider) error {
	var errs []error
	for _, p := range providers {
		if p == nil {
			continue
		}
		for _, def := range p.Cvars() {
			if _, err := c.RegisterCvar(def); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RegisterCvar registers a single cvar. It reports false without error when
// the name is already taken.
func (c *Console) RegisterCvar(def cvar.Definition) (bool, error) {
	if !validName(def.Name) {
		return false, &NameError{What: "cvar", Name: def.Name}
	}
	if _, exists := c.cvars[def.Name]; exists {
		c.logger.Debug().Str("cvar", def.Name).Msg("cvar already registered")
		return false, nil
	}
	v, err := def.Build()
	if err != nil {
		return false, err
	}
	c.cvars[def.Name] = &v
	return true, nil
}

// InitCommands registers the command signatures of every provider in order.
// Signatures whose name is already registered are skipped.
func (c *Console) InitCommands(providers ...CommandProvider) error {
	var errs []error
	for _, p := range providers {
		if p == nil {
			continue
		}
		for _, info := range p.Commands() {
			if _, err := c.RegisterCommand(info); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RegisterCommand registers a single command signature. It reports false
// without error when the name is already taken.
func (c *Console) RegisterCommand(info command.Info) (bool, error) {
	if !validName(info.Name) {
		return false, &NameError{What: "command", Name: info.Name}
	}
	if info.Args < command.Any {
		info.Args = command.Any
	}
	if _, exists := c.commands[info.Name]; exists {
		c.logger.Debug().Str("command", info.Name).Msg("command already registered")
		return false, nil
	}
	c.commands[info.Name] = info
	return true, nil
}

// CvarExists reports whether a cvar named name is registered.
func (c *Console) CvarExists(name string) bool {
	_, ok := c.cvars[name]
	return ok
}

// Cvar returns a copy of the named cvar.
func (c *Console) Cvar(name string) (cvar.Cvar, error) {
	v, ok := c.cvars[name]
	if !ok {
		return cvar.Cvar{}, &NotFoundError{What: "cvar", Name: name}
	}
	return *v, nil
}

// CvarNames returns the registered cvar names in sorted order.
func (c *Console) CvarNames() []string {
	names := make([]string, 0, len(c.cvars))
	for name := range c.cvars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetCvar converts value into the named cvar and emits CvarChanged.
// Unknown names and rejected values are ignored.
func (c *Console) SetCvar(name string, value any) {
	if err := c.TrySetCvar(name, value); err != nil {
		c.logger.Debug().Err(err).Str("cvar", name).Msg("cvar set ignored")
	}
}

// TrySetCvar is SetCvar that reports why a value was not applied.
// It returns a NotFoundError for an unknown name and a cvar.ConversionError
// for a rejected value.
func (c *Console) TrySetCvar(name string, value any) error {
	v, ok := c.cvars[name]
	if !ok {
		return &NotFoundError{What: "cvar", Name: name}
	}
	if err := v.Set(value); err != nil {
		return err
	}
	event.Dispatch(c.dispatcher, CvarChanged{Cvar: *v, Source: c})
	return nil
}

// PrintCvar writes the named cvar's value to the console output.
func (c *Console) PrintCvar(name string) {
	var line string
	if v, ok := c.cvars[name]; ok {
		line = `Cvar: "` + name + `" Value: "` + v.String() + `"` + "\n"
	} else {
		line = `Cvar: "` + name + `" doesn't exist.` + "\n"
	}
	if _, err := io.WriteString(c.out, line); err != nil {
		c.logger.Error().Err(err).Str("cvar", name).Msg("write cvar")
	}
}

// CommandInfoExists reports whether a command named name is registered.
func (c *Console) CommandInfoExists(name string) bool {
	_, ok := c.commands[name]
	return ok
}

// CommandInfo returns the signature of the named command.
func (c *Console) CommandInfo(name string) (command.Info, error) {
	info, ok := c.commands[name]
	if !ok {
		return command.Info{}, &NotFoundError{What: "command", Name: name}
	}
	return info, nil
}

// CommandInfos returns every registered signature sorted by name.
func (c *Console) CommandInfos() []command.Info {
	infos := make([]command.Info, 0, len(c.commands))
	for _, info := range c.commands {
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b command.Info) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos
}

// CommandMatchesRequirements reports whether cmd names a registered command
// and carries an acceptable number of arguments.
func (c *Console) CommandMatchesRequirements(cmd command.Command) bool {
	info, ok := c.commands[cmd.Name()]
	return ok && info.Accepts(cmd)
}

// DispatchCommand emits CommandSent for cmd if it matches a registered
// signature. Other commands are dropped.
func (c *Console) DispatchCommand(cmd command.Command) {
	if !c.CommandMatchesRequirements(cmd) {
		c.logger.Debug().Str("command", cmd.Name()).Int("args", cmd.Len()).Msg("command dropped")
		return
	}
	event.Dispatch(c.dispatcher, CommandSent{Command: cmd, Source: c})
}

// Parse interprets one line of input. See the package documentation.
func (c *Console) Parse(input string) {
	line := strings.TrimLeftFunc(strings.TrimRight(input, "\r\n"), unicode.IsSpace)
	if line == "" {
		return
	}

	name, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		name = line[:i]
		rest = strings.TrimLeftFunc(line[i:], unicode.IsSpace)
	}

	if c.CvarExists(name) {
		if rest == "" {
			c.PrintCvar(name)
			return
		}
		c.SetCvar(name, rest)
		return
	}
	c.DispatchCommand(command.Parse(line))
}

func validName(name string) bool {
	return name != "" && strings.IndexFunc(name, unicode.IsSpace) < 0
}
