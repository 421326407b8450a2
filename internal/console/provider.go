package console

import (
	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/cvar"
)

// CvarProvider supplies cvar definitions for bulk registration.
type CvarProvider interface {
	Cvars() []cvar.Definition
}

// CvarProviderFunc adapts a function to CvarProvider.
type CvarProviderFunc func() []cvar.Definition

// Cvars implements CvarProvider.
func (f CvarProviderFunc) Cvars() []cvar.Definition {
	return f()
}

// CommandProvider supplies command signatures for bulk registration.
type CommandProvider interface {
	Commands() []command.Info
}

// CommandProviderFunc adapts a function to CommandProvider.
type CommandProviderFunc func() []command.Info

// Commands implements CommandProvider.
func (f CommandProviderFunc) Commands() []command.Info {
	return f()
}
