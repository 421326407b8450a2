package console

import (
	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/cvar"
)

// CvarChanged is dispatched after a cvar's value was successfully set.
// Cvar is a snapshot of the variable taken right after the change.
type CvarChanged struct {
	Cvar cvar.Cvar

	// Source is the console that changed the cvar.
	Source *Console
}

// CommandSent is dispatched for every command that passed validation.
type CommandSent struct {
	Command command.Command

	// Source is the console that parsed the command.
	Source *Console
}
