// Package console ties console variables, commands and typed events together.
//
// # Variables and Commands
//
// A Console owns a table of cvars and a table of command signatures. Both are
// usually filled once at startup through InitCvars and InitCommands. When the
// same name is registered twice, the first registration wins.
//
// # Parsing
//
// Parse interprets one line of user input:
//
//	volume          prints the cvar "volume"
//	volume 0.5      sets the cvar "volume"
//	kick bob        dispatches the command "kick" with args ["bob"]
//
// A line whose first token names an existing cvar always refers to the cvar.
// Everything after the name, with leading whitespace removed and trailing
// whitespace kept, is the new value.
//
// # Events
//
// Successful cvar changes emit CvarChanged and accepted commands emit
// CommandSent through the console's event.Dispatcher. Listeners filter on a
// single cvar or command name.
//
// # Objects
//
// Objects are entities managed by the console whose listeners are removed
// automatically when the object is removed. Embed Base to get an id and the
// owned-listener helpers:
//
//	type player struct {
//		console.Base
//		health int64
//	}
//
//	id, err := console.AddObject(c, func(b console.Base) *player {
//		return &player{Base: b}
//	})
//
// # Thread Safety
//
// A Console is not safe for concurrent use. Callers serialize access, usually
// by owning it from a single goroutine.
package console
