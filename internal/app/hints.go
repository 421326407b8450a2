package app

import (
	"fmt"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/suggest"
)

const (
	// maxSuggestDistance bounds the edit distance of "did you mean" hints.
	maxSuggestDistance = 2

	// findLimit caps the number of find results.
	findLimit = 10
)

// execLine feeds an interactive line to the console. Lines the console
// would drop get a hint on the output first.
func (app *Application) execLine(line string) {
	app.hint(line)
	app.console.Parse(line)
}

func (app *Application) hint(line string) {
	cmd := command.Parse(line)
	if cmd.Empty() || app.console.CvarExists(cmd.Name()) {
		return
	}

	if info, err := app.console.CommandInfo(cmd.Name()); err == nil {
		if !info.Accepts(cmd) {
			fmt.Fprintf(app.out, "%s: expects %s argument(s), got %d\n", info.Name, info.Args, cmd.Len())
		}
		return
	}

	if name, ok := suggest.Closest(cmd.Name(), app.names(), maxSuggestDistance); ok {
		fmt.Fprintf(app.out, "Unknown command %q. Did you mean %q?\n", cmd.Name(), name)
		return
	}
	fmt.Fprintf(app.out, "Unknown command %q.\n", cmd.Name())
}

// names returns every cvar and command name.
func (app *Application) names() []string {
	names := app.console.CvarNames()
	for _, info := range app.console.CommandInfos() {
		names = append(names, info.Name)
	}
	return names
}

func (app *Application) find(ev console.CommandSent) {
	results := suggest.Match(ev.Command.Arg(0), app.names(), findLimit)
	if len(results) == 0 {
		fmt.Fprintf(app.out, "No matches for %q.\n", ev.Command.Arg(0))
		return
	}
	for _, r := range results {
		kind := "command"
		if app.console.CvarExists(r.Name) {
			kind = "cvar"
		}
		fmt.Fprintf(app.out, "%-8s %s\n", kind, r.Name)
	}
}
