package app

import (
	"fmt"
	"strings"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/console"
)

// Builtin command names.
const (
	CmdCvarList = "cvarlist"
	CmdCmdList  = "cmdlist"
	CmdEcho     = "echo"
	CmdFind     = "find"
	CmdLua      = "lua"
	CmdPlugins  = "plugins"
	CmdReload   = "plugin_reload"
	CmdQuit     = "quit"
)

type builtin struct {
	info    command.Info
	handler func(console.CommandSent)
}

func (app *Application) builtins() []builtin {
	return []builtin{
		{
			info:    command.Info{Name: CmdCvarList, Args: 0, Description: "List all console variables."},
			handler: app.cvarList,
		},
		{
			info:    command.Info{Name: CmdCmdList, Args: 0, Description: "List all commands."},
			handler: app.cmdList,
		},
		{
			info:    command.Info{Name: CmdEcho, Args: command.Any, Description: "Print the arguments."},
			handler: app.echo,
		},
		{
			info:    command.Info{Name: CmdFind, Args: 1, Description: "Search cvar and command names."},
			handler: app.find,
		},
		{
			info:    command.Info{Name: CmdLua, Args: command.Any, Description: "Run a Lua chunk."},
			handler: app.runLua,
		},
		{
			info:    command.Info{Name: CmdPlugins, Args: 0, Description: "List loaded plugins."},
			handler: app.listPlugins,
		},
		{
			info:    command.Info{Name: CmdReload, Args: 1, Description: "Reload a plugin."},
			handler: app.reloadPlugin,
		},
		{
			info:    command.Info{Name: CmdQuit, Args: 0, Description: "Leave the console."},
			handler: func(console.CommandSent) { app.quit = true },
		},
	}
}

func (app *Application) registerBuiltins() error {
	builtins := app.builtins()

	infos := make([]command.Info, 0, len(builtins))
	for _, b := range builtins {
		infos = append(infos, b.info)
	}
	if err := app.console.InitCommands(console.CommandProviderFunc(func() []command.Info {
		return infos
	})); err != nil {
		return err
	}

	for _, b := range builtins {
		if _, err := app.console.AddCommandListener(b.info.Name, b.handler); err != nil {
			return fmt.Errorf("listen %s: %w", b.info.Name, err)
		}
	}
	return nil
}

func (app *Application) cvarList(console.CommandSent) {
	for _, name := range app.console.CvarNames() {
		app.console.PrintCvar(name)
	}
}

func (app *Application) cmdList(console.CommandSent) {
	for _, info := range app.console.CommandInfos() {
		fmt.Fprintf(app.out, "%-16s %-4s %s\n", info.Name, info.Args, info.Description)
	}
}

func (app *Application) echo(ev console.CommandSent) {
	fmt.Fprintln(app.out, strings.Join(ev.Command.Args(), " "))
}

func (app *Application) runLua(ev console.CommandSent) {
	if app.lua == nil {
		return
	}
	if err := app.lua.DoString(strings.Join(ev.Command.Args(), " ")); err != nil {
		fmt.Fprintf(app.out, "lua: %v\n", err)
	}
}

func (app *Application) listPlugins(console.CommandSent) {
	if app.plugins == nil {
		return
	}
	for _, h := range app.plugins.List() {
		fmt.Fprintf(app.out, "%-16s %-10s %s\n", h.Name(), h.Manifest().Version, h.State())
	}
}

func (app *Application) reloadPlugin(ev console.CommandSent) {
	if app.plugins == nil {
		return
	}
	if err := app.plugins.Reload(ev.Command.Arg(0)); err != nil {
		fmt.Fprintf(app.out, "plugin: %v\n", err)
	}
}
