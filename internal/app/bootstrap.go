package app

import (
	"errors"
	"fmt"

	"github.com/dshills/gamelib/internal/config/loader"
	"github.com/dshills/gamelib/internal/config/watcher"
	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/plugin"
	"github.com/dshills/gamelib/internal/plugin/lua"
	"github.com/dshills/gamelib/internal/script"
)

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Console
	app.console = console.New(
		console.WithOutput(app.out),
		console.WithLogger(app.logger.With().Str("component", "console").Logger()),
	)

	// 2. Builtin commands, registered first so manifests cannot shadow them
	if err := app.registerBuiltins(); err != nil {
		return &InitError{Component: "builtins", Err: err}
	}
	scripts, err := script.RegisterExec(app.console,
		script.WithLogger(app.logger.With().Str("component", "script").Logger()))
	if err != nil {
		return &InitError{Component: "script", Err: err}
	}
	app.scripts = scripts

	// 3. Manifests
	for _, path := range app.cfg.Manifests {
		if err := app.loadManifest(path); err != nil {
			return &InitError{Component: "manifest " + path, Err: err}
		}
	}

	// 4. Lua
	state, err := lua.NewState(
		lua.WithOutput(app.out),
		lua.WithExecutionTimeout(app.cfg.LuaTimeout),
	)
	if err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	app.lua = state
	app.luaModule = lua.NewConsoleModule(app.console,
		lua.WithLogger(app.logger.With().Str("component", "lua").Logger()))
	if err := app.luaModule.Register(state); err != nil {
		return &InitError{Component: "lua", Err: err}
	}
	if app.cfg.Lua != "" {
		if err := state.DoFile(app.cfg.Lua); err != nil {
			return &InitError{Component: "lua " + app.cfg.Lua, Err: err}
		}
	}

	// 5. Plugins
	app.plugins = plugin.NewManager(app.console,
		plugin.WithPaths(app.cfg.PluginDirs...),
		plugin.WithLogger(app.logger.With().Str("component", "plugin").Logger()),
		plugin.WithStateOptions(
			lua.WithOutput(app.out),
			lua.WithExecutionTimeout(app.cfg.LuaTimeout),
		),
	)
	if err := app.plugins.LoadAll(); err != nil {
		app.logger.Warn().Err(err).Msg("some plugins failed to load")
	}

	// 6. Autoexec
	if app.cfg.Autoexec != "" {
		app.runScript(app.cfg.Autoexec)
	}

	// 7. Watcher
	if app.cfg.Watch && app.cfg.Autoexec != "" {
		w, err := watcher.New(watcher.WithLogger(app.logger.With().Str("component", "watcher").Logger()))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		app.watcher = w
		if err := w.Watch(app.cfg.Autoexec); err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	return nil
}

func (app *Application) loadManifest(path string) error {
	m, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	if err := app.console.InitCvars(m); err != nil {
		return fmt.Errorf("register cvars: %w", err)
	}
	if err := app.console.InitCommands(m); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	app.logger.Info().
		Str("manifest", path).
		Int("cvars", len(m.Cvars())).
		Int("commands", len(m.Commands())).
		Msg("manifest loaded")
	return nil
}

// runScript executes a script file. A missing script is reported as a
// warning since it may be created later.
func (app *Application) runScript(path string) {
	if _, err := app.scripts.ExecFile(path); err != nil {
		if errors.Is(err, script.ErrScriptNotFound) {
			app.logger.Warn().Str("script", path).Msg("script not found")
			return
		}
		app.logger.Error().Err(err).Str("script", path).Msg("script failed")
	}
}
