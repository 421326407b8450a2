// Package app wires the console, scripts, manifests, Lua, plugins and file
// watching into a line-oriented console application.
package app

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/gamelib/internal/config"
	"github.com/dshills/gamelib/internal/config/watcher"
	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/plugin"
	"github.com/dshills/gamelib/internal/plugin/lua"
	"github.com/dshills/gamelib/internal/script"
)

// Options configures the application.
type Options struct {
	// Config holds the process settings.
	Config config.Config

	// Output receives console output. Defaults to os.Stdout.
	Output io.Writer

	// Logger receives diagnostics. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Application owns a console and everything that feeds it. All console
// access happens on the goroutine calling Run.
type Application struct {
	cfg    config.Config
	out    io.Writer
	logger zerolog.Logger

	console   *console.Console
	scripts   *script.Executor
	lua       *lua.State
	luaModule *lua.ConsoleModule
	plugins   *plugin.Manager
	watcher   *watcher.Watcher

	running atomic.Bool
	closed  atomic.Bool
	quit    bool
}

// New creates and bootstraps an application.
func New(opts Options) (*Application, error) {
	app := &Application{
		cfg:    opts.Config,
		out:    opts.Output,
		logger: zerolog.Nop(),
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	if opts.Logger != nil {
		app.logger = *opts.Logger
	}

	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// Console returns the application's console.
func (app *Application) Console() *console.Console {
	return app.console
}

// Lua returns the application's Lua state.
func (app *Application) Lua() *lua.State {
	return app.lua
}

// Plugins returns the application's plugin manager.
func (app *Application) Plugins() *plugin.Manager {
	return app.plugins
}

// Shutdown releases the watcher, the plugins and the Lua state. It is safe
// to call more than once.
func (app *Application) Shutdown() {
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Error().Err(err).Msg("close watcher")
		}
	}
	if app.plugins != nil {
		if err := app.plugins.UnloadAll(); err != nil {
			app.logger.Error().Err(err).Msg("unload plugins")
		}
	}
	if app.luaModule != nil {
		app.luaModule.Cleanup()
	}
	if app.lua != nil {
		_ = app.lua.Close()
	}
	if app.scripts != nil {
		app.scripts.Unregister()
	}
	app.logger.Debug().Msg("application shut down")
}
