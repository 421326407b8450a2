// Package plugin discovers and runs Lua plugins against a console.
//
// # Layout
//
// A plugin is a directory under one of the search paths:
//
//	plugins/
//	├── scoreboard/
//	│   ├── plugin.toml   (optional manifest)
//	│   ├── init.lua      (entry point)
//	│   └── cvars.toml    (optional cvar and command declarations)
//	└── motd.lua          (single-file plugin)
//
// The manifest names the plugin and its entry point:
//
//	name = "scoreboard"
//	version = "1.2.0"
//	description = "Tracks frags."
//	main = "init.lua"
//	declares = "cvars.toml"
//
//	[config]
//	limit = 20
//
// Directories without a manifest load init.lua under the directory name.
//
// # Lifecycle
//
// Loading a plugin registers its declared cvars and commands, creates a Lua
// state with the console module installed and runs the entry point.
// Activating calls the optional global setup(config). Deactivating calls the
// optional global teardown(). Unloading removes every listener the plugin
// added and closes its state. Declared cvars and commands stay registered,
// since the console has no way to remove them.
//
// # Events
//
// The Manager reports lifecycle changes as Event values through an
// event.Dispatcher:
//
//	m.Subscribe(func(e plugin.Event) {
//	    log.Printf("%s %s", e.Plugin, e.Type)
//	})
//
// # Thread Safety
//
// Manager and Host are not safe for concurrent use. Drive them from the
// goroutine that owns the console.
package plugin
