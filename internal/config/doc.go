// Package config provides process configuration for gamelib.
//
// Settings come from environment variables with the GAMELIB_ prefix. A
// .env file is read first if present; variables already set in the
// environment take precedence over it.
//
//	GAMELIB_LOG_LEVEL    debug, info, warn or error (default info)
//	GAMELIB_LOG_FORMAT   console or json (default console)
//	GAMELIB_MANIFESTS    comma-separated manifest files
//	GAMELIB_AUTOEXEC     script executed at startup
//	GAMELIB_WATCH        re-execute the autoexec script when it changes
//	GAMELIB_LUA          Lua file run at startup
//	GAMELIB_LUA_TIMEOUT  bound on a single Lua execution (default 5s)
//	GAMELIB_PLUGIN_DIRS  comma-separated Lua plugin search paths
//
// # Sub-packages
//
//   - loader: Manifest loading (TOML, YAML)
//   - watcher: File watching for script reload
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logger, err := config.NewLogger(cfg, os.Stderr)
package config
