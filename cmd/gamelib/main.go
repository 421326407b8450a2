// Package main is the entry point for the gamelib console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/gamelib/internal/app"
	"github.com/dshills/gamelib/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	parseFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := config.NewLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Create application
	application, err := app.New(app.Options{Config: cfg, Output: os.Stdout, Logger: &logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, os.Stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// pathList collects repeatable path flags. Each value may hold a comma
// separated list.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(v string) error {
	for _, path := range strings.Split(v, ",") {
		if path = strings.TrimSpace(path); path != "" {
			*p = append(*p, path)
		}
	}
	return nil
}

// parseFlags applies command line flags on top of cfg. Only flags given on
// the command line override the environment.
func parseFlags(cfg *config.Config) {
	var (
		showVersion bool
		showHelp    bool
		manifests   pathList
		pluginDirs  pathList
		flagCfg     = *cfg
	)

	flag.StringVar(&flagCfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&flagCfg.LogFormat, "log-format", cfg.LogFormat, "Log format (console, json)")
	flag.StringVar(&flagCfg.Autoexec, "autoexec", cfg.Autoexec, "Script to execute at startup")
	flag.StringVar(&flagCfg.Autoexec, "a", cfg.Autoexec, "Script to execute at startup (shorthand)")
	flag.BoolVar(&flagCfg.Watch, "watch", cfg.Watch, "Re-execute the autoexec script when it changes")
	flag.StringVar(&flagCfg.Lua, "lua", cfg.Lua, "Lua file to run at startup")
	flag.DurationVar(&flagCfg.LuaTimeout, "lua-timeout", cfg.LuaTimeout, "Lua execution timeout (0 disables)")
	flag.Var(&manifests, "manifest", "Manifest file (repeatable, comma separated)")
	flag.Var(&manifests, "m", "Manifest file (shorthand)")
	flag.Var(&pluginDirs, "plugins", "Plugin search path (repeatable, comma separated)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gamelib - game console with cvars, commands and scripts\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gamelib [options] [manifests...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  Settings may also be given as %sLOG_LEVEL, %sAUTOEXEC and so on,\n", config.DefaultPrefix, config.DefaultPrefix)
		fmt.Fprintf(os.Stderr, "  directly or through a .env file. Flags take precedence.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gamelib game.toml                      Load a manifest\n")
		fmt.Fprintf(os.Stderr, "  gamelib -a autoexec.cfg -watch game.toml  Run and reload a script\n")
		fmt.Fprintf(os.Stderr, "  gamelib -lua init.lua game.yaml        Run a Lua file at startup\n")
		fmt.Fprintf(os.Stderr, "  gamelib -plugins ./plugins game.toml   Load Lua plugins\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gamelib %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Manifests given on the command line replace the environment's list.
	manifests = append(manifests, flag.Args()...)
	if len(manifests) > 0 {
		flagCfg.Manifests = manifests
	}

	if len(pluginDirs) > 0 {
		flagCfg.PluginDirs = pluginDirs
	}

	flagCfg.LogLevel = strings.ToLower(flagCfg.LogLevel)
	flagCfg.LogFormat = strings.ToLower(flagCfg.LogFormat)
	*cfg = flagCfg
}
