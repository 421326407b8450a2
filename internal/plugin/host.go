package plugin

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gamelib/internal/config/loader"
	"github.com/dshills/gamelib/internal/console"
	plua "github.com/dshills/gamelib/internal/plugin/lua"
)

// Lua globals a plugin may define.
const (
	SetupFunc    = "setup"
	TeardownFunc = "teardown"
)

// Host manages a single plugin's Lua state and lifecycle.
type Host struct {
	name     string
	manifest *Manifest
	console  *console.Console
	logger   zerolog.Logger

	stateOpts []plua.StateOption

	state  *plua.State
	module *plua.ConsoleModule

	status State
	err    error
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostLogger sets the logger for the plugin's Lua listeners.
func WithHostLogger(logger zerolog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithHostStateOptions sets the options used to create the plugin's Lua
// state.
func WithHostStateOptions(opts ...plua.StateOption) HostOption {
	return func(h *Host) {
		h.stateOpts = opts
	}
}

// NewHost creates a host for the plugin described by manifest.
func NewHost(c *console.Console, manifest *Manifest, opts ...HostOption) (*Host, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}

	h := &Host{
		name:     manifest.Name,
		manifest: manifest,
		console:  c,
		logger:   zerolog.Nop(),
		status:   StateUnloaded,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name returns the plugin name.
func (h *Host) Name() string {
	return h.name
}

// Manifest returns the plugin manifest.
func (h *Host) Manifest() *Manifest {
	return h.manifest
}

// State returns the current plugin state.
func (h *Host) State() State {
	return h.status
}

// Err returns the error that put the plugin in StateError.
func (h *Host) Err() error {
	return h.err
}

// ListenerCount returns the number of console listeners the plugin holds.
func (h *Host) ListenerCount() int {
	if h.module == nil {
		return 0
	}
	return h.module.ListenerCount()
}

// Load registers the plugin's declarations, creates its Lua state and runs
// the entry point.
func (h *Host) Load() error {
	if h.status.IsUsable() {
		return ErrAlreadyLoaded
	}

	if err := h.declare(); err != nil {
		return h.fail(err)
	}

	state, err := plua.NewState(h.stateOpts...)
	if err != nil {
		return h.fail(err)
	}
	module := plua.NewConsoleModule(h.console, plua.WithLogger(h.logger))
	if err := module.Register(state); err != nil {
		_ = state.Close()
		return h.fail(err)
	}
	h.state = state
	h.module = module

	if err := state.DoFile(h.manifest.MainPath()); err != nil {
		h.release()
		return h.fail(fmt.Errorf("run %s: %w", h.manifest.Main, err))
	}

	h.status = StateLoaded
	h.err = nil
	return nil
}

func (h *Host) declare() error {
	path := h.manifest.DeclaresPath()
	if path == "" {
		return nil
	}
	m, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	return errors.Join(h.console.InitCvars(m), h.console.InitCommands(m))
}

// Activate calls the plugin's setup(config) function if it defines one.
func (h *Host) Activate() error {
	if h.status != StateLoaded {
		return ErrNotLoaded
	}

	bridge := plua.NewBridge(h.state.LuaState())
	if err := h.callOptional(SetupFunc, bridge.ToLuaValue(h.manifest.Config)); err != nil {
		h.release()
		return h.fail(err)
	}

	h.status = StateActive
	return nil
}

// Deactivate calls the plugin's teardown() function if it defines one.
// The plugin stays loaded.
func (h *Host) Deactivate() error {
	if h.status != StateActive {
		return nil
	}
	h.status = StateLoaded
	return h.callOptional(TeardownFunc)
}

// callOptional calls a global function if the plugin defines one.
func (h *Host) callOptional(name string, args ...lua.LValue) error {
	if h.state.GetGlobal(name).Type() != lua.LTFunction {
		return nil
	}
	if _, err := h.state.Call(name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Unload deactivates the plugin, removes its listeners and closes its Lua
// state. Teardown errors are returned after the state is released.
func (h *Host) Unload() error {
	if !h.status.IsUsable() {
		h.status = StateUnloaded
		return nil
	}

	err := h.Deactivate()
	h.release()
	h.status = StateUnloaded
	h.err = nil
	return err
}

// Reload unloads and loads the plugin, restoring its active state.
func (h *Host) Reload() error {
	wasActive := h.status == StateActive

	if err := h.Unload(); err != nil {
		h.logger.Warn().Err(err).Str("plugin", h.name).Msg("teardown failed during reload")
	}
	if err := h.Load(); err != nil {
		return err
	}
	if wasActive {
		return h.Activate()
	}
	return nil
}

func (h *Host) release() {
	if h.module != nil {
		h.module.Cleanup()
		h.module = nil
	}
	if h.state != nil {
		_ = h.state.Close()
		h.state = nil
	}
}

func (h *Host) fail(err error) error {
	h.status = StateError
	h.err = err
	return err
}
