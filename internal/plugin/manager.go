package plugin

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/event"
	plua "github.com/dshills/gamelib/internal/plugin/lua"
)

// EventType is the type of a manager event.
type EventType int

const (
	// EventPluginLoaded is emitted when a plugin is loaded.
	EventPluginLoaded EventType = iota
	// EventPluginUnloaded is emitted when a plugin is unloaded.
	EventPluginUnloaded
	// EventPluginActivated is emitted when a plugin's setup ran.
	EventPluginActivated
	// EventPluginReloaded is emitted when a plugin is reloaded.
	EventPluginReloaded
	// EventPluginError is emitted when a plugin fails.
	EventPluginError
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventPluginLoaded:
		return "loaded"
	case EventPluginUnloaded:
		return "unloaded"
	case EventPluginActivated:
		return "activated"
	case EventPluginReloaded:
		return "reloaded"
	case EventPluginError:
		return "error"
	default:
		return "unknown"
	}
}

// Event reports a plugin lifecycle change.
type Event struct {
	Type   EventType
	Plugin string
	Err    error
}

// Manager manages the lifecycle of all plugins bound to one console.
type Manager struct {
	console *console.Console
	loader  *Loader
	logger  zerolog.Logger

	// Loaded plugins by name
	plugins map[string]*Host

	// Plugin load order (for deterministic iteration)
	loadOrder []string

	dispatcher   *event.Dispatcher
	stateOpts    []plua.StateOption
	autoActivate bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPaths sets the plugin search paths.
func WithPaths(paths ...string) ManagerOption {
	return func(m *Manager) {
		m.loader = NewLoader(paths...)
	}
}

// WithLogger sets the manager logger. Hosts log through it with a plugin
// field.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDispatcher makes the manager emit its events through d.
func WithDispatcher(d *event.Dispatcher) ManagerOption {
	return func(m *Manager) {
		if d != nil {
			m.dispatcher = d
		}
	}
}

// WithStateOptions sets the options for every plugin's Lua state.
func WithStateOptions(opts ...plua.StateOption) ManagerOption {
	return func(m *Manager) {
		m.stateOpts = opts
	}
}

// WithAutoActivate controls whether Load also activates. Defaults to true.
func WithAutoActivate(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.autoActivate = enabled
	}
}

// NewManager creates a plugin manager for c.
func NewManager(c *console.Console, opts ...ManagerOption) *Manager {
	m := &Manager{
		console:      c,
		loader:       NewLoader(),
		logger:       zerolog.Nop(),
		plugins:      make(map[string]*Host),
		dispatcher:   event.NewDispatcher(),
		autoActivate: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Discover searches for available plugins.
func (m *Manager) Discover() ([]*Info, error) {
	return m.loader.Discover()
}

// Load loads a plugin by name, activating it unless auto activation is
// off. A plugin that loads but fails to activate stays registered in
// StateError.
func (m *Manager) Load(name string) (*Host, error) {
	if _, exists := m.plugins[name]; exists {
		return nil, fmt.Errorf("plugin %q: %w", name, ErrAlreadyLoaded)
	}

	info, err := m.loader.FindPlugin(name)
	if err != nil {
		return nil, err
	}

	host, err := NewHost(m.console, info.Manifest,
		WithHostLogger(m.logger.With().Str("plugin", info.Name).Logger()),
		WithHostStateOptions(m.stateOpts...),
	)
	if err != nil {
		return nil, err
	}

	if err := host.Load(); err != nil {
		m.emit(Event{Type: EventPluginError, Plugin: name, Err: err})
		return nil, fmt.Errorf("load plugin %q: %w", name, err)
	}

	m.plugins[name] = host
	m.loadOrder = append(m.loadOrder, name)
	m.emit(Event{Type: EventPluginLoaded, Plugin: name})

	if m.autoActivate {
		if err := host.Activate(); err != nil {
			m.emit(Event{Type: EventPluginError, Plugin: name, Err: err})
			return host, fmt.Errorf("activate plugin %q: %w", name, err)
		}
		m.emit(Event{Type: EventPluginActivated, Plugin: name})
	}

	return host, nil
}

// LoadAll discovers and loads every plugin. Failures are joined; the
// remaining plugins still load.
func (m *Manager) LoadAll() error {
	plugins, err := m.loader.Discover()
	errs := []error{err}

	for _, info := range plugins {
		if info.Err != nil {
			errs = append(errs, fmt.Errorf("plugin %q: %w", info.Name, info.Err))
			continue
		}
		if _, exists := m.plugins[info.Name]; exists {
			continue
		}
		if _, err := m.Load(info.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Activate activates a loaded plugin.
func (m *Manager) Activate(name string) error {
	host, exists := m.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	if err := host.Activate(); err != nil {
		m.emit(Event{Type: EventPluginError, Plugin: name, Err: err})
		return err
	}
	m.emit(Event{Type: EventPluginActivated, Plugin: name})
	return nil
}

// Unload unloads a plugin by name.
func (m *Manager) Unload(name string) error {
	host, exists := m.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	delete(m.plugins, name)
	m.removeFromLoadOrder(name)

	err := host.Unload()
	if err != nil {
		m.emit(Event{Type: EventPluginError, Plugin: name, Err: err})
	}
	m.emit(Event{Type: EventPluginUnloaded, Plugin: name})
	return err
}

// UnloadAll unloads all plugins in reverse load order.
func (m *Manager) UnloadAll() error {
	names := slices.Clone(m.loadOrder)
	slices.Reverse(names)

	var errs []error
	for _, name := range names {
		if err := m.Unload(name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Reload reloads a plugin's code, keeping its place in the load order.
func (m *Manager) Reload(name string) error {
	host, exists := m.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %q: %w", name, ErrPluginNotFound)
	}
	if err := host.Reload(); err != nil {
		m.emit(Event{Type: EventPluginError, Plugin: name, Err: err})
		return fmt.Errorf("reload plugin %q: %w", name, err)
	}
	m.emit(Event{Type: EventPluginReloaded, Plugin: name})
	return nil
}

// Get returns a loaded plugin by name.
func (m *Manager) Get(name string) (*Host, bool) {
	host, exists := m.plugins[name]
	return host, exists
}

// List returns all loaded plugins in load order.
func (m *Manager) List() []*Host {
	result := make([]*Host, 0, len(m.loadOrder))
	for _, name := range m.loadOrder {
		result = append(result, m.plugins[name])
	}
	return result
}

// Count returns the number of loaded plugins.
func (m *Manager) Count() int {
	return len(m.plugins)
}

// Loader returns the underlying loader.
func (m *Manager) Loader() *Loader {
	return m.loader
}

// Subscribe registers fn for manager events.
func (m *Manager) Subscribe(fn func(Event)) (event.Key, error) {
	return event.Register(m.dispatcher, fn)
}

// Unsubscribe removes a handler added with Subscribe.
func (m *Manager) Unsubscribe(key event.Key) {
	m.dispatcher.Unregister(key)
}

func (m *Manager) emit(e Event) {
	ev := m.logger.Debug()
	if e.Err != nil {
		ev = m.logger.Warn().Err(e.Err)
	}
	ev.Str("plugin", e.Plugin).Stringer("event", e.Type).Msg("plugin event")

	event.Dispatch(m.dispatcher, e)
}

// removeFromLoadOrder removes a name from the load order slice.
func (m *Manager) removeFromLoadOrder(name string) {
	if i := slices.Index(m.loadOrder, name); i >= 0 {
		m.loadOrder = slices.Delete(m.loadOrder, i, i+1)
	}
}
