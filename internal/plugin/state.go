package plugin

// State represents the lifecycle state of a plugin.
type State int

// Plugin states.
const (
	// StateUnloaded - Plugin is not loaded.
	StateUnloaded State = iota

	// StateLoaded - Plugin code ran but setup has not been called.
	StateLoaded

	// StateActive - Plugin setup ran.
	StateActive

	// StateError - Plugin failed to load or activate.
	StateError
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// IsUsable returns true if the plugin's Lua state is open.
func (s State) IsUsable() bool {
	return s == StateLoaded || s == StateActive
}
