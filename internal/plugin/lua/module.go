package lua

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/console"
	"github.com/dshills/gamelib/internal/event"
)

// GlobalName is the Lua global the console module is installed as.
const GlobalName = "console"

// ConsoleModule exposes a console to Lua as the global "console" table:
//
//	console.get(name)            -> value or nil
//	console.set(name, value)     -> true, or false and a message
//	console.exists(name)         -> bool
//	console.exec(line)           parses line as if typed at the console
//	console.dispatch(name, ...)  -> bool, whether the command was accepted
//	console.on_cvar(name, fn)    -> key; fn(name, value)
//	console.on_command(name, fn) -> key; fn(name, args)
//	console.remove(key)          -> bool
//	console.names()              -> sorted cvar names
//	console.commands()           -> sorted command names
//
// Listeners added from Lua stay registered until removed or Cleanup runs.
// They are owned by a console object the module adds on Register, so Lua
// can only remove its own listeners. Listener calls that start from Go run
// under the state's execution timeout.
type ConsoleModule struct {
	console *console.Console
	logger  zerolog.Logger

	state  *State
	L      *lua.LState
	bridge *Bridge

	// owner is the console object holding the Lua listeners. It is only
	// valid while attached is set.
	owner    console.ObjectID
	attached bool
}

// listenerOwner is the console object a ConsoleModule registers under.
type listenerOwner struct {
	console.Base
}

// ModuleOption configures a ConsoleModule.
type ModuleOption func(*ConsoleModule)

// WithLogger sets the logger for failing Lua callbacks.
func WithLogger(logger zerolog.Logger) ModuleOption {
	return func(m *ConsoleModule) {
		m.logger = logger
	}
}

// NewConsoleModule creates a module bound to c.
func NewConsoleModule(c *console.Console, opts ...ModuleOption) *ConsoleModule {
	m := &ConsoleModule{
		console: c,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *ConsoleModule) Name() string {
	return GlobalName
}

// Register installs the module into the state.
func (m *ConsoleModule) Register(s *State) error {
	if s.IsClosed() {
		return ErrStateClosed
	}
	if !m.attached {
		owner, err := console.AddObject(m.console, func(b console.Base) *listenerOwner {
			return &listenerOwner{Base: b}
		})
		if err != nil {
			return fmt.Errorf("register %s module: %w", GlobalName, err)
		}
		m.owner, m.attached = owner, true
	}

	L := s.LuaState()
	m.state = s
	m.L = L
	m.bridge = NewBridge(L)

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get":        m.get,
		"set":        m.set,
		"exists":     m.exists,
		"exec":       m.exec,
		"dispatch":   m.dispatch,
		"on_cvar":    m.onCvar,
		"on_command": m.onCommand,
		"remove":     m.remove,
		"names":      m.names,
		"commands":   m.commands,
	})
	s.SetGlobal(GlobalName, mod)
	return nil
}

// ListenerCount returns the number of listeners registered from Lua.
func (m *ConsoleModule) ListenerCount() int {
	if !m.attached {
		return 0
	}
	return len(m.console.OwnedListeners(m.owner))
}

// Cleanup removes every listener registered from Lua and uninstalls the
// global. Adding listeners through a retained reference to the table fails
// with ErrModuleClosed until the module is registered again.
func (m *ConsoleModule) Cleanup() {
	if m.attached {
		m.console.RemoveObject(m.owner)
		m.attached = false
	}

	if m.L != nil && !m.L.IsClosed() {
		m.L.SetGlobal(GlobalName, lua.LNil)
	}
	m.L = nil
	m.state = nil
}

// get(name) -> value or nil
func (m *ConsoleModule) get(L *lua.LState) int {
	name := L.CheckString(1)
	v, err := m.console.Cvar(name)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(m.bridge.CvarValue(v))
	return 1
}

// set(name, value) -> true | false, message
func (m *ConsoleModule) set(L *lua.LState) int {
	name := L.CheckString(1)
	value := L.CheckAny(2)

	var goValue any
	switch v := value.(type) {
	case lua.LNumber:
		goValue = float64(v)
	case lua.LString:
		goValue = string(v)
	default:
		goValue = m.bridge.ToGoValue(v)
	}

	if err := m.console.TrySetCvar(name, goValue); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// exists(name) -> bool
func (m *ConsoleModule) exists(L *lua.LState) int {
	L.Push(lua.LBool(m.console.CvarExists(L.CheckString(1))))
	return 1
}

// exec(line)
func (m *ConsoleModule) exec(L *lua.LState) int {
	m.console.Parse(L.CheckString(1))
	return 0
}

// dispatch(name, ...) -> bool
func (m *ConsoleModule) dispatch(L *lua.LState) int {
	name := L.CheckString(1)
	args := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, ToArg(L.Get(i)))
	}

	cmd := command.New(name, args...)
	ok := m.console.CommandMatchesRequirements(cmd)
	m.console.DispatchCommand(cmd)
	L.Push(lua.LBool(ok))
	return 1
}

// on_cvar(name, fn) -> key
func (m *ConsoleModule) onCvar(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if m.L == nil {
		L.RaiseError("console.on_cvar: %s", ErrModuleClosed.Error())
		return 0
	}

	key, err := m.console.AddOwnedCvarListener(m.owner, name, func(e console.CvarChanged) {
		m.call(fn, "cvar", name, lua.LString(e.Cvar.Name()), m.bridge.CvarValue(e.Cvar))
	})
	if err != nil {
		L.RaiseError("console.on_cvar: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(key))
	return 1
}

// on_command(name, fn) -> key
func (m *ConsoleModule) onCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if m.L == nil {
		L.RaiseError("console.on_command: %s", ErrModuleClosed.Error())
		return 0
	}

	key, err := m.console.AddOwnedCommandListener(m.owner, name, func(e console.CommandSent) {
		m.call(fn, "command", name, lua.LString(e.Command.Name()), m.bridge.StringsToTable(e.Command.Args()))
	})
	if err != nil {
		L.RaiseError("console.on_command: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(key))
	return 1
}

// remove(key) -> bool
// Only live listeners registered from Lua can be removed. A key that Go code
// removed and the dispatcher handed out again belongs to another owner.
func (m *ConsoleModule) remove(L *lua.LState) int {
	key := event.Key(L.CheckInt64(1))
	if !m.attached || !slices.Contains(m.console.OwnedListeners(m.owner), key) {
		L.Push(lua.LFalse)
		return 1
	}
	m.console.RemoveOwnedListener(m.owner, key)
	L.Push(lua.LTrue)
	return 1
}

// names() -> {name, ...}
func (m *ConsoleModule) names(L *lua.LState) int {
	L.Push(m.bridge.StringsToTable(m.console.CvarNames()))
	return 1
}

// commands() -> {name, ...}
func (m *ConsoleModule) commands(L *lua.LState) int {
	infos := m.console.CommandInfos()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	slices.Sort(names)
	L.Push(m.bridge.StringsToTable(names))
	return 1
}

// call runs a Lua listener. Errors are logged, not raised, since the
// dispatch that triggered the listener may have started in Go.
func (m *ConsoleModule) call(fn *lua.LFunction, kind, name string, args ...lua.LValue) {
	if m.L == nil || m.state == nil {
		return
	}
	err := m.state.guard(func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Error().Err(err).Str(kind, name).Msg("lua listener failed")
	}
}
