// Package lua embeds a Lua runtime for console scripting.
//
// This package wraps the gopher-lua library to provide:
//   - A Lua state with only the safe standard libraries
//   - Go-Lua type conversion for cvars and commands
//   - The console module, a Lua view of a console.Console
//
// # State
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
// The io, os, debug and package libraries are not opened, and the base
// library's file loaders are removed. Lua's print writes to the writer given
// with WithOutput.
//
// # Console Module
//
//	mod := lua.NewConsoleModule(c)
//	if err := mod.Register(state); err != nil {
//	    return err
//	}
//	defer mod.Cleanup()
//
//	err = state.DoString(`
//	    console.on_cvar("volume", function(name, value)
//	        print(name .. " is now " .. value)
//	    end)
//	    console.set("volume", 0.5)
//	`)
//
// Lua listeners run synchronously inside the console dispatch, on the
// goroutine that changed the cvar or sent the command. The console and the
// state must be owned by the same goroutine.
package lua
