package lua

import (
	"math"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gamelib/internal/command"
	"github.com/dshills/gamelib/internal/cvar"
)

// Bridge converts values between Go and Lua.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value. Integral numbers become
// int64, other numbers float64. Tables with keys 1..n become []any, other
// tables map[string]any. Functions and cycles become nil.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGo(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = b.toGo(v, visited)
	})
	return m
}

// ToLuaValue converts a Go value to a Lua value. Cvars convert to their
// value and commands to a table with name and args fields.
func (b *Bridge) ToLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		return b.StringsToTable(val)
	case []any:
		t := b.L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, b.ToLuaValue(item))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, item := range val {
			t.RawSetString(k, b.ToLuaValue(item))
		}
		return t
	case cvar.Cvar:
		return b.CvarValue(val)
	case command.Command:
		t := b.L.NewTable()
		t.RawSetString("name", lua.LString(val.Name()))
		t.RawSetString("args", b.StringsToTable(val.Args()))
		return t
	default:
		ud := b.L.NewUserData()
		ud.Value = v
		return ud
	}
}

// CvarValue returns the value of c as a Lua number or string.
func (b *Bridge) CvarValue(c cvar.Cvar) lua.LValue {
	switch c.Kind() {
	case cvar.Integer:
		return lua.LNumber(c.Int())
	case cvar.Float:
		return lua.LNumber(c.Float())
	default:
		return lua.LString(c.String())
	}
}

// StringsToTable converts a string slice to a Lua array.
func (b *Bridge) StringsToTable(s []string) *lua.LTable {
	t := b.L.NewTable()
	for i, v := range s {
		t.RawSetInt(i+1, lua.LString(v))
	}
	return t
}

// ToArg formats a Lua value as a command argument.
func ToArg(lv lua.LValue) string {
	if n, ok := lv.(lua.LNumber); ok {
		return strconv.FormatFloat(float64(n), 'f', -1, 64)
	}
	return lv.String()
}
