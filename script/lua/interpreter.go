// Package lua backs runtime.ScriptInterpreter with gopher-lua, the
// scripting engine SPEC_FULL.md's Domain Stack names for the Scripts
// section's "lua" language (§3, §4.8).
package lua

import (
	"fmt"
	"sync"

	luaState "github.com/yuin/gopher-lua"
)

// ElementBridge exposes the handful of runtime operations a script
// body may call back into — variable reads/writes against the global
// variable registry, without a component-scope walk — without
// Interpreter importing the
// runtime package (which itself must not import lua, to keep headless
// builds lua-free). Callers pass one in at construction.
type ElementBridge interface {
	GetVariable(name string) (string, bool)
	SetVariable(name, value string)
}

// Interpreter is the gopher-lua-backed runtime.ScriptInterpreter. One
// *lua.LState is shared across every loaded function, matching the
// single-threaded update loop's execution model — scripts never run
// concurrently with each other or with Update.
type Interpreter struct {
	mu     sync.Mutex
	state  *luaState.LState
	loaded map[string]bool
}

// New creates an interpreter and registers the kryon.get_var/set_var
// bridge functions against bridge.
func New(bridge ElementBridge) *Interpreter {
	L := luaState.NewState()
	it := &Interpreter{state: L, loaded: make(map[string]bool)}

	kryon := L.NewTable()
	L.SetField(kryon, "get_var", L.NewFunction(func(L *luaState.LState) int {
		name := L.CheckString(1)
		v, ok := bridge.GetVariable(name)
		if !ok {
			L.Push(luaState.LNil)
			return 1
		}
		L.Push(luaState.LString(v))
		return 1
	}))
	L.SetField(kryon, "set_var", L.NewFunction(func(L *luaState.LState) int {
		name := L.CheckString(1)
		val := L.CheckString(2)
		bridge.SetVariable(name, val)
		return 0
	}))
	L.SetGlobal("kryon", kryon)

	return it
}

// Load compiles and runs code under a script's name, registering
// whatever global function it defines for later Call lookup. gopher-lua
// executes top-level code immediately, the same way require()'d Lua
// modules run their body once at load time.
func (it *Interpreter) Load(name string, code []byte) error {
	it.mu.Lock()
	defer it.mu.Unlock()

	fn, err := it.state.LoadString(string(code))
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	it.state.Push(fn)
	if err := it.state.PCall(0, luaState.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	it.loaded[name] = true
	return nil
}

// Call invokes a previously loaded global function by name, passing
// args as Lua strings and returning its first return value rendered
// back to a string.
func (it *Interpreter) Call(name string, args ...string) (string, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if !it.loaded[name] {
		return "", fmt.Errorf("script %q not loaded", name)
	}
	fn := it.state.GetGlobal(name)
	if fn.Type() != luaState.LTFunction {
		return "", fmt.Errorf("%q is not callable", name)
	}

	luaArgs := make([]luaState.LValue, len(args))
	for i, a := range args {
		luaArgs[i] = luaState.LString(a)
	}
	if err := it.state.CallByParam(luaState.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, luaArgs...); err != nil {
		return "", fmt.Errorf("call %s: %w", name, err)
	}
	ret := it.state.Get(-1)
	it.state.Pop(1)
	return ret.String(), nil
}

// NotifyElementDestroyed calls the global notify_element_destroyed
// function if a script defined one (§4.8), so a script holding element
// state by id can drop it. A missing hook is not an error: most
// scripts never define one.
func (it *Interpreter) NotifyElementDestroyed(id uint32) {
	it.mu.Lock()
	defer it.mu.Unlock()

	fn := it.state.GetGlobal("notify_element_destroyed")
	if fn.Type() != luaState.LTFunction {
		return
	}
	_ = it.state.CallByParam(luaState.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, luaState.LNumber(id))
}

// Close releases the underlying Lua state.
func (it *Interpreter) Close() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.state.Close()
}
