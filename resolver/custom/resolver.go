package custom

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Resolver is a Lua-backed metadata resolver. A Resolver owns its Lua state;
// it is not safe for concurrent use.
type Resolver struct {
	name  string
	state *lua.LState
}

// Name returns the resolver display name.
func (r *Resolver) Name() string {
	return r.name
}

// ID returns the canonical resolver identifier.
func (r *Resolver) ID() string {
	return IDfromName(r.name)
}

// call executes a global Lua function safely.
func (r *Resolver) call(fn string, retType lua.LValueType, args ...lua.LValue) (lua.LValue, error) {
	luaFn := r.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is not defined", fn)
	}

	err := r.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return nil, err
	}

	retval := r.state.Get(-1)
	r.state.Pop(1)

	if retval.Type() != retType {
		return nil, fmt.Errorf("%s returned %s, expected %s", fn, retval.Type(), retType)
	}

	return retval, nil
}
