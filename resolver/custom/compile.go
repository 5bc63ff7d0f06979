package custom

import (
	"sync"

	"github.com/rickykresslein/yattee/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// bytecodeCache holds compiled prototypes per script path so repeated loads
// of the same resolver skip parsing.
var bytecodeCache sync.Map

// compileAndRun executes a Lua script within the given state, reusing the
// cached bytecode prototype when the script was compiled before.
func compileAndRun(L *lua.LState, scriptPath string) error {
	if cached, exists := bytecodeCache.Load(scriptPath); exists {
		fn := L.NewFunctionFromProto(cached.(*lua.FunctionProto))
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	}

	file, err := filesystem.API().Open(scriptPath)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, scriptPath)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, scriptPath)
	if err != nil {
		return err
	}

	bytecodeCache.Store(scriptPath, proto)

	fn := L.NewFunctionFromProto(proto)
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}
