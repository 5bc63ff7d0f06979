// Package custom provides the bridge between the Go core and Lua-based
// resolver scripts.
package custom

import (
	"fmt"

	libs "github.com/metafates/mangal-lua-libs"
	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/util"
	lua "github.com/yuin/gopher-lua"
)

// IDfromName generates a canonical resolver identifier for a given Lua script basename.
func IDfromName(name string) string {
	return name + " custom"
}

// LoadSource initializes a resolver by executing and validating a Lua script.
func LoadSource(path string) (*Resolver, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerTLSClient(state)

	if err := compileAndRun(state, path); err != nil {
		return nil, err
	}

	name := util.FileStem(path)

	required := []string{
		constant.SearchVideosFn,
		constant.VideoInfoFn,
		constant.VideoStreamsFn,
	}
	for _, fn := range required {
		if state.GetGlobal(fn).Type() != lua.LTFunction {
			return nil, fmt.Errorf("function %s is required but not defined in %s", fn, name)
		}
	}

	return &Resolver{name: name, state: state}, nil
}
