package resolver

import (
	"fmt"

	"github.com/rickykresslein/yattee/key"
	"github.com/spf13/viper"
)

// DefaultSource instantiates the configured default resolver.
func DefaultSource() (Source, error) {
	name := viper.GetString(key.ResolverDefault)
	if name == "" {
		return nil, fmt.Errorf("no default resolver configured, set %s", key.ResolverDefault)
	}

	r, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown resolver %q", name)
	}

	return r.CreateSource()
}
