// Package main is the entry point for the yattee application.
package main

import (
	"github.com/rickykresslein/yattee/cmd"
	"github.com/rickykresslein/yattee/config"
	"github.com/rickykresslein/yattee/internal/cache"
	"github.com/rickykresslein/yattee/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Expired cache entries are pruned in the background on every start.
	go cache.CollectGarbage()

	cmd.Execute()
}
