// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rickykresslein/yattee/color"
	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/icon"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/resolver/custom"
	"github.com/rickykresslein/yattee/style"
	"github.com/rickykresslein/yattee/util"
	"github.com/rickykresslein/yattee/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolversCmd)
}

// resolversCmd provides a parent command for managing stream resolvers.
var resolversCmd = &cobra.Command{
	Use:   "resolvers",
	Short: "Manage installed stream resolvers",
}

func init() {
	resolversCmd.AddCommand(resolversListCmd)

	resolversListCmd.Flags().BoolP("raw", "r", false, "Suppress header and metadata descriptions in the output")
	resolversListCmd.SetOut(os.Stdout)
}

// resolversListCmd displays a summary of all registered stream resolvers.
var resolversListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display a collection of all registered stream resolvers",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render

		if printHeader {
			cmd.Println(headerStyle("Custom:"))
		}

		for _, r := range resolver.Customs() {
			cmd.Println(r.Name)
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversRemoveCmd)

	resolversRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Specify the name of the resolver(s) to uninstall")
	lo.Must0(resolversRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		files, err := filesystem.API().ReadDir(where.Resolvers())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return lo.FilterMap(files, func(item os.FileInfo, _ int) (string, bool) {
			name := item.Name()
			if !strings.HasSuffix(name, ".lua") {
				return "", false
			}

			return util.FileStem(filepath.Base(name)), true
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

// resolversRemoveCmd uninstalls custom Lua resolvers.
var resolversRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Permanently uninstall specified resolvers from the system",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Resolvers(), name+".lua")
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s successfully removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	resolversCmd.AddCommand(resolversRunCmd)
}

// resolversRunCmd loads a local Lua resolver file for development and debugging.
var resolversRunCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Load and validate a local Lua resolver file",
	Long: `Initialize the Lua 5.1 virtual machine to load a resolver script and verify
it defines the required functions. Useful for resolver development.`,
	Args:    cobra.ExactArgs(1),
	Example: "  yattee resolvers run ./test.lua",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := custom.LoadSource(args[0])
		handleErr(err)

		fmt.Printf(
			"%s %s is a valid resolver\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Yellow)(src.Name()),
		)
	},
}
