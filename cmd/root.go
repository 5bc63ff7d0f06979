// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/icon"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/util"
	"github.com/rickykresslein/yattee/version"
	"github.com/rickykresslein/yattee/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Record closed items into the localized watch history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnClose, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.PersistentFlags().StringP("resolver", "S", "", "Stream resolver to use for metadata lookups")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("resolver", completionResolverNames))
	lo.Must0(viper.BindPFlag(key.ResolverDefault, rootCmd.PersistentFlags().Lookup("resolver")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

func completionResolverNames(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := lo.Map(resolver.All(), func(r *resolver.Resolver, _ int) string {
		return r.Name
	})

	return names, cobra.ShellCompDirectiveNoFileComp
}

// rootCmd defines the entry point for the yattee application.
var rootCmd = &cobra.Command{
	Use:   constant.Yattee,
	Short: "A command-line media playback engine with dual decoding backends",
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
