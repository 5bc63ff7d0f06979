// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rickykresslein/yattee/auth"
	"github.com/rickykresslein/yattee/color"
	"github.com/rickykresslein/yattee/icon"
	"github.com/rickykresslein/yattee/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd manages the resolver account token stored in the system keyring.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the resolver account token stored in the system keyring",
}

func init() {
	authCmd.AddCommand(authSetCmd)
}

// authSetCmd prompts for and stores a resolver account token.
var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a resolver account token in the system keyring",
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		handleErr(survey.AskOne(&survey.Password{Message: "Resolver token"}, &token))

		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}

// authStatusCmd reports whether a resolver account token is present.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a resolver account token is present",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := auth.GetToken(); err != nil {
			fmt.Printf("%s no token stored\n", style.Fg(color.Red)(icon.Get(icon.Fail)))
			return
		}

		fmt.Printf("%s token present\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

// authDeleteCmd removes the resolver account token from the system keyring.
var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the resolver account token from the system keyring",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
