// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"fmt"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/rickykresslein/yattee/color"
	"github.com/rickykresslein/yattee/icon"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/queue"
	"github.com/rickykresslein/yattee/style"
	"github.com/rickykresslein/yattee/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(queueCmd)
}

// queueCmd serves as the parent command for inspecting the persisted queue.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the persisted playback queue",
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueListCmd.Flags().BoolP("raw", "r", false, "Suppress markers and positions in the output")
}

// queueListCmd displays the persisted queue entries in playback order.
var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the persisted queue entries in playback order",
	Run: func(cmd *cobra.Command, args []string) {
		raw := lo.Must(cmd.Flags().GetBool("raw"))

		q := queue.Restore()
		items := q.Items()
		if len(items) == 0 {
			if !raw {
				cmd.Println("queue is empty")
			}
			return
		}

		width := 80
		if w, _, err := util.TerminalSize(); err == nil && w > 20 {
			width = w
		}

		current, _ := q.Current().Get()
		for i, item := range items {
			title := item.Video.Title
			if item.Video.Author != "" {
				title = fmt.Sprintf("%s (%s)", title, item.Video.Author)
			}
			title = truncate.StringWithTail(title, uint(width-16), "…")

			if raw {
				cmd.Println(item.Video.ID)
				continue
			}

			marker := " "
			if item.Same(current) {
				marker = style.Fg(color.Green)(icon.Get(icon.Progress))
			}

			line := fmt.Sprintf("%s %2d. %s", marker, i, title)
			if at, ok := item.Position.Get(); ok {
				line += style.Faint(fmt.Sprintf("  @%s", at.Round(time.Second)))
			}

			cmd.Println(line)
		}

		if !raw {
			cmd.Println()
			cmd.Printf("mode: %s\n", style.Fg(color.Yellow)(string(q.Mode())))
		}
	},
}

func init() {
	queueCmd.AddCommand(queueClearCmd)
}

// queueClearCmd drops every entry from the persisted queue.
var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every entry from the persisted queue",
	Run: func(cmd *cobra.Command, args []string) {
		q := queue.Restore()
		q.Clear()
		fmt.Printf("%s queue cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

func init() {
	queueCmd.AddCommand(queueModeCmd)
}

// queueModeCmd displays or updates the default queue playback mode.
var queueModeCmd = &cobra.Command{
	Use:   "mode [mode]",
	Short: "Display or update the default queue playback mode",
	Args:  cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(queue.Modes(), func(m queue.Mode, _ int) string {
			return string(m)
		}), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Println(viper.GetString(key.QueuePlaybackMode))
			return
		}

		mode, err := queue.ParseMode(args[0])
		handleErr(err)

		viper.Set(key.QueuePlaybackMode, string(mode))
		switch err := viper.WriteConfig(); err.(type) {
		case viper.ConfigFileNotFoundError:
			handleErr(viper.SafeWriteConfig())
		default:
			handleErr(err)
		}

		fmt.Printf(
			"%s set playback mode to %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Yellow)(string(mode)),
		)
	},
}
