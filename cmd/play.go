// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rickykresslein/yattee/color"
	"github.com/rickykresslein/yattee/icon"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/mediasession"
	"github.com/rickykresslein/yattee/playback"
	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/query"
	"github.com/rickykresslein/yattee/queue"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/style"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolP("continue", "c", false, "Resume playback of the last played item")
	playCmd.Flags().BoolP("id", "i", false, "Treat the argument as a video id instead of a search query")
	playCmd.Flags().BoolP("choose", "C", false, "Choose the rendition interactively instead of using the quality profiles")
	playCmd.Flags().StringP("mode", "m", "", "Queue playback mode (sequential, shuffle, loop-one, related)")

	lo.Must0(playCmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(queue.Modes(), func(m queue.Mode, _ int) string {
			return string(m)
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

// playCmd resolves a video and runs a playback session until interrupted.
var playCmd = &cobra.Command{
	Use:   "play [query|video-id]",
	Short: "Resolve a video and play it",
	Long: `Resolve a search query or a video id through the configured resolver and
start a playback session with the configured decoding backend. The session
keeps running across queue navigation until the player is closed.`,
	Args:    cobra.MaximumNArgs(1),
	Example: "  yattee play \"city walk tokyo\"\n  yattee play --id dQw4w9WgXcQ",
	PreRun: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && !lo.Must(cmd.Flags().GetBool("continue")) {
			handleErr(errors.New("a query is required unless --continue is set"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		checkBackendDependencies()

		src, err := chooseSource()
		handleErr(err)

		var (
			v  *video.Video
			at = mo.None[time.Duration]()
		)

		if lo.Must(cmd.Flags().GetBool("continue")) {
			item, err := queue.LastPlayed()
			handleErr(err)
			if item == nil {
				handleErr(errors.New("nothing to continue, play something first"))
			}

			v = item.Video
			at = item.Position
		} else if lo.Must(cmd.Flags().GetBool("id")) {
			v, err = src.Resolve(args[0])
			handleErr(err)
		} else {
			_ = query.Remember(args[0], 1)
			v, err = resolver.FindClosest(src, args[0])
			handleErr(err)
		}

		q := queue.Restore()
		if modeFlag := lo.Must(cmd.Flags().GetString("mode")); modeFlag != "" {
			mode, err := queue.ParseMode(modeFlag)
			handleErr(err)
			q.SetMode(mode)
		}

		session := playback.New(q, player.NewNative(), player.NewMPV())
		session.SetStreamResolver(func(v *video.Video) (*video.Video, error) {
			if _, err := src.StreamsOf(v); err != nil {
				return nil, err
			}
			return v, nil
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		session.Start(ctx)

		if lo.Must(cmd.Flags().GetBool("choose")) {
			stream, err := chooseStream(src, v)
			handleErr(err)

			session.Play(v, at, true, false)
			session.UpgradeToStream(stream, true)
		} else {
			session.Play(v, at, true, false)
		}

		fmt.Printf(
			"%s playing %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Yellow)(v.Title),
		)

		// Mirror playback onto the OS media session until the session shuts
		// down. Run blocks while consuming the event stream.
		coordinator := mediasession.New(session)
		coordinator.Run(ctx, session.Events())
	},
}

// chooseSource returns the configured default resolver, prompting for one
// when nothing is configured.
func chooseSource() (resolver.Source, error) {
	src, err := resolver.DefaultSource()
	if err == nil {
		return src, nil
	}

	resolvers := resolver.All()
	if len(resolvers) == 0 {
		return nil, errors.New("no resolvers installed, add a .lua resolver first")
	}

	var name string
	prompt := &survey.Select{
		Message: "Select a resolver",
		Options: lo.Map(resolvers, func(r *resolver.Resolver, _ int) string {
			return r.Name
		}),
	}
	if err := survey.AskOne(prompt, &name); err != nil {
		return nil, err
	}

	r, _ := resolver.Get(name)
	viper.Set(key.ResolverDefault, name)
	return r.CreateSource()
}

// chooseStream resolves the video's streams and prompts for a rendition.
func chooseStream(src resolver.Source, v *video.Video) (*video.Stream, error) {
	streams, err := src.StreamsOf(v)
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("no streams available for %s", v.ID)
	}

	var label string
	prompt := &survey.Select{
		Message: "Select a rendition",
		Options: lo.Map(streams, func(s *video.Stream, _ int) string {
			return s.String()
		}),
	}
	if err := survey.AskOne(prompt, &label); err != nil {
		return nil, err
	}

	stream, found := lo.Find(streams, func(s *video.Stream) bool {
		return s.String() == label
	})
	if !found {
		return nil, errors.New("no rendition selected")
	}
	return stream, nil
}

// checkBackendDependencies verifies the player binaries are reachable before
// a session spawns one.
func checkBackendDependencies() {
	if _, err := exec.LookPath("mpv"); err != nil {
		printMissingDependencyError("mpv")
		os.Exit(1)
	}
}
