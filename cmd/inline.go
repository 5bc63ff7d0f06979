// Package cmd implements the command-line interface for yattee.
package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/inline"
	"github.com/rickykresslein/yattee/query"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "The search query to execute for video discovery")
	inlineCmd.Flags().StringP("video", "V", "", "Criteria for selecting a specific video from the search results")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("streams", "s", false, "Resolve and include candidate streams for the selected videos")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(inlineCmd.MarkFlagRequired("query"))

	_ = inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Initialize the application for automated execution and data extraction using inline mode.

Video selectors:
  first - first video in the list
  last - last video in the list
  exact=[title or id] - select by exact title or video id
  index=[number] - select video by index (starting from 0)

When using the json flag the video selector may be omitted. That way, every
search result is included in the output.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		asJson, _ := cmd.Flags().GetBool("json")

		if !asJson {
			lo.Must0(cmd.MarkFlagRequired("video"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		src, err := resolver.DefaultSource()
		handleErr(err)

		var writer io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			writer, err = filesystem.API().Create(output)
			handleErr(err)
		}

		picker := mo.None[inline.VideoPicker]()
		if videoFlag := lo.Must(cmd.Flags().GetString("video")); videoFlag != "" {
			kind, value, _ := strings.Cut(videoFlag, "=")
			fn, err := inline.ParseVideoPicker(kind, value)
			handleErr(err)
			picker = mo.Some(fn)
		}

		searchQuery := lo.Must(cmd.Flags().GetString("query"))
		_ = query.Remember(searchQuery, 1)

		handleErr(inline.Run(&inline.Options{
			Out:         writer,
			Sources:     []resolver.Source{src},
			Json:        lo.Must(cmd.Flags().GetBool("json")),
			Query:       searchQuery,
			VideoPicker: picker,
			Streams:     lo.Must(cmd.Flags().GetBool("streams")),
		}))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates the JSON schema for structured inline mode output.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for structured inline mode output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "video", "stream", "result", "output":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		schema := reflector.Reflect(&inline.Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
