// Package inline provides the implementation for the application's
// non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"os"

	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/video"
)

func Run(options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	// Search across every requested resolver.
	var videos []*video.Video
	for _, src := range options.Sources {
		found, err := src.Search(options.Query)
		if err != nil {
			return fmt.Errorf("search failed for %s: %w", src.Name(), err)
		}
		videos = append(videos, found...)
	}

	// Narrow to a single result when a picker is defined.
	var selected []*video.Video
	if picker, ok := options.VideoPicker.Get(); ok {
		if choice := picker(videos); choice != nil {
			selected = []*video.Video{choice}
		}
	} else {
		selected = videos
	}

	if len(selected) == 0 {
		if options.Json {
			return writeJson(options.Out, nil, options)
		}
		return nil
	}

	// Resolve streams for the selection when requested.
	if options.Streams {
		for _, v := range selected {
			src := sourceOf(options.Sources, v)
			if src == nil {
				continue
			}
			if _, err := src.StreamsOf(v); err != nil {
				log.Warnf("failed to resolve streams for %s: %v", v.ID, err)
			}
		}
	}

	if options.Json {
		return writeJson(options.Out, selected, options)
	}

	for _, v := range selected {
		if options.Streams && len(v.Streams) > 0 {
			for _, s := range v.Streams {
				fmt.Fprintln(options.Out, s.Target())
			}
			continue
		}
		fmt.Fprintln(options.Out, v.ID)
	}

	return nil
}

// sourceOf finds the resolver that produced a search result. With a single
// source configured (the common case) that source is returned directly.
func sourceOf(sources []resolver.Source, _ *video.Video) resolver.Source {
	if len(sources) == 0 {
		return nil
	}
	return sources[0]
}

func writeJson(out io.Writer, videos []*video.Video, options *Options) error {
	data, err := asJson(videos, options)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
