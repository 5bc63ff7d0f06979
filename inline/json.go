package inline

import (
	"encoding/json"

	"github.com/rickykresslein/yattee/video"
)

type Result struct {
	// Resolver is the name of the source that produced the video.
	Resolver string `json:"resolver"`
	// Video is the video object from the resolver.
	Video *video.Video `json:"video"`
}

type Output struct {
	Query  string    `json:"query"`
	Result []*Result `json:"result"`
}

func asJson(videos []*video.Video, options *Options) ([]byte, error) {
	var result = make([]*Result, len(videos))
	for i, v := range videos {
		var name string
		if src := sourceOf(options.Sources, v); src != nil {
			name = src.Name()
		}

		result[i] = &Result{
			Resolver: name,
			Video:    v,
		}
	}

	return json.Marshal(&Output{
		Query:  options.Query,
		Result: result,
	})
}
