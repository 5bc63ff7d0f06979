package inline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/util"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

// VideoPicker narrows a search result list to a single pick.
type VideoPicker func([]*video.Video) *video.Video

type Options struct {
	Out         io.Writer
	Sources     []resolver.Source
	Json        bool
	Query       string
	VideoPicker mo.Option[VideoPicker]

	// Streams resolves candidate streams for the picked videos.
	Streams bool
}

// ParseVideoPicker builds a picker from its CLI description.
func ParseVideoPicker(kind, value string) (VideoPicker, error) {
	switch kind {
	case "first":
		return func(videos []*video.Video) *video.Video {
			if len(videos) == 0 {
				return nil
			}
			return videos[0]
		}, nil
	case "last":
		return func(videos []*video.Video) *video.Video {
			if len(videos) == 0 {
				return nil
			}
			return videos[len(videos)-1]
		}, nil
	case "exact":
		return func(videos []*video.Video) *video.Video {
			for _, v := range videos {
				if v.Title == value || v.ID == value {
					return v
				}
			}
			return nil
		}, nil
	case "index":
		idx, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid index: %s", value)
		}
		return func(videos []*video.Video) *video.Video {
			if len(videos) == 0 {
				return nil
			}
			i := util.Min(idx, uint64(len(videos)-1))
			return videos[i]
		}, nil
	default:
		return nil, fmt.Errorf("unknown picker type: %s", kind)
	}
}
