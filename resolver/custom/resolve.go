package custom

import (
	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/video"
	lua "github.com/yuin/gopher-lua"
)

// Resolve returns full metadata for a video id, related ids and candidate
// streams included. Never cached: stream URLs expire.
func (r *Resolver) Resolve(videoID string) (*video.Video, error) {
	val, err := r.call(constant.VideoInfoFn, lua.LTTable, lua.LString(videoID))
	if err != nil {
		return nil, err
	}

	return videoFromTable(val.(*lua.LTable))
}

// StreamsOf repopulates the candidate streams of a video.
func (r *Resolver) StreamsOf(v *video.Video) ([]*video.Stream, error) {
	val, err := r.call(constant.VideoStreamsFn, lua.LTTable, videoToTable(r.state, v))
	if err != nil {
		return nil, err
	}

	table := val.(*lua.LTable)
	var streams []*video.Stream
	var errs []error

	table.ForEach(func(k, sv lua.LValue) {
		if k.Type() != lua.LTNumber || sv.Type() != lua.LTTable {
			return
		}

		stream, err := streamFromTable(sv.(*lua.LTable), v.ID)
		if err != nil {
			errs = append(errs, err)
			return
		}
		streams = append(streams, stream)
	})

	if len(streams) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}

	v.Streams = streams
	return streams, nil
}
