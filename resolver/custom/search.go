package custom

import (
	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/internal/cache"
	"github.com/rickykresslein/yattee/video"
	lua "github.com/yuin/gopher-lua"
)

// Search returns videos matching the query, metadata only. Results are
// cached per resolver so repeated searches stay off the network.
func (r *Resolver) Search(query string) ([]*video.Video, error) {
	cacheKey := cache.GenerateKey(query, r.Name())
	var cached []*video.Video
	if cache.Read(cacheKey, &cached) {
		return cached, nil
	}

	val, err := r.call(constant.SearchVideosFn, lua.LTTable, lua.LString(query))
	if err != nil {
		return nil, err
	}

	table := val.(*lua.LTable)
	var videos []*video.Video
	var errs []error

	table.ForEach(func(k, v lua.LValue) {
		if k.Type() != lua.LTNumber || v.Type() != lua.LTTable {
			return
		}

		found, err := videoFromTable(v.(*lua.LTable))
		if err != nil {
			errs = append(errs, err)
			return
		}
		// Search results never carry streams; those expire and are
		// resolved right before playback.
		found.Streams = nil
		videos = append(videos, found)
	})

	if len(videos) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}

	if len(videos) > 0 {
		_ = cache.Write(cacheKey, videos)
	}

	return videos, nil
}
