package custom

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
)

// Helper to get string from table with default
func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return val.String()
	}
	return ""
}

func getBool(table *lua.LTable, key string) bool {
	val := table.RawGetString(key)
	if val.Type() == lua.LTBool {
		return bool(val.(lua.LBool))
	}
	return false
}

func getNumber(table *lua.LTable, key string) float64 {
	val := table.RawGetString(key)
	if val.Type() == lua.LTNumber {
		return float64(val.(lua.LNumber))
	}
	return 0
}

// Helper to get string list from table (comma-separated or table)
func getStringList(table *lua.LTable, key string) []string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return lo.Map(strings.Split(val.String(), ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
	}
	if val.Type() == lua.LTTable {
		var list []string
		val.(*lua.LTable).ForEach(func(_, v lua.LValue) {
			if v.Type() == lua.LTString {
				list = append(list, v.String())
			}
		})
		return list
	}
	return nil
}

func videoFromTable(table *lua.LTable) (*video.Video, error) {
	id := getString(table, "id")
	title := getString(table, "title")

	if id == "" || title == "" {
		return nil, fmt.Errorf("video must have id and title")
	}

	v := &video.Video{
		ID:           id,
		Title:        title,
		Author:       getString(table, "author"),
		Length:       time.Duration(getNumber(table, "length")) * time.Second,
		Live:         getBool(table, "live"),
		Related:      getStringList(table, "related"),
		ThumbnailURL: getString(table, "thumbnail"),
	}

	streamsVal := table.RawGetString("streams")
	if streamsVal.Type() == lua.LTTable {
		streamsVal.(*lua.LTable).ForEach(func(_, sv lua.LValue) {
			if sv.Type() != lua.LTTable {
				return
			}
			if stream, err := streamFromTable(sv.(*lua.LTable), v.ID); err == nil {
				v.Streams = append(v.Streams, stream)
			}
		})
	}

	return v, nil
}

func streamFromTable(table *lua.LTable, videoID string) (*video.Stream, error) {
	url := getString(table, "url")
	audioURL := getString(table, "audio_url")
	videoURL := getString(table, "video_url")

	if url == "" && (audioURL == "" || videoURL == "") {
		return nil, fmt.Errorf("stream must have url or an audio/video url pair")
	}

	kind := video.Kind(getString(table, "kind"))
	if kind == "" {
		switch {
		case audioURL != "" && videoURL != "":
			kind = video.KindAdaptive
		case strings.Contains(url, ".m3u8"):
			kind = video.KindHLS
		default:
			kind = video.KindMP4
		}
	}

	stream := &video.Stream{
		VideoID:    videoID,
		Resolution: int(getNumber(table, "resolution")),
		Kind:       kind,
		URL:        url,
		AudioURL:   audioURL,
		VideoURL:   videoURL,
		Live:       getBool(table, "live"),
	}

	headersTbl := table.RawGetString("headers")
	if headersTbl.Type() == lua.LTTable {
		stream.Headers = make(map[string]string)
		headersTbl.(*lua.LTable).ForEach(func(k, v lua.LValue) {
			stream.Headers[k.String()] = v.String()
		})
	}

	return stream, nil
}

func videoToTable(L *lua.LState, v *video.Video) *lua.LTable {
	table := L.NewTable()
	table.RawSetString("id", lua.LString(v.ID))
	table.RawSetString("title", lua.LString(v.Title))
	return table
}
