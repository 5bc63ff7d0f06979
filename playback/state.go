package playback

import (
	"time"

	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/queue"
	"github.com/rickykresslein/yattee/segments"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

// State is the published playback-session state. It is owned by the session's
// coordination goroutine; Snapshot hands out copies for external readers.
type State struct {
	Item    *queue.Item
	Stream  *video.Stream
	Backend player.Kind

	Rate        float64
	AspectRatio float64

	// PreservedTime is the position to resume into on the next load.
	PreservedTime mo.Option[time.Duration]

	Err error

	Seeking          bool
	PictureInPicture bool
	FullScreen       bool
	MusicMode        bool

	AvailableStreams []*video.Stream
	Segments         []segments.Segment
	Dislikes         int
}

// Video returns the current item's video, nil when nothing is loaded.
func (s *State) Video() *video.Video {
	if s.Item == nil {
		return nil
	}
	return s.Item.Video
}

// PlayableDuration is the item duration excluding marked segment ranges.
func (s *State) PlayableDuration(total time.Duration) time.Duration {
	return segments.PlayableDuration(total, s.Segments)
}

func (s *State) reset() {
	s.Item = nil
	s.Stream = nil
	s.Err = nil
	s.Seeking = false
	s.MusicMode = false
	s.PreservedTime = mo.None[time.Duration]()
	s.AvailableStreams = nil
	s.Segments = nil
	s.Dislikes = -1
	s.AspectRatio = defaultAspectRatio
}

const defaultAspectRatio = 16.0 / 9.0
