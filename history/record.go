package history

import (
	"fmt"
	"time"

	"github.com/rickykresslein/yattee/video"
)

// WatchedVideo represents a single playback entry preserved in the user's history.
type WatchedVideo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	Length   time.Duration `json:"length"`
	Finished bool          `json:"finished"`
}

func (w *WatchedVideo) String() string {
	state := "partial"
	if w.Finished {
		state = "finished"
	}
	return fmt.Sprintf("%s - %s (%s)", w.Title, w.Author, state)
}

func newWatchedVideo(v *video.Video) *WatchedVideo {
	return &WatchedVideo{
		ID:     v.ID,
		Title:  v.Title,
		Author: v.Author,
		Length: v.Length,
	}
}
