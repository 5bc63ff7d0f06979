package queue

import (
	"time"

	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

// Item is a single queue entry. The playback position is preserved across
// queue navigation so returning to an item resumes where it left off.
type Item struct {
	Video    *video.Video
	Position mo.Option[time.Duration]

	// Provisional marks an item whose metadata is a placeholder derived from
	// a related-content reference and has not been resolved yet.
	Provisional bool
}

// NewItem wraps a video into a fresh queue entry.
func NewItem(v *video.Video) *Item {
	return &Item{Video: v}
}

// Same reports whether two items refer to the same underlying video.
func (i *Item) Same(other *Item) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.Video.Same(other.Video)
}

// savedItem is the wire shape persisted for queue restoration.
type savedItem struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	Length   time.Duration `json:"length"`
	Position time.Duration `json:"position"`
	HasPos   bool          `json:"has_position"`
}

func (i *Item) toSaved() savedItem {
	s := savedItem{
		ID:     i.Video.ID,
		Title:  i.Video.Title,
		Author: i.Video.Author,
		Length: i.Video.Length,
	}
	if pos, ok := i.Position.Get(); ok {
		s.Position = pos
		s.HasPos = true
	}
	return s
}

func (s savedItem) toItem() *Item {
	item := NewItem(&video.Video{
		ID:     s.ID,
		Title:  s.Title,
		Author: s.Author,
		Length: s.Length,
	})
	if s.HasPos {
		item.Position = mo.Some(s.Position)
	}
	return item
}
