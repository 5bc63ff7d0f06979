// Package video defines the domain models for playable media and its renditions.
package video

import (
	"time"
)

// Video represents a playable media entity resolved from an external metadata service.
// Identity is the video ID; everything else is immutable-ish display metadata.
type Video struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Author       string        `json:"author"`
	Length       time.Duration `json:"length"`
	Live         bool          `json:"live"`
	Related      []string      `json:"related,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`

	// Streams associated with this video.
	// Populated only when necessary.
	Streams []*Stream `json:"streams,omitempty"`
}

// String returns the display title of the video.
func (v *Video) String() string {
	return v.Title
}

// Same reports whether the other video has the same identity.
func (v *Video) Same(other *Video) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.ID == other.ID
}
