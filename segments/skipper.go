package segments

import (
	"time"

	"github.com/rickykresslein/yattee/log"
)

// Seeker is the minimal backend surface the skipper needs.
type Seeker interface {
	SeekTo(t time.Duration)
}

// Skipper performs auto-skips when playback enters a marked range.
type Skipper struct {
	segments []Segment
	seeker   Seeker

	// lastSkipped guards against re-triggering on the same range when a
	// position update lands inside it again right after the seek.
	lastSkipped time.Duration
}

// NewSkipper creates a skipper over the given ordered segments.
func NewSkipper(seeker Seeker, segs []Segment) *Skipper {
	return &Skipper{segments: segs, seeker: seeker, lastSkipped: -1}
}

// Check inspects the playback position and seeks past a marked range when the
// position falls inside one. Returns true if a skip was performed.
func (s *Skipper) Check(pos time.Duration) bool {
	for _, seg := range s.segments {
		if !seg.Contains(pos) {
			continue
		}
		if seg.End == s.lastSkipped {
			return false
		}

		log.Infof("skipping %s segment: %v -> %v", seg.Category, pos, seg.End)
		s.seeker.SeekTo(seg.End)
		s.lastSkipped = seg.End
		return true
	}
	return false
}
