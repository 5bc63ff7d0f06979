package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// resolveDelay is how long a freshly picked candidate must stay current
// before its full metadata is fetched. Rapid track skipping keeps replacing
// the candidate, so the fetch only happens for a selection that settled.
const resolveDelay = 500 * time.Millisecond

// Autoplay speculatively selects the next related item while the current one
// plays. The selection is provisional: it enters the world as a bare id and
// is upgraded to full metadata once it survives the resolve delay.
type Autoplay struct {
	watched  func(videoID string) bool
	resolve  func(videoID string) (*video.Video, error)
	schedule func(time.Duration, func())
	delay    time.Duration
	rng      *rand.Rand

	mu        sync.Mutex
	candidate *Item
	source    string
}

// NewAutoplay builds an autoplay engine. The watched predicate excludes
// already-seen videos from candidate selection; resolve fetches full
// metadata for a settled candidate.
func NewAutoplay(
	watched func(videoID string) bool,
	resolve func(videoID string) (*video.Video, error),
) *Autoplay {
	return &Autoplay{
		watched: watched,
		resolve: resolve,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		delay: resolveDelay,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnPlaying recomputes the candidate for the video that just became current.
// A repeated call for the same video keeps the existing candidate.
func (a *Autoplay) OnPlaying(v *video.Video) {
	if v == nil {
		return
	}

	a.mu.Lock()

	if a.source == v.ID && a.candidate != nil {
		a.mu.Unlock()
		return
	}
	a.source = v.ID

	eligible := lo.Filter(v.Related, func(id string, _ int) bool {
		if id == v.ID || a.watched(id) {
			return false
		}
		return a.candidate == nil || a.candidate.Video.ID != id
	})
	if len(eligible) == 0 {
		a.candidate = nil
		a.mu.Unlock()
		return
	}

	picked := eligible[a.rng.Intn(len(eligible))]
	item := NewItem(&video.Video{ID: picked})
	item.Provisional = true
	a.candidate = item
	a.mu.Unlock()

	a.schedule(a.delay, func() {
		a.resolveCandidate(item)
	})
}

// Candidate returns the current speculative next item, if any.
func (a *Autoplay) Candidate() mo.Option[*Item] {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.candidate == nil {
		return mo.None[*Item]()
	}
	return mo.Some(a.candidate)
}

// Take hands the candidate over for promotion into the queue and clears it,
// so the next OnPlaying starts a fresh selection.
func (a *Autoplay) Take() mo.Option[*Item] {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.candidate == nil {
		return mo.None[*Item]()
	}
	item := a.candidate
	a.candidate = nil
	a.source = ""
	return mo.Some(item)
}

// Reset drops any pending candidate, e.g. when playback stops entirely.
func (a *Autoplay) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.candidate = nil
	a.source = ""
}

// resolveCandidate upgrades a provisional candidate to full metadata.
// The fetch result is dropped when the candidate was replaced while the
// request was in flight.
func (a *Autoplay) resolveCandidate(item *Item) {
	a.mu.Lock()
	stale := a.candidate != item
	a.mu.Unlock()
	if stale {
		return
	}

	resolved, err := a.resolve(item.Video.ID)
	if err != nil {
		log.Warnf("failed to resolve autoplay candidate %s: %v", item.Video.ID, err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.candidate != item || !item.Video.Same(resolved) {
		return
	}
	item.Video = resolved
	item.Provisional = false
}
