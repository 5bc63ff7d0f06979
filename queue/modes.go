// Package queue implements the ordered playback queue and the autoplay engine
// that speculatively resolves the next playable item.
package queue

import "fmt"

// Mode governs what "advance to next" resolves to.
type Mode string

const (
	// Sequential advances to the next queue index, or nothing at the end.
	Sequential Mode = "sequential"
	// Shuffle advances to a random not-yet-played queue index.
	Shuffle Mode = "shuffle"
	// LoopOne reselects the same item and restarts it from zero.
	LoopOne Mode = "loop-one"
	// RelatedAutoplay promotes the speculative related-content candidate.
	RelatedAutoplay Mode = "related"
)

// Modes returns all registered playback modes.
func Modes() []Mode {
	return []Mode{Sequential, Shuffle, LoopOne, RelatedAutoplay}
}

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown playback mode %q", s)
}
