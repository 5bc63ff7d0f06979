package playback

import (
	"time"

	"github.com/rickykresslein/yattee/video"
)

// EventKind classifies state-change notifications published by the session
// for the side-effects coordinator.
type EventKind int

const (
	// EventItemChanged fires when a different item became current (or none).
	EventItemChanged EventKind = iota + 1
	// EventTimeChanged carries a playback position update.
	EventTimeChanged
	// EventPlayStateChanged fires on play/pause flips.
	EventPlayStateChanged
	// EventBackendChanged fires after a completed backend switch.
	EventBackendChanged
	// EventPiPChanged fires on picture-in-picture enter/exit.
	EventPiPChanged
	// EventErrorChanged fires when the session error state is set or cleared.
	EventErrorChanged
	// EventClosed fires once when the session shuts down.
	EventClosed
)

// Event is a state-change notification. Fields beyond Kind are filled per
// kind; consumers read the ones their kind defines.
type Event struct {
	Kind EventKind

	Video    *video.Video
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Live     bool
	PiP      bool
	Err      error

	// QueueIndex and QueueCount describe the item's place in the queue.
	QueueIndex int
	QueueCount int
}
