// Package player defines a unified abstraction layer for media playback backends.
// The architecture supports two mutually exclusive backends behind one capability
// interface: a constrained native pipeline and a general-purpose mpv engine, both
// driven over newline-delimited JSON-IPC.
package player

import (
	"time"

	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

// Kind identifies a concrete backend implementation.
// The active backend is always a single Kind value, never a pair of booleans,
// so mutual exclusion is structural.
type Kind string

const (
	// KindNative is the constrained hardware-decode pipeline.
	KindNative Kind = "native"
	// KindMPV is the general-purpose decoder.
	KindMPV Kind = "mpv"
)

// Kinds returns all registered backend identifiers.
func Kinds() []Kind {
	return []Kind{KindNative, KindMPV}
}

// EventType classifies asynchronous backend notifications.
type EventType int

const (
	// EventTime carries a playback position update.
	EventTime EventType = iota + 1
	// EventLoaded signals that a stream finished opening.
	EventLoaded
	// EventEnded signals natural end of the loaded item.
	EventEnded
	// EventSeeking signals a seek in flight (true) or settled (false).
	EventSeeking
	// EventPaused signals a pause-state flip.
	EventPaused
	// EventError carries a load/decode failure.
	EventError
)

// Event is an asynchronous notification emitted by a backend.
// Events are redelivered onto the session's coordination context before
// touching any session state.
type Event struct {
	Backend  Kind
	Type     EventType
	Position time.Duration
	Duration time.Duration
	Flag     bool
	Err      error
}

// Backend encapsulates the required capabilities of a playback backend.
//
// All mutators are no-ops (not errors) when the backend has no loaded item,
// except Load, which is always valid and implicitly activates loading.
type Backend interface {
	// Kind returns the backend identifier.
	Kind() Kind

	// Load opens a stream of the given video at the given start position.
	// It is the only mutator that is always valid.
	Load(stream *video.Stream, of *video.Video, at time.Duration) error

	// CloseItem detaches the backend from its loaded item and stops decoding.
	CloseItem()

	// Loaded returns the video currently held by this backend, nil when idle.
	Loaded() *video.Video

	Play()
	Pause()
	TogglePlay()

	// SeekTo transitions playback to an absolute position.
	SeekTo(t time.Duration)
	// SeekBy shifts playback relative to the current position.
	SeekBy(d time.Duration)

	// SetRate adjusts the playback speed multiplier.
	SetRate(rate float64)
	// SetSize resizes the rendering surface.
	SetSize(width, height int)

	// CurrentTime reports the current playback position, None when unknown.
	CurrentTime() mo.Option[time.Duration]
	// ItemDuration reports the loaded item's duration, None when unknown or live.
	ItemDuration() mo.Option[time.Duration]

	IsPlaying() bool
	IsLoadingVideo() bool

	// CanPlay reports whether this backend can decode the given stream.
	CanPlay(stream *video.Stream) bool

	// SetNeedsDrawing toggles video rendering; false suppresses video output
	// (music mode) without touching the audio pipeline.
	SetNeedsDrawing(draw bool)

	EnterFullScreen()
	ExitFullScreen()

	// StartPictureInPicture and StopPictureInPicture are PiP lifecycle hooks.
	StartPictureInPicture()
	StopPictureInPicture()

	// Events returns the asynchronous notification channel.
	Events() <-chan Event

	// Close terminates the backend process and releases system resources.
	Close() error
}
