// Package player defines a unified abstraction layer for media playback backends.
package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

// argBuilder constructs the spawn arguments for a backend's first load.
type argBuilder func(socket, target, title string, stream *video.Stream, at time.Duration) []string

// engine is the shared machinery behind both backends: process lifecycle,
// typed event translation, and the capability surface over JSON-IPC.
// Backends differ in their Kind, spawn arguments, and CanPlay policy.
type engine struct {
	kind      Kind
	p         *proc
	buildArgs argBuilder
	events    chan Event
	listener  *eventListener

	mu      sync.Mutex
	loaded  *video.Video
	stream  *video.Stream
	loading bool
}

func newEngine(kind Kind, binary string, buildArgs argBuilder) *engine {
	return &engine{
		kind:      kind,
		p:         newProc(binary),
		buildArgs: buildArgs,
		events:    make(chan Event, 64),
	}
}

func (e *engine) Kind() Kind {
	return e.kind
}

// Load opens a stream of the given video at the given start position.
// If the decoder process is already running, the new file is loaded into it
// via IPC; otherwise the process is spawned.
func (e *engine) Load(stream *video.Stream, of *video.Video, at time.Duration) error {
	target, err := sanitizeMediaTarget(stream.Target())
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	e.mu.Lock()
	e.loaded = of
	e.stream = stream
	e.loading = true
	e.mu.Unlock()

	title := sanitizeTitle(of.Title)

	if !e.p.running() {
		socket, err := e.p.socket()
		if err != nil {
			return err
		}

		if err := e.p.start(e.buildArgs(socket, target, title, stream, at)); err != nil {
			e.clearItem()
			return err
		}

		e.listener = newEventListener(socket, e.translate)
		if err := e.listener.start(); err != nil {
			log.Warnf("%s: event listener unavailable: %v", e.kind, err)
		}
		return nil
	}

	opts := fmt.Sprintf("start=%f", at.Seconds())
	if stream.RequiresMuxing() {
		audio, err := sanitizeMediaTarget(stream.AudioURL)
		if err != nil {
			return fmt.Errorf("invalid audio target: %w", err)
		}
		opts += ",audio-file=" + audio
	}
	_ = e.p.set("force-media-title", title)
	return e.p.command("loadfile", target, "replace", opts)
}

// CloseItem detaches from the loaded item and stops decoding.
// The process stays alive (idle) so a later load avoids spawn cost.
func (e *engine) CloseItem() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.command("stop")
	e.clearItem()
}

func (e *engine) clearItem() {
	e.mu.Lock()
	e.loaded = nil
	e.stream = nil
	e.loading = false
	e.mu.Unlock()
}

// Loaded returns the video currently held by this backend, nil when idle.
func (e *engine) Loaded() *video.Video {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// LoadedStream returns the stream currently held by this backend, nil when idle.
func (e *engine) LoadedStream() *video.Stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream
}

func (e *engine) Play() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("pause", false)
}

func (e *engine) Pause() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("pause", true)
}

func (e *engine) TogglePlay() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.command("cycle", "pause")
}

func (e *engine) SeekTo(t time.Duration) {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.command("seek", t.Seconds(), "absolute")
}

func (e *engine) SeekBy(d time.Duration) {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.command("seek", d.Seconds(), "relative")
}

func (e *engine) SetRate(rate float64) {
	if e.Loaded() == nil || rate <= 0 {
		return
	}
	_ = e.p.set("speed", rate)
}

func (e *engine) SetSize(width, height int) {
	if e.Loaded() == nil || width <= 0 || height <= 0 {
		return
	}
	_ = e.p.set("geometry", fmt.Sprintf("%dx%d", width, height))
}

// CurrentTime reports the current playback position, None when nothing is
// loaded or the property is unavailable.
func (e *engine) CurrentTime() mo.Option[time.Duration] {
	if e.Loaded() == nil {
		return mo.None[time.Duration]()
	}
	pos, err := e.p.getFloat("time-pos")
	if err != nil {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(pos * float64(time.Second)))
}

// ItemDuration reports the loaded item's duration, None when unknown (live).
func (e *engine) ItemDuration() mo.Option[time.Duration] {
	if e.Loaded() == nil {
		return mo.None[time.Duration]()
	}
	dur, err := e.p.getFloat("duration")
	if err != nil || dur <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(dur * float64(time.Second)))
}

func (e *engine) IsPlaying() bool {
	if e.Loaded() == nil {
		return false
	}
	paused, err := e.p.getBool("pause")
	if err != nil {
		return false
	}
	return !paused
}

func (e *engine) IsLoadingVideo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded != nil && e.loading
}

func (e *engine) SetNeedsDrawing(draw bool) {
	if e.Loaded() == nil {
		return
	}
	if draw {
		_ = e.p.set("vid", "auto")
	} else {
		_ = e.p.set("vid", "no")
	}
}

func (e *engine) EnterFullScreen() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("fullscreen", true)
}

func (e *engine) ExitFullScreen() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("fullscreen", false)
}

// StartPictureInPicture shrinks the window into a floating always-on-top
// surface; StopPictureInPicture restores the regular window.
func (e *engine) StartPictureInPicture() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("ontop", true)
	_ = e.p.set("window-scale", 0.25)
}

func (e *engine) StopPictureInPicture() {
	if e.Loaded() == nil {
		return
	}
	_ = e.p.set("ontop", false)
	_ = e.p.set("window-scale", 1.0)
}

func (e *engine) Events() <-chan Event {
	return e.events
}

// Close terminates the decoder process and releases system resources.
func (e *engine) Close() error {
	if e.listener != nil {
		e.listener.stop()
	}
	e.clearItem()
	return e.p.close()
}

// emit delivers an event without ever blocking the listener goroutine.
func (e *engine) emit(ev Event) {
	ev.Backend = e.kind
	select {
	case e.events <- ev:
	default:
		log.Warnf("%s: event channel full, dropping %v", e.kind, ev.Type)
	}
}

// translate converts raw property notifications into typed backend events.
func (e *engine) translate(property string, data interface{}) {
	switch property {
	case "time-pos":
		pos, ok := data.(float64)
		if !ok {
			return
		}
		e.emit(Event{Type: EventTime, Position: time.Duration(pos * float64(time.Second))})
	case "pause":
		paused, ok := data.(bool)
		if !ok {
			return
		}
		e.emit(Event{Type: EventPaused, Flag: paused})
	case "seeking":
		seeking, ok := data.(bool)
		if !ok {
			return
		}
		e.emit(Event{Type: EventSeeking, Flag: seeking})
	case "eof-reached":
		if reached, ok := data.(bool); ok && reached {
			e.emit(Event{Type: EventEnded})
		}
	case "file-loaded":
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
		e.emit(Event{Type: EventLoaded})
	case "end-file":
		// A load failure surfaces as end-file with reason "error".
		fields, ok := data.(map[string]interface{})
		if !ok {
			return
		}
		if reason, _ := fields["reason"].(string); reason == "error" {
			e.mu.Lock()
			e.loading = false
			e.mu.Unlock()
			e.emit(Event{Type: EventError, Err: fmt.Errorf("backend failed to open stream")})
		}
	}
}
