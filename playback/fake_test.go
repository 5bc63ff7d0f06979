package playback

import (
	"errors"
	"time"

	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
)

var errTest = errors.New("decoder failure")

// fakeBackend is a scripted capability-interface implementation recording
// every call for assertions.
type fakeBackend struct {
	kind    player.Kind
	canPlay func(*video.Stream) bool

	loaded   *video.Video
	stream   *video.Stream
	position time.Duration
	playing  bool

	loadCalls  int
	pauseCalls int
	seekCalls  int

	events chan player.Event
}

func newFakeBackend(kind player.Kind, canPlay func(*video.Stream) bool) *fakeBackend {
	return &fakeBackend{
		kind:    kind,
		canPlay: canPlay,
		events:  make(chan player.Event, 16),
	}
}

func (f *fakeBackend) Kind() player.Kind { return f.kind }

func (f *fakeBackend) Load(stream *video.Stream, of *video.Video, at time.Duration) error {
	f.loadCalls++
	f.loaded = of
	f.stream = stream
	f.position = at
	f.playing = true
	return nil
}

func (f *fakeBackend) CloseItem() {
	f.loaded = nil
	f.stream = nil
	f.playing = false
	f.position = 0
}

func (f *fakeBackend) Loaded() *video.Video { return f.loaded }

func (f *fakeBackend) Play()       { f.playing = f.loaded != nil }
func (f *fakeBackend) TogglePlay() { f.playing = !f.playing && f.loaded != nil }

func (f *fakeBackend) Pause() {
	f.pauseCalls++
	f.playing = false
}

func (f *fakeBackend) SeekTo(t time.Duration) {
	if f.loaded == nil {
		return
	}
	f.seekCalls++
	f.position = t
}

func (f *fakeBackend) SeekBy(d time.Duration) { f.SeekTo(f.position + d) }

func (f *fakeBackend) SetRate(float64)  {}
func (f *fakeBackend) SetSize(int, int) {}

func (f *fakeBackend) CurrentTime() mo.Option[time.Duration] {
	if f.loaded == nil {
		return mo.None[time.Duration]()
	}
	return mo.Some(f.position)
}

func (f *fakeBackend) ItemDuration() mo.Option[time.Duration] {
	if f.loaded == nil {
		return mo.None[time.Duration]()
	}
	return mo.Some(f.loaded.Length)
}

func (f *fakeBackend) IsPlaying() bool      { return f.playing }
func (f *fakeBackend) IsLoadingVideo() bool { return false }

func (f *fakeBackend) CanPlay(s *video.Stream) bool { return f.canPlay(s) }

func (f *fakeBackend) SetNeedsDrawing(bool) {}
func (f *fakeBackend) EnterFullScreen()     {}
func (f *fakeBackend) ExitFullScreen()      {}

func (f *fakeBackend) StartPictureInPicture() {}
func (f *fakeBackend) StopPictureInPicture()  {}

func (f *fakeBackend) Events() <-chan player.Event { return f.events }

func (f *fakeBackend) Close() error { return nil }

func playsEverything(*video.Stream) bool { return true }

func playsMP4Only(s *video.Stream) bool {
	return s.Kind == video.KindMP4 && !s.RequiresMuxing()
}
