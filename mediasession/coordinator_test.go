package mediasession

import (
	"testing"
	"time"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/playback"
	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.MediaSessionEnable, false)
	viper.Set(key.MediaSessionArtwork, false)
	viper.Set(key.MediaSessionCommandScheme, "track")
	viper.Set(key.PiPCloseOnBackground, true)
	viper.Set(key.PiPReturnOnClose, true)
}

type fakeController struct {
	calls []string
}

func (f *fakeController) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeController) Resume()                { f.record("resume") }
func (f *fakeController) Pause()                 { f.record("pause") }
func (f *fakeController) TogglePlay()            { f.record("toggle") }
func (f *fakeController) SeekTo(time.Duration)   { f.record("seekTo") }
func (f *fakeController) SeekBy(time.Duration)   { f.record("seekBy") }
func (f *fakeController) Advance()               { f.record("advance") }
func (f *fakeController) Previous()              { f.record("previous") }
func (f *fakeController) StartPictureInPicture() { f.record("startPiP") }
func (f *fakeController) StopPictureInPicture()  { f.record("stopPiP") }
func (f *fakeController) SurfacePresented()      { f.record("surfacePresented") }

type recordingPublisher struct {
	metadata []Metadata
	playing  []bool
}

func (r *recordingPublisher) PublishMetadata(m Metadata)    { r.metadata = append(r.metadata, m) }
func (r *recordingPublisher) PublishPosition(time.Duration) {}
func (r *recordingPublisher) PublishPlaying(p bool)         { r.playing = append(r.playing, p) }
func (r *recordingPublisher) Close()                        {}

func newTestCoordinator() (*Coordinator, *fakeController, *recordingPublisher) {
	controller := &fakeController{}
	c := New(controller)
	pub := &recordingPublisher{}
	c.publisher = pub
	c.schedule = func(_ time.Duration, fn func()) { fn() }
	return c, controller, pub
}

func TestCommandRouting(t *testing.T) {
	Convey("Given the track-oriented command scheme", t, func() {
		c, controller, _ := newTestCoordinator()
		c.commands = schemeTrack

		Convey("When next/previous commands arrive", func() {
			c.commandNext()
			c.commandPrevious()

			Convey("Then they navigate the queue", func() {
				So(controller.calls, ShouldResemble, []string{"advance", "previous"})
			})
		})
	})

	Convey("Given the seek-oriented command scheme", t, func() {
		c, controller, _ := newTestCoordinator()
		c.commands = schemeSeek

		Convey("When next/previous commands arrive", func() {
			c.commandNext()
			c.commandPrevious()

			Convey("Then they skip instead of changing tracks", func() {
				So(controller.calls, ShouldResemble, []string{"seekBy", "seekBy"})
			})
		})
	})
}

func TestNowPlayingMirror(t *testing.T) {
	Convey("Given a coordinator with a recording sink", t, func() {
		c, _, pub := newTestCoordinator()

		v := &video.Video{
			ID:     "dQw4w9WgXcQ",
			Title:  "Some Video",
			Author: "Some Channel",
			Length: 3 * time.Minute,
		}

		Convey("When an item change event arrives", func() {
			c.handle(playback.Event{
				Kind:       playback.EventItemChanged,
				Video:      v,
				Duration:   v.Length,
				QueueIndex: 1,
				QueueCount: 3,
			})

			Convey("Then the metadata is mirrored with a finite duration", func() {
				So(pub.metadata, ShouldHaveLength, 1)
				So(pub.metadata[0].Title, ShouldEqual, v.Title)
				So(pub.metadata[0].Duration, ShouldEqual, v.Length)
				So(pub.metadata[0].QueueCount, ShouldEqual, 3)
			})
		})

		Convey("When the item is live", func() {
			v.Live = true
			c.handle(playback.Event{
				Kind:     playback.EventItemChanged,
				Video:    v,
				Duration: v.Length,
			})

			Convey("Then no duration is published", func() {
				So(pub.metadata[0].Live, ShouldBeTrue)
				So(pub.metadata[0].Duration, ShouldEqual, time.Duration(0))
			})
		})

		Convey("When the item is cleared", func() {
			c.handle(playback.Event{Kind: playback.EventItemChanged})

			Convey("Then empty metadata is published", func() {
				So(pub.metadata[0].VideoID, ShouldBeEmpty)
			})
		})

		Convey("When play state flips", func() {
			c.handle(playback.Event{Kind: playback.EventPlayStateChanged, Playing: true})
			c.handle(playback.Event{Kind: playback.EventPlayStateChanged, Playing: false})

			Convey("Then the status mirrors each flip", func() {
				So(pub.playing, ShouldResemble, []bool{true, false})
			})
		})
	})
}

func TestPiPLifecycle(t *testing.T) {
	Convey("Given an active picture-in-picture surface", t, func() {
		c, controller, _ := newTestCoordinator()
		c.handle(playback.Event{Kind: playback.EventPiPChanged, PiP: true})

		Convey("When the application backgrounds", func() {
			c.Background()

			Convey("Then PiP is closed per configuration", func() {
				So(controller.calls, ShouldContain, "stopPiP")
			})
		})

		Convey("When the application bounces back before the delay fires", func() {
			fired := []func(){}
			c.schedule = func(_ time.Duration, fn func()) { fired = append(fired, fn) }

			c.Background()
			c.Foreground()
			for _, fn := range fired {
				fn()
			}

			Convey("Then the surface survives", func() {
				So(controller.calls, ShouldNotContain, "stopPiP")
			})
		})

		Convey("When PiP closes", func() {
			c.handle(playback.Event{Kind: playback.EventPiPChanged, PiP: false})

			Convey("Then the player surface returns to the foreground", func() {
				So(controller.calls, ShouldContain, "surfacePresented")
			})
		})
	})
}

func TestArtworkSupersession(t *testing.T) {
	Convey("Given an in-flight artwork download", t, func() {
		a := newArtworkFetcher()

		release := make(chan struct{})
		done := make(chan string, 2)
		a.download = func(url string) ([]byte, error) {
			<-release
			done <- url
			return []byte("image"), nil
		}

		a.fetch("first", "https://example.com/first.jpg")

		Convey("When a newer fetch supersedes it", func() {
			a.fetch("second", "https://example.com/second.jpg")
			close(release)
			<-done
			<-done

			Convey("Then only the newest artwork is stored", func() {
				_, ok := a.localPath("first")
				So(ok, ShouldBeFalse)

				eventually := func() bool {
					for i := 0; i < 50; i++ {
						if _, ok := a.localPath("second"); ok {
							return true
						}
						time.Sleep(10 * time.Millisecond)
					}
					return false
				}
				So(eventually(), ShouldBeTrue)
			})
		})
	})
}
