package playback

import (
	"context"
	"testing"
	"time"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/queue"
	"github.com/rickykresslein/yattee/segments"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()

	viper.Set(key.PlayerBackend, "mpv")
	viper.Set(key.PlayerDefaultRate, 1.0)
	viper.Set(key.PlayerCompletionPercentage, 90)
	viper.Set(key.PlayerForceNativeLive, false)
	viper.Set(key.QualityBatteryCellular, "sd360p")
	viper.Set(key.QualityBatteryWifi, "hd720p")
	viper.Set(key.QualityChargingCellular, "hd720p")
	viper.Set(key.QualityChargingWifi, "hd1080p")
	viper.Set(key.QueueRestore, false)
	viper.Set(key.SegmentsEnable, false)
	viper.Set(key.SegmentsAutoSkip, false)
	viper.Set(key.DislikesEnable, false)
	viper.Set(key.HistorySaveOnClose, false)
}

type sessionHarness struct {
	session *Session
	native  *fakeBackend
	mpv     *fakeBackend
	cancel  context.CancelFunc
}

func newHarness() *sessionHarness {
	native := newFakeBackend(player.KindNative, playsMP4Only)
	mpv := newFakeBackend(player.KindMPV, playsEverything)

	s := New(queue.New(), native, mpv)
	s.conditions = func() Condition { return Condition{Charging: true} }
	s.schedule = func(_ time.Duration, fn func()) { fn() }
	s.recordWatch = func(*video.Video, bool) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	return &sessionHarness{session: s, native: native, mpv: mpv, cancel: cancel}
}

// settle waits for every previously posted continuation to run.
func (h *sessionHarness) settle() {
	h.session.do(func() {})
}

// drainEvents discards everything already published on the event channel.
func (h *sessionHarness) drainEvents() {
	for {
		select {
		case <-h.session.Events():
		default:
			return
		}
	}
}

// nextEvent returns the next published event of the given kind, giving up
// after a second.
func (h *sessionHarness) nextEvent(kind EventKind) Event {
	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-h.session.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			return Event{}
		}
	}
}

func testVideo() *video.Video {
	v := &video.Video{
		ID:     "dQw4w9WgXcQ",
		Title:  "Some Video",
		Length: 10 * time.Minute,
	}
	v.Streams = []*video.Stream{
		{VideoID: v.ID, Resolution: 720, Kind: video.KindMP4, URL: "https://example.com/720.mp4"},
		{VideoID: v.ID, Resolution: 1080, Kind: video.KindWebM, URL: "https://example.com/1080.webm"},
	}
	return v
}

func TestBackendSwitchNoop(t *testing.T) {
	Convey("Given a session playing on the general backend", t, func() {
		h := newHarness()
		defer h.cancel()
		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)

		pausesBefore := h.native.pauseCalls + h.mpv.pauseCalls
		loadsBefore := h.native.loadCalls + h.mpv.loadCalls

		Convey("When switching a backend to itself", func() {
			h.session.ChangeActiveBackend(player.KindMPV, player.KindMPV)
			h.settle()

			Convey("Then nothing is paused or reloaded", func() {
				So(h.native.pauseCalls+h.mpv.pauseCalls, ShouldEqual, pausesBefore)
				So(h.native.loadCalls+h.mpv.loadCalls, ShouldEqual, loadsBefore)
			})
		})
	})
}

func TestBackendHandoff(t *testing.T) {
	Convey("Given a video playing on the general backend", t, func() {
		h := newHarness()
		defer h.cancel()
		v := testVideo()

		h.session.Play(v, mo.None[time.Duration](), true, false)

		So(h.session.ActiveBackend(), ShouldEqual, player.KindMPV)
		So(h.mpv.loadCalls, ShouldEqual, 1)
		So(h.mpv.stream.Resolution, ShouldEqual, 1080)

		Convey("When switching to the constrained backend mid-playback", func() {
			h.session.do(func() { h.mpv.position = 100 * time.Second })
			h.session.ChangeActiveBackend(player.KindMPV, player.KindNative)
			h.settle()

			Convey("Then a compatible stream is reloaded at the preserved position", func() {
				So(h.native.loadCalls, ShouldEqual, 1)
				So(h.native.stream.Kind, ShouldEqual, video.KindMP4)
				So(h.native.position, ShouldEqual, 100*time.Second)
			})

			Convey("And switching back hands off seamlessly", func() {
				h.session.do(func() { h.native.position = 150 * time.Second })
				h.session.ChangeActiveBackend(player.KindNative, player.KindMPV)
				h.settle()

				So(h.mpv.loadCalls, ShouldEqual, 1)
				So(h.mpv.position, ShouldEqual, 150*time.Second)
				So(h.mpv.playing, ShouldBeTrue)
			})
		})
	})
}

func TestFreshLoadVersusUpgrade(t *testing.T) {
	Convey("Given a session with segment fetching enabled", t, func() {
		viper.Set(key.SegmentsEnable, true)
		viper.Set(key.SegmentsCategories, []string{"sponsor"})
		defer viper.Set(key.SegmentsEnable, false)

		h := newHarness()
		defer h.cancel()

		fetched := make(chan string, 4)
		h.session.loadSegments = func(videoID string, _ []string) ([]segments.Segment, error) {
			fetched <- videoID
			return []segments.Segment{
				{Category: "sponsor", Start: 10 * time.Second, End: 20 * time.Second},
			}, nil
		}

		v := testVideo()

		Convey("When loading a fresh stream", func() {
			h.session.PlayStream(v.Streams[0], v, false, false)

			Convey("Then a segment fetch is initiated and applied", func() {
				So(<-fetched, ShouldEqual, v.ID)
				h.settle()
				So(h.session.Snapshot().Segments, ShouldHaveLength, 1)
			})

			Convey("And an upgrade leaves segment markers untouched", func() {
				<-fetched
				h.settle()

				h.session.PlayStream(v.Streams[1], v, true, true)
				h.settle()

				So(len(fetched), ShouldEqual, 0)
				So(h.session.Snapshot().Segments, ShouldHaveLength, 1)
			})
		})
	})
}

func TestAdvanceLoopOne(t *testing.T) {
	Convey("Given a session in loop-one mode", t, func() {
		h := newHarness()
		defer h.cancel()

		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)
		h.session.SetMode(queue.LoopOne)
		h.session.do(func() { h.mpv.position = 50 * time.Second })

		Convey("When advancing", func() {
			h.session.Advance()
			h.settle()

			Convey("Then the same item restarts from zero without reloading", func() {
				So(h.mpv.loadCalls, ShouldEqual, 1)
				So(h.mpv.position, ShouldEqual, time.Duration(0))
				So(h.mpv.playing, ShouldBeTrue)
			})
		})
	})
}

func TestAdvancePastQueueEnd(t *testing.T) {
	Convey("Given a sequential session at the last queue item", t, func() {
		h := newHarness()
		defer h.cancel()

		v := testVideo()
		h.session.Play(v, mo.None[time.Duration](), true, false)

		Convey("When advancing past the end", func() {
			h.session.Advance()
			h.settle()

			Convey("Then there is no new item and no error", func() {
				snap := h.session.Snapshot()
				So(h.mpv.loadCalls, ShouldEqual, 1)
				So(snap.Err, ShouldBeNil)
				So(snap.Video().ID, ShouldEqual, v.ID)
			})
		})
	})
}

func TestDeferredLoad(t *testing.T) {
	Convey("Given a dismissed player surface", t, func() {
		h := newHarness()
		defer h.cancel()
		h.session.SurfaceDismissed()

		Convey("When playing without showing the player", func() {
			h.session.Play(testVideo(), mo.None[time.Duration](), false, false)

			Convey("Then the load is deferred until the surface is presented", func() {
				So(h.mpv.loadCalls, ShouldEqual, 0)

				h.session.SurfacePresented()
				So(h.mpv.loadCalls, ShouldEqual, 1)
			})
		})
	})
}

func TestStreamLoadPublishesItemChange(t *testing.T) {
	Convey("Given a session already playing a video", t, func() {
		h := newHarness()
		defer h.cancel()

		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)
		h.settle()
		h.drainEvents()

		Convey("When a stream of a different video is loaded directly", func() {
			other := &video.Video{
				ID:     "9bZkp7q19f0",
				Title:  "Another Video",
				Length: 4 * time.Minute,
			}
			other.Streams = []*video.Stream{
				{VideoID: other.ID, Resolution: 1080, Kind: video.KindWebM, URL: "https://example.com/other.webm"},
			}
			h.session.PlayStream(other.Streams[0], other, false, false)

			Convey("Then an item change for the new video is published", func() {
				ev := h.nextEvent(EventItemChanged)
				So(ev.Video, ShouldNotBeNil)
				So(ev.Video.ID, ShouldEqual, other.ID)
				snap := h.session.Snapshot()
				So(snap.Video().ID, ShouldEqual, other.ID)
			})
		})
	})
}

func TestBackendSwitchKeepsProfileCeiling(t *testing.T) {
	Convey("Given a video with a rendition above the profile ceiling", t, func() {
		h := newHarness()
		defer h.cancel()

		v := testVideo()
		v.Streams = append(v.Streams, &video.Stream{
			VideoID: v.ID, Resolution: 2160, Kind: video.KindMP4, URL: "https://example.com/2160.mp4",
		})
		h.session.Play(v, mo.None[time.Duration](), true, false)

		So(h.mpv.stream.Resolution, ShouldEqual, 1080)

		Convey("When switching to the constrained backend", func() {
			h.session.ChangeActiveBackend(player.KindMPV, player.KindNative)
			h.settle()

			Convey("Then the reloaded stream stays under the ceiling", func() {
				So(h.native.loadCalls, ShouldEqual, 1)
				So(h.native.stream.Kind, ShouldEqual, video.KindMP4)
				So(h.native.stream.Resolution, ShouldBeLessThanOrEqualTo, 1080)
			})
		})
	})
}

func TestBackendSwitchFromUnknownSource(t *testing.T) {
	Convey("Given a video already loaded on the general backend", t, func() {
		h := newHarness()
		defer h.cancel()
		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)

		Convey("When switching from a backend that was never registered", func() {
			So(func() {
				h.session.ChangeActiveBackend(player.Kind("airplay"), player.KindMPV)
				h.settle()
			}, ShouldNotPanic)

			Convey("Then playback resumes without a reload", func() {
				So(h.mpv.loadCalls, ShouldEqual, 1)
				So(h.mpv.playing, ShouldBeTrue)
			})
		})
	})
}

func TestReplaySameVideo(t *testing.T) {
	Convey("Given a video already playing", t, func() {
		h := newHarness()
		defer h.cancel()

		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)
		So(h.mpv.loadCalls, ShouldEqual, 1)

		Convey("When playing the same video again", func() {
			h.session.Pause()
			h.session.Play(testVideo(), mo.None[time.Duration](), true, false)

			Convey("Then playback resumes without reloading", func() {
				So(h.mpv.loadCalls, ShouldEqual, 1)
				So(h.mpv.playing, ShouldBeTrue)
			})

			Convey("And forcing restarts the load from scratch", func() {
				h.session.Play(testVideo(), mo.None[time.Duration](), true, true)
				So(h.mpv.loadCalls, ShouldEqual, 2)
			})
		})
	})
}

func TestLoadErrorSurfaced(t *testing.T) {
	Convey("Given a playing session", t, func() {
		h := newHarness()
		defer h.cancel()
		h.session.Play(testVideo(), mo.None[time.Duration](), true, false)

		Convey("When the backend reports a load error", func() {
			h.session.do(func() {
				h.session.handleBackendEvent(player.Event{
					Backend: player.KindMPV,
					Type:    player.EventError,
					Err:     errTest,
				})
			})

			Convey("Then the session error state is set", func() {
				So(h.session.Snapshot().Err, ShouldEqual, errTest)
			})

			Convey("And a fresh load clears it", func() {
				v := testVideo()
				h.session.PlayStream(v.Streams[0], v, false, false)
				So(h.session.Snapshot().Err, ShouldBeNil)
			})
		})
	})
}
