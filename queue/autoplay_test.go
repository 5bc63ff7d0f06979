package queue

import (
	"testing"
	"time"

	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAutoplayCandidate(t *testing.T) {
	Convey("Given an autoplay engine with watch history", t, func() {
		watched := map[string]bool{"v2": true}
		resolved := make(chan string, 1)

		a := NewAutoplay(
			func(id string) bool { return watched[id] },
			func(id string) (*video.Video, error) {
				resolved <- id
				return &video.Video{ID: id, Title: "Resolved " + id}, nil
			},
		)

		// Fire scheduled work immediately so tests stay deterministic.
		a.schedule = func(_ time.Duration, fn func()) { fn() }

		current := &video.Video{ID: "v1", Related: []string{"v2", "v3"}}

		Convey("When the current video starts playing", func() {
			a.OnPlaying(current)

			Convey("Then the candidate excludes already watched videos", func() {
				candidate := a.Candidate()
				So(candidate.IsPresent(), ShouldBeTrue)
				So(candidate.MustGet().Video.ID, ShouldEqual, "v3")
			})

			Convey("Then the settled candidate gets resolved metadata", func() {
				So(<-resolved, ShouldEqual, "v3")
				So(a.Candidate().MustGet().Video.Title, ShouldEqual, "Resolved v3")
				So(a.Candidate().MustGet().Provisional, ShouldBeFalse)
			})

			Convey("Then a repeat notification keeps the candidate", func() {
				before := a.Candidate().MustGet()
				a.OnPlaying(current)
				So(a.Candidate().MustGet(), ShouldEqual, before)
			})

			Convey("When the candidate is taken for promotion", func() {
				item := a.Take()
				So(item.IsPresent(), ShouldBeTrue)

				Convey("Then no candidate remains", func() {
					So(a.Candidate().IsAbsent(), ShouldBeTrue)
				})
			})
		})

		Convey("When every related video was already watched", func() {
			watched["v3"] = true
			a.OnPlaying(current)

			Convey("Then there is no candidate", func() {
				So(a.Candidate().IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestAutoplayStaleResolve(t *testing.T) {
	Convey("Given a candidate replaced before its resolve fires", t, func() {
		var pending []func()

		a := NewAutoplay(
			func(string) bool { return false },
			func(id string) (*video.Video, error) {
				return &video.Video{ID: id, Title: "Resolved " + id}, nil
			},
		)
		a.schedule = func(_ time.Duration, fn func()) { pending = append(pending, fn) }

		a.OnPlaying(&video.Video{ID: "v1", Related: []string{"v2"}})
		first := a.Candidate().MustGet()

		a.OnPlaying(&video.Video{ID: "v9", Related: []string{"v8"}})

		Convey("When the stale timer fires", func() {
			for _, fn := range pending {
				fn()
			}

			Convey("Then the replaced candidate stays provisional", func() {
				So(first.Provisional, ShouldBeTrue)
			})

			Convey("And the live candidate is resolved", func() {
				So(a.Candidate().MustGet().Video.Title, ShouldEqual, "Resolved v8")
			})
		})
	})
}
