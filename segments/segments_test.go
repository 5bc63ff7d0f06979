package segments

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingSeeker struct {
	seeks []time.Duration
}

func (r *recordingSeeker) SeekTo(t time.Duration) {
	r.seeks = append(r.seeks, t)
}

func TestPlayableDuration(t *testing.T) {
	Convey("PlayableDuration", t, func() {
		total := 10 * time.Minute

		Convey("No segments leaves the duration untouched", func() {
			So(PlayableDuration(total, nil), ShouldEqual, total)
		})

		Convey("Disjoint segments are each subtracted", func() {
			segs := []Segment{
				{Start: 1 * time.Minute, End: 2 * time.Minute},
				{Start: 5 * time.Minute, End: 5*time.Minute + 30*time.Second},
			}
			So(PlayableDuration(total, segs), ShouldEqual, 8*time.Minute+30*time.Second)
		})

		Convey("Overlapping segments only subtract shared time once", func() {
			segs := []Segment{
				{Start: 1 * time.Minute, End: 3 * time.Minute},
				{Start: 2 * time.Minute, End: 4 * time.Minute},
			}
			So(PlayableDuration(total, segs), ShouldEqual, 7*time.Minute)
		})

		Convey("Segments past the item end are clamped", func() {
			segs := []Segment{{Start: 9 * time.Minute, End: 15 * time.Minute}}
			So(PlayableDuration(total, segs), ShouldEqual, 9*time.Minute)
		})

		Convey("Zero total stays zero", func() {
			So(PlayableDuration(0, []Segment{{Start: 0, End: time.Minute}}), ShouldEqual, 0)
		})
	})
}

func TestSkipper(t *testing.T) {
	Convey("Given a skipper over one sponsor segment", t, func() {
		seeker := &recordingSeeker{}
		segs := []Segment{{Category: "sponsor", Start: 30 * time.Second, End: 60 * time.Second}}
		skipper := NewSkipper(seeker, segs)

		Convey("Positions outside the range do nothing", func() {
			So(skipper.Check(10*time.Second), ShouldBeFalse)
			So(skipper.Check(61*time.Second), ShouldBeFalse)
			So(seeker.seeks, ShouldBeEmpty)
		})

		Convey("A position inside the range seeks to its end", func() {
			So(skipper.Check(45*time.Second), ShouldBeTrue)
			So(seeker.seeks, ShouldResemble, []time.Duration{60 * time.Second})
		})

		Convey("The same range is not re-triggered right after the skip", func() {
			So(skipper.Check(45*time.Second), ShouldBeTrue)
			So(skipper.Check(59*time.Second), ShouldBeFalse)
			So(len(seeker.seeks), ShouldEqual, 1)
		})
	})
}
