package history

import (
	"testing"
	"time"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a video", t, func() {
		v := &video.Video{
			ID:     "dQw4w9WgXcQ",
			Title:  "Some Video",
			Author: "Some Channel",
			Length: 3*time.Minute + 33*time.Second,
		}

		Convey("When recording a watch", func() {
			err := RecordWatch(v, false)

			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the video should be recorded", func() {
					records, err := Get()
					So(err, ShouldBeNil)
					So(records[v.ID], ShouldNotBeNil)
					So(records[v.ID].Title, ShouldEqual, v.Title)

					watched, err := Watched(v.ID)
					So(err, ShouldBeNil)
					So(watched, ShouldBeTrue)
				})

				Convey("And finished state is sticky across re-watches", func() {
					So(RecordWatch(v, true), ShouldBeNil)
					So(RecordWatch(v, false), ShouldBeNil)

					records, err := Get()
					So(err, ShouldBeNil)
					So(records[v.ID].Finished, ShouldBeTrue)
				})
			})
		})

		Convey("Unknown ids are not watched", func() {
			watched, err := Watched("missing")
			So(err, ShouldBeNil)
			So(watched, ShouldBeFalse)
		})
	})
}
