package inline

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/resolver"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fakeSource struct {
	name    string
	videos  []*video.Video
	streams map[string][]*video.Stream
	err     error
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) ID() string   { return f.name }

func (f *fakeSource) Search(string) ([]*video.Video, error) {
	return f.videos, f.err
}

func (f *fakeSource) Resolve(videoID string) (*video.Video, error) {
	for _, v := range f.videos {
		if v.ID == videoID {
			return v, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeSource) StreamsOf(v *video.Video) ([]*video.Stream, error) {
	streams := f.streams[v.ID]
	v.Streams = streams
	return streams, nil
}

func (f *fakeSource) sources() []resolver.Source {
	return []resolver.Source{f}
}

func testSource() *fakeSource {
	return &fakeSource{
		name: "test",
		videos: []*video.Video{
			{ID: "aaa", Title: "First Video"},
			{ID: "bbb", Title: "Second Video"},
			{ID: "ccc", Title: "Third Video"},
		},
		streams: map[string][]*video.Stream{
			"bbb": {
				{VideoID: "bbb", Resolution: 720, Kind: video.KindMP4, URL: "https://cdn.example/bbb.mp4"},
			},
		},
	}
}

func TestVideoPicker(t *testing.T) {
	videos := testSource().videos

	Convey("Given search results", t, func() {
		Convey("The first picker returns the first result", func() {
			picker, err := ParseVideoPicker("first", "")
			So(err, ShouldBeNil)
			So(picker(videos).ID, ShouldEqual, "aaa")
		})

		Convey("The last picker returns the last result", func() {
			picker, err := ParseVideoPicker("last", "")
			So(err, ShouldBeNil)
			So(picker(videos).ID, ShouldEqual, "ccc")
		})

		Convey("The exact picker matches by title or id", func() {
			picker, err := ParseVideoPicker("exact", "Second Video")
			So(err, ShouldBeNil)
			So(picker(videos).ID, ShouldEqual, "bbb")

			picker, err = ParseVideoPicker("exact", "ccc")
			So(err, ShouldBeNil)
			So(picker(videos).ID, ShouldEqual, "ccc")

			picker, _ = ParseVideoPicker("exact", "nope")
			So(picker(videos), ShouldBeNil)
		})

		Convey("The index picker clamps to the last element", func() {
			picker, err := ParseVideoPicker("index", "1")
			So(err, ShouldBeNil)
			So(picker(videos).ID, ShouldEqual, "bbb")

			picker, _ = ParseVideoPicker("index", "99")
			So(picker(videos).ID, ShouldEqual, "ccc")
		})

		Convey("Invalid pickers produce an error", func() {
			_, err := ParseVideoPicker("index", "not a number")
			So(err, ShouldNotBeNil)

			_, err = ParseVideoPicker("closest", "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a configured source", t, func() {
		src := testSource()

		Convey("Plain output lists matching video ids", func() {
			var out bytes.Buffer
			err := Run(&Options{
				Out:     &out,
				Sources: src.sources(),
				Query:   "video",
			})
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "aaa\nbbb\nccc\n")
		})

		Convey("A picker narrows output to one video", func() {
			picker, _ := ParseVideoPicker("exact", "bbb")

			var out bytes.Buffer
			err := Run(&Options{
				Out:         &out,
				Sources:     src.sources(),
				Query:       "video",
				VideoPicker: mo.Some(picker),
			})
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "bbb\n")
		})

		Convey("Stream mode prints resolved stream targets", func() {
			picker, _ := ParseVideoPicker("exact", "bbb")

			var out bytes.Buffer
			err := Run(&Options{
				Out:         &out,
				Sources:     src.sources(),
				Query:       "video",
				VideoPicker: mo.Some(picker),
				Streams:     true,
			})
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "https://cdn.example/bbb.mp4\n")
		})

		Convey("Json mode emits the query and per-resolver results", func() {
			var out bytes.Buffer
			err := Run(&Options{
				Out:     &out,
				Sources: src.sources(),
				Query:   "video",
				Json:    true,
			})
			So(err, ShouldBeNil)

			var decoded Output
			So(json.Unmarshal(out.Bytes(), &decoded), ShouldBeNil)
			So(decoded.Query, ShouldEqual, "video")
			So(len(decoded.Result), ShouldEqual, 3)
			So(decoded.Result[0].Resolver, ShouldEqual, "test")
			So(decoded.Result[0].Video.ID, ShouldEqual, "aaa")
		})

		Convey("Search failures are propagated", func() {
			src.err = errors.New("network down")

			err := Run(&Options{
				Sources: src.sources(),
				Query:   "video",
			})
			So(err, ShouldNotBeNil)
		})
	})
}
