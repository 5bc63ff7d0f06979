package custom

import (
	"testing"
	"time"

	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func TestVideoFromTable(t *testing.T) {
	Convey("videoFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		Convey("Should extract video from valid Lua table", func() {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LString("dQw4w9WgXcQ"))
			tbl.RawSetString("title", lua.LString("Some Video"))
			tbl.RawSetString("author", lua.LString("Some Channel"))
			tbl.RawSetString("length", lua.LNumber(213))
			tbl.RawSetString("thumbnail", lua.LString("https://example.com/thumb.jpg"))

			v, err := videoFromTable(tbl)
			So(err, ShouldBeNil)
			So(v.ID, ShouldEqual, "dQw4w9WgXcQ")
			So(v.Title, ShouldEqual, "Some Video")
			So(v.Length, ShouldEqual, 213*time.Second)
			So(v.ThumbnailURL, ShouldEqual, "https://example.com/thumb.jpg")
		})

		Convey("Should fail when required field 'id' is missing", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Some Video"))

			_, err := videoFromTable(tbl)
			So(err, ShouldNotBeNil)
		})

		Convey("Should handle related ids as comma-separated string", func() {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LString("v1"))
			tbl.RawSetString("title", lua.LString("Some Video"))
			tbl.RawSetString("related", lua.LString("v2, v3, v4"))

			v, err := videoFromTable(tbl)
			So(err, ShouldBeNil)
			So(v.Related, ShouldHaveLength, 3)
			So(v.Related[0], ShouldEqual, "v2")
		})

		Convey("Should extract nested streams", func() {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LString("v1"))
			tbl.RawSetString("title", lua.LString("Some Video"))

			streams := L.NewTable()
			stream := L.NewTable()
			stream.RawSetString("url", lua.LString("https://example.com/720.mp4"))
			stream.RawSetString("resolution", lua.LNumber(720))
			streams.Append(stream)
			tbl.RawSetString("streams", streams)

			v, err := videoFromTable(tbl)
			So(err, ShouldBeNil)
			So(v.Streams, ShouldHaveLength, 1)
			So(v.Streams[0].Resolution, ShouldEqual, 720)
			So(v.Streams[0].VideoID, ShouldEqual, "v1")
		})
	})
}

func TestStreamFromTable(t *testing.T) {
	Convey("streamFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		Convey("Should infer the HLS kind from the URL", func() {
			tbl := L.NewTable()
			tbl.RawSetString("url", lua.LString("https://example.com/live.m3u8"))

			stream, err := streamFromTable(tbl, "v1")
			So(err, ShouldBeNil)
			So(stream.Kind, ShouldEqual, video.KindHLS)
		})

		Convey("Should infer the adaptive kind from an audio/video pair", func() {
			tbl := L.NewTable()
			tbl.RawSetString("audio_url", lua.LString("https://example.com/a.m4a"))
			tbl.RawSetString("video_url", lua.LString("https://example.com/v.mp4"))
			tbl.RawSetString("resolution", lua.LNumber(1080))

			stream, err := streamFromTable(tbl, "v1")
			So(err, ShouldBeNil)
			So(stream.Kind, ShouldEqual, video.KindAdaptive)
			So(stream.RequiresMuxing(), ShouldBeTrue)
		})

		Convey("Should extract headers from Lua table", func() {
			tbl := L.NewTable()
			tbl.RawSetString("url", lua.LString("https://example.com/720.mp4"))

			headers := L.NewTable()
			headers.RawSetString("Referer", lua.LString("https://example.com"))
			tbl.RawSetString("headers", headers)

			stream, err := streamFromTable(tbl, "v1")
			So(err, ShouldBeNil)
			So(stream.Headers["Referer"], ShouldEqual, "https://example.com")
		})

		Convey("Should fail without any asset URL", func() {
			tbl := L.NewTable()
			tbl.RawSetString("resolution", lua.LNumber(720))

			_, err := streamFromTable(tbl, "v1")
			So(err, ShouldNotBeNil)
		})
	})
}
