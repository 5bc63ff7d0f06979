package playback

import (
	"testing"

	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func selectorCanPlay(kind player.Kind, s *video.Stream) bool {
	if kind == player.KindNative {
		return playsMP4Only(s)
	}
	return true
}

func TestPreferredStream(t *testing.T) {
	Convey("Given the built-in quality profiles", t, func() {
		selector := NewSelector(selectorCanPlay)
		charging := Condition{Charging: true}
		battery := Condition{Charging: false}

		streams := []*video.Stream{
			{VideoID: "v", Resolution: 720, Kind: video.KindMP4, URL: "https://example.com/720.mp4"},
			{VideoID: "v", Resolution: 1080, Kind: video.KindWebM, URL: "https://example.com/1080.webm"},
		}

		Convey("When the charging profile prefers 1080p on the general backend", func() {
			selection, ok := selector.PreferredStream(streams, charging).Get()

			Convey("Then the 1080p stream is chosen", func() {
				So(ok, ShouldBeTrue)
				So(selection.Stream.Resolution, ShouldEqual, 1080)
				So(selection.Backend, ShouldEqual, player.KindMPV)

				Convey("And playing it from the constrained backend requires a switch", func() {
					So(selection.SwitchRequiredFrom(player.KindNative), ShouldBeTrue)
					So(selection.SwitchRequiredFrom(player.KindMPV), ShouldBeFalse)
				})
			})
		})

		Convey("When on battery the profile caps resolution at 720p", func() {
			selection, ok := selector.PreferredStream(streams, battery).Get()

			Convey("Then the closest stream under the ceiling is chosen", func() {
				So(ok, ShouldBeTrue)
				So(selection.Stream.Resolution, ShouldEqual, 720)
				So(selection.Backend, ShouldEqual, player.KindNative)
			})
		})

		Convey("When no candidate fits the active profile", func() {
			hlsOnly := []*video.Stream{
				{VideoID: "v", Resolution: 1080, Kind: video.KindHLS, URL: "https://example.com/live.m3u8"},
			}
			selection, ok := selector.PreferredStream(hlsOnly, battery).Get()

			Convey("Then selection degrades instead of failing", func() {
				So(ok, ShouldBeTrue)
				So(selection.Stream.Kind, ShouldEqual, video.KindHLS)

				Convey("And the stream is routed to the general backend", func() {
					So(selection.Backend, ShouldEqual, player.KindMPV)
				})
			})
		})

		Convey("When the candidate list is empty", func() {
			Convey("Then nothing is selected", func() {
				So(selector.PreferredStream(nil, charging).IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestForceNativeLive(t *testing.T) {
	Convey("Given live content and the force-native flag", t, func() {
		viper.Set(key.PlayerForceNativeLive, true)
		defer viper.Set(key.PlayerForceNativeLive, false)

		selector := NewSelector(selectorCanPlay)
		streams := []*video.Stream{
			{VideoID: "v", Resolution: 720, Kind: video.KindMP4, URL: "https://example.com/720.mp4", Live: true},
			{VideoID: "v", Resolution: 1080, Kind: video.KindWebM, URL: "https://example.com/1080.webm", Live: true},
		}

		Convey("When selecting under a profile pinned to the general backend", func() {
			selection, ok := selector.PreferredStream(streams, Condition{Charging: true}).Get()

			Convey("Then the constrained backend is forced", func() {
				So(ok, ShouldBeTrue)
				So(selection.Backend, ShouldEqual, player.KindNative)
				So(selection.Stream.Kind, ShouldEqual, video.KindMP4)
			})
		})
	})
}

func TestParseProfiles(t *testing.T) {
	Convey("Given configured profile records", t, func() {
		records := []string{
			"low:native:480:mp4",
			"high:mpv:2160:mp4+webm",
			"broken:unknown:720",
			"alsobroken:mpv:tall",
		}

		Convey("When parsing", func() {
			profiles := parseProfiles(records)

			Convey("Then malformed records are skipped", func() {
				So(profiles, ShouldHaveLength, 2)
				So(profiles[0].ID, ShouldEqual, "low")
				So(profiles[1].Formats, ShouldResemble, []video.Kind{video.KindMP4, video.KindWebM})
			})
		})
	})
}
