package query

import (
	"testing"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Given query history", t, func() {
		Convey("When remembering queries", func() {
			So(Remember("lofi beats", 1), ShouldBeNil)
			So(Remember("concert film", 10), ShouldBeNil)

			Convey("Then suggestions should be sorted by rank", func() {
				suggestionCache = make(map[string][]*queryRecord)

				s := SuggestMany("con")
				So(len(s), ShouldBeGreaterThanOrEqualTo, 1)
				So(s[0], ShouldEqual, "concert film")
			})

			Convey("It sanitizes input", func() {
				So(sanitize("  LOFI Beats  "), ShouldEqual, "lofi beats")
			})
		})

		Convey("When suggestions are disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			defer viper.Set(key.SearchShowQuerySuggestions, true)

			Convey("Then nothing is suggested", func() {
				So(SuggestMany("con"), ShouldBeEmpty)
			})
		})
	})
}
