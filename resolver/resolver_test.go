package resolver

import (
	"testing"

	"github.com/rickykresslein/yattee/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestGet(t *testing.T) {
	Convey("When trying to get an invalid resolver", t, func() {
		_, ok := Get("kek")
		Convey("Then ok should be false", func() {
			So(ok, ShouldBeFalse)
		})
	})
}
