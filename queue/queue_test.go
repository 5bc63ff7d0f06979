package queue

import (
	"testing"
	"time"

	"github.com/rickykresslein/yattee/video"
	. "github.com/smartystreets/goconvey/convey"
)

func testQueue() *Queue {
	return newQueue(nil)
}

func testItem(id string) *Item {
	return NewItem(&video.Video{ID: id, Title: "Video " + id})
}

func TestQueueSequential(t *testing.T) {
	Convey("Given a sequential queue with three items", t, func() {
		q := testQueue()
		a, b, c := testItem("a"), testItem("b"), testItem("c")
		q.Append(a)
		q.Append(b)
		q.Append(c)

		Convey("When selecting the first item", func() {
			q.Select(0)

			Convey("Then advancing walks the queue in order", func() {
				next, restart := q.Advance()
				So(restart, ShouldBeFalse)
				So(next.MustGet(), ShouldEqual, b)

				next, _ = q.Advance()
				So(next.MustGet(), ShouldEqual, c)
			})

			Convey("Then advancing past the end yields nothing without error", func() {
				q.Select(2)
				next, restart := q.Advance()
				So(restart, ShouldBeFalse)
				So(next.IsAbsent(), ShouldBeTrue)

				Convey("And the current item is unchanged", func() {
					So(q.Current().MustGet(), ShouldEqual, c)
				})
			})

			Convey("Then Previous returns to the played item", func() {
				q.Advance()
				prev := q.Previous()
				So(prev.MustGet(), ShouldEqual, a)
			})
		})

		Convey("When removing an entry before the current one", func() {
			q.Select(1)
			q.Remove(0)

			Convey("Then the current item identity is untouched", func() {
				So(q.Current().MustGet(), ShouldEqual, b)

				next, _ := q.Advance()
				So(next.MustGet(), ShouldEqual, c)
			})
		})

		Convey("When removing the current entry itself", func() {
			q.Select(1)
			q.Remove(1)

			Convey("Then it stays current but has no successor", func() {
				So(q.Current().MustGet(), ShouldEqual, b)

				next, _ := q.Advance()
				So(next.IsAbsent(), ShouldBeTrue)
			})
		})
	})
}

func TestQueueLoopOne(t *testing.T) {
	Convey("Given a queue in loop-one mode", t, func() {
		q := testQueue()
		a := testItem("a")
		q.Append(a)
		q.Append(testItem("b"))
		q.Select(0)
		q.SetMode(LoopOne)

		Convey("When advancing", func() {
			next, restart := q.Advance()

			Convey("Then the same item is reselected with a restart", func() {
				So(next.MustGet(), ShouldEqual, a)
				So(restart, ShouldBeTrue)
			})
		})

		Convey("When nothing is current", func() {
			empty := testQueue()
			empty.SetMode(LoopOne)
			next, restart := empty.Advance()

			Convey("Then there is nothing to loop", func() {
				So(next.IsAbsent(), ShouldBeTrue)
				So(restart, ShouldBeFalse)
			})
		})
	})
}

func TestQueueShuffle(t *testing.T) {
	Convey("Given a queue in shuffle mode", t, func() {
		q := testQueue()
		items := []*Item{testItem("a"), testItem("b"), testItem("c"), testItem("d")}
		for _, item := range items {
			q.Append(item)
		}
		q.Select(0)
		q.SetMode(Shuffle)

		Convey("When advancing through a full cycle", func() {
			visited := map[*Item]struct{}{items[0]: {}}
			for i := 0; i < len(items)-1; i++ {
				next, restart := q.Advance()
				So(restart, ShouldBeFalse)
				So(next.IsPresent(), ShouldBeTrue)
				visited[next.MustGet()] = struct{}{}
			}

			Convey("Then every item is played exactly once", func() {
				So(len(visited), ShouldEqual, len(items))
			})

			Convey("And the next advance starts a fresh cycle", func() {
				next, _ := q.Advance()
				So(next.IsPresent(), ShouldBeTrue)
				So(next.MustGet(), ShouldNotEqual, q.played.Peek())
			})
		})
	})
}

func TestQueuePositions(t *testing.T) {
	Convey("Given a queue with a current item", t, func() {
		q := testQueue()
		q.Append(testItem("a"))
		q.Select(0)

		Convey("When preserving the playback position", func() {
			q.UpdatePosition(42 * time.Second)

			Convey("Then the item remembers it", func() {
				pos, ok := q.Current().MustGet().Position.Get()
				So(ok, ShouldBeTrue)
				So(pos, ShouldEqual, 42*time.Second)
			})
		})
	})
}

func TestResolveProvisional(t *testing.T) {
	Convey("Given a provisional queue item", t, func() {
		q := testQueue()
		item := NewItem(&video.Video{ID: "x"})
		item.Provisional = true
		q.Append(item)

		Convey("When resolving with matching identity", func() {
			resolved := &video.Video{ID: "x", Title: "Resolved"}

			Convey("Then the metadata is upgraded", func() {
				So(q.ResolveProvisional(item, resolved), ShouldBeTrue)
				So(item.Video.Title, ShouldEqual, "Resolved")
				So(item.Provisional, ShouldBeFalse)
			})
		})

		Convey("When resolving with a different identity", func() {
			Convey("Then the resolution is dropped", func() {
				So(q.ResolveProvisional(item, &video.Video{ID: "y"}), ShouldBeFalse)
				So(item.Provisional, ShouldBeTrue)
			})
		})
	})
}
