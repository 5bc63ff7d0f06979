package queue

import (
	"math/rand"
	"time"

	"github.com/rickykresslein/yattee/util"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Queue holds the ordered list of items plus the current-item pointer.
// The pointer is an item reference rather than an index, so list mutations
// never implicitly change which item is current: the current item changes
// only through Select, Advance or Previous.
//
// Queue is not safe for concurrent use; the playback session owns it and
// drives all mutations from its coordination goroutine.
type Queue struct {
	items   []*Item
	current *Item
	mode    Mode

	played *util.Stack[*Item]
	seen   map[*Item]struct{}

	rng     *rand.Rand
	persist func(*Queue)
}

// New creates an empty queue in sequential mode that persists mutations to disk.
func New() *Queue {
	return newQueue(save)
}

func newQueue(persist func(*Queue)) *Queue {
	return &Queue{
		mode:    Sequential,
		played:  &util.Stack[*Item]{},
		seen:    make(map[*Item]struct{}),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		persist: persist,
	}
}

// Items returns the queue entries in order.
func (q *Queue) Items() []*Item {
	return q.items
}

// Current returns the current item, if any.
func (q *Queue) Current() mo.Option[*Item] {
	if q.current == nil {
		return mo.None[*Item]()
	}
	return mo.Some(q.current)
}

// Mode returns the active playback mode.
func (q *Queue) Mode() Mode {
	return q.mode
}

// SetMode switches the playback mode. Switching away from shuffle clears the
// played-set so a later return to shuffle starts a fresh cycle.
func (q *Queue) SetMode(mode Mode) {
	if q.mode == mode {
		return
	}
	q.mode = mode
	if mode != Shuffle {
		q.seen = make(map[*Item]struct{})
	}
	q.mutated()
}

// Append adds an item to the end of the queue.
func (q *Queue) Append(item *Item) {
	q.items = append(q.items, item)
	q.mutated()
}

// PlayNext inserts an item directly after the current one, or at the front
// when nothing is current.
func (q *Queue) PlayNext(item *Item) {
	at := 0
	if idx := q.indexOf(q.current); idx >= 0 {
		at = idx + 1
	}
	q.items = append(q.items[:at], append([]*Item{item}, q.items[at:]...)...)
	q.mutated()
}

// Remove deletes the item at the given index. The current item stays current
// even when its own entry is removed; it simply no longer has a successor
// until something is selected.
func (q *Queue) Remove(index int) {
	if index < 0 || index >= len(q.items) {
		return
	}
	removed := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	delete(q.seen, removed)
	q.mutated()
}

// Clear drops every queued item. The current item keeps playing.
func (q *Queue) Clear() {
	q.items = nil
	q.seen = make(map[*Item]struct{})
	q.played.Clear()
	q.mutated()
}

// Select makes the item at the given index current, pushing the previous
// current item onto the played stack.
func (q *Queue) Select(index int) mo.Option[*Item] {
	if index < 0 || index >= len(q.items) {
		return mo.None[*Item]()
	}
	q.makeCurrent(q.items[index])
	return mo.Some(q.current)
}

// SelectItem makes an arbitrary item current, appending it to the queue first
// when it is not already a member. This is how autoplay candidates and
// direct "play this video" requests enter the queue.
func (q *Queue) SelectItem(item *Item) {
	if q.indexOf(item) < 0 {
		q.items = append(q.items, item)
	}
	q.makeCurrent(item)
}

// Advance resolves the next item according to the playback mode.
// The second return value reports whether the same item should restart from
// zero (loop-one). An empty option with restart == false means playback
// simply stops; running past the end of the queue is not an error.
func (q *Queue) Advance() (mo.Option[*Item], bool) {
	switch q.mode {
	case LoopOne:
		if q.current == nil {
			return mo.None[*Item](), false
		}
		return mo.Some(q.current), true

	case Shuffle:
		return q.advanceShuffle(), false

	default:
		// Sequential; related-autoplay advancement is resolved by the
		// autoplay engine before falling back to sequential order.
		return q.advanceSequential(), false
	}
}

// Previous returns to the most recently played item, if there is one.
func (q *Queue) Previous() mo.Option[*Item] {
	for q.played.Len() > 0 {
		item := q.played.Pop()
		if q.indexOf(item) < 0 {
			continue
		}
		q.current = item
		q.mutated()
		return mo.Some(item)
	}
	return mo.None[*Item]()
}

// VideoIDs returns the ids of every queued video.
func (q *Queue) VideoIDs() []string {
	return lo.Map(q.items, func(item *Item, _ int) string {
		return item.Video.ID
	})
}

func (q *Queue) advanceSequential() mo.Option[*Item] {
	idx := q.indexOf(q.current)
	if idx < 0 || idx+1 >= len(q.items) {
		return mo.None[*Item]()
	}
	q.makeCurrent(q.items[idx+1])
	return mo.Some(q.current)
}

func (q *Queue) advanceShuffle() mo.Option[*Item] {
	if q.current != nil {
		q.seen[q.current] = struct{}{}
	}

	candidates := lo.Filter(q.items, func(item *Item, _ int) bool {
		_, played := q.seen[item]
		return !played && item != q.current
	})
	if len(candidates) == 0 {
		// Cycle exhausted; start over with everything eligible again.
		q.seen = make(map[*Item]struct{})
		candidates = lo.Filter(q.items, func(item *Item, _ int) bool {
			return item != q.current
		})
	}
	if len(candidates) == 0 {
		return mo.None[*Item]()
	}

	q.makeCurrent(candidates[q.rng.Intn(len(candidates))])
	return mo.Some(q.current)
}

func (q *Queue) makeCurrent(item *Item) {
	if q.current != nil && q.current != item {
		q.played.Push(q.current)
	}
	q.current = item
	q.mutated()
}

func (q *Queue) indexOf(item *Item) int {
	if item == nil {
		return -1
	}
	return lo.IndexOf(q.items, item)
}

func (q *Queue) mutated() {
	if q.persist != nil {
		q.persist(q)
	}
}

// UpdatePosition preserves the playback position of the current item so a
// later return resumes where playback left off.
func (q *Queue) UpdatePosition(pos time.Duration) {
	if q.current == nil {
		return
	}
	q.current.Position = mo.Some(pos)
}

// ResolveProvisional replaces the placeholder metadata of a provisional item
// with fully resolved metadata. Identity must match; a stale resolution for
// an item that was replaced in the meantime is dropped.
func (q *Queue) ResolveProvisional(item *Item, resolved *video.Video) bool {
	if item == nil || !item.Provisional || !item.Video.Same(resolved) {
		return false
	}
	item.Video = resolved
	item.Provisional = false
	q.mutated()
	return true
}
