package queue

import (
	"github.com/metafates/gache"
	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// savedQueue is the persisted snapshot of a queue, current item included.
type savedQueue struct {
	Items   []savedItem `json:"items"`
	Current int         `json:"current"`
	Mode    Mode        `json:"mode"`
}

var queueCacher = gache.New[*savedQueue](
	&gache.Options{
		Path:       where.Queue(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var lastPlayedCacher = gache.New[*savedItem](
	&gache.Options{
		Path:       where.LastPlayed(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// save snapshots the queue to disk. Persistence is best-effort; a failed
// write is logged and playback carries on.
func save(q *Queue) {
	snapshot := &savedQueue{
		Items: lo.Map(q.items, func(item *Item, _ int) savedItem {
			return item.toSaved()
		}),
		Current: q.indexOf(q.current),
		Mode:    q.mode,
	}
	if err := queueCacher.Set(snapshot); err != nil {
		log.Warnf("failed to persist queue: %v", err)
	}

	if q.current != nil {
		saved := q.current.toSaved()
		if err := lastPlayedCacher.Set(&saved); err != nil {
			log.Warnf("failed to persist last played item: %v", err)
		}
	}
}

// Restore rebuilds the queue from the last persisted snapshot, honoring the
// restore toggle. A missing or unreadable snapshot yields an empty queue.
func Restore() *Queue {
	q := New()

	if !viper.GetBool(key.QueueRestore) {
		return q
	}

	cached, expired, err := queueCacher.Get()
	if err != nil {
		log.Warnf("failed to restore queue: %v", err)
		return q
	}
	if expired || cached == nil {
		return q
	}

	q.items = lo.Map(cached.Items, func(s savedItem, _ int) *Item {
		return s.toItem()
	})
	if cached.Current >= 0 && cached.Current < len(q.items) {
		q.current = q.items[cached.Current]
	}
	if mode, err := ParseMode(string(cached.Mode)); err == nil {
		q.mode = mode
	}
	return q
}

// LastPlayed returns the most recently played item, if one was persisted.
func LastPlayed() (*Item, error) {
	cached, expired, err := lastPlayedCacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return nil, nil
	}
	return cached.toItem(), nil
}
