// Package history provides the implementation for tracking and persisting watch state.
package history

import (
	"github.com/metafates/gache"
	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/video"
	"github.com/rickykresslein/yattee/where"
)

// cacher provides an abstracted, disk-backed registry for watch records.
var cacher = gache.New[map[string]*WatchedVideo](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of watch records from the persistent store.
func Get() (map[string]*WatchedVideo, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*WatchedVideo), nil
	}
	return cached, nil
}

// RecordWatch persists a video into the watch history registry.
// Finished state is sticky: a later unfinished watch never regresses a record
// that was already marked finished.
func RecordWatch(v *video.Video, finished bool) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newWatchedVideo(v)
	if existing, exists := saved[v.ID]; exists {
		finished = finished || existing.Finished
	}
	record.Finished = finished

	saved[v.ID] = record

	return cacher.Set(saved)
}

// Watched reports whether the video id is present in the watch history.
func Watched(videoID string) (bool, error) {
	saved, err := Get()
	if err != nil {
		return false, err
	}
	_, ok := saved[videoID]
	return ok, nil
}

// Remove permanently deletes a specific watch record from the registry.
func Remove(record *WatchedVideo) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.ID)
	return cacher.Set(saved)
}
