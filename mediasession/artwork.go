package mediasession

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/rickykresslein/yattee/filesystem"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/network"
	"github.com/rickykresslein/yattee/where"
)

// artworkFetcher downloads now-playing artwork. At most one download is in
// flight; starting a fetch for a new video supersedes the previous one, whose
// result is discarded when it lands.
type artworkFetcher struct {
	mu       sync.Mutex
	current  string
	download func(url string) ([]byte, error)
}

func newArtworkFetcher() *artworkFetcher {
	return &artworkFetcher{download: httpDownload}
}

// fetch starts an asynchronous artwork download for the video. Already
// cached artwork short-circuits.
func (a *artworkFetcher) fetch(videoID, url string) {
	a.mu.Lock()
	a.current = videoID
	a.mu.Unlock()

	if _, ok := a.localPath(videoID); ok {
		return
	}

	go func() {
		data, err := a.download(url)
		if err != nil {
			log.Warnf("artwork fetch for %s failed: %v", videoID, err)
			return
		}

		a.mu.Lock()
		superseded := a.current != videoID
		a.mu.Unlock()
		if superseded {
			return
		}

		path := filepath.Join(where.Artwork(), videoID+".jpg")
		if err := filesystem.API().WriteFile(path, data, 0644); err != nil {
			log.Warnf("failed to store artwork for %s: %v", videoID, err)
		}
	}()
}

// localPath returns the on-disk artwork location when it is already cached.
func (a *artworkFetcher) localPath(videoID string) (string, bool) {
	path := filepath.Join(where.Artwork(), videoID+".jpg")
	exists, err := filesystem.API().Exists(path)
	if err != nil || !exists {
		return "", false
	}
	return path, true
}

func httpDownload(url string) ([]byte, error) {
	resp, err := network.Client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("artwork request returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
