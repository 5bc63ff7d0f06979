// Package dislikes provides a best-effort client for the dislike-count metadata service.
package dislikes

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rickykresslein/yattee/internal/cache"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/network"
)

const baseURL = "https://returnyoutubedislikeapi.com/votes"

// apiResponse defines the internal structural mapping for service responses.
type apiResponse struct {
	Dislikes int `json:"dislikes"`
}

// Load retrieves the dislike count for a video.
// Returns -1 (not an error) when the count is unavailable, since dislike
// metadata is strictly best-effort.
func Load(videoID string) (int, error) {
	key := cache.GenerateKey(videoID, "dislikes")

	var cached int
	if cache.Read(key, &cached) {
		return cached, nil
	}

	resp, err := network.Client.Get(fmt.Sprintf("%s?videoId=%s", baseURL, videoID))
	if err != nil {
		log.Warnf("dislikes API request failed: %v", err)
		return -1, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		log.Warnf("dislikes API returned status %d", resp.StatusCode)
		return -1, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return -1, fmt.Errorf("read dislikes response: %w", err)
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return -1, fmt.Errorf("parse dislikes response: %w", err)
	}

	_ = cache.Write(key, data.Dislikes)
	return data.Dislikes, nil
}
