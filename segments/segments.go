// Package segments provides a client for the segment metadata service, enabling
// retrieval of time-ranged skip annotations (sponsor segments) for a video.
package segments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"time"

	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/network"
)

const baseURL = "https://sponsor.ajay.app/api/skipSegments"

// Segment represents a continuous temporal range marked for skipping.
type Segment struct {
	Category string        `json:"category"`
	Start    time.Duration `json:"start"`
	End      time.Duration `json:"end"`
}

// Contains reports whether the position falls inside the segment.
func (s Segment) Contains(pos time.Duration) bool {
	return pos >= s.Start && pos < s.End
}

// Duration returns the temporal length of the segment.
func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// apiResponse defines the internal structural mapping for service responses.
type apiResponse []struct {
	Category string     `json:"category"`
	Segment  [2]float64 `json:"segment"`
}

// Load retrieves the ordered skip segments for a video from the metadata service.
// Returns nil (not an error) when the service has no data or is unreachable,
// since segment metadata is strictly best-effort.
func Load(videoID string, categories []string) ([]Segment, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("videoID", videoID)
	for _, c := range categories {
		q.Add("category", c)
	}

	resp, err := network.Client.Get(fmt.Sprintf("%s?%s", baseURL, q.Encode()))
	if err != nil {
		log.Warnf("segments API request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		// 404 means no segments registered for the video, a valid state.
		if resp.StatusCode != 404 {
			log.Warnf("segments API returned status %d", resp.StatusCode)
		}
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read segments response: %w", err)
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse segments response: %w", err)
	}

	segments := make([]Segment, 0, len(data))
	for _, entry := range data {
		start := time.Duration(entry.Segment[0] * float64(time.Second))
		end := time.Duration(entry.Segment[1] * float64(time.Second))
		if end <= start {
			continue
		}
		segments = append(segments, Segment{
			Category: entry.Category,
			Start:    start,
			End:      end,
		})
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	return segments, nil
}

// PlayableDuration computes the item duration excluding all marked ranges.
// Overlapping segments are merged so shared time is only subtracted once.
func PlayableDuration(total time.Duration, segments []Segment) time.Duration {
	if total <= 0 || len(segments) == 0 {
		return total
	}

	var skipped, cursor time.Duration
	for _, s := range segments {
		start, end := s.Start, s.End
		if end > total {
			end = total
		}
		if start < cursor {
			start = cursor
		}
		if end <= start {
			continue
		}
		skipped += end - start
		cursor = end
	}

	if skipped >= total {
		return 0
	}
	return total - skipped
}
