// Package video defines the domain models for playable media and its renditions.
package video

import "fmt"

// Kind classifies the container/codec shape of a stream.
type Kind string

const (
	// KindMP4 is a single-file MP4/AVC rendition playable by any backend.
	KindMP4 Kind = "mp4"
	// KindWebM is a single-file WebM/VP9 rendition.
	KindWebM Kind = "webm"
	// KindHLS is an HTTP Live Streaming manifest.
	KindHLS Kind = "hls"
	// KindAdaptive is a rendition with separate audio and video assets that must be muxed at play time.
	KindAdaptive Kind = "adaptive"
)

// Stream represents one playable encoding of a Video at a given quality and format.
type Stream struct {
	// VideoID is the identity of the owning Video.
	VideoID string `json:"video_id"`
	// Resolution is the vertical pixel count (e.g. 1080). Zero for audio-only.
	Resolution int `json:"resolution"`
	// Kind is the container/codec classification.
	Kind Kind `json:"kind"`
	// URL is the direct asset or manifest URL for single-source kinds.
	URL string `json:"url"`
	// AudioURL and VideoURL carry the separate assets of an adaptive rendition.
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	// Live marks the rendition as live content.
	Live bool `json:"live"`
	// HTTP headers required to stream.
	Headers map[string]string `json:"headers,omitempty"`
}

// String returns the quality label for display (e.g. "1080p adaptive").
func (s *Stream) String() string {
	if s.Resolution == 0 {
		return string(s.Kind)
	}
	return fmt.Sprintf("%dp %s", s.Resolution, s.Kind)
}

// IsHLS reports whether the stream is an HLS manifest.
func (s *Stream) IsHLS() bool {
	return s.Kind == KindHLS
}

// RequiresMuxing reports whether the stream carries separate audio and video assets.
func (s *Stream) RequiresMuxing() bool {
	return s.Kind == KindAdaptive && s.AudioURL != "" && s.VideoURL != ""
}

// Target returns the primary asset URL handed to a backend.
func (s *Stream) Target() string {
	if s.RequiresMuxing() {
		return s.VideoURL
	}
	return s.URL
}

// Same reports whether the other stream references the same encoded asset.
func (s *Stream) Same(other *Stream) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.VideoID == other.VideoID &&
		s.Resolution == other.Resolution &&
		s.Kind == other.Kind &&
		s.Target() == other.Target()
}
