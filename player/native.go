// Package player defines a unified abstraction layer for media playback backends.
package player

import (
	"fmt"
	"time"

	"github.com/rickykresslein/yattee/video"
)

// nativeCeiling is the highest resolution the constrained pipeline decodes.
const nativeCeiling = 2160

// Native is the constrained backend: the platform hardware-decode pipeline.
// It only accepts single-file MP4/AVC renditions, never HLS manifests and
// never adaptive renditions with separate audio and video assets.
type Native struct {
	*engine
}

// NewNative creates the constrained backend (does not spawn the decoder process).
func NewNative() *Native {
	return &Native{engine: newEngine(KindNative, "mpv", nativeArgs)}
}

// CanPlay restricts the constrained pipeline to direct MP4 renditions.
func (n *Native) CanPlay(stream *video.Stream) bool {
	if stream == nil {
		return false
	}
	if stream.IsHLS() || stream.RequiresMuxing() {
		return false
	}
	return stream.Kind == video.KindMP4 && stream.Resolution <= nativeCeiling
}

// nativeArgs builds the spawn arguments for the hardware pipeline: decoding is
// pinned to the platform hardware path and software fallback is disabled,
// which is what narrows the playable container/codec set.
func nativeArgs(socket, target, title string, stream *video.Stream, at time.Duration) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title),
		"--force-window=yes",
		"--idle=yes",
		"--hwdec=auto-safe",
		"--vo=gpu",
		"--hwdec-codecs=h264,hevc",
		"--demuxer=lavf",
	}

	if at > 0 {
		args = append(args, fmt.Sprintf("--start=%f", at.Seconds()))
	}

	if fields := headerFields(stream.Headers); fields != "" {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", fields))
	}

	return append(args, target)
}
