// Package player defines a unified abstraction layer for media playback backends.
package player

import (
	"fmt"
	"time"

	"github.com/rickykresslein/yattee/video"
)

// MPV is the general-purpose backend. It plays arbitrary streams, including
// HLS manifests and adaptive renditions that require muxing a separate audio
// track at play time.
type MPV struct {
	*engine
}

// NewMPV creates the general backend (does not spawn the decoder process).
func NewMPV() *MPV {
	return &MPV{engine: newEngine(KindMPV, "mpv", mpvArgs)}
}

// CanPlay reports true for every stream; mpv is the fallback decoder.
func (m *MPV) CanPlay(stream *video.Stream) bool {
	return stream != nil
}

// AttachVideoTrack re-enables video decoding on an audio-only session and adds
// the rendition's video asset when it lives in a separate file. Used for the
// music-mode to full-playback transition without reloading the stream.
func (m *MPV) AttachVideoTrack() error {
	stream := m.LoadedStream()
	if stream == nil {
		return fmt.Errorf("no loaded stream to attach video to")
	}

	if stream.RequiresMuxing() {
		target, err := sanitizeMediaTarget(stream.VideoURL)
		if err != nil {
			return err
		}
		if err := m.p.command("video-add", target); err != nil {
			return err
		}
	}
	return m.p.set("vid", "auto")
}

// mpvArgs builds the spawn arguments for a first load.
// CRUCIAL: Pass ONLY the socket, title, start position, and URL.
// Do NOT pass --vo, --profile or --hwdec, respect the user's mpv.conf.
func mpvArgs(socket, target, title string, stream *video.Stream, at time.Duration) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		fmt.Sprintf("--force-media-title=%s", title),
		fmt.Sprintf("--title=%s", title), // Some builds only respect --title
		"--force-window=yes",
		"--idle=yes",
	}

	if at > 0 {
		args = append(args, fmt.Sprintf("--start=%f", at.Seconds()))
	}

	if stream.RequiresMuxing() {
		args = append(args, fmt.Sprintf("--audio-file=%s", stream.AudioURL))
	}

	if fields := headerFields(stream.Headers); fields != "" {
		args = append(args, fmt.Sprintf("--http-header-fields=%s", fields))
	}

	return append(args, target)
}
