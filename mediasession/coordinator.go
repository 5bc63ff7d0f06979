// Package mediasession mirrors playback state onto the OS media session
// (MPRIS over D-Bus) and routes remote transport commands back into the
// playback session.
package mediasession

import (
	"context"
	"time"

	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/playback"
	"github.com/spf13/viper"
)

// pipCloseDelay is waited after a backgrounding notice before PiP is closed,
// so a quick foreground bounce does not tear the surface down.
const pipCloseDelay = 2 * time.Second

// Controller is the playback surface the coordinator drives. Satisfied by
// *playback.Session.
type Controller interface {
	Resume()
	Pause()
	TogglePlay()
	SeekTo(t time.Duration)
	SeekBy(d time.Duration)
	Advance()
	Previous()
	StartPictureInPicture()
	StopPictureInPicture()
	SurfacePresented()
}

// Coordinator consumes session events and mirrors them to the now-playing
// surface, handles remote commands and owns the PiP/artwork lifecycles.
type Coordinator struct {
	controller Controller
	publisher  publisher
	artwork    *artworkFetcher
	commands   commandScheme

	background bool
	pip        bool
	schedule   func(time.Duration, func())
}

// publisher is the now-playing sink; the MPRIS service in production,
// a recorder in tests.
type publisher interface {
	PublishMetadata(meta Metadata)
	PublishPosition(pos time.Duration)
	PublishPlaying(playing bool)
	Close()
}

// Metadata is the now-playing field set mirrored to the OS surface.
type Metadata struct {
	VideoID    string
	Title      string
	Author     string
	Live       bool
	Duration   time.Duration
	ArtworkURL string

	QueueIndex int
	QueueCount int
}

// New wires a coordinator to the session. When the media session is disabled
// or the D-Bus connection fails, the coordinator still runs for PiP and
// artwork handling with a no-op now-playing sink.
func New(controller Controller) *Coordinator {
	c := &Coordinator{
		controller: controller,
		publisher:  nopPublisher{},
		artwork:    newArtworkFetcher(),
		commands:   parseCommandScheme(viper.GetString(key.MediaSessionCommandScheme)),
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}

	if viper.GetBool(key.MediaSessionEnable) {
		service, err := newMPRISService(c)
		if err != nil {
			log.Warnf("media session unavailable: %v", err)
		} else {
			c.publisher = service
		}
	}

	return c
}

// Run consumes session events until the channel closes or the context ends.
// Blocking; callers run it on its own goroutine.
func (c *Coordinator) Run(ctx context.Context, events <-chan playback.Event) {
	defer c.publisher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(ev)
		}
	}
}

func (c *Coordinator) handle(ev playback.Event) {
	switch ev.Kind {
	case playback.EventItemChanged:
		if ev.Video == nil {
			c.publisher.PublishMetadata(Metadata{})
			return
		}
		meta := Metadata{
			VideoID:    ev.Video.ID,
			Title:      ev.Video.Title,
			Author:     ev.Video.Author,
			Live:       ev.Video.Live,
			ArtworkURL: ev.Video.ThumbnailURL,
			QueueIndex: ev.QueueIndex,
			QueueCount: ev.QueueCount,
		}
		if !ev.Live {
			meta.Duration = ev.Duration
		}
		c.publisher.PublishMetadata(meta)

		if viper.GetBool(key.MediaSessionArtwork) && meta.ArtworkURL != "" {
			c.artwork.fetch(meta.VideoID, meta.ArtworkURL)
		}

	case playback.EventTimeChanged:
		c.publisher.PublishPosition(ev.Position)

	case playback.EventPlayStateChanged:
		c.publisher.PublishPlaying(ev.Playing)

	case playback.EventPiPChanged:
		c.pip = ev.PiP
		if !ev.PiP && viper.GetBool(key.PiPReturnOnClose) {
			c.controller.SurfacePresented()
		}

	case playback.EventClosed:
		c.publisher.PublishMetadata(Metadata{})
	}
}

// Background tells the coordinator the application moved to the background.
// With the close-on-background option set, PiP is torn down after a short
// delay; the state is re-checked when the timer fires, so bouncing back to
// the foreground within the window keeps the surface.
func (c *Coordinator) Background() {
	c.background = true
	if !c.pip || !viper.GetBool(key.PiPCloseOnBackground) {
		return
	}
	c.schedule(pipCloseDelay, func() {
		if c.background && c.pip {
			c.controller.StopPictureInPicture()
		}
	})
}

// Foreground tells the coordinator the application is visible again.
func (c *Coordinator) Foreground() {
	c.background = false
}

// Remote command entry points, invoked by the MPRIS service.

func (c *Coordinator) commandPlay()   { c.controller.Resume() }
func (c *Coordinator) commandPause()  { c.controller.Pause() }
func (c *Coordinator) commandToggle() { c.controller.TogglePlay() }

func (c *Coordinator) commandScrub(t time.Duration) { c.controller.SeekTo(t) }

// commandNext and commandPrevious route per the configured command scheme:
// seek-oriented schemes map them to 10 second skips, track-oriented schemes
// to queue navigation. The two sets are mutually exclusive.
func (c *Coordinator) commandNext() {
	if c.commands == schemeSeek {
		c.controller.SeekBy(10 * time.Second)
		return
	}
	c.controller.Advance()
}

func (c *Coordinator) commandPrevious() {
	if c.commands == schemeSeek {
		c.controller.SeekBy(-10 * time.Second)
		return
	}
	c.controller.Previous()
}

// commandScheme selects which remote transport command set is active.
type commandScheme int

const (
	schemeTrack commandScheme = iota
	schemeSeek
)

func parseCommandScheme(s string) commandScheme {
	if s == "seek" {
		return schemeSeek
	}
	return schemeTrack
}

type nopPublisher struct{}

func (nopPublisher) PublishMetadata(Metadata)      {}
func (nopPublisher) PublishPosition(time.Duration) {}
func (nopPublisher) PublishPlaying(bool)           {}
func (nopPublisher) Close()                        {}
