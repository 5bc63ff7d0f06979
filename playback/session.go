package playback

import (
	"context"
	"time"

	"github.com/rickykresslein/yattee/dislikes"
	"github.com/rickykresslein/yattee/history"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/queue"
	"github.com/rickykresslein/yattee/segments"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// settleDelay is waited after a backend activation before the force-upgrade
// fires. Activation may need asynchronous native setup before the target can
// safely accept a seek; re-checking session state when the timer fires stands
// in for cancellation when the user switches again within the window.
const settleDelay = 300 * time.Millisecond

// Session is the playback core. It owns the published state, drives backend
// selection and stream upgrades, and exposes the single playback API.
//
// All state mutation happens on one coordination goroutine; public operations
// redispatch onto it, so the session needs no internal locking.
type Session struct {
	backends map[player.Kind]player.Backend
	active   player.Kind

	selector *Selector
	queue    *queue.Queue
	autoplay *queue.Autoplay
	skipper  *segments.Skipper

	state State

	dispatch chan func()
	events   chan Event
	done     chan struct{}

	loadSegments   func(videoID string, categories []string) ([]segments.Segment, error)
	loadDislikes   func(videoID string) (int, error)
	recordWatch    func(v *video.Video, finished bool) error
	resolveStreams func(v *video.Video) (*video.Video, error)
	conditions     func() Condition
	schedule       func(d time.Duration, fn func())

	surfaceReady bool
	pendingLoad  func()
}

// New creates a session over the given backends. The initially active backend
// is the configured one; the queue is taken as restored by the caller.
func New(q *queue.Queue, backends ...player.Backend) *Session {
	s := &Session{
		backends: make(map[player.Kind]player.Backend, len(backends)),
		queue:    q,

		dispatch: make(chan func(), 16),
		events:   make(chan Event, 64),
		done:     make(chan struct{}),

		loadSegments: segments.Load,
		loadDislikes: dislikes.Load,
		recordWatch:  history.RecordWatch,
		conditions:   DetectCondition,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},

		surfaceReady: true,
	}
	s.state.Rate = viper.GetFloat64(key.PlayerDefaultRate)
	s.state.reset()

	for _, b := range backends {
		s.backends[b.Kind()] = b
	}
	s.active = player.Kind(viper.GetString(key.PlayerBackend))
	if _, ok := s.backends[s.active]; !ok {
		s.active = player.KindMPV
	}
	s.state.Backend = s.active

	s.selector = NewSelector(s.backendCanPlay)
	s.autoplay = queue.NewAutoplay(s.watchedForAutoplay, s.resolveForAutoplay)

	return s
}

// SetStreamResolver wires the metadata resolver used to (re)populate streams
// and related-video metadata. Must be set before Start.
func (s *Session) SetStreamResolver(resolve func(v *video.Video) (*video.Video, error)) {
	s.resolveStreams = resolve
}

// Events returns the side-effect notification channel consumed by the
// session coordinator.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Queue returns the session's queue. Mutations from other goroutines must go
// through session operations; direct access is for the coordination context
// and startup wiring only.
func (s *Session) Queue() *queue.Queue {
	return s.queue
}

// Start launches the coordination goroutine. It returns immediately;
// the session runs until the context is cancelled.
func (s *Session) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Session) run(ctx context.Context) {
	var native, mpv <-chan player.Event
	if b, ok := s.backends[player.KindNative]; ok {
		native = b.Events()
	}
	if b, ok := s.backends[player.KindMPV]; ok {
		mpv = b.Events()
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case fn := <-s.dispatch:
			fn()
		case ev := <-native:
			s.handleBackendEvent(ev)
		case ev := <-mpv:
			s.handleBackendEvent(ev)
		}
	}
}

// do runs fn on the coordination goroutine and waits for it to complete.
func (s *Session) do(fn func()) {
	ran := make(chan struct{})
	select {
	case s.dispatch <- func() { fn(); close(ran) }:
		select {
		case <-ran:
		case <-s.done:
		}
	case <-s.done:
	}
}

// post queues fn on the coordination goroutine without waiting. Used by
// asynchronous completions so they never block on the session.
func (s *Session) post(fn func()) {
	select {
	case s.dispatch <- fn:
	case <-s.done:
	}
}

// Snapshot returns a copy of the published state.
func (s *Session) Snapshot() State {
	var snap State
	s.do(func() { snap = s.state })
	return snap
}

// ActiveBackend returns the identifier of the active backend.
func (s *Session) ActiveBackend() player.Kind {
	var kind player.Kind
	s.do(func() { kind = s.active })
	return kind
}

// Play makes the video current and loads it, optionally at a resume position.
// Playing the already-current video only resumes it; a reload of the same
// video needs force. With showPlayer false the actual load is deferred until
// SurfacePresented, so enqueue-and-keep-browsing flows do not steal the
// output surface.
func (s *Session) Play(v *video.Video, at mo.Option[time.Duration], showPlayer, force bool) {
	s.do(func() {
		if !force && s.state.Err == nil && s.state.Video().Same(v) {
			s.backend().Play()
			return
		}

		s.backend().Pause()

		item := queue.NewItem(v)
		item.Position = at
		s.queue.SelectItem(item)

		load := func() { s.loadCurrent(at) }
		if !showPlayer && !s.surfaceReady {
			s.pendingLoad = load
			return
		}
		load()
	})
}

// SurfacePresented tells the session the player surface is now visible,
// releasing a deferred load if one is pending.
func (s *Session) SurfacePresented() {
	s.do(func() {
		s.surfaceReady = true
		if s.pendingLoad != nil {
			load := s.pendingLoad
			s.pendingLoad = nil
			load()
		}
	})
}

// SurfaceDismissed marks the player surface as hidden so subsequent
// showPlayer=false plays defer their load again.
func (s *Session) SurfaceDismissed() {
	s.do(func() { s.surfaceReady = false })
}

// PlayStream hands a specific stream to the active backend.
// A fresh load (isUpgrade false) resets segment markers and kicks off the
// best-effort segment and dislike fetches; an upgrade touches neither.
func (s *Session) PlayStream(stream *video.Stream, of *video.Video, preservingTime, isUpgrade bool) {
	s.do(func() { s.playStream(stream, of, preservingTime, isUpgrade) })
}

// UpgradeToStream re-invokes the stream load preserving time, only when the
// requested stream actually differs from the current one (or force is set).
func (s *Session) UpgradeToStream(stream *video.Stream, force bool) {
	s.do(func() { s.upgradeToStream(stream, force) })
}

// ChangeActiveBackend is the backend state-machine transition. Switching to
// a backend that already holds the same video performs a seamless handoff:
// seek to the source backend's position and resume, no reload.
func (s *Session) ChangeActiveBackend(from, to player.Kind) {
	s.do(func() { s.changeActiveBackend(from, to) })
}

// CloseCurrentItem records the item into history, saves its position, then
// detaches it from the backend, in that order.
func (s *Session) CloseCurrentItem(finished bool) {
	s.do(func() { s.closeCurrentItem(finished) })
}

// ToggleMusicMode flips audio-only playback. Entering forces the general
// decoder and suppresses video rendering; leaving restores track auto-detection.
func (s *Session) ToggleMusicMode() {
	s.do(func() {
		if !s.state.MusicMode {
			if s.active != player.KindMPV {
				s.changeActiveBackend(s.active, player.KindMPV)
			}
			s.state.MusicMode = true
			s.backend().SetNeedsDrawing(false)
			return
		}
		s.state.MusicMode = false
		s.backend().SetNeedsDrawing(true)
	})
}

// Advance moves to the next item per the playback mode.
func (s *Session) Advance() {
	s.do(func() { s.advance() })
}

// Previous returns to the most recently played queue item.
func (s *Session) Previous() {
	s.do(func() {
		if item, ok := s.queue.Previous().Get(); ok {
			s.loadItem(item)
		}
	})
}

// Transport passthroughs. All of them are no-ops without a loaded item,
// which the backends guarantee themselves.

func (s *Session) Resume()                { s.do(func() { s.backend().Play() }) }
func (s *Session) Pause()                 { s.do(func() { s.backend().Pause() }) }
func (s *Session) TogglePlay()            { s.do(func() { s.backend().TogglePlay() }) }
func (s *Session) SeekTo(t time.Duration) { s.do(func() { s.backend().SeekTo(t) }) }
func (s *Session) SeekBy(d time.Duration) { s.do(func() { s.backend().SeekBy(d) }) }

// SetRate adjusts the playback speed and remembers it for subsequent loads.
func (s *Session) SetRate(rate float64) {
	s.do(func() {
		s.state.Rate = rate
		s.backend().SetRate(rate)
	})
}

func (s *Session) EnterFullScreen() {
	s.do(func() {
		s.backend().EnterFullScreen()
		s.state.FullScreen = true
	})
}

func (s *Session) ExitFullScreen() {
	s.do(func() {
		s.backend().ExitFullScreen()
		s.state.FullScreen = false
	})
}

// StartPictureInPicture detaches playback into the floating mini surface.
func (s *Session) StartPictureInPicture() {
	s.do(func() {
		s.backend().StartPictureInPicture()
		s.state.PictureInPicture = true
		s.emit(Event{Kind: EventPiPChanged, PiP: true, Video: s.state.Video()})
	})
}

func (s *Session) StopPictureInPicture() {
	s.do(func() {
		s.backend().StopPictureInPicture()
		s.state.PictureInPicture = false
		s.emit(Event{Kind: EventPiPChanged, PiP: false, Video: s.state.Video()})
	})
}

// SetMode switches the playback mode. Leaving related-autoplay invalidates
// any pending candidate.
func (s *Session) SetMode(mode queue.Mode) {
	s.do(func() {
		s.queue.SetMode(mode)
		if mode != queue.RelatedAutoplay {
			s.autoplay.Reset()
		}
	})
}

func (s *Session) backend() player.Backend {
	return s.backends[s.active]
}

func (s *Session) backendCanPlay(kind player.Kind, stream *video.Stream) bool {
	b, ok := s.backends[kind]
	return ok && b.CanPlay(stream)
}

// loadCurrent resolves streams for the current item, runs stream selection
// and loads the preferred rendition, switching backends when the selection
// demands one the active backend is not.
func (s *Session) loadCurrent(at mo.Option[time.Duration]) {
	item, ok := s.queue.Current().Get()
	if !ok {
		return
	}
	v := item.Video

	if len(v.Streams) == 0 && s.resolveStreams != nil {
		resolved, err := s.resolveStreams(v)
		if err != nil {
			s.setError(err)
			return
		}
		v = resolved
		item.Video = resolved
	}

	s.state.Item = item
	s.state.AvailableStreams = v.Streams
	s.state.PreservedTime = at

	selection, ok := s.selector.PreferredStream(v.Streams, s.conditions()).Get()
	if !ok {
		log.Warnf("no playable stream for %s, leaving current playback untouched", v.ID)
		return
	}

	if selection.SwitchRequiredFrom(s.active) {
		s.activateBackend(selection.Backend)
	}

	s.playStream(selection.Stream, v, at.IsPresent(), false)
	s.emitItemChanged()

	if s.queue.Mode() == queue.RelatedAutoplay {
		s.autoplay.OnPlaying(v)
	}
}

func (s *Session) loadItem(item *queue.Item) {
	s.loadCurrent(item.Position)
}

func (s *Session) playStream(stream *video.Stream, of *video.Video, preservingTime, isUpgrade bool) {
	s.setError(nil)

	if s.state.Video() == nil || !s.state.Video().Same(of) {
		item := queue.NewItem(of)
		s.queue.SelectItem(item)
		s.state.Item = item
		s.state.AvailableStreams = of.Streams
		s.emitItemChanged()
	}

	if !isUpgrade {
		s.state.Segments = nil
		s.skipper = nil
		s.fetchSegments(of.ID)
		s.fetchDislikes(of.ID)
	}

	at := time.Duration(0)
	if preservingTime {
		if t, ok := s.backend().CurrentTime().Get(); ok {
			at = t
		} else if t, ok := s.state.PreservedTime.Get(); ok {
			at = t
		}
		s.state.PreservedTime = mo.Some(at)
	}

	s.state.Stream = stream
	if err := s.backend().Load(stream, of, at); err != nil {
		s.setError(err)
		return
	}
	s.backend().SetRate(s.state.Rate)
}

func (s *Session) upgradeToStream(stream *video.Stream, force bool) {
	if stream == nil || (stream.Same(s.state.Stream) && !force) {
		return
	}
	v := s.state.Video()
	if v == nil {
		return
	}
	s.playStream(stream, v, true, true)
}

func (s *Session) changeActiveBackend(from, to player.Kind) {
	if from == to {
		return
	}
	target, ok := s.backends[to]
	if !ok {
		return
	}

	viper.Set(key.PlayerBackend, string(to))

	if to == player.KindMPV && s.state.MusicMode {
		if m, isMPV := target.(*player.MPV); isMPV {
			m.AttachVideoTrack()
		}
	} else {
		s.state.MusicMode = false
	}

	source := s.backends[from]
	if source != nil {
		// Capture the position before pausing so a reload on the target
		// resumes where the source left off.
		if t, ok := source.CurrentTime().Get(); ok {
			s.state.PreservedTime = mo.Some(t)
		}
	}

	for kind, b := range s.backends {
		if kind != to {
			b.Pause()
		}
	}

	s.active = to
	s.state.Backend = to

	current := s.state.Video()
	if current != nil && target.Loaded().Same(current) {
		// Seamless handoff: same video already loaded, reseek and resume.
		if source != nil {
			if t, ok := source.CurrentTime().Get(); ok {
				target.SeekTo(t)
			}
		}
		target.Play()
		s.emit(Event{Kind: EventBackendChanged, Video: current})
		return
	}

	if s.state.Stream != nil && !target.CanPlay(s.state.Stream) {
		s.reselectFor(target)
	}

	stream := s.state.Stream
	s.schedule(settleDelay, func() {
		s.post(func() {
			// The user may have switched again before the settle window
			// closed; state re-validation stands in for cancellation.
			if s.active != to || s.state.Video() == nil {
				return
			}
			s.upgradeToStream(stream, true)
			s.backend().SetNeedsDrawing(!s.state.MusicMode)
		})
	})
	s.emit(Event{Kind: EventBackendChanged, Video: current})
}

// reselectFor recomputes the selected stream for a backend that cannot play
// the current one, keeping the active quality profile's ceiling in force.
// With no compatible stream at all the current selection is kept as a best
// effort; no hard failure path exists for that case.
func (s *Session) reselectFor(target player.Backend) {
	stream, ok := s.selector.PreferredPlayableBy(
		s.state.AvailableStreams,
		s.conditions(),
		target.CanPlay,
	).Get()
	if !ok {
		log.Warnf("no stream playable by %s backend, keeping current selection", target.Kind())
		return
	}

	s.state.Stream = stream
}

func (s *Session) closeCurrentItem(finished bool) {
	v := s.state.Video()
	if v == nil {
		return
	}

	if t, ok := s.backend().CurrentTime().Get(); ok {
		s.queue.UpdatePosition(t)
		if !finished {
			finished = s.reachedCompletion(t)
		}
	}

	if viper.GetBool(key.HistorySaveOnClose) {
		if err := s.recordWatch(v, finished); err != nil {
			log.Warnf("failed to record watch for %s: %v", v.ID, err)
		}
	}

	s.backend().CloseItem()
	s.state.reset()
	s.autoplay.Reset()
	s.emitItemChanged()
}

// reachedCompletion applies the configured completion percentage against the
// item duration, excluding marked segment ranges from the denominator.
func (s *Session) reachedCompletion(at time.Duration) bool {
	total, ok := s.backend().ItemDuration().Get()
	if !ok || total <= 0 {
		return false
	}
	playable := s.state.PlayableDuration(total)
	if playable <= 0 {
		return false
	}
	pct := float64(at) / float64(playable) * 100
	return pct >= float64(viper.GetInt(key.PlayerCompletionPercentage))
}

func (s *Session) advance() {
	if s.queue.Mode() == queue.RelatedAutoplay {
		if item, ok := s.autoplay.Take().Get(); ok {
			s.queue.SelectItem(item)
			s.loadItem(item)
			return
		}
		// No candidate resolved; fall through to queue order.
	}

	next, restart := s.queue.Advance()
	if restart {
		s.backend().SeekTo(0)
		s.backend().Play()
		return
	}
	if item, ok := next.Get(); ok {
		s.loadItem(item)
	}
	// Queue end reached; current playback finishes naturally.
}

func (s *Session) handleBackendEvent(ev player.Event) {
	if ev.Backend != s.active {
		// The inactive backend is paused as part of every switch; anything
		// it still emits afterwards is stale.
		return
	}

	switch ev.Type {
	case player.EventTime:
		s.queue.UpdatePosition(ev.Position)
		if s.skipper != nil && viper.GetBool(key.SegmentsAutoSkip) {
			s.skipper.Check(ev.Position)
		}
		s.emit(Event{
			Kind:     EventTimeChanged,
			Video:    s.state.Video(),
			Position: ev.Position,
			Duration: ev.Duration,
		})

	case player.EventLoaded:
		s.emit(Event{Kind: EventPlayStateChanged, Video: s.state.Video(), Playing: true})

	case player.EventPaused:
		s.emit(Event{Kind: EventPlayStateChanged, Video: s.state.Video(), Playing: !ev.Flag})

	case player.EventSeeking:
		s.state.Seeking = ev.Flag

	case player.EventEnded:
		v := s.state.Video()
		if v == nil {
			return
		}
		if viper.GetBool(key.HistorySaveOnClose) {
			if err := s.recordWatch(v, true); err != nil {
				log.Warnf("failed to record watch for %s: %v", v.ID, err)
			}
		}
		s.advance()

	case player.EventError:
		s.setError(ev.Err)
	}
}

// fetchSegments kicks off the best-effort segment-metadata fetch. The result
// is applied only when the item is still current on return.
func (s *Session) fetchSegments(videoID string) {
	if !viper.GetBool(key.SegmentsEnable) {
		return
	}
	categories := viper.GetStringSlice(key.SegmentsCategories)

	go func() {
		segs, err := s.loadSegments(videoID, categories)
		if err != nil || len(segs) == 0 {
			return
		}
		s.post(func() {
			v := s.state.Video()
			if v == nil || v.ID != videoID {
				return
			}
			s.state.Segments = segs
			s.skipper = segments.NewSkipper(s.backend(), segs)
		})
	}()
}

// fetchDislikes kicks off the best-effort dislike-count fetch, applied with
// the same staleness guard.
func (s *Session) fetchDislikes(videoID string) {
	if !viper.GetBool(key.DislikesEnable) {
		return
	}

	go func() {
		count, err := s.loadDislikes(videoID)
		if err != nil || count < 0 {
			return
		}
		s.post(func() {
			v := s.state.Video()
			if v == nil || v.ID != videoID {
				return
			}
			s.state.Dislikes = count
		})
	}()
}

// activateBackend switches the active tag and pauses the others, without the
// handoff/upgrade machinery; used when a fresh load follows immediately.
func (s *Session) activateBackend(to player.Kind) {
	if _, ok := s.backends[to]; !ok {
		return
	}
	for kind, b := range s.backends {
		if kind != to {
			b.Pause()
		}
	}
	s.active = to
	s.state.Backend = to
	viper.Set(key.PlayerBackend, string(to))
}

func (s *Session) setError(err error) {
	if s.state.Err == nil && err == nil {
		return
	}
	s.state.Err = err
	s.emit(Event{Kind: EventErrorChanged, Err: err, Video: s.state.Video()})
}

func (s *Session) emitItemChanged() {
	v := s.state.Video()
	ev := Event{Kind: EventItemChanged, Video: v}
	if v != nil {
		ev.Live = v.Live
		if d, ok := s.backend().ItemDuration().Get(); ok {
			ev.Duration = d
		}
	}
	if item, ok := s.queue.Current().Get(); ok {
		ev.QueueIndex = lo.IndexOf(s.queue.Items(), item)
		ev.QueueCount = len(s.queue.Items())
	}
	s.emit(ev)
}

// emit publishes a side-effect event without ever blocking the coordination
// goroutine; a full consumer just misses intermediate updates.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Session) shutdown() {
	close(s.done)

	if s.state.Video() != nil {
		s.closeCurrentItem(false)
	}
	for _, b := range s.backends {
		if err := b.Close(); err != nil {
			log.Warnf("failed to close %s backend: %v", b.Kind(), err)
		}
	}
	s.emit(Event{Kind: EventClosed})
	close(s.events)
}

// watchedForAutoplay is the exclusion predicate handed to the autoplay
// engine; a history read failure excludes nothing.
func (s *Session) watchedForAutoplay(videoID string) bool {
	watched, err := history.Watched(videoID)
	if err != nil {
		return false
	}
	return watched
}

// resolveForAutoplay fetches full metadata for a settled autoplay candidate.
func (s *Session) resolveForAutoplay(videoID string) (*video.Video, error) {
	if s.resolveStreams == nil {
		return &video.Video{ID: videoID}, nil
	}
	return s.resolveStreams(&video.Video{ID: videoID})
}
