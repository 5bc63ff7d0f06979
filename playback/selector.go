// Package playback implements the playback session core: stream selection,
// the dual-backend state machine and the queue-driven item lifecycle.
package playback

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/log"
	"github.com/rickykresslein/yattee/player"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Condition is the device power/network class a quality profile is bound to.
type Condition struct {
	Charging bool
	Cellular bool
}

// Profile pins a target backend, a resolution ceiling and an allowed format
// set for one power/network condition.
type Profile struct {
	ID        string
	Backend   player.Kind
	MaxHeight int
	Formats   []video.Kind
}

func (p Profile) allows(s *video.Stream) bool {
	if s.Resolution > p.MaxHeight && s.Resolution != 0 {
		return false
	}
	if len(p.Formats) == 0 {
		return true
	}
	return lo.Contains(p.Formats, s.Kind)
}

// Selection is the selector's verdict: the stream to play and the backend
// the active profile pins for it.
type Selection struct {
	Stream  *video.Stream
	Backend player.Kind
}

// SwitchRequiredFrom reports whether playing this selection needs a backend
// change away from the given active backend.
func (s Selection) SwitchRequiredFrom(active player.Kind) bool {
	return s.Backend != active
}

// Selector computes the preferred rendition from the configured quality
// profiles. It is a deterministic function of the candidate list and the
// device condition; capability checks belong to the backends themselves.
type Selector struct {
	profiles []Profile
	bindings map[Condition]string
	canPlay  func(player.Kind, *video.Stream) bool
}

// builtinProfiles back the selector when the user configured none.
var builtinProfiles = []Profile{
	{ID: "sd360p", Backend: player.KindNative, MaxHeight: 360, Formats: []video.Kind{video.KindMP4}},
	{ID: "hd720p", Backend: player.KindNative, MaxHeight: 720, Formats: []video.Kind{video.KindMP4}},
	{ID: "hd1080p", Backend: player.KindMPV, MaxHeight: 1080},
	{ID: "best", Backend: player.KindMPV, MaxHeight: 4320},
}

// NewSelector builds a selector from the configured profiles and condition
// bindings. The canPlay predicate is consulted to demote a profile's pinned
// backend when it cannot decode the chosen stream.
func NewSelector(canPlay func(player.Kind, *video.Stream) bool) *Selector {
	profiles := builtinProfiles
	if configured := parseProfiles(viper.GetStringSlice(key.QualityProfiles)); len(configured) > 0 {
		profiles = configured
	}

	return &Selector{
		profiles: profiles,
		bindings: map[Condition]string{
			{Charging: false, Cellular: true}:  viper.GetString(key.QualityBatteryCellular),
			{Charging: false, Cellular: false}: viper.GetString(key.QualityBatteryWifi),
			{Charging: true, Cellular: true}:   viper.GetString(key.QualityChargingCellular),
			{Charging: true, Cellular: false}:  viper.GetString(key.QualityChargingWifi),
		},
		canPlay: canPlay,
	}
}

// parseProfiles decodes "id:backend:maxheight:formats" records, where formats
// is a "+"-joined list. Malformed records are skipped with a warning.
func parseProfiles(records []string) []Profile {
	var profiles []Profile
	for _, record := range records {
		profile, err := parseProfile(record)
		if err != nil {
			log.Warnf("skipping malformed quality profile %q: %v", record, err)
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

func parseProfile(record string) (Profile, error) {
	parts := strings.Split(record, ":")
	if len(parts) < 3 {
		return Profile{}, fmt.Errorf("expected id:backend:maxheight[:formats]")
	}

	backend := player.Kind(parts[1])
	if !lo.Contains(player.Kinds(), backend) {
		return Profile{}, fmt.Errorf("unknown backend %q", parts[1])
	}

	height, err := strconv.Atoi(parts[2])
	if err != nil {
		return Profile{}, fmt.Errorf("invalid resolution ceiling %q", parts[2])
	}

	profile := Profile{ID: parts[0], Backend: backend, MaxHeight: height}
	if len(parts) > 3 && parts[3] != "" {
		profile.Formats = lo.Map(strings.Split(parts[3], "+"), func(f string, _ int) video.Kind {
			return video.Kind(f)
		})
	}
	return profile, nil
}

// ActiveProfile resolves the profile bound to the given condition,
// falling back to the last (most permissive) profile when the binding
// references an unknown id.
func (s *Selector) ActiveProfile(cond Condition) Profile {
	id := s.bindings[cond]
	for _, profile := range s.profiles {
		if profile.ID == id {
			return profile
		}
	}
	return s.profiles[len(s.profiles)-1]
}

// PreferredStream picks the rendition to play from the candidate list.
// The active profile's format set and resolution ceiling are applied first;
// among the matches the highest resolution wins. When nothing satisfies the
// profile, the closest lower-resolution candidate of any format is chosen so
// playback degrades instead of failing. Returns None only for an empty list.
func (s *Selector) PreferredStream(candidates []*video.Stream, cond Condition) mo.Option[Selection] {
	if len(candidates) == 0 {
		return mo.None[Selection]()
	}

	profile := s.ActiveProfile(cond)

	if lo.SomeBy(candidates, func(c *video.Stream) bool { return c.Live }) &&
		viper.GetBool(key.PlayerForceNativeLive) {
		profile.Backend = player.KindNative
	}

	matching := lo.Filter(candidates, func(c *video.Stream, _ int) bool {
		return profile.allows(c) && s.canPlay(profile.Backend, c)
	})
	if len(matching) == 0 {
		// Nothing fits the profile; degrade to the closest candidate below
		// the ceiling, or failing that the lowest resolution available.
		matching = lo.Filter(candidates, func(c *video.Stream, _ int) bool {
			return c.Resolution <= profile.MaxHeight
		})
		if len(matching) == 0 {
			matching = candidates
			best := lo.MinBy(matching, func(a, b *video.Stream) bool {
				return a.Resolution < b.Resolution
			})
			return mo.Some(s.selectionFor(best, profile))
		}
	}

	best := lo.MaxBy(matching, func(a, b *video.Stream) bool {
		return a.Resolution > b.Resolution
	})
	return mo.Some(s.selectionFor(best, profile))
}

// PreferredPlayableBy picks the rendition for one specific backend, applying
// the active profile's format set and resolution ceiling against that
// backend's own capability check. Used when a backend switch invalidates the
// current selection: the replacement must not jump above the profile ceiling
// just because the backend could decode more. Degrades the same way as
// PreferredStream; returns None when the backend can play none of them.
func (s *Selector) PreferredPlayableBy(candidates []*video.Stream, cond Condition, canPlay func(*video.Stream) bool) mo.Option[*video.Stream] {
	playable := lo.Filter(candidates, func(c *video.Stream, _ int) bool {
		return canPlay(c)
	})
	if len(playable) == 0 {
		return mo.None[*video.Stream]()
	}

	profile := s.ActiveProfile(cond)

	matching := lo.Filter(playable, func(c *video.Stream, _ int) bool {
		return profile.allows(c)
	})
	if len(matching) == 0 {
		matching = lo.Filter(playable, func(c *video.Stream, _ int) bool {
			return c.Resolution <= profile.MaxHeight
		})
	}
	if len(matching) == 0 {
		return mo.Some(lo.MinBy(playable, func(a, b *video.Stream) bool {
			return a.Resolution < b.Resolution
		}))
	}

	return mo.Some(lo.MaxBy(matching, func(a, b *video.Stream) bool {
		return a.Resolution > b.Resolution
	}))
}

// selectionFor pairs the chosen stream with a backend that can actually
// decode it. A stream the pinned backend cannot play is routed to the
// general decoder.
func (s *Selector) selectionFor(stream *video.Stream, profile Profile) Selection {
	backend := profile.Backend
	if !s.canPlay(backend, stream) {
		backend = player.KindMPV
	}
	return Selection{Stream: stream, Backend: backend}
}
