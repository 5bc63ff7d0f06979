// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/rickykresslein/yattee/color"
	"github.com/rickykresslein/yattee/constant"
	"github.com/rickykresslein/yattee/key"
	"github.com/rickykresslein/yattee/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Yattee + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.ResolverDefault, "", "Default stream resolver to use.\nWill prompt if not set.\nType \"yattee resolvers list\" to show available resolvers")
	register(key.PlayerBackend, "mpv", "Playback backend to activate on startup.\nAvailable options are: native, mpv")
	register(key.PlayerForceNativeLive, false, "Force the native (constrained) backend for live content regardless of the active quality profile")
	register(key.PlayerCompletionPercentage, 90, "Percentage required to mark a video as finished when closing it (1-100)")
	register(key.PlayerDefaultRate, 1.0, "Playback rate applied when a new item is loaded")
	register(key.QualityProfiles, []string{}, "Ordered quality profiles as \"id:backend:maxheight:formats\" records.\nFormats is a comma-free list joined by \"+\" (e.g. hd720p:native:720:mp4)\nAn empty list falls back to the built-in profiles")
	register(key.QualityBatteryCellular, "sd360p", "Quality profile used on battery power with a cellular connection")
	register(key.QualityBatteryWifi, "hd720p", "Quality profile used on battery power with a non-cellular connection")
	register(key.QualityChargingCellular, "hd720p", "Quality profile used while charging with a cellular connection")
	register(key.QualityChargingWifi, "hd1080p", "Quality profile used while charging with a non-cellular connection")
	register(key.QueuePlaybackMode, "sequential", "Playback mode governing what \"advance to next\" resolves to.\nAvailable options are: sequential, shuffle, loop-one, related")
	register(key.QueueRestore, true, "Restore the persisted queue and last played item on startup")
	register(key.SegmentsEnable, true, "Fetch sponsor/skip segment markers for each fresh item load")
	register(key.SegmentsCategories, []string{"sponsor", "selfpromo"}, "Segment categories requested from the segment metadata service")
	register(key.SegmentsAutoSkip, true, "Automatically seek past marked segments during playback")
	register(key.DislikesEnable, true, "Fetch dislike counts for each fresh item load.\nResults are cached to not spam the API")
	register(key.HistorySaveOnClose, true, "Record the item into watch history when it is closed")
	register(key.MediaSessionEnable, true, "Mirror playback state to the OS media session (MPRIS)")
	register(key.MediaSessionCommandScheme, "seek", "Remote command scheme.\nAvailable options are: seek (skip back/forward 10s), track (previous/next item)")
	register(key.MediaSessionArtwork, true, "Fetch and publish thumbnail artwork for the now-playing surface")
	register(key.PiPCloseOnBackground, true, "Close picture-in-picture when the player surface is dismissed or the app backgrounds")
	register(key.PiPReturnOnClose, false, "Return to the foreground player when picture-in-picture closes")
	register(key.SearchShowQuerySuggestions, true, "Show query suggestions when searching")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
