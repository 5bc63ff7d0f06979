// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 29

// Resolver Sources - these keys manage the registration and selection of stream resolvers.
const (
	ResolverDefault = "resolver.default"
)

// Media Playback - these keys maintain the state and configuration of the playback engine.
const (
	PlayerBackend              = "player.backend"
	PlayerForceNativeLive      = "player.force_native_live"
	PlayerCompletionPercentage = "player.completion_percentage"
	PlayerDefaultRate          = "player.default_rate"
)

// Quality Selection - these keys bind power/network conditions to quality profiles.
const (
	QualityProfiles         = "quality.profiles"
	QualityBatteryCellular  = "quality.battery_cellular"
	QualityBatteryWifi      = "quality.battery_wifi"
	QualityChargingCellular = "quality.charging_cellular"
	QualityChargingWifi     = "quality.charging_wifi"
)

// Queue & Autoplay - these keys govern queue persistence and speculative next-item selection.
const (
	QueuePlaybackMode = "queue.playback_mode"
	QueueRestore      = "queue.restore"
)

// Segment Skipping - these keys manage sponsor/skip segment retrieval and auto-skip behavior.
const (
	SegmentsEnable     = "segments.enable"
	SegmentsCategories = "segments.categories"
	SegmentsAutoSkip   = "segments.auto_skip"
)

// Dislike Counts - these keys configure best-effort dislike metadata retrieval.
const (
	DislikesEnable = "dislikes.enable"
)

// History Tracking - these keys configure the persistence of media consumption state.
const (
	HistorySaveOnClose = "history.save_on_close"
)

// Media Session - these keys drive the OS now-playing surface and remote-command routing.
const (
	MediaSessionEnable        = "mediasession.enable"
	MediaSessionCommandScheme = "mediasession.command_scheme"
	MediaSessionArtwork       = "mediasession.artwork"
)

// Picture-in-Picture - these keys control PiP lifecycle coupling.
const (
	PiPCloseOnBackground = "pip.close_on_background"
	PiPReturnOnClose     = "pip.return_on_close"
)

// Search Interaction - these keys define query suggestion behavior.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Iconography - these keys manage the visual rendering of CLI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
