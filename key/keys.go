// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 13

// Media Overlay Presentation - these keys provide fallbacks for books that omit overlay metadata.
const (
	OverlayActiveClass  = "overlay.active_class"
	OverlayPlayingClass = "overlay.playing_class"
	OverlayTickInterval = "overlay.tick_interval"
)

// History Tracking - these keys configure the persistence of narration progress.
const (
	HistorySave    = "history.save"
	HistoryRestore = "history.restore"
)

// Audio Playback - these keys configure the external audio backend.
const (
	PlayerMpvPath = "player.mpv_path"
)

// Terminal User Interface (TUI) - these keys define the reader layout.
const (
	TUIPageSize = "tui.page_size"
	TUIShowHelp = "tui.show_help"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
