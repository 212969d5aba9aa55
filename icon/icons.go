package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Play Icon = iota
	Pause
	Stop
	Narration
	Info
	Warn
	Fail
	Success
	Mark
)

var icons = map[Icon]*iconDef{
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(ﾉ◕ヮ◕)ﾉ",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⏸",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "",
		plain:   "[]",
		kaomoji: "(・_・)",
		squares: "■",
	},
	Narration: {
		emoji:   "🎧",
		nerd:    "",
		plain:   "~",
		kaomoji: "♪(´ε｀ )",
		squares: "♫",
	},
	Info: {
		emoji:   "ℹ️",
		nerd:    "",
		plain:   "i",
		kaomoji: "(・・ ) ?",
		squares: "□",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(・`ω´・)",
		squares: "▲",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "X",
		kaomoji: "(×﹏×)",
		squares: "✗",
	},
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "V",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "✓",
	},
	Mark: {
		emoji:   "🔸",
		nerd:    "",
		plain:   "*",
		kaomoji: "☆",
		squares: "▪",
	},
}
