// Package icon provides a flexible multi-variant rendering engine for UI symbols and feedback indicators.
package icon

// Icon identifies a registered UI symbol.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Progress
	Play
	Lua
)

// icons maps every Icon identifier to its variant representations.
var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "[ok]",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "[!]",
		kaomoji: "(╯°□°）╯",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(￣ー￣)ゞ",
		squares: "🟨",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(つ▀¯▀)つ",
		squares: "🟦",
	},
	Lua: {
		emoji:   "🌙",
		nerd:    "",
		plain:   "[lua]",
		kaomoji: "(=^･ω･^=)",
		squares: "🟪",
	},
}
