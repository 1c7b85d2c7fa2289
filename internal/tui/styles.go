package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App         lipgloss.Style
	Clock       lipgloss.Style
	Date        lipgloss.Style
	SearchBox   lipgloss.Style
	SearchFocus lipgloss.Style
	Tile        lipgloss.Style
	TileCursor  lipgloss.Style
	TileSource  lipgloss.Style // the item being dragged
	TileMerge   lipgloss.Style // hover target a dwell would merge into
	TileFolder  lipgloss.Style
	AddTile     lipgloss.Style
	Initials    lipgloss.Style
	Overlay     lipgloss.Style
	Modal       lipgloss.Style
	Title       lipgloss.Style
	Item        lipgloss.Style
	ItemCursor  lipgloss.Style
	URL         lipgloss.Style
	PageDot     lipgloss.Style
	PageDotOn   lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Empty       lipgloss.Style
	HintKey     lipgloss.Style // Key portion of hints (e.g., "Enter", "h/l")
	HintDesc    lipgloss.Style // Description portion of hints (e.g., "open", "move")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders
	warn := lipgloss.AdaptiveColor{Light: "#8A5A2B", Dark: "#C0925F"}    // merge / errors

	tile := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(primary).
		Align(lipgloss.Center)

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1),

		Clock: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Date: lipgloss.NewStyle().
			Foreground(subtle),

		SearchBox: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		SearchFocus: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Tile: tile,

		TileCursor: tile.
			BorderForeground(accent).
			Bold(true),

		TileSource: tile.
			BorderStyle(lipgloss.HiddenBorder()).
			Foreground(subtle).
			Faint(true),

		TileMerge: tile.
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(warn),

		TileFolder: lipgloss.NewStyle().
			Foreground(accent),

		AddTile: tile.
			BorderStyle(lipgloss.NormalBorder()).
			Foreground(subtle),

		Initials: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Overlay: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemCursor: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		PageDot: lipgloss.NewStyle().
			Foreground(subtle),

		PageDotOn: lipgloss.NewStyle().
			Foreground(accent),

		Status: lipgloss.NewStyle().
			Foreground(subtle),

		Error: lipgloss.NewStyle().
			Foreground(warn),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
