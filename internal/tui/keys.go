package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Open      key.Binding
	Drag      key.Binding
	Add       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	YankURL   key.Binding
	Manage    key.Binding
	Find      key.Binding
	Search    key.Binding
	Engine    key.Binding
	Wallpaper key.Binding
	Clear     key.Binding
	Restore   key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "move right"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next page"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("Enter", "open / drop"),
		),
		Drag: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "pick up / drop"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add shortcut"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit / rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "delete"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy URL"),
		),
		Manage: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "manage folder"),
		),
		Find: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find shortcut"),
		),
		Search: key.NewBinding(
			key.WithKeys("s", "i"),
			key.WithHelp("s", "web search"),
		),
		Engine: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "next engine"),
		),
		Wallpaper: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "new wallpaper"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Restore: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "restore defaults"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel / close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpSections groups the bindings for the help overlay.
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{Title: "Navigate", Keys: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.PrevPage, k.NextPage}},
		{Title: "Shortcuts", Keys: []key.Binding{k.Open, k.Add, k.Edit, k.Delete, k.YankURL, k.Find}},
		{Title: "Drag", Keys: []key.Binding{k.Drag, k.Cancel}},
		{Title: "Folder", Keys: []key.Binding{k.Manage}},
		{Title: "Other", Keys: []key.Binding{k.Search, k.Engine, k.Wallpaper, k.Clear, k.Restore, k.Help, k.Quit}},
	}
}

type helpSection struct {
	Title string
	Keys  []key.Binding
}
