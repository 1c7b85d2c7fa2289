package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "h/l", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "h/l:move Enter:open"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Edit   []Hint
	Action []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		switch {
		case a.dragging() && a.inFolderDrag():
			return a.getFolderDragHints()
		case a.dragging():
			return a.getDragHints()
		case a.snap.Folder.Open:
			return HintSet{}
		}
		return a.getNormalModeHints()
	case ModeSearch:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "search"}, {Key: "Tab", Desc: "engine"}},
			System: []Hint{{Key: "Esc", Desc: "cancel"}},
		}
	case ModeAdd, ModeEdit, ModeRename, ModeConfirm, ModeFind:
		return HintSet{}
	case ModeHelp:
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		return HintSet{}
	}
}

// getNormalModeHints returns hints for browsing the grid.
func (a App) getNormalModeHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "hjkl", Desc: "move"},
			{Key: "[/]", Desc: "page"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "m", Desc: "drag"},
			{Key: "s", Desc: "search"},
			{Key: "/", Desc: "find"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// getDragHints returns hints while a top-level item is lifted.
func (a App) getDragHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "hjkl", Desc: "move"},
			{Key: "[/]", Desc: "page"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "drop"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getFolderDragHints returns hints while a folder child is lifted.
func (a App) getFolderDragHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "out"},
			{Key: "l", Desc: "back"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "drop"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// folderHints are shown inside the folder overlay.
func (a App) folderHints() []Hint {
	if a.dragging() {
		return a.getFolderDragHints().All()
	}
	hints := []Hint{
		{Key: "j/k", Desc: "move"},
		{Key: "Enter", Desc: "open"},
		{Key: "m", Desc: "drag"},
		{Key: "e", Desc: "rename"},
		{Key: "M", Desc: "manage"},
	}
	if a.snap.Folder.Manage {
		hints = append(hints, Hint{Key: "x", Desc: "remove"})
	}
	return append(hints, Hint{Key: "Esc", Desc: "close"})
}

// modalHints are shown at the bottom of the add, edit and rename modals.
func (a App) modalHints() []Hint {
	if a.mode == ModeRename {
		return []Hint{
			{Key: "Enter", Desc: "save"},
			{Key: "Esc", Desc: "cancel"},
		}
	}
	return []Hint{
		{Key: "Tab", Desc: "next field"},
		{Key: "Enter", Desc: "save"},
		{Key: "Esc", Desc: "cancel"},
	}
}
