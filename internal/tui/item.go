package tui

import (
	"strconv"

	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/grid"
)

// TileKind distinguishes the three things a grid slot can show.
type TileKind int

const (
	TileLink TileKind = iota
	TileFolder
	TileAdd
)

// Tile is one grid slot as the view draws it.
type Tile struct {
	Kind   TileKind
	Index  int // collection index, -1 for the add tile
	Name   string
	URL    string
	Count  int // folder children
	Cursor bool
	Source bool // the item being dragged
	Target bool // the hover target of the drag
	Dwell  bool // holding here merges or moves the source in
	Hint   grid.Hint
}

// Badge is the large line of the tile.
func (t Tile) Badge() string {
	switch t.Kind {
	case TileAdd:
		return "+"
	case TileFolder:
		return "▦ " + strconv.Itoa(t.Count)
	default:
		return favicon.Initials(t.Name)
	}
}

// Label is the name line of the tile with the insertion hint around it.
func (t Tile) Label() string {
	name := t.Name
	if t.Kind == TileAdd {
		name = "添加快捷方式"
	}
	switch t.Hint {
	case grid.HintLeft:
		return "◂" + name
	case grid.HintRight:
		return name + "▸"
	}
	return name
}

// tiles describes the current page.
func (a App) tiles() []Tile {
	drag := a.snap.Drag
	dragging := drag.State != grid.Idle && drag.SourceIndex >= 0

	slots := a.pageSlots()
	out := make([]Tile, 0, len(slots))
	for pos, slot := range slots {
		t := Tile{Index: -1, Cursor: pos == a.cursor && !a.snap.Folder.Open}
		if slot.Add {
			t.Kind = TileAdd
			t.Target = dragging && drag.OverAdd
			out = append(out, t)
			continue
		}

		item := a.snap.Items[slot.Index]
		t.Index = slot.Index
		t.Name = item.Name
		t.URL = item.URL
		if item.IsFolder() {
			t.Kind = TileFolder
			t.Count = len(item.Children)
		}
		if dragging {
			t.Source = slot.Index == drag.SourceIndex
			t.Target = slot.Index == drag.Target
			if t.Target {
				t.Hint = drag.Hint
				t.Dwell = drag.State == grid.PendingDwellAction
			}
		}
		out = append(out, t)
	}
	return out
}
