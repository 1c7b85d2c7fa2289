package server

import (
	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/model"
)

type layoutView struct {
	ItemsPerRow int `json:"itemsPerRow"`
	RowsPerPage int `json:"rowsPerPage"`
}

type slotView struct {
	Index int  `json:"index"`
	Add   bool `json:"add,omitempty"`
}

type dragView struct {
	State       string `json:"state"`
	SourceIndex int    `json:"sourceIndex"`
	SourceChild int    `json:"sourceChild"`
	Target      int    `json:"target"`
	OverAdd     bool   `json:"overAdd"`
	Intent      string `json:"intent"`
	Hint        string `json:"hint"`
	DwellFired  bool   `json:"dwellFired"`
	AutoPageDir int    `json:"autoPageDir"`
}

type folderView struct {
	Open     bool         `json:"open"`
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Name     string       `json:"name,omitempty"`
	Children []model.Link `json:"children,omitempty"`
	Manage   bool         `json:"manage"`
}

type stateView struct {
	Items      model.Collection `json:"items"`
	Layout     layoutView       `json:"layout"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Pages      [][]slotView     `json:"pages"`
	Drag       dragView         `json:"drag"`
	Folder     folderView       `json:"folder"`
}

func newStateView(s grid.Snapshot) stateView {
	pages := make([][]slotView, len(s.Pages))
	for i, page := range s.Pages {
		pages[i] = make([]slotView, len(page))
		for k, slot := range page {
			pages[i][k] = slotView{Index: slot.Index, Add: slot.Add}
		}
	}
	return stateView{
		Items:      s.Items,
		Layout:     layoutView{ItemsPerRow: s.Layout.ItemsPerRow, RowsPerPage: s.Layout.RowsPerPage},
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Pages:      pages,
		Drag: dragView{
			State:       s.Drag.State.String(),
			SourceIndex: s.Drag.SourceIndex,
			SourceChild: s.Drag.SourceChild,
			Target:      s.Drag.Target,
			OverAdd:     s.Drag.OverAdd,
			Intent:      s.Drag.Intent.String(),
			Hint:        s.Drag.Hint.String(),
			DwellFired:  s.Drag.DwellFired,
			AutoPageDir: s.Drag.AutoPageDir,
		},
		Folder: folderView{
			Open:     s.Folder.Open,
			Index:    s.Folder.Index,
			ID:       s.Folder.ID,
			Name:     s.Folder.Name,
			Children: s.Folder.Children,
			Manage:   s.Folder.Manage,
		},
	}
}
