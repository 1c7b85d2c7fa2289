package server

import (
	"errors"
	"net/http"

	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/pager"
	"github.com/nikbrunner/newtab/internal/search"
)

type indexRequest struct {
	Index int `json:"index"`
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type linkRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type rectRequest struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

func (r rectRequest) rect() grid.Rect {
	return grid.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(s.grid.Snapshot()))
}

// --- Paging ---

func (s *Server) handleGoToPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.GoToPage(req.Page))
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	s.changed(w, s.grid.NextPage())
}

func (s *Server) handlePrevPage(w http.ResponseWriter, r *http.Request) {
	s.changed(w, s.grid.PrevPage())
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeltaX float64 `json:"deltaX"`
	}
	if !decode(w, r, &req) {
		return
	}
	turned := s.grid.Wheel(req.DeltaX)
	writeJSON(w, http.StatusOK, struct {
		Turned bool      `json:"turned"`
		State  stateView `json:"state"`
	}{turned, newStateView(s.grid.Snapshot())})
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutView
	if !decode(w, r, &req) {
		return
	}
	s.grid.SetLayout(pager.Layout{ItemsPerRow: req.ItemsPerRow, RowsPerPage: req.RowsPerPage}.Normalized())
	s.changed(w, true)
}

// --- Mutations ---

func (s *Server) handleAddLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decode(w, r, &req) {
		return
	}
	idx, err := s.grid.AddLink(req.Name, req.URL)
	if errors.Is(err, grid.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Index int       `json:"index"`
		State stateView `json:"state"`
	}{idx, newStateView(s.grid.Snapshot())})
}

func (s *Server) handleEditLink(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req linkRequest
	if !decode(w, r, &req) {
		return
	}
	done, err := s.grid.EditLink(i, req.Name, req.URL)
	if errors.Is(err, grid.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.changed(w, done)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	s.changed(w, s.grid.DeleteItem(i))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.MoveWithinList(req.From, req.To))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target int `json:"target"`
		Source int `json:"source"`
	}
	if !decode(w, r, &req) {
		return
	}
	_, ok := s.grid.CreateFolder(req.Target, req.Source)
	s.changed(w, ok)
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	s.grid.ClearAll()
	s.changed(w, true)
}

func (s *Server) handleRestoreDefaults(w http.ResponseWriter, r *http.Request) {
	s.grid.RestoreDefaults()
	s.changed(w, true)
}

func (s *Server) handleFindShortcuts(w http.ResponseWriter, r *http.Request) {
	type match struct {
		Name    string `json:"name"`
		URL     string `json:"url"`
		Index   int    `json:"index"`
		Child   int    `json:"child"`
		Folder  string `json:"folder,omitempty"`
		Matched []int  `json:"matched"`
	}
	results := search.Shortcuts(s.grid.Items(), r.URL.Query().Get("q"))
	out := make([]match, len(results))
	for i, res := range results {
		out[i] = match{
			Name:    res.Link.Name,
			URL:     res.Link.URL,
			Index:   res.Index,
			Child:   res.Child,
			Folder:  res.Folder,
			Matched: res.MatchedIndexes,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.RenameFolder(i, req.Name))
}

func (s *Server) handleAddToFolder(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req indexRequest
	if !decode(w, r, &req) {
		return
	}
	_, done := s.grid.AddToExistingFolder(req.Index, i)
	s.changed(w, done)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req struct {
		Child int `json:"child"`
	}
	if !decode(w, r, &req) {
		return
	}
	_, done := s.grid.ExtractFromFolder(i, req.Child)
	s.changed(w, done)
}

func (s *Server) handleMoveChild(w http.ResponseWriter, r *http.Request) {
	i, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.MoveWithinFolder(i, req.From, req.To))
}

// --- Folder session ---

func (s *Server) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.OpenFolder(req.Index))
}

func (s *Server) handleCloseFolder(w http.ResponseWriter, r *http.Request) {
	s.changed(w, s.grid.CloseFolder())
}

// handleToggleManage answers 409 only when no folder is open.
func (s *Server) handleToggleManage(w http.ResponseWriter, r *http.Request) {
	s.grid.ToggleManage()
	s.changed(w, s.grid.Snapshot().Folder.Open)
}

func (s *Server) handleRenameOpenFolder(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.RenameOpenFolder(req.Name))
}

func (s *Server) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	child, ok := intParam(w, r, "child")
	if !ok {
		return
	}
	s.changed(w, s.grid.RemoveChild(child))
}

func (s *Server) handleOverlayBounds(w http.ResponseWriter, r *http.Request) {
	var req rectRequest
	if !decode(w, r, &req) {
		return
	}
	s.grid.SetOverlayBounds(req.rect())
	w.WriteHeader(http.StatusNoContent)
}

// --- Drag ---

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
		Child *int `json:"child"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Child != nil:
		s.changed(w, s.grid.StartFolderDrag(*req.Child))
	case req.Index != nil:
		s.changed(w, s.grid.StartDrag(*req.Index))
	default:
		writeError(w, http.StatusBadRequest, "index or child is required")
	}
}

func (s *Server) handleDragHover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
		Child *int `json:"child"`
		Add   bool `json:"add"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Add:
		s.changed(w, s.grid.HoverAddButton())
	case req.Child != nil:
		s.changed(w, s.grid.HoverChild(*req.Child))
	case req.Index != nil:
		s.changed(w, s.grid.HoverItem(*req.Index))
	default:
		writeError(w, http.StatusBadRequest, "index, child or add is required")
	}
}

func (s *Server) handleDragLeave(w http.ResponseWriter, r *http.Request) {
	s.grid.LeaveHover()
	s.grid.LeavePageButton()
	s.changed(w, true)
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.grid.PointerMove(grid.Point{X: req.X, Y: req.Y})
	s.changed(w, true)
}

func (s *Server) handlePageButton(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir int `json:"dir"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.changed(w, s.grid.HoverPageButton(req.Dir))
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	s.changed(w, s.grid.Drop())
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	s.grid.EndDrag()
	s.changed(w, true)
}

func (s *Server) handleGridBounds(w http.ResponseWriter, r *http.Request) {
	var req rectRequest
	if !decode(w, r, &req) {
		return
	}
	s.grid.SetGridBounds(req.rect())
	w.WriteHeader(http.StatusNoContent)
}
