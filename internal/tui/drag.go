package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/pager"
	"github.com/nikbrunner/newtab/internal/tui/layout"
)

// The keyboard drives the same drag gesture a pointer would. The cursor
// position becomes a hover target plus a pointer position in the units the
// controller measures edges and overlay bounds in.

func (a App) dragging() bool {
	return a.snap.Drag.State != grid.Idle
}

func (a App) inFolderDrag() bool {
	return a.snap.Drag.SourceIndex < 0 && a.snap.Drag.SourceChild >= 0
}

// refresh re-reads the controller and keeps the cursors in range.
func (a *App) refresh() {
	prev := a.snap.Drag
	a.snap = a.grid.Snapshot()

	if slots := a.pageSlots(); a.cursor >= len(slots) {
		a.cursor = len(slots) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}

	if !a.snap.Folder.Open {
		a.child = 0
	}

	drag := a.snap.Drag
	switch {
	case drag.State == grid.Idle:
		a.edge = 0
		a.outside = false

	case a.inFolderDrag() && prev.SourceChild < 0:
		// A dwell moved the source into a folder.
		a.child = drag.SourceChild
		a.outside = false
		a.hoverChild()

	case !a.inFolderDrag() && prev.SourceIndex < 0 && prev.State != grid.Idle:
		// The source left its folder.
		a.outside = false
		a.cursorTo(drag.SourceIndex)
	}

	if n := len(a.snap.Folder.Children); a.child >= n && n > 0 {
		a.child = n - 1
	}
}

// fitLayout sizes the grid to the terminal and tells the controller where
// the grid and folder overlay are drawn.
func (a *App) fitLayout() {
	shape := layout.CalculateGridShape(a.width, a.height,
		a.maxLayout.ItemsPerRow, a.maxLayout.RowsPerPage, a.cfg.Grid)
	a.grid.SetLayout(pager.Layout{ItemsPerRow: shape.Columns, RowsPerPage: shape.Rows})
	a.grid.SetGridBounds(rect(layout.GridBox(a.width, shape, a.cfg.Grid)))
	a.grid.SetOverlayBounds(rect(a.overlayBox()))
	a.refresh()
}

func (a App) gridBox() layout.Box {
	shape := layout.GridShape{Columns: a.snap.Layout.ItemsPerRow, Rows: a.snap.Layout.RowsPerPage}
	return layout.GridBox(a.width, shape, a.cfg.Grid)
}

// overlayBox is where the folder overlay is drawn: centered, one line per
// visible child plus title, hints and border.
func (a App) overlayBox() layout.Box {
	w := layout.CalculateModalWidth(a.width, a.cfg.Modal.DefaultWidthPercent, a.cfg.Modal)
	h := a.cfg.Modal.FolderMaxVisible + 6
	left := (a.width - w) / 2
	top := (a.height - h) / 2
	if top < 0 {
		top = 0
	}
	g := a.cfg.Grid
	return layout.Box{
		Left:   float64(left) * g.CellWidth,
		Top:    float64(top) * g.CellHeight,
		Right:  float64(left+w) * g.CellWidth,
		Bottom: float64(top+h) * g.CellHeight,
	}
}

func rect(b layout.Box) grid.Rect {
	return grid.Rect{Left: b.Left, Top: b.Top, Right: b.Right, Bottom: b.Bottom}
}

func (a App) pageSlots() []pager.Slot {
	if a.snap.Page < len(a.snap.Pages) {
		return a.snap.Pages[a.snap.Page]
	}
	return nil
}

func (a App) slotAtCursor() (pager.Slot, bool) {
	slots := a.pageSlots()
	if a.cursor < 0 || a.cursor >= len(slots) {
		return pager.Slot{}, false
	}
	return slots[a.cursor], true
}

// cursorTo puts the cursor on item i if it is on the current page.
func (a *App) cursorTo(i int) {
	for pos, slot := range a.pageSlots() {
		if !slot.Add && slot.Index == i {
			a.cursor = pos
			return
		}
	}
}

func (a App) columns() int {
	return a.snap.Layout.Normalized().ItemsPerRow
}

// moveCursor moves within the page; moving sideways past the first or last
// column turns the page.
func (a *App) moveCursor(dx, dy int) {
	slots := a.pageSlots()
	cols := a.columns()
	row, col := a.cursor/cols, a.cursor%cols

	switch {
	case dx < 0 && col == 0:
		if a.grid.PrevPage() {
			a.refresh()
			a.cursor = min(row*cols+cols-1, len(a.pageSlots())-1)
		}
		return
	case dx > 0 && (col == cols-1 || a.cursor == len(slots)-1):
		if a.grid.NextPage() {
			a.refresh()
			a.cursor = min(row*cols, len(a.pageSlots())-1)
		}
		return
	}

	next := a.cursor + dx + dy*cols
	if next >= 0 && next < len(slots) {
		a.cursor = next
	}
}

func (a App) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.grid.EndDrag()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Cancel):
		a.grid.EndDrag()
		a.status = ""

	case key.Matches(msg, a.keys.Open, a.keys.Drag):
		if !a.grid.Drop() {
			a.grid.EndDrag()
		}

	case a.inFolderDrag():
		a.folderDragKey(msg)

	case key.Matches(msg, a.keys.PrevPage):
		a.grid.HoverPageButton(-1)
	case key.Matches(msg, a.keys.NextPage):
		a.grid.HoverPageButton(1)

	case key.Matches(msg, a.keys.Up):
		a.dragMove(0, -1)
	case key.Matches(msg, a.keys.Down):
		a.dragMove(0, 1)
	case key.Matches(msg, a.keys.Left):
		a.dragMove(-1, 0)
	case key.Matches(msg, a.keys.Right):
		a.dragMove(1, 0)
	}
	a.refresh()
	return a, nil
}

// dragMove moves the hover target. Pushing past a side edge parks the
// pointer at that edge so the controller can auto-page.
func (a *App) dragMove(dx, dy int) {
	slots := a.pageSlots()
	cols := a.columns()
	row, col := a.cursor/cols, a.cursor%cols

	if (dx < 0 && col == 0) || (dx > 0 && (col == cols-1 || a.cursor == len(slots)-1)) {
		a.edge = dx
		a.grid.LeaveHover()
		x, y := layout.EdgePoint(a.gridBox(), dx, row, a.cfg.Grid)
		a.grid.PointerMove(grid.Point{X: x, Y: y})
		return
	}

	a.edge = 0
	a.grid.LeavePageButton()
	next := a.cursor + dx + dy*cols
	if next >= 0 && next < len(slots) {
		a.cursor = next
	}
	a.hoverCursor()
}

// hoverCursor reports the slot under the cursor as the hover target.
func (a *App) hoverCursor() {
	slot, ok := a.slotAtCursor()
	if !ok {
		return
	}
	x, y := layout.TileCenter(a.gridBox(), a.cursor, a.columns(), a.cfg.Grid)
	a.grid.PointerMove(grid.Point{X: x, Y: y})

	switch {
	case slot.Add:
		a.grid.HoverAddButton()
	case slot.Index == a.snap.Drag.SourceIndex:
		a.grid.LeaveHover()
	default:
		a.grid.HoverItem(slot.Index)
	}
}

// folderDragKey moves a child drag. Left carries the pointer out of the
// overlay, which extracts the child after a short delay; right brings it back.
func (a *App) folderDragKey(msg tea.KeyMsg) {
	n := len(a.snap.Folder.Children)
	switch {
	case key.Matches(msg, a.keys.Left):
		// Pass through the overlay first so the controller sees the
		// pointer cross in before it leaves.
		a.hoverChild()
		a.outside = true
		a.grid.LeaveHover()
		b := a.overlayBox()
		a.grid.PointerMove(grid.Point{X: b.Left - 2*a.cfg.Grid.CellWidth*float64(a.cfg.Grid.TileWidth), Y: b.Top})
		return
	case key.Matches(msg, a.keys.Right):
		a.outside = false
	case key.Matches(msg, a.keys.Up):
		if a.child > 0 {
			a.child--
		}
	case key.Matches(msg, a.keys.Down):
		if a.child < n-1 {
			a.child++
		}
	default:
		return
	}
	a.outside = false
	a.hoverChild()
}

// hoverChild points at the selected child row inside the overlay.
func (a *App) hoverChild() {
	b := a.overlayBox()
	g := a.cfg.Grid
	row := a.child
	if limit := a.cfg.Modal.FolderMaxVisible; row >= limit {
		row = limit - 1
	}
	p := grid.Point{
		X: (b.Left + b.Right) / 2,
		Y: b.Top + float64(row+3)*g.CellHeight + g.CellHeight/2,
	}
	a.grid.PointerMove(p)

	if a.child == a.snap.Drag.SourceChild {
		a.grid.LeaveHover()
		return
	}
	a.grid.HoverChild(a.child)
}
