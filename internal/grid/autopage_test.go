package grid_test

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/grid"
)

var gridBounds = grid.Rect{Left: 0, Top: 0, Right: 400, Bottom: 300}

// nine items fill three pages of four.
func nine(t *testing.T) fixture {
	t.Helper()
	f := newFixture(t, links("a", "b", "c", "d", "e", "f", "g", "h", "i"))
	f.c.SetGridBounds(gridBounds)
	assert.Equal(t, f.c.Snapshot().TotalPages, 3)
	return f
}

func TestAutoPage_RightEdge(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	f.c.PointerMove(grid.Point{X: 10, Y: 150})
	assert.Equal(t, f.clock.Pending(), 0, "no previous page")

	f.c.PointerMove(grid.Point{X: 390, Y: 150})
	assert.Equal(t, f.c.Snapshot().Drag.AutoPageDir, 1)
	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 0)
	f.clock.Advance(time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 1)

	f.c.PointerMove(grid.Point{X: 10, Y: 150})
	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 0)
}

func TestAutoPage_LeavingEdgeCancels(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	f.c.PointerMove(grid.Point{X: 390, Y: 150})
	f.clock.Advance(300 * time.Millisecond)
	f.c.PointerMove(grid.Point{X: 200, Y: 150})
	f.clock.Advance(time.Second)

	assert.Equal(t, f.c.Snapshot().Page, 0)
	assert.Equal(t, f.c.Snapshot().Drag.AutoPageDir, 0)
}

func TestAutoPage_SuppressedWhileDwellPending(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	assert.Assert(t, f.c.HoverItem(1))
	f.c.PointerMove(grid.Point{X: 390, Y: 150})
	f.clock.Advance(350 * time.Millisecond)

	assert.Equal(t, f.c.Snapshot().Page, 0)
	assert.Equal(t, f.c.Snapshot().Drag.AutoPageDir, 0)
}

func TestAutoPage_StopsWithDrag(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	f.c.PointerMove(grid.Point{X: 390, Y: 150})
	f.c.EndDrag()
	f.clock.Advance(time.Second)
	assert.Equal(t, f.c.Snapshot().Page, 0)
}

func TestPageButton_Hold(t *testing.T) {
	f := nine(t)

	assert.Assert(t, !f.c.HoverPageButton(1), "needs a drag")
	assert.Assert(t, f.c.StartDrag(0))
	assert.Assert(t, !f.c.HoverPageButton(-1), "no previous page")

	assert.Assert(t, f.c.HoverPageButton(1))
	f.clock.Advance(250 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 1)

	// Right after a page change the hold is longer.
	assert.Assert(t, f.c.HoverPageButton(1))
	f.clock.Advance(250 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 1)
	f.clock.Advance(150 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 2)

	assert.Assert(t, !f.c.HoverPageButton(1), "already on the last page")
}

func TestPageButton_Leave(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	assert.Assert(t, f.c.HoverPageButton(1))
	f.c.LeavePageButton()
	f.clock.Advance(time.Second)
	assert.Equal(t, f.c.Snapshot().Page, 0)
}

func TestAutoPage_DropOnOtherPage(t *testing.T) {
	f := nine(t)

	assert.Assert(t, f.c.StartDrag(0))
	f.c.PointerMove(grid.Point{X: 390, Y: 150})
	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, f.c.Snapshot().Page, 1)

	assert.Assert(t, f.c.HoverItem(5))
	assert.Assert(t, f.c.Drop())
	assert.Equal(t, shape(f.c.Items()[:6]), "b,c,d,e,f,a")
}
