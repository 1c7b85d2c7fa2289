package grid

import "time"

// autoPager turns pages while a drag rests at the grid's side edges or over
// a page arrow. One timer at a time.
type autoPager struct {
	timer      timerSlot
	dir        int
	lastChange time.Time
	bounds     Rect
}

// SetGridBounds records where the grid is drawn.
func (c *Controller) SetGridBounds(r Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoPage.bounds = r
}

// HoverPageButton reports a drag over the previous (-1) or next (+1) page
// arrow. The page turns after a short hold, longer right after a page change.
func (c *Controller) HoverPageButton(dir int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if d.inFolder || (d.state != DraggingTopLevel && d.state != PendingDwellAction) {
		return false
	}
	if dir != -1 && dir != 1 {
		return false
	}
	if target := c.pager.Current() + dir; target < 0 || target >= c.pager.Total() {
		return false
	}
	if c.autoPage.timer.pending() && c.autoPage.dir == dir {
		return true
	}

	d.clearHover()
	delay := c.timings.PageButtonDelay
	if !c.autoPage.lastChange.IsZero() && c.sched.Now().Sub(c.autoPage.lastChange) < c.timings.PageCooldown {
		delay = c.timings.PageCooldown
	}
	c.scheduleAutoPageLocked(dir, delay)
	c.emitLocked()
	return true
}

// LeavePageButton cancels a pending page-arrow turn.
func (c *Controller) LeavePageButton() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.autoPage.timer.pending() {
		return
	}
	c.cancelAutoPageLocked()
	c.emitLocked()
}

// trackEdgeLocked starts or cancels edge paging for a top-level drag. It only
// runs while no dwell action is pending.
func (c *Controller) trackEdgeLocked(p Point) {
	if c.drag.state != DraggingTopLevel {
		c.cancelAutoPageLocked()
		return
	}
	b := c.autoPage.bounds
	total := c.pager.Total()
	if b.Empty() || total <= 1 {
		return
	}

	current := c.pager.Current()
	margin := c.timings.EdgeMargin
	var dir int
	switch {
	case p.X < b.Left+margin && current > 0:
		dir = -1
	case p.X > b.Right-margin && current < total-1:
		dir = 1
	}

	if dir == 0 {
		if c.autoPage.timer.pending() {
			c.cancelAutoPageLocked()
			c.emitLocked()
		}
		return
	}
	if c.autoPage.timer.pending() && c.autoPage.dir == dir {
		return
	}
	c.scheduleAutoPageLocked(dir, c.timings.AutoPageDelay)
	c.emitLocked()
}

func (c *Controller) scheduleAutoPageLocked(dir int, delay time.Duration) {
	c.cancelAutoPageLocked()
	gen := c.drag.gen
	c.autoPage.dir = dir
	c.autoPage.timer.schedule(c.sched, delay, func(seq uint64) {
		c.fireAutoPage(gen, seq, dir)
	})
}

func (c *Controller) cancelAutoPageLocked() {
	c.autoPage.timer.stop()
	c.autoPage.dir = 0
}

func (c *Controller) fireAutoPage(gen, seq uint64, dir int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag.gen != gen || !c.drag.active() || c.autoPage.dir != dir {
		return
	}
	if !c.autoPage.timer.claim(seq) {
		return
	}
	c.autoPage.dir = 0
	c.pager.GoTo(c.pager.Current() + dir)
	c.emitLocked()
}
