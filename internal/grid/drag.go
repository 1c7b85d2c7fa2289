package grid

import (
	"time"

	"github.com/nikbrunner/newtab/internal/model"
)

// DragState is the phase of the current drag gesture.
type DragState int

const (
	Idle DragState = iota
	DraggingTopLevel
	DraggingInFolder
	PendingDwellAction // hovering a target with a dwell timer running
	Transitioning      // a dwell or exit action is rewriting the collection
)

func (s DragState) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingTopLevel:
		return "dragging"
	case DraggingInFolder:
		return "dragging-in-folder"
	case PendingDwellAction:
		return "pending-dwell"
	case Transitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// Intent is what dropping on the current hover target would do.
type Intent int

const (
	IntentNone Intent = iota
	IntentReorder
	IntentReorderOnly // folder over folder; folders never merge
	IntentMerge       // link over link; dwell creates a folder
	IntentOpenFolder  // link over folder; dwell moves it in
)

func (i Intent) String() string {
	switch i {
	case IntentReorder:
		return "reorder"
	case IntentReorderOnly:
		return "reorder-only"
	case IntentMerge:
		return "merge"
	case IntentOpenFolder:
		return "open-folder"
	default:
		return "none"
	}
}

// Hint is the insertion side shown on the hover target.
type Hint int

const (
	HintNone Hint = iota
	HintLeft
	HintRight
)

func (h Hint) String() string {
	switch h {
	case HintLeft:
		return "left"
	case HintRight:
		return "right"
	default:
		return "none"
	}
}

// DragInfo is the drag session as seen by a front-end.
type DragInfo struct {
	State          DragState
	SourceIndex    int // top-level source, -1 while dragging inside a folder
	SourceChild    int // child index inside the open folder, -1 otherwise
	Source         model.Item
	Target         int // hovered item or child, -1 if none
	OverAdd        bool
	Intent         Intent
	Hint           Hint
	DwellStartedAt time.Time
	DwellFired     bool
	AutoPageDir    int
}

// dragSession holds one gesture. gen increases every time a session ends so
// timers scheduled by an earlier session can recognize themselves as stale.
type dragSession struct {
	gen   uint64
	state DragState

	inFolder bool
	source   int
	child    int
	snapshot model.Item

	target         int
	overAdd        bool
	intent         Intent
	hint           Hint
	dwellStartedAt time.Time
	dwellFired     bool

	dwell timerSlot
	exit  timerSlot
}

func (d *dragSession) reset() {
	gen, dwell, exit := d.gen, d.dwell, d.exit
	*d = dragSession{gen: gen, dwell: dwell, exit: exit, source: -1, child: -1, target: -1}
}

func (d *dragSession) active() bool {
	return d.state != Idle
}

// base is the resting state for the current surface.
func (d *dragSession) base() DragState {
	if d.inFolder {
		return DraggingInFolder
	}
	return DraggingTopLevel
}

func (d *dragSession) clearHover() {
	d.dwell.stop()
	d.target = -1
	d.overAdd = false
	d.intent = IntentNone
	d.hint = HintNone
	d.dwellStartedAt = time.Time{}
	if d.state == PendingDwellAction {
		d.state = d.base()
	}
}

// StartDrag lifts the top-level item at index. Fails if a drag is already active.
func (c *Controller) StartDrag(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag.active() || !c.items.Valid(index) {
		return false
	}

	c.drag.state = DraggingTopLevel
	c.drag.inFolder = false
	c.drag.source = index
	c.drag.snapshot = c.items[index].Clone()
	c.emitLocked()
	return true
}

// StartFolderDrag lifts a child of the open folder.
func (c *Controller) StartFolderDrag(childIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag.active() || !c.folder.open {
		return false
	}
	children := c.items[c.folder.index].Children
	if childIndex < 0 || childIndex >= len(children) {
		return false
	}

	c.drag.state = DraggingInFolder
	c.drag.inFolder = true
	c.drag.child = childIndex
	c.drag.snapshot = model.LinkItem(children[childIndex])
	c.folder.crossedIn = false
	c.emitLocked()
	return true
}

// HoverItem reports the pointer entering the top-level item at index.
func (c *Controller) HoverItem(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if d.inFolder || (d.state != DraggingTopLevel && d.state != PendingDwellAction) {
		return false
	}
	if !c.items.Valid(index) {
		return false
	}
	if !d.overAdd && d.target == index {
		return true
	}

	d.clearHover()
	if index == d.source {
		c.emitLocked()
		return true
	}

	d.target = index
	d.hint = HintRight
	if index < d.source {
		d.hint = HintLeft
	}

	src, dst := c.items[d.source], c.items[index]
	switch {
	case !src.IsFolder() && dst.IsFolder():
		d.intent = IntentOpenFolder
		c.scheduleDwellLocked(c.timings.OpenFolderDwell)
	case !src.IsFolder() && !dst.IsFolder():
		d.intent = IntentMerge
		c.scheduleDwellLocked(c.timings.MergeDwell)
	case src.IsFolder() && dst.IsFolder():
		d.intent = IntentReorderOnly
	default:
		d.intent = IntentReorder
	}
	c.emitLocked()
	return true
}

// HoverChild reports the pointer entering a child of the open folder.
func (c *Controller) HoverChild(childIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if !d.inFolder || d.state != DraggingInFolder || !c.folder.open {
		return false
	}
	children := c.items[c.folder.index].Children
	if childIndex < 0 || childIndex >= len(children) {
		return false
	}
	if d.target == childIndex {
		return true
	}

	d.clearHover()
	if childIndex != d.child {
		d.target = childIndex
		d.intent = IntentReorder
		d.hint = HintRight
		if childIndex < d.child {
			d.hint = HintLeft
		}
	}
	c.emitLocked()
	return true
}

// HoverAddButton reports the pointer over the add button. Drops there are rejected.
func (c *Controller) HoverAddButton() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if d.inFolder || (d.state != DraggingTopLevel && d.state != PendingDwellAction) {
		return false
	}
	d.clearHover()
	d.overAdd = true
	c.emitLocked()
	return true
}

// LeaveHover reports the pointer leaving the current target.
func (c *Controller) LeaveHover() {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if !d.active() || d.state == Transitioning {
		return
	}
	d.clearHover()
	c.emitLocked()
}

// Drop finishes the gesture. A plain reorder is applied unless a dwell action
// already moved the item or the pointer is over the add button. The session
// ends either way. Reports whether the collection changed.
func (c *Controller) Drop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if !d.active() {
		return false
	}

	var moved bool
	switch {
	case d.dwellFired, d.overAdd, d.target < 0:
	case d.inFolder:
		if c.folder.open {
			moved = c.items.MoveChild(c.folder.index, d.child, d.target)
			if moved {
				c.touchLocked(c.folder.index)
			}
		}
	case d.intent != IntentNone:
		moved = c.items.Move(d.source, d.target)
	}

	c.endDragLocked()
	if moved {
		c.commitLocked(true)
	} else {
		c.emitLocked()
	}
	return moved
}

// EndDrag cancels the gesture and all of its timers. Safe to call repeatedly.
func (c *Controller) EndDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drag.active() {
		return
	}
	c.endDragLocked()
	c.emitLocked()
}

// PointerMove feeds pointer positions during a drag. On the grid it drives
// edge auto paging; inside a folder it drives drag-out detection.
func (c *Controller) PointerMove(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.drag.active() {
		return
	}
	if c.drag.inFolder {
		c.trackExitLocked(p)
		return
	}
	c.trackEdgeLocked(p)
}

func (c *Controller) endDragLocked() {
	c.drag.dwell.stop()
	c.drag.exit.stop()
	c.cancelAutoPageLocked()
	c.drag.gen++
	c.drag.reset()
}

func (c *Controller) scheduleDwellLocked(delay time.Duration) {
	d := &c.drag
	gen, target := d.gen, d.target
	d.state = PendingDwellAction
	d.dwellStartedAt = c.sched.Now()
	d.dwell.schedule(c.sched, delay, func(seq uint64) {
		c.fireDwell(gen, seq, target)
	})
	c.cancelAutoPageLocked()
}

// fireDwell runs the escalated action for a sustained hover: the source moves
// into the hovered folder, or merges with the hovered link into a new folder.
// Either way the folder opens and the drag continues inside it.
func (c *Controller) fireDwell(gen, seq uint64, target int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if d.gen != gen || d.state != PendingDwellAction || d.target != target {
		return
	}
	if !d.dwell.claim(seq) {
		return
	}
	d.state = Transitioning

	now := c.sched.Now()
	var (
		folderIdx int
		ok        bool
	)
	switch d.intent {
	case IntentOpenFolder:
		folderIdx, ok = c.items.AddToFolder(d.source, target, now)
	case IntentMerge:
		folderIdx, ok = c.items.Merge(target, d.source, now)
	}
	if !ok {
		d.state = d.base()
		d.clearHover()
		c.emitLocked()
		return
	}

	c.openFolderLocked(folderIdx)
	children := c.items[folderIdx].Children
	child := len(children) - 1

	d.inFolder = true
	d.source = -1
	d.child = child
	d.snapshot = model.LinkItem(children[child])
	d.target = -1
	d.intent = IntentNone
	d.hint = HintNone
	d.dwellStartedAt = time.Time{}
	d.dwellFired = true
	d.state = DraggingInFolder

	c.log.Debug().Int("folder", folderIdx).Msg("dwell action applied")
	c.commitLocked(true)
}

func (c *Controller) dragInfoLocked() DragInfo {
	d := c.drag
	return DragInfo{
		State:          d.state,
		SourceIndex:    d.source,
		SourceChild:    d.child,
		Source:         d.snapshot.Clone(),
		Target:         d.target,
		OverAdd:        d.overAdd,
		Intent:         d.intent,
		Hint:           d.hint,
		DwellStartedAt: d.dwellStartedAt,
		DwellFired:     d.dwellFired,
		AutoPageDir:    c.autoPage.dir,
	}
}
