package grid

import (
	"time"

	"github.com/nikbrunner/newtab/internal/model"
)

// FolderInfo is the folder overlay as seen by a front-end.
type FolderInfo struct {
	Open     bool
	Index    int
	ID       string
	Name     string
	Children []model.Link
	Manage   bool
	OpenedAt time.Time
}

// folderSession tracks the open folder by id; index is refreshed after every
// change so it never goes stale.
type folderSession struct {
	open      bool
	id        string
	index     int
	openedAt  time.Time
	crossedIn bool // pointer has been inside the overlay during this drag
	manage    bool
}

// OpenFolder shows the folder at index.
func (c *Controller) OpenFolder(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.items.IsFolderAt(index) {
		return false
	}
	if c.drag.inFolder {
		c.endDragLocked()
	}
	c.openFolderLocked(index)
	c.emitLocked()
	return true
}

// CloseFolder hides the overlay and leaves manage mode.
func (c *Controller) CloseFolder() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.folder.open {
		return false
	}
	if c.drag.inFolder {
		c.endDragLocked()
	}
	c.closeFolderLocked()
	c.emitLocked()
	return true
}

// ToggleManage flips the overlay's manage mode. Returns the new mode.
func (c *Controller) ToggleManage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.folder.open {
		return false
	}
	c.folder.manage = !c.folder.manage
	c.emitLocked()
	return c.folder.manage
}

// RemoveChild takes a child out of the open folder and appends it to the
// top-level list. The overlay closes if the folder collapses or disappears.
func (c *Controller) RemoveChild(childIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.folder.open {
		return false
	}
	if c.drag.inFolder {
		c.endDragLocked()
	}

	_, state, ok := c.items.Extract(c.folder.index, childIndex, c.sched.Now())
	if !ok {
		return false
	}
	if state != model.FolderKept {
		c.closeFolderLocked()
	}
	c.commitLocked(true)
	return true
}

// RenameOpenFolder writes the overlay's name field through to the collection.
func (c *Controller) RenameOpenFolder(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.folder.open {
		return false
	}
	return c.renameLocked(c.folder.index, name)
}

// SetOverlayBounds records where the folder overlay is drawn.
func (c *Controller) SetOverlayBounds(r Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlayBounds = r
}

func (c *Controller) openFolderLocked(index int) {
	c.drag.exit.stop()
	c.folder = folderSession{
		open:     true,
		id:       c.items[index].ID,
		index:    index,
		openedAt: c.sched.Now(),
	}
}

func (c *Controller) closeFolderLocked() {
	c.drag.exit.stop()
	c.folder = folderSession{}
}

// syncFolderLocked follows the open folder to its current index, closing the
// session if the folder no longer exists.
func (c *Controller) syncFolderLocked() {
	if !c.folder.open {
		return
	}
	for i, item := range c.items {
		if item.IsFolder() && item.ID == c.folder.id {
			c.folder.index = i
			return
		}
	}
	if c.drag.inFolder {
		c.endDragLocked()
	}
	c.closeFolderLocked()
}

// trackExitLocked watches an in-folder drag for the pointer leaving the
// overlay. After a sustained stay outside, the child is extracted and the
// drag carries on at the top level.
func (c *Controller) trackExitLocked(p Point) {
	if !c.folder.open || c.overlayBounds.Empty() {
		return
	}
	if c.sched.Now().Sub(c.folder.openedAt) < c.timings.FolderCooldown {
		return
	}

	if c.overlayBounds.Expand(c.timings.ExitPadding).Contains(p) {
		c.folder.crossedIn = true
		c.drag.exit.stop()
		return
	}
	if !c.folder.crossedIn || c.drag.exit.pending() {
		return
	}

	gen := c.drag.gen
	c.drag.exit.schedule(c.sched, c.timings.ExitDelay, func(seq uint64) {
		c.fireExit(gen, seq)
	})
}

func (c *Controller) fireExit(gen, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := &c.drag
	if d.gen != gen || !d.inFolder || d.state != DraggingInFolder || !c.folder.open {
		return
	}
	if !d.exit.claim(seq) {
		return
	}
	d.state = Transitioning

	idx, _, ok := c.items.Extract(c.folder.index, d.child, c.sched.Now())
	if !ok {
		c.endDragLocked()
		c.emitLocked()
		return
	}
	c.closeFolderLocked()

	d.inFolder = false
	d.source = idx
	d.child = -1
	d.snapshot = c.items[idx].Clone()
	d.target = -1
	d.overAdd = false
	d.intent = IntentNone
	d.hint = HintNone
	// The drag is a fresh top-level drag now; a drop may reorder it.
	d.dwellFired = false
	d.state = DraggingTopLevel

	c.log.Debug().Int("index", idx).Msg("dragged out of folder")
	c.commitLocked(true)
}

func (c *Controller) folderInfoLocked() FolderInfo {
	if !c.folder.open {
		return FolderInfo{Index: -1}
	}
	f := c.items[c.folder.index]
	children := make([]model.Link, len(f.Children))
	copy(children, f.Children)
	return FolderInfo{
		Open:     true,
		Index:    c.folder.index,
		ID:       f.ID,
		Name:     f.Name,
		Children: children,
		Manage:   c.folder.manage,
		OpenedAt: c.folder.openedAt,
	}
}
