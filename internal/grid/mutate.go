package grid

import (
	"errors"
	"io"
	"strings"

	"github.com/nikbrunner/newtab/internal/backup"
	"github.com/nikbrunner/newtab/internal/model"
	"github.com/nikbrunner/newtab/internal/pager"
)

// ErrInvalidInput is returned when a link is added or edited with an empty name or URL.
var ErrInvalidInput = errors.New("grid: name and url are required")

// Mutation entry points. Each one ends any drag in progress, applies the
// change, persists the whole collection and notifies listeners. Indices that
// no longer point at the expected kind of item make the call a no-op that
// returns false.

// MoveWithinList moves the item at from to position to.
func (c *Controller) MoveWithinList(from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	if !c.items.Move(from, to) {
		return false
	}
	c.commitLocked(true)
	return true
}

// MoveWithinFolder reorders the children of the folder at folderIdx.
func (c *Controller) MoveWithinFolder(folderIdx, from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	if !c.items.MoveChild(folderIdx, from, to) {
		return false
	}
	c.touchLocked(folderIdx)
	c.commitLocked(true)
	return true
}

// CreateFolder merges two links into a new folder holding [index1, index2],
// placed at the lower index. Returns the folder index.
func (c *Controller) CreateFolder(index1, index2 int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	idx, ok := c.items.Merge(index1, index2, c.sched.Now())
	if !ok {
		return -1, false
	}
	c.commitLocked(true)
	return idx, true
}

// AddToExistingFolder moves a link into a folder. Returns the folder's new index.
func (c *Controller) AddToExistingFolder(itemIdx, folderIdx int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	idx, ok := c.items.AddToFolder(itemIdx, folderIdx, c.sched.Now())
	if !ok {
		return -1, false
	}
	c.commitLocked(true)
	return idx, true
}

// ExtractFromFolder moves a child to the end of the top-level list and
// applies the collapse rule. Returns the extracted item's index.
func (c *Controller) ExtractFromFolder(folderIdx, childIdx int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	idx, _, ok := c.items.Extract(folderIdx, childIdx, c.sched.Now())
	if !ok {
		return -1, false
	}
	c.commitLocked(true)
	return idx, true
}

// DeleteItem removes a link or a whole folder.
func (c *Controller) DeleteItem(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	if !c.items.Delete(i) {
		return false
	}
	c.commitLocked(true)
	return true
}

// RenameFolder sets a folder's name. Empty names are stored as the default name.
func (c *Controller) RenameFolder(i int, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renameLocked(i, name)
}

func (c *Controller) renameLocked(i int, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultFolderName
	}
	if !c.items.Rename(i, name, c.sched.Now()) {
		return false
	}
	c.commitLocked(true)
	return true
}

// AddLink appends a link and shows the page it landed on. Returns its index.
func (c *Controller) AddLink(name, url string) (int, error) {
	l, err := newLink(name, url)
	if err != nil {
		return -1, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	idx := c.items.Append(l)
	c.pager.Recompute(len(c.items))
	c.pager.GoTo(pager.PageOf(idx, c.pager.Layout()))
	c.commitLocked(true)
	return idx, nil
}

// EditLink replaces the link at i. Folder indices are a no-op.
func (c *Controller) EditLink(i int, name, url string) (bool, error) {
	l, err := newLink(name, url)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.endDragLocked()
	if !c.items.SetLink(i, l) {
		return false, nil
	}
	c.commitLocked(true)
	return true, nil
}

// ClearAll removes every item.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetSessionsLocked()
	c.items = model.Collection{}
	c.commitLocked(true)
}

// RestoreDefaults replaces the collection with the stock shortcuts.
func (c *Controller) RestoreDefaults() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetSessionsLocked()
	c.items = model.DefaultShortcuts()
	c.commitLocked(true)
}

// ImportBackup merges a native or Infinity JSON backup into the collection.
// Nothing changes unless the result reports success with a positive count.
func (c *Controller) ImportBackup(raw []byte) backup.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, res := backup.Import(raw, c.items, c.sched.Now())
	c.applyImportLocked(next, res)
	return res
}

// ImportHTML merges a Netscape bookmark file into the collection.
func (c *Controller) ImportHTML(r io.Reader) backup.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, res := backup.ImportHTML(r, c.items, c.sched.Now())
	c.applyImportLocked(next, res)
	return res
}

func (c *Controller) applyImportLocked(next model.Collection, res backup.Result) {
	if !res.Success || res.Count == 0 {
		return
	}
	c.resetSessionsLocked()
	c.items = next
	c.commitLocked(true)
}

// Export returns the native backup payload for the current collection.
func (c *Controller) Export() backup.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return backup.Export(c.items, c.sched.Now())
}

// touchLocked stamps the folder at i as modified.
func (c *Controller) touchLocked(i int) {
	if c.items.IsFolderAt(i) {
		c.items[i].UpdatedAt = c.sched.Now()
	}
}

func newLink(name, url string) (model.Link, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" {
		return model.Link{}, ErrInvalidInput
	}
	return model.Link{Name: name, URL: NormalizeURL(url)}, nil
}

// NormalizeURL prepends https:// unless url already has an http(s) scheme.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}
