package model

import "time"

// Collection is the ordered list of grid items. Order is display order.
type Collection []Item

// FolderState is the outcome of applying the collapse rule to a folder.
type FolderState int

const (
	FolderKept      FolderState = iota // still has 2+ children
	FolderCollapsed                    // replaced by its single remaining link
	FolderRemoved                      // had no children left and was deleted
)

// Clone returns a deep copy. A nil collection clones to an empty one.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i := range c {
		out[i] = c[i].Clone()
	}
	return out
}

// Equal reports whether both collections hold the same items in the same order.
func (c Collection) Equal(o Collection) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Valid reports whether i indexes an item.
func (c Collection) Valid(i int) bool {
	return i >= 0 && i < len(c)
}

// IsFolderAt reports whether i indexes a folder.
func (c Collection) IsFolderAt(i int) bool {
	return c.Valid(i) && c[i].IsFolder()
}

// IsLinkAt reports whether i indexes a link.
func (c Collection) IsLinkAt(i int) bool {
	return c.Valid(i) && !c[i].IsFolder()
}

// HasURL reports whether url exists anywhere, top-level or inside a folder.
func (c Collection) HasURL(url string) bool {
	for _, item := range c {
		if item.IsFolder() {
			for _, child := range item.Children {
				if child.URL == url {
					return true
				}
			}
			continue
		}
		if item.URL == url {
			return true
		}
	}
	return false
}

// FolderByName returns the index of the first top-level folder named name, or -1.
func (c Collection) FolderByName(name string) int {
	for i, item := range c {
		if item.IsFolder() && item.Name == name {
			return i
		}
	}
	return -1
}

// LinkCount counts links, including folder children.
func (c Collection) LinkCount() int {
	n := 0
	for _, item := range c {
		if item.IsFolder() {
			n += len(item.Children)
			continue
		}
		n++
	}
	return n
}

// Move takes the item at from and reinserts it at to.
func (c *Collection) Move(from, to int) bool {
	items := *c
	if !items.Valid(from) || !items.Valid(to) || from == to {
		return false
	}
	*c = moveItem(items, from, to)
	return true
}

// MoveChild reorders children of the folder at folderIdx.
func (c *Collection) MoveChild(folderIdx, from, to int) bool {
	items := *c
	if !items.IsFolderAt(folderIdx) {
		return false
	}
	children := items[folderIdx].Children
	if from < 0 || from >= len(children) || to < 0 || to >= len(children) || from == to {
		return false
	}
	items[folderIdx].Children = moveItem(children, from, to)
	return true
}

// Merge replaces two links with a new folder holding [target, source], inserted
// at the lower of the two indices. Returns the folder index.
func (c *Collection) Merge(targetIdx, sourceIdx int, now time.Time) (int, bool) {
	items := *c
	if targetIdx == sourceIdx || !items.IsLinkAt(targetIdx) || !items.IsLinkAt(sourceIdx) {
		return -1, false
	}

	folder := NewFolder(NewFolderParams{
		Name:     DefaultFolderName,
		Children: []Link{items[targetIdx].Link(), items[sourceIdx].Link()},
		Now:      now,
	})

	lo, hi := targetIdx, sourceIdx
	if lo > hi {
		lo, hi = hi, lo
	}

	out := make(Collection, 0, len(items)-1)
	out = append(out, items[:lo]...)
	out = append(out, folder)
	out = append(out, items[lo+1:hi]...)
	out = append(out, items[hi+1:]...)
	*c = out
	return lo, true
}

// AddToFolder moves the link at itemIdx to the end of the folder at folderIdx.
// Returns the folder's index after the link is removed.
func (c *Collection) AddToFolder(itemIdx, folderIdx int, now time.Time) (int, bool) {
	items := *c
	if itemIdx == folderIdx || !items.IsLinkAt(itemIdx) || !items.IsFolderAt(folderIdx) {
		return -1, false
	}

	items[folderIdx].Children = append(items[folderIdx].Children, items[itemIdx].Link())
	items[folderIdx].UpdatedAt = now

	*c = removeItem(items, itemIdx)
	if itemIdx < folderIdx {
		folderIdx--
	}
	return folderIdx, true
}

// Extract removes a child from the folder, appends it to the end of the
// collection, then applies the collapse rule to the folder. Returns the new
// index of the extracted link and what happened to the folder.
func (c *Collection) Extract(folderIdx, childIdx int, now time.Time) (int, FolderState, bool) {
	items := *c
	if !items.IsFolderAt(folderIdx) {
		return -1, FolderKept, false
	}
	children := items[folderIdx].Children
	if childIdx < 0 || childIdx >= len(children) {
		return -1, FolderKept, false
	}

	child := children[childIdx]
	items[folderIdx].Children = removeItem(children, childIdx)
	items[folderIdx].UpdatedAt = now
	items = append(items, LinkItem(child))
	*c = items

	state := c.Collapse(folderIdx)
	return len(*c) - 1, state, true
}

// Collapse enforces the folder invariant at folderIdx: one child collapses
// the folder into that link in place, zero children removes the folder.
func (c *Collection) Collapse(folderIdx int) FolderState {
	items := *c
	if !items.IsFolderAt(folderIdx) {
		return FolderKept
	}

	switch len(items[folderIdx].Children) {
	case 0:
		*c = removeItem(items, folderIdx)
		return FolderRemoved
	case 1:
		items[folderIdx] = LinkItem(items[folderIdx].Children[0])
		return FolderCollapsed
	default:
		return FolderKept
	}
}

// Normalize applies the collapse rule to every folder.
func (c *Collection) Normalize() {
	for i := len(*c) - 1; i >= 0; i-- {
		c.Collapse(i)
	}
}

// Delete removes the item at i.
func (c *Collection) Delete(i int) bool {
	if !c.Valid(i) {
		return false
	}
	*c = removeItem(*c, i)
	return true
}

// Rename sets the name of the folder at i.
func (c *Collection) Rename(i int, name string, now time.Time) bool {
	items := *c
	if !items.IsFolderAt(i) {
		return false
	}
	items[i].Name = name
	items[i].UpdatedAt = now
	return true
}

// SetLink replaces the link at i.
func (c *Collection) SetLink(i int, l Link) bool {
	items := *c
	if !items.IsLinkAt(i) {
		return false
	}
	items[i] = LinkItem(l)
	return true
}

// Append adds a link at the end.
func (c *Collection) Append(l Link) int {
	*c = append(*c, LinkItem(l))
	return len(*c) - 1
}

func moveItem[T any](s []T, from, to int) []T {
	v := s[from]
	out := make([]T, 0, len(s))
	out = append(out, s[:from]...)
	out = append(out, s[from+1:]...)
	out = append(out[:to], append([]T{v}, out[to:]...)...)
	return out
}

func removeItem[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
