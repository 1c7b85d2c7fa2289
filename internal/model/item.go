package model

import (
	"encoding/json"
	"time"
)

// Link is a single bookmark tile.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Item is one entry of the shortcut grid. It is a Folder when ID carries the
// folder prefix and a Link otherwise; no other tag exists.
type Item struct {
	Name      string
	URL       string    // empty for folders
	ID        string    // empty for links
	Children  []Link    // folders only, never nested
	UpdatedAt time.Time // folders only
}

// LinkItem wraps a Link as a top-level Item.
func LinkItem(l Link) Item {
	return Item{Name: l.Name, URL: l.URL}
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return IsFolderID(i.ID)
}

// Link returns the link view of the item.
func (i Item) Link() Link {
	return Link{Name: i.Name, URL: i.URL}
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	c := i
	if i.Children != nil {
		c.Children = make([]Link, len(i.Children))
		copy(c.Children, i.Children)
	}
	return c
}

// Equal compares two items field by field.
func (i Item) Equal(o Item) bool {
	if i.Name != o.Name || i.URL != o.URL || i.ID != o.ID {
		return false
	}
	if !i.IsFolder() {
		return true
	}
	if !i.UpdatedAt.Equal(o.UpdatedAt) || len(i.Children) != len(o.Children) {
		return false
	}
	for k := range i.Children {
		if i.Children[k] != o.Children[k] {
			return false
		}
	}
	return true
}

type folderJSON struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Children  []Link `json:"children"`
	UpdatedAt int64  `json:"updatedAt"` // unix millis
}

type itemJSON struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	ID        string `json:"id"`
	Children  []Link `json:"children"`
	UpdatedAt int64  `json:"updatedAt"`
}

// MarshalJSON writes links as {name,url} and folders as {name,id,children,updatedAt}.
func (i Item) MarshalJSON() ([]byte, error) {
	if !i.IsFolder() {
		return json.Marshal(i.Link())
	}

	children := i.Children
	if children == nil {
		children = []Link{}
	}

	var updated int64
	if !i.UpdatedAt.IsZero() {
		updated = i.UpdatedAt.UnixMilli()
	}

	return json.Marshal(folderJSON{
		Name:      i.Name,
		ID:        i.ID,
		Children:  children,
		UpdatedAt: updated,
	})
}

// UnmarshalJSON accepts both shapes. Ids outside the folder namespace are dropped.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !IsFolderID(raw.ID) {
		*i = Item{Name: raw.Name, URL: raw.URL}
		return nil
	}

	children := raw.Children
	if children == nil {
		children = []Link{}
	}

	*i = Item{
		Name:     raw.Name,
		ID:       raw.ID,
		Children: children,
	}
	if raw.UpdatedAt != 0 {
		i.UpdatedAt = time.UnixMilli(raw.UpdatedAt)
	}
	return nil
}
