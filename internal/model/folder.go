package model

import (
	"strings"
	"time"
)

// FolderIDPrefix namespaces folder ids; its presence is what makes an Item a folder.
const FolderIDPrefix = "folder_"

// DefaultFolderName is used for folders created by drag-merge.
const DefaultFolderName = "新文件夹"

// IsFolderID reports whether id lives in the folder namespace.
func IsFolderID(id string) bool {
	return strings.HasPrefix(id, FolderIDPrefix)
}

// NewFolderID generates a unique folder id.
func NewFolderID() string {
	return FolderIDPrefix + generateUUID()
}

// NewFolderParams holds parameters for creating a new folder Item.
type NewFolderParams struct {
	Name     string
	Children []Link
	Now      time.Time
}

// NewFolder creates a folder Item with a generated id.
func NewFolder(params NewFolderParams) Item {
	name := params.Name
	if name == "" {
		name = DefaultFolderName
	}

	children := make([]Link, len(params.Children))
	copy(children, params.Children)

	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	return Item{
		Name:      name,
		ID:        NewFolderID(),
		Children:  children,
		UpdatedAt: now,
	}
}
