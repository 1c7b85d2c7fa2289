// Package backup translates between the shortcut collection and backup files:
// the native JSON export, Infinity new-tab backups and Netscape bookmark HTML.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/newtab/internal/model"
)

// Native export identification.
const (
	FormatType    = "simpleNewTab"
	FormatVersion = "2.0"
)

// Result messages shown to the user.
const (
	msgNothingNew   = "所有快捷方式已存在，无需导入"
	msgInvalid      = "无效的备份文件格式"
	msgNoLinks      = "未找到可导入的网页快捷方式"
	msgUnparseable  = "文件解析失败，请确保是有效的 JSON 文件"
	msgImportedFmt  = "成功导入 %d 个快捷方式"
	msgHTMLBadInput = "书签文件解析失败"
)

// ErrUnrecognized marks JSON that is neither a native nor an Infinity backup.
var ErrUnrecognized = errors.New("backup: unrecognized format")

// Payload is the native export document.
type Payload struct {
	Type       string           `json:"type"`
	Version    string           `json:"version"`
	ExportTime time.Time        `json:"exportTime"`
	Shortcuts  model.Collection `json:"shortcuts"`
}

// Result reports the outcome of an import.
type Result struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Export snapshots items into a payload. The shortcuts are a deep copy.
func Export(items model.Collection, now time.Time) Payload {
	return Payload{
		Type:       FormatType,
		Version:    FormatVersion,
		ExportTime: now.UTC(),
		Shortcuts:  items.Clone(),
	}
}

// Marshal encodes p as indented JSON.
func Marshal(p Payload) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Filename returns the download name for an export made at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("shortcuts-backup-%s.json", now.Format("2006-01-02"))
}

// entry is one importable unit: a link, or a named group of links.
type entry struct {
	link     model.Link
	folder   bool
	name     string
	children []model.Link
}

// parse decodes a native or Infinity backup into importable entries.
func parse(raw []byte) (entries []entry, native bool, err error) {
	var probe struct {
		Type      string          `json:"type"`
		Shortcuts json.RawMessage `json:"shortcuts"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false, fmt.Errorf("decode backup: %w", err)
	}

	trimmed := bytes.TrimSpace(probe.Shortcuts)
	if probe.Type == FormatType && len(trimmed) > 0 && trimmed[0] == '[' {
		entries, err = parseNative(probe.Shortcuts)
		return entries, true, err
	}
	if len(probe.Data) > 0 {
		entries, err = parseInfinity(probe.Data)
		return entries, false, err
	}
	return nil, false, ErrUnrecognized
}

// Import merges a JSON backup into existing and returns the new collection.
// existing is never modified. Malformed input yields a failure Result.
func Import(raw []byte, existing model.Collection, now time.Time) (model.Collection, Result) {
	entries, native, err := parse(raw)
	switch {
	case errors.Is(err, ErrUnrecognized):
		return existing, Result{Message: msgInvalid}
	case err != nil:
		return existing, Result{Message: msgUnparseable}
	}
	return apply(existing, entries, !native, now)
}

// apply merges entries and builds the Result. With requireLinks, an input
// without a single candidate link is a failure rather than a no-op.
func apply(existing model.Collection, entries []entry, requireLinks bool, now time.Time) (model.Collection, Result) {
	if requireLinks && linkTotal(entries) == 0 {
		return existing, Result{Message: msgNoLinks}
	}

	next, count := merge(existing, entries, now)
	if count == 0 {
		return existing, Result{Success: true, Message: msgNothingNew}
	}
	return next, Result{Success: true, Count: count, Message: fmt.Sprintf(msgImportedFmt, count)}
}

// merge appends entries to a copy of existing. A URL already present anywhere
// (or earlier in the import) is skipped. Groups named like an existing folder
// join it; groups left with no links are dropped and groups left with one
// link become that link.
func merge(existing model.Collection, entries []entry, now time.Time) (model.Collection, int) {
	out := existing.Clone()
	prior := len(out)

	seen := make(map[string]bool)
	for _, item := range out {
		if item.IsFolder() {
			for _, child := range item.Children {
				seen[child.URL] = true
			}
			continue
		}
		seen[item.URL] = true
	}

	fresh := func(l model.Link) bool {
		if l.Name == "" || l.URL == "" || seen[l.URL] {
			return false
		}
		seen[l.URL] = true
		return true
	}

	count := 0
	for _, e := range entries {
		if !e.folder {
			if fresh(e.link) {
				out = append(out, model.LinkItem(e.link))
				count++
			}
			continue
		}

		var kept []model.Link
		for _, child := range e.children {
			if fresh(child) {
				kept = append(kept, child)
			}
		}
		if len(kept) == 0 {
			continue
		}
		count += len(kept)

		if idx := out[:prior].FolderByName(e.name); idx >= 0 {
			out[idx].Children = append(out[idx].Children, kept...)
			out[idx].UpdatedAt = now
			continue
		}
		if len(kept) == 1 {
			out = append(out, model.LinkItem(kept[0]))
			continue
		}
		name := strings.TrimSpace(e.name)
		if name == "" {
			name = model.DefaultFolderName
		}
		out = append(out, model.NewFolder(model.NewFolderParams{Name: name, Children: kept, Now: now}))
	}
	return out, count
}

func linkTotal(entries []entry) int {
	n := 0
	for _, e := range entries {
		if e.folder {
			n += len(e.children)
			continue
		}
		n++
	}
	return n
}

type nativeItem struct {
	Name     string       `json:"name"`
	URL      string       `json:"url"`
	ID       string       `json:"id"`
	Children []model.Link `json:"children"`
}

func parseNative(raw json.RawMessage) ([]entry, error) {
	var items []nativeItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode shortcuts: %w", err)
	}

	entries := make([]entry, 0, len(items))
	for _, it := range items {
		if model.IsFolderID(it.ID) || (it.URL == "" && it.Children != nil) {
			entries = append(entries, entry{folder: true, name: it.Name, children: it.Children})
			continue
		}
		if it.Name == "" || it.URL == "" {
			continue
		}
		entries = append(entries, entry{link: model.Link{Name: it.Name, URL: it.URL}})
	}
	return entries, nil
}
