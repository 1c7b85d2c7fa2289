// Package search dispatches queries to web search engines and finds
// shortcuts by name.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/newtab/internal/model"
)

// Result is a shortcut matched by name.
type Result struct {
	Link           model.Link
	Index          int // top-level index
	Child          int // child index inside the folder at Index, -1 for top-level links
	Folder         string
	MatchedIndexes []int
	Score          int
}

type entry struct {
	link   model.Link
	index  int
	child  int
	folder string
}

// entries implements fuzzy.Source over link names.
type entries []entry

func (e entries) String(i int) string {
	return e[i].link.Name
}

func (e entries) Len() int {
	return len(e)
}

// Shortcuts fuzzy-matches query against every link name, folder children
// included. Results are sorted best first.
func Shortcuts(items model.Collection, query string) []Result {
	if query == "" {
		return nil
	}

	var all entries
	for i, item := range items {
		if !item.IsFolder() {
			all = append(all, entry{link: item.Link(), index: i, child: -1})
			continue
		}
		for k, child := range item.Children {
			all = append(all, entry{link: child, index: i, child: k, folder: item.Name})
		}
	}

	matches := fuzzy.FindFrom(query, all)

	results := make([]Result, len(matches))
	for i, m := range matches {
		e := all[m.Index]
		results[i] = Result{
			Link:           e.link,
			Index:          e.index,
			Child:          e.child,
			Folder:         e.folder,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
