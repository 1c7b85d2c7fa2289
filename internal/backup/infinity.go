package backup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikbrunner/newtab/internal/model"
)

// infinityFolderPrefix marks folder entries in an Infinity backup.
const infinityFolderPrefix = "folder"

type infinitySite struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Target   string         `json:"target"`
	Children []infinitySite `json:"children"`
}

// parseInfinity reads data.site.sites, a list of pages each holding sites.
func parseInfinity(raw json.RawMessage) ([]entry, error) {
	var data struct {
		Site *struct {
			Sites []json.RawMessage `json:"sites"`
		} `json:"site"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrUnrecognized
	}
	if data.Site == nil || data.Site.Sites == nil {
		return nil, ErrUnrecognized
	}

	var entries []entry
	for i, page := range data.Site.Sites {
		var sites []infinitySite
		if err := json.Unmarshal(page, &sites); err != nil {
			// Non-list pages are skipped, not fatal.
			if _, ok := err.(*json.UnmarshalTypeError); ok {
				continue
			}
			return nil, fmt.Errorf("decode page %d: %w", i, err)
		}
		for _, site := range sites {
			if strings.HasPrefix(site.ID, infinityFolderPrefix) {
				entries = append(entries, entry{
					folder:   true,
					name:     site.Name,
					children: infinityLinks(site.Children),
				})
				continue
			}
			if l, ok := infinityLink(site); ok {
				entries = append(entries, entry{link: l})
			}
		}
	}
	return entries, nil
}

func infinityLinks(sites []infinitySite) []model.Link {
	var out []model.Link
	for _, s := range sites {
		if l, ok := infinityLink(s); ok {
			out = append(out, l)
		}
	}
	return out
}

func infinityLink(s infinitySite) (model.Link, bool) {
	if s.Type != "web" || s.Name == "" {
		return model.Link{}, false
	}
	u, ok := webURL(s.Target)
	if !ok {
		return model.Link{}, false
	}
	return model.Link{Name: s.Name, URL: u}, true
}

// pseudoSchemes are targets that do not open a web page.
var pseudoSchemes = []string{
	"javascript:", "about:", "data:", "file:", "mailto:", "blob:",
	"chrome:", "chrome-extension:", "edge:", "moz-extension:", "infinity:",
}

// webURL accepts http(s) targets and bare hosts, which get https:// prepended.
func webURL(target string) (string, bool) {
	t := strings.TrimSpace(target)
	if t == "" {
		return "", false
	}
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return t, true
	}
	if strings.Contains(lower, "://") {
		return "", false
	}
	for _, p := range pseudoSchemes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	return "https://" + t, true
}
