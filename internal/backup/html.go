package backup

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"

	"github.com/nikbrunner/newtab/internal/model"
)

// ImportHTML merges a Netscape bookmark file into existing. Links at the root
// become shortcuts. Each top-level folder becomes one group; links in deeper
// folders join their top-level ancestor since folders do not nest.
func ImportHTML(r io.Reader, existing model.Collection, now time.Time) (model.Collection, Result) {
	entries, err := parseHTML(r)
	if err != nil {
		return existing, Result{Message: msgHTMLBadInput}
	}
	return apply(existing, entries, true, now)
}

func parseHTML(r io.Reader) ([]entry, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmarks: %w", err)
	}

	var entries []entry
	// Index into entries of the enclosing top-level folder for each open DL.
	var stack []int
	pending := ""
	hasPending := false

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pending = textContent(n)
				hasPending = true
				return

			case "a":
				u, ok := webURL(attr(n, "href"))
				if !ok {
					return
				}
				name := textContent(n)
				if name == "" {
					name = u
				}
				l := model.Link{Name: name, URL: u}
				if len(stack) == 0 {
					entries = append(entries, entry{link: l})
					return
				}
				top := stack[len(stack)-1]
				entries[top].children = append(entries[top].children, l)
				return

			case "dl":
				pushed := false
				if hasPending {
					if len(stack) == 0 {
						entries = append(entries, entry{folder: true, name: pending})
						stack = append(stack, len(entries)-1)
					} else {
						stack = append(stack, stack[len(stack)-1])
					}
					pushed = true
					hasPending = false
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return entries, nil
}

func textContent(n *xhtml.Node) string {
	var text strings.Builder
	var extract func(*xhtml.Node)
	extract = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// ExportHTML renders items as a Netscape bookmark file, one H3 per folder.
func ExportHTML(items model.Collection) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	const prefix = "    "
	for _, item := range items {
		if !item.IsFolder() {
			writeLink(&b, prefix, item.Link())
			continue
		}
		if item.UpdatedAt.IsZero() {
			fmt.Fprintf(&b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(item.Name))
		} else {
			fmt.Fprintf(&b, "%s<DT><H3 LAST_MODIFIED=\"%d\">%s</H3>\n",
				prefix, item.UpdatedAt.Unix(), html.EscapeString(item.Name))
		}
		fmt.Fprintf(&b, "%s<DL><p>\n", prefix)
		for _, child := range item.Children {
			writeLink(&b, prefix+prefix, child)
		}
		fmt.Fprintf(&b, "%s</DL><p>\n", prefix)
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeLink(b *strings.Builder, prefix string, l model.Link) {
	fmt.Fprintf(b, "%s<DT><A HREF=\"%s\">%s</A>\n",
		prefix, html.EscapeString(l.URL), html.EscapeString(l.Name))
}
