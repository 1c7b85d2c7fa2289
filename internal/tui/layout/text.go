package layout

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleWidth returns the terminal width of a string, excluding ANSI codes.
// Wide runes such as CJK count as two cells.
func VisibleWidth(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// TruncateText truncates text to maxWidth cells with ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", text != ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text, false
	}
	if runewidth.StringWidth(cfg.Ellipsis) >= maxWidth {
		return runewidth.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return runewidth.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// Center pads text with spaces to width cells, text in the middle.
func Center(text string, width int) string {
	w := VisibleWidth(text)
	if w >= width {
		return text
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-w-left)
}
