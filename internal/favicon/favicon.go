// Package favicon resolves and caches shortcut icons.
package favicon

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const serviceURL = "https://t2.gstatic.com/faviconV2?client=SOCIAL&type=FAVICON&fallback_opts=TYPE,SIZE,URL&url=%s&size=64"

// ResolveIconURL returns the icon service URL for the origin of site.
// It fails for anything that is not an absolute URL.
func ResolveIconURL(site string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(site))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	origin := u.Scheme + "://" + u.Host
	return fmt.Sprintf(serviceURL, url.QueryEscape(origin)), true
}

// Initials is the text drawn when no icon is available: the first two
// characters of name without whitespace, or one upper-cased character.
func Initials(name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)

	if utf8.RuneCountInString(clean) >= 2 {
		r := []rune(clean)
		return string(r[:2])
	}
	return strings.ToUpper(clean)
}
