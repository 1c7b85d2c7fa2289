// Package wallpaper picks background images from Picsum or Bing and keeps the
// choice in the store, refreshing it on a schedule.
package wallpaper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Source names where wallpapers come from.
type Source string

const (
	SourcePicsum Source = "picsum"
	SourceBing   Source = "bing"
	SourceNone   Source = "none"
)

// ParseSource validates a source name. The retired "unsplash" source maps to Picsum.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourcePicsum, SourceBing, SourceNone:
		return src, nil
	case "unsplash":
		return SourcePicsum, nil
	default:
		return "", fmt.Errorf("wallpaper: unknown source %q", s)
	}
}

// Wallpaper is one chosen image with its attribution.
type Wallpaper struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
	Author string `json:"author"`
	Link   string `json:"link"`
}

// ErrNoImage is returned when Bing answers without an image.
var ErrNoImage = errors.New("wallpaper: no image in response")

// Default provider endpoints.
const (
	PicsumBaseURL = "https://picsum.photos"
	BingAPIBase   = "https://www.bing.com/HPImageArchive.aspx?format=js&n=1&mkt=zh-CN"
	bingOrigin    = "https://www.bing.com"
)

// Picsum serves random photos. Each request is redirected to a concrete image
// whose URL becomes the wallpaper.
type Picsum struct {
	Client  *http.Client
	BaseURL string
	Width   int
	Height  int
}

// SourceURL is the randomizing request URL for now.
func (p Picsum) SourceURL(now time.Time) string {
	base := p.BaseURL
	if base == "" {
		base = PicsumBaseURL
	}
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = 1920, 1080
	}
	return fmt.Sprintf("%s/%d/%d?random=%d", base, w, h, now.UnixMilli())
}

// Unresolved is the wallpaper used when the redirect cannot be followed.
func (p Picsum) Unresolved(now time.Time) Wallpaper {
	return picsumWallpaper(p.SourceURL(now))
}

// Fetch follows the random redirect and returns the final image URL.
func (p Picsum) Fetch(ctx context.Context, now time.Time) (Wallpaper, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.SourceURL(now), nil)
	if err != nil {
		return Wallpaper{}, err
	}
	resp, err := client(p.Client).Do(req)
	if err != nil {
		return Wallpaper{}, fmt.Errorf("picsum: %w", err)
	}
	resp.Body.Close()
	return picsumWallpaper(resp.Request.URL.String()), nil
}

func picsumWallpaper(url string) Wallpaper {
	return Wallpaper{URL: url, Source: SourcePicsum, Author: "Picsum Photos", Link: PicsumBaseURL}
}

// Bing serves the daily images of the last eight days.
type Bing struct {
	Client  *http.Client
	APIBase string
}

type bingResponse struct {
	Images []struct {
		URL           string `json:"url"`
		Copyright     string `json:"copyright"`
		CopyrightLink string `json:"copyrightlink"`
	} `json:"images"`
}

// Fetch returns the image idx days back; 0 is today.
func (b Bing) Fetch(ctx context.Context, idx int) (Wallpaper, error) {
	base := b.APIBase
	if base == "" {
		base = BingAPIBase
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s&idx=%d", base, idx), nil)
	if err != nil {
		return Wallpaper{}, err
	}
	resp, err := client(b.Client).Do(req)
	if err != nil {
		return Wallpaper{}, fmt.Errorf("bing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Wallpaper{}, fmt.Errorf("bing: status %d", resp.StatusCode)
	}

	var data bingResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Wallpaper{}, fmt.Errorf("bing: decode: %w", err)
	}
	if len(data.Images) == 0 || data.Images[0].URL == "" {
		return Wallpaper{}, ErrNoImage
	}

	img := data.Images[0]
	w := Wallpaper{URL: bingOrigin + img.URL, Source: SourceBing, Author: img.Copyright, Link: img.CopyrightLink}
	if w.Author == "" {
		w.Author = "Bing"
	}
	if w.Link == "" {
		w.Link = bingOrigin
	}
	return w, nil
}

func client(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}
