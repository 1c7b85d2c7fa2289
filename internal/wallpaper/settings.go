package wallpaper

import (
	"encoding/json"
	"fmt"
	"time"
)

// Interval choices offered to the user. Zero means manual refresh only.
var Intervals = []time.Duration{0, time.Hour, 6 * time.Hour, 12 * time.Hour, 24 * time.Hour, 7 * 24 * time.Hour}

var intervalLabels = map[time.Duration]string{
	0:                  "手动更换",
	time.Hour:          "每小时",
	6 * time.Hour:      "每6小时",
	12 * time.Hour:     "每12小时",
	24 * time.Hour:     "每24小时",
	7 * 24 * time.Hour: "每周",
}

// IntervalLabel returns the display name of d, or d itself if it is not a choice.
func IntervalLabel(d time.Duration) string {
	if l, ok := intervalLabels[d]; ok {
		return l
	}
	return d.String()
}

// ValidInterval reports whether d is one of Intervals.
func ValidInterval(d time.Duration) bool {
	_, ok := intervalLabels[d]
	return ok
}

// Settings is the persisted wallpaper state.
type Settings struct {
	Source       Source
	Interval     time.Duration
	Current      *Wallpaper
	LastRefresh  time.Time
	LastBingDate string // YYYY-MM-DD of the last background Bing refresh
}

// DefaultSettings is used until the user changes anything.
func DefaultSettings() Settings {
	return Settings{Source: SourcePicsum, Interval: 24 * time.Hour}
}

type settingsJSON struct {
	Source           string     `json:"source"`
	Interval         int64      `json:"interval"` // milliseconds
	CurrentWallpaper *Wallpaper `json:"currentWallpaper"`
	LastRefresh      *int64     `json:"lastRefresh"` // unix millis
	LastBingDate     string     `json:"lastBingDate,omitempty"`
}

// MarshalJSON writes the store format: durations and times in milliseconds.
func (s Settings) MarshalJSON() ([]byte, error) {
	out := settingsJSON{
		Source:           string(s.Source),
		Interval:         s.Interval.Milliseconds(),
		CurrentWallpaper: s.Current,
		LastBingDate:     s.LastBingDate,
	}
	if !s.LastRefresh.IsZero() {
		ms := s.LastRefresh.UnixMilli()
		out.LastRefresh = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the store format. Missing fields keep their defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	d := DefaultSettings()
	in := settingsJSON{Source: string(d.Source), Interval: d.Interval.Milliseconds()}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	src, err := ParseSource(in.Source)
	if err != nil {
		return err
	}
	if in.Interval < 0 {
		return fmt.Errorf("wallpaper: negative interval %d", in.Interval)
	}

	*s = Settings{
		Source:       src,
		Interval:     time.Duration(in.Interval) * time.Millisecond,
		Current:      in.CurrentWallpaper,
		LastBingDate: in.LastBingDate,
	}
	if in.LastRefresh != nil {
		s.LastRefresh = time.UnixMilli(*in.LastRefresh)
	}
	if s.Current != nil && s.Current.URL == "" {
		s.Current = nil
	}
	return nil
}
