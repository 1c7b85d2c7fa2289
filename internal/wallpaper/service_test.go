package wallpaper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/poll"

	"github.com/nikbrunner/newtab/internal/storage"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

type fixture struct {
	svc   *wallpaper.Service
	store *storage.MemoryStorage
	now   *time.Time
	picks *[]string
}

func newService(t *testing.T, saved *wallpaper.Settings) fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	if saved != nil {
		raw, err := json.Marshal(*saved)
		assert.NilError(t, err)
		assert.NilError(t, store.Set(ctx, storage.KeyWallpaperSettings, raw))
	}

	ps := picsumServer(t)
	bs, picks := bingServer(t, []string{"/th?id=Day0.jpg", "/th?id=Day1.jpg", "/th?id=Day2.jpg", "/th?id=Day3.jpg"})

	clock := now
	svc, err := wallpaper.NewService(ctx, wallpaper.ServiceParams{
		Store:  store,
		Picsum: wallpaper.Picsum{Client: ps.Client(), BaseURL: ps.URL},
		Bing:   wallpaper.Bing{Client: bs.Client(), APIBase: bs.URL + "/?format=js"},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return clock },
		Rand:   func(int) int { return 3 },
	})
	assert.NilError(t, err)
	return fixture{svc: svc, store: store, now: &clock, picks: picks}
}

func stored(t *testing.T, store *storage.MemoryStorage) wallpaper.Settings {
	t.Helper()
	raw, err := store.Get(context.Background(), storage.KeyWallpaperSettings)
	assert.NilError(t, err)
	var s wallpaper.Settings
	assert.NilError(t, json.Unmarshal(raw, &s))
	return s
}

func TestSettingsJSON(t *testing.T) {
	s := wallpaper.Settings{
		Source:      wallpaper.SourceBing,
		Interval:    6 * time.Hour,
		Current:     &wallpaper.Wallpaper{URL: "https://x/y.jpg", Source: wallpaper.SourceBing},
		LastRefresh: now,
	}
	raw, err := json.Marshal(s)
	assert.NilError(t, err)

	var fields map[string]any
	assert.NilError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, fields["interval"], float64(21600000))
	assert.Equal(t, fields["lastRefresh"], float64(now.UnixMilli()))

	var back wallpaper.Settings
	assert.NilError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, back.Interval, s.Interval)
	assert.Assert(t, back.LastRefresh.Equal(now))
	assert.Equal(t, back.Current.URL, "https://x/y.jpg")
}

func TestSettingsJSON_Legacy(t *testing.T) {
	var s wallpaper.Settings
	assert.NilError(t, json.Unmarshal([]byte(`{"source":"unsplash","currentWallpaper":null,"lastRefresh":null}`), &s))
	assert.Equal(t, s.Source, wallpaper.SourcePicsum)
	assert.Equal(t, s.Interval, 24*time.Hour, "missing interval keeps the default")
	assert.Assert(t, s.Current == nil)
	assert.Assert(t, s.LastRefresh.IsZero())
}

func TestIntervalLabel(t *testing.T) {
	assert.Equal(t, wallpaper.IntervalLabel(0), "手动更换")
	assert.Equal(t, wallpaper.IntervalLabel(7*24*time.Hour), "每周")
	assert.Equal(t, wallpaper.IntervalLabel(90*time.Minute), "1h30m0s")
	assert.Assert(t, !wallpaper.ValidInterval(time.Minute))
}

func TestLoad_FetchesWhenNothingSaved(t *testing.T) {
	f := newService(t, nil)

	w, err := f.svc.Load(context.Background())
	assert.NilError(t, err)
	assert.Assert(t, w != nil)
	assert.Equal(t, w.Source, wallpaper.SourcePicsum)

	saved := stored(t, f.store)
	assert.Equal(t, saved.Current.URL, w.URL)
	assert.Assert(t, saved.LastRefresh.Equal(now))
}

func TestLoad_KeepsSavedWallpaper(t *testing.T) {
	cur := &wallpaper.Wallpaper{URL: "https://saved/img.jpg", Source: wallpaper.SourcePicsum}
	f := newService(t, &wallpaper.Settings{Source: wallpaper.SourcePicsum, Interval: time.Hour, Current: cur, LastRefresh: now.Add(-5 * time.Hour)})

	w, err := f.svc.Load(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, w.URL, cur.URL)
}

func TestRefresh_Policy(t *testing.T) {
	cur := &wallpaper.Wallpaper{URL: "https://saved/img.jpg", Source: wallpaper.SourcePicsum}
	testCases := []struct {
		name     string
		interval time.Duration
		age      time.Duration
		force    bool
		want     bool // a new wallpaper was fetched
	}{
		{name: "fresh", interval: time.Hour, age: 30 * time.Minute},
		{name: "elapsed", interval: time.Hour, age: time.Hour, want: true},
		{name: "manual never expires", interval: 0, age: 365 * 24 * time.Hour},
		{name: "forced", interval: 0, force: true, want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newService(t, &wallpaper.Settings{
				Source: wallpaper.SourcePicsum, Interval: tc.interval, Current: cur, LastRefresh: now.Add(-tc.age),
			})
			w, err := f.svc.Refresh(context.Background(), tc.force)
			assert.NilError(t, err)
			assert.Equal(t, w.URL != cur.URL, tc.want)
		})
	}
}

func TestRefresh_Bing(t *testing.T) {
	f := newService(t, &wallpaper.Settings{Source: wallpaper.SourceBing})

	w, err := f.svc.Refresh(context.Background(), true)
	assert.NilError(t, err)
	assert.Equal(t, w.URL, "https://www.bing.com/th?id=Day3.jpg")
	assert.DeepEqual(t, *f.picks, []string{"3"})
}

func TestRefresh_BingFallsBackToPicsum(t *testing.T) {
	ps := picsumServer(t)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()

	svc, err := wallpaper.NewService(context.Background(), wallpaper.ServiceParams{
		Defaults: wallpaper.Settings{Source: wallpaper.SourceBing},
		Picsum:   wallpaper.Picsum{Client: ps.Client(), BaseURL: ps.URL},
		Bing:     wallpaper.Bing{Client: dead.Client(), APIBase: dead.URL + "/?format=js"},
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return now },
	})
	assert.NilError(t, err)

	w, err := svc.Refresh(context.Background(), true)
	assert.NilError(t, err)
	assert.Equal(t, w.Source, wallpaper.SourcePicsum)
	assert.Equal(t, w.URL, ps.URL+"/id/42/1920/1080.jpg")
}

func TestRefresh_PicsumUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	base := dead.URL
	dead.Close()

	p := wallpaper.Picsum{BaseURL: base}
	svc, err := wallpaper.NewService(context.Background(), wallpaper.ServiceParams{
		Picsum: p,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return now },
	})
	assert.NilError(t, err)

	w, err := svc.Refresh(context.Background(), true)
	assert.NilError(t, err)
	assert.Equal(t, w.URL, p.SourceURL(now))
}

func TestSetSource_None(t *testing.T) {
	cur := &wallpaper.Wallpaper{URL: "https://saved/img.jpg"}
	f := newService(t, &wallpaper.Settings{Source: wallpaper.SourcePicsum, Current: cur})

	var got []wallpaper.Settings
	f.svc.Subscribe(func(s wallpaper.Settings) { got = append(got, s) })

	w, err := f.svc.SetSource(context.Background(), wallpaper.SourceNone)
	assert.NilError(t, err)
	assert.Assert(t, w == nil)
	assert.Assert(t, stored(t, f.store).Current == nil)
	assert.Equal(t, stored(t, f.store).Source, wallpaper.SourceNone)
	assert.Assert(t, len(got) > 0)
	assert.Equal(t, got[len(got)-1].Source, wallpaper.SourceNone)
}

func TestSetInterval(t *testing.T) {
	f := newService(t, nil)
	assert.NilError(t, f.svc.SetInterval(context.Background(), 12*time.Hour))
	assert.Equal(t, stored(t, f.store).Interval, 12*time.Hour)
	assert.ErrorContains(t, f.svc.SetInterval(context.Background(), 2*time.Minute), "unsupported interval")
}

func TestBackgroundRefresh_BingOncePerDay(t *testing.T) {
	f := newService(t, &wallpaper.Settings{Source: wallpaper.SourceBing, Interval: time.Hour})
	ctx := context.Background()

	assert.NilError(t, f.svc.BackgroundRefresh(ctx))
	assert.Equal(t, f.svc.Settings().Current.URL, "https://www.bing.com/th?id=Day0.jpg")
	assert.Equal(t, stored(t, f.store).LastBingDate, "2026-03-14")

	assert.NilError(t, f.svc.BackgroundRefresh(ctx))
	assert.DeepEqual(t, *f.picks, []string{"0"})
}

func TestBackgroundRefresh_NoneSkips(t *testing.T) {
	f := newService(t, &wallpaper.Settings{Source: wallpaper.SourceNone})
	assert.NilError(t, f.svc.BackgroundRefresh(context.Background()))
	_, err := f.store.Get(context.Background(), storage.KeyWallpaperSettings)
	assert.NilError(t, err)
	assert.Assert(t, f.svc.Settings().Current == nil)
}

func TestRun_AppliesExternalSettings(t *testing.T) {
	f := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	raw, err := json.Marshal(wallpaper.Settings{Source: wallpaper.SourceBing, Interval: time.Hour})
	assert.NilError(t, err)

	poll.WaitOn(t, func(poll.LogT) poll.Result {
		if f.svc.Settings().Source == wallpaper.SourceBing {
			return poll.Success()
		}
		f.store.Inject(storage.KeyWallpaperSettings, raw)
		return poll.Continue("waiting for external change")
	}, poll.WithTimeout(2*time.Second), poll.WithDelay(10*time.Millisecond))

	cancel()
	assert.NilError(t, <-done)
}
