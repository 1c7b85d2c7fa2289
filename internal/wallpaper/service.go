package wallpaper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/storage"
)

// bingHistory is how many daily Bing images can be picked from.
const bingHistory = 8

// ServiceParams configures a Service.
type ServiceParams struct {
	// Store persists Settings. Nil keeps them in memory.
	Store    storage.Store
	Client   *http.Client
	Defaults Settings
	Picsum   Picsum
	Bing     Bing
	Logger   zerolog.Logger
	Now      func() time.Time
	Rand     func(n int) int
}

// Service owns the wallpaper settings and applies the refresh policy.
type Service struct {
	store  storage.Store
	picsum Picsum
	bing   Bing
	log    zerolog.Logger
	now    func() time.Time
	rand   func(n int) int

	mu        sync.Mutex
	settings  Settings
	listeners []func(Settings)
}

// NewService loads the saved settings, falling back to params.Defaults.
func NewService(ctx context.Context, params ServiceParams) (*Service, error) {
	s := &Service{
		store:    params.Store,
		picsum:   params.Picsum,
		bing:     params.Bing,
		log:      params.Logger,
		now:      params.Now,
		rand:     params.Rand,
		settings: params.Defaults,
	}
	if s.settings.Source == "" {
		s.settings = DefaultSettings()
	}
	if s.picsum.Client == nil {
		s.picsum.Client = params.Client
	}
	if s.bing.Client == nil {
		s.bing.Client = params.Client
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rand == nil {
		s.rand = rand.IntN
	}
	if s.store == nil {
		return s, nil
	}

	raw, err := s.store.Get(ctx, storage.KeyWallpaperSettings)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load wallpaper settings: %w", err)
	}
	var saved Settings
	if err := json.Unmarshal(raw, &saved); err != nil {
		s.log.Warn().Err(err).Msg("ignoring unreadable wallpaper settings")
		return s, nil
	}
	s.settings = saved
	return s, nil
}

// Settings returns the current settings.
func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Subscribe registers fn for every settings change, local or external.
func (s *Service) Subscribe(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetSource switches the source and forces a refresh from it.
func (s *Service) SetSource(ctx context.Context, src Source) (*Wallpaper, error) {
	if _, err := ParseSource(string(src)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.settings.Source = src
	s.mu.Unlock()
	if err := s.save(ctx); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, true)
}

// SetInterval changes how often the background refresh runs.
func (s *Service) SetInterval(ctx context.Context, d time.Duration) error {
	if !ValidInterval(d) {
		return fmt.Errorf("wallpaper: unsupported interval %s", d)
	}
	s.mu.Lock()
	s.settings.Interval = d
	s.mu.Unlock()
	return s.save(ctx)
}

// Load returns the wallpaper to show at startup: the saved one if any,
// otherwise a freshly fetched one.
func (s *Service) Load(ctx context.Context) (*Wallpaper, error) {
	if cur := s.Settings().Current; cur != nil {
		return cur, nil
	}
	return s.Refresh(ctx, false)
}

// Refresh applies the foreground policy: fetch when forced, when nothing is
// set, or when the interval has elapsed since the last refresh. Bing failures
// fall back to Picsum; a Picsum failure still yields its unresolved URL.
func (s *Service) Refresh(ctx context.Context, force bool) (*Wallpaper, error) {
	now := s.now()
	cur := s.Settings()
	if !force && !Due(cur, now) {
		return cur.Current, nil
	}

	var w Wallpaper
	switch cur.Source {
	case SourceNone:
		s.mu.Lock()
		s.settings.Current = nil
		s.mu.Unlock()
		return nil, s.save(ctx)
	case SourceBing:
		var err error
		w, err = s.bing.Fetch(ctx, s.rand(bingHistory))
		if err != nil {
			s.log.Warn().Err(err).Msg("bing wallpaper unavailable, using picsum")
			w = s.fetchPicsum(ctx, now)
		}
	default:
		w = s.fetchPicsum(ctx, now)
	}

	s.mu.Lock()
	s.settings.Current = &w
	s.settings.LastRefresh = now
	s.mu.Unlock()
	return &w, s.save(ctx)
}

// Due reports whether the foreground policy would fetch a new wallpaper.
func Due(st Settings, now time.Time) bool {
	if st.Current == nil {
		return true
	}
	return st.Interval > 0 && !st.LastRefresh.IsZero() && now.Sub(st.LastRefresh) >= st.Interval
}

// BackgroundRefresh is the periodic job. It never falls back between sources
// and fetches Bing at most once per calendar day.
func (s *Service) BackgroundRefresh(ctx context.Context) error {
	now := s.now()
	cur := s.Settings()

	var (
		w   Wallpaper
		err error
	)
	switch cur.Source {
	case SourceNone:
		return nil
	case SourceBing:
		today := now.Format("2006-01-02")
		if cur.LastBingDate == today {
			s.log.Debug().Msg("bing wallpaper already refreshed today")
			return nil
		}
		w, err = s.bing.Fetch(ctx, 0)
		if err == nil {
			s.mu.Lock()
			s.settings.LastBingDate = today
			s.mu.Unlock()
		}
	default:
		w, err = s.picsum.Fetch(ctx, now)
	}
	if err != nil {
		return fmt.Errorf("background refresh: %w", err)
	}

	s.mu.Lock()
	s.settings.Current = &w
	s.settings.LastRefresh = now
	s.mu.Unlock()
	s.log.Info().Str("source", string(cur.Source)).Str("url", w.URL).Msg("wallpaper refreshed")
	return s.save(ctx)
}

// Run applies wallpaper settings written elsewhere until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	if s.store == nil {
		<-ctx.Done()
		return nil
	}
	changes, err := s.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to store: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			if ch.Key != storage.KeyWallpaperSettings || ch.Value == nil {
				continue
			}
			var next Settings
			if err := json.Unmarshal(ch.Value, &next); err != nil {
				s.log.Warn().Err(err).Msg("ignoring unreadable external wallpaper settings")
				continue
			}
			s.mu.Lock()
			s.settings = next
			s.mu.Unlock()
			s.notify(next)
		}
	}
}

func (s *Service) fetchPicsum(ctx context.Context, now time.Time) Wallpaper {
	w, err := s.picsum.Fetch(ctx, now)
	if err != nil {
		s.log.Warn().Err(err).Msg("picsum redirect failed")
		return s.picsum.Unresolved(now)
	}
	return w
}

func (s *Service) save(ctx context.Context) error {
	st := s.Settings()
	defer s.notify(st)
	if s.store == nil {
		return nil
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyWallpaperSettings, raw); err != nil {
		return fmt.Errorf("save wallpaper settings: %w", err)
	}
	return nil
}

func (s *Service) notify(st Settings) {
	s.mu.Lock()
	listeners := make([]func(Settings), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}
