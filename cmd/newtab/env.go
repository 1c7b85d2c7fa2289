package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/config"
	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/storage"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

// env is every service a command may need, wired from the settings.
type env struct {
	cfg       *config.Provider
	settings  config.Settings
	log       zerolog.Logger
	store     storage.Store
	grid      *grid.Controller
	search    *search.Dispatcher
	wallpaper *wallpaper.Service
	icons     *favicon.Loader

	closers []io.Closer
}

// envOptions says where logs go for one command.
type envOptions struct {
	// console logs to stderr. Off for the TUI, which owns the terminal.
	console bool
}

func newEnv(ctx context.Context, opts *rootOptions, eo envOptions) (*env, error) {
	e := &env{}

	out, err := e.logOutput(opts, eo)
	if err != nil {
		return nil, err
	}
	e.log = zerolog.New(out).With().Timestamp().Logger()

	cfg, err := config.Load(config.LoadParams{Path: opts.configPath, Logger: e.log})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	e.cfg = cfg
	e.settings = cfg.Settings()

	if lvl, err := zerolog.ParseLevel(e.settings.LogLevel); err == nil {
		e.log = e.log.Level(lvl)
	}

	backend := e.settings.Storage.Backend
	if opts.backend != "" {
		backend = opts.backend
	}
	store, err := storage.Open(ctx, storage.Options{
		Backend: backend,
		Path:    e.settings.Storage.Path,
		DSN:     e.settings.Storage.DSN,
		Addr:    e.settings.Storage.Addr,
		Logger:  e.log,
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	e.store = store
	e.closers = append(e.closers, store)

	e.grid = grid.New(grid.Params{
		Store:   store,
		Layout:  e.settings.Layout(),
		Timings: e.settings.Drag.Timings(),
		Logger:  e.log.With().Str("component", "grid").Logger(),
	})
	if err := e.grid.Load(ctx); err != nil {
		e.Close()
		return nil, err
	}

	engine, err := search.ParseEngine(e.settings.DefaultEngine)
	if err != nil {
		e.log.Warn().Err(err).Msg("unknown default engine, using google")
		engine = search.DefaultEngine
	}
	e.search, err = search.NewDispatcher(ctx, search.DispatcherParams{
		Store:   store,
		Default: engine,
		Logger:  e.log.With().Str("component", "search").Logger(),
	})
	if err != nil {
		e.Close()
		return nil, err
	}

	client := &http.Client{Timeout: 15 * time.Second}
	defaults := wallpaper.DefaultSettings()
	if src, err := wallpaper.ParseSource(e.settings.Wallpaper.Source); err == nil {
		defaults.Source = src
	}
	if wallpaper.ValidInterval(e.settings.Wallpaper.Interval) {
		defaults.Interval = e.settings.Wallpaper.Interval
	}
	e.wallpaper, err = wallpaper.NewService(ctx, wallpaper.ServiceParams{
		Store:    store,
		Client:   client,
		Defaults: defaults,
		Logger:   e.log.With().Str("component", "wallpaper").Logger(),
	})
	if err != nil {
		e.Close()
		return nil, err
	}

	cacheDir := e.settings.Favicon.CacheDir
	if cacheDir == "" {
		if dir, err := config.DefaultDir(); err == nil {
			cacheDir = filepath.Join(dir, "favicons")
		}
	}
	e.icons = favicon.NewLoader(favicon.LoaderParams{
		Client:   client,
		CacheDir: cacheDir,
		Logger:   e.log.With().Str("component", "favicon").Logger(),
	})

	return e, nil
}

func (e *env) logOutput(opts *rootOptions, eo envOptions) (io.Writer, error) {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.closers = append(e.closers, f)
		return zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}, nil
	}
	if !eo.console {
		return io.Discard, nil
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, nil
}

// run starts the background loops every long-running command shares:
// external change intake for the grid and wallpaper, the wallpaper alarm and
// settings reload.
func (e *env) run(ctx context.Context, followLayout bool) {
	go func() {
		if err := e.grid.Run(ctx); err != nil {
			e.log.Error().Err(err).Msg("shortcut change feed stopped")
		}
	}()
	go func() {
		if err := e.wallpaper.Run(ctx); err != nil {
			e.log.Error().Err(err).Msg("wallpaper change feed stopped")
		}
	}()

	wallpaper.NewScheduler(e.wallpaper, e.log).Start(ctx)

	e.cfg.Subscribe(func(s config.Settings) {
		if followLayout {
			e.grid.SetLayout(s.Layout())
		}
		if engine, err := search.ParseEngine(s.DefaultEngine); err == nil {
			if err := e.search.ApplyDefault(ctx, engine); err != nil {
				e.log.Warn().Err(err).Msg("apply default engine")
			}
		}
	})
	e.cfg.Watch()
}

// Close flushes pending writes and releases the store and log file.
func (e *env) Close() {
	if e.grid != nil {
		e.grid.Flush()
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing: %v\n", err)
	}
}
