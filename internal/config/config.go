// Package config loads user settings with viper and notifies subscribers when
// the config file changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/pager"
)

// EnvPrefix prefixes environment overrides, e.g. NEWTAB_ITEMSPERROW=8 or
// NEWTAB_STORAGE_BACKEND=sqlite.
const EnvPrefix = "NEWTAB"

// Settings is the decoded configuration.
type Settings struct {
	ItemsPerRow   int    `mapstructure:"itemsPerRow"`
	RowsPerPage   int    `mapstructure:"rowsPerPage"`
	DefaultEngine string `mapstructure:"defaultEngine"`
	LogLevel      string `mapstructure:"logLevel"`

	Storage   StorageSettings   `mapstructure:"storage"`
	Drag      DragSettings      `mapstructure:"drag"`
	Wallpaper WallpaperSettings `mapstructure:"wallpaper"`
	Favicon   FaviconSettings   `mapstructure:"favicon"`
	Server    ServerSettings    `mapstructure:"server"`
}

// StorageSettings selects the key-value backend.
type StorageSettings struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	Addr    string `mapstructure:"addr"`
}

// DragSettings tunes the drag gesture timings. Durations accept "500ms" style strings.
type DragSettings struct {
	OpenFolderDwell time.Duration `mapstructure:"openFolderDwell"`
	MergeDwell      time.Duration `mapstructure:"mergeDwell"`
	EdgeMargin      float64       `mapstructure:"edgeMargin"`
	AutoPageDelay   time.Duration `mapstructure:"autoPageDelay"`
	PageButtonDelay time.Duration `mapstructure:"pageButtonDelay"`
	PageCooldown    time.Duration `mapstructure:"pageCooldown"`
	ExitCooldown    time.Duration `mapstructure:"exitCooldown"`
	ExitPadding     float64       `mapstructure:"exitPadding"`
	ExitDelay       time.Duration `mapstructure:"exitDelay"`
}

// Timings converts the settings for the grid controller.
func (d DragSettings) Timings() grid.Timings {
	return grid.Timings{
		OpenFolderDwell: d.OpenFolderDwell,
		MergeDwell:      d.MergeDwell,
		EdgeMargin:      d.EdgeMargin,
		AutoPageDelay:   d.AutoPageDelay,
		PageButtonDelay: d.PageButtonDelay,
		PageCooldown:    d.PageCooldown,
		FolderCooldown:  d.ExitCooldown,
		ExitPadding:     d.ExitPadding,
		ExitDelay:       d.ExitDelay,
	}
}

// WallpaperSettings holds wallpaper defaults; the user's choice is persisted in the store.
type WallpaperSettings struct {
	Source   string        `mapstructure:"source"`
	Interval time.Duration `mapstructure:"interval"`
}

// FaviconSettings configures the icon cache.
type FaviconSettings struct {
	CacheDir string `mapstructure:"cacheDir"`
	Workers  int    `mapstructure:"workers"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// Layout returns the grid layout with invalid values replaced by defaults.
func (s Settings) Layout() pager.Layout {
	return pager.Layout{ItemsPerRow: s.ItemsPerRow, RowsPerPage: s.RowsPerPage}.Normalized()
}

// Provider holds the current settings and fans out changes.
type Provider struct {
	v       *viper.Viper
	log     zerolog.Logger
	hasFile bool

	mu      sync.RWMutex
	current Settings
	nextID  int
	subs    map[int]func(Settings)
}

// LoadParams configures Load.
type LoadParams struct {
	// Path is an explicit config file. Empty searches ~/.config/newtab/config.json.
	Path   string
	Logger zerolog.Logger
}

// Load reads the config file (if any), environment overrides and defaults.
func Load(params LoadParams) (*Provider, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if params.Path != "" {
		v.SetConfigFile(params.Path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		if dir, err := DefaultDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) && !errors.Is(readErr, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", readErr)
		}
		params.Logger.Debug().Msg("config file not found, using environment variables and defaults")
	} else {
		params.Logger.Debug().Str("file", v.ConfigFileUsed()).Msg("using config file")
	}

	p := &Provider{
		v:       v,
		log:     params.Logger,
		hasFile: readErr == nil,
		subs:    make(map[int]func(Settings)),
	}
	s, err := p.decode()
	if err != nil {
		return nil, err
	}
	p.current = s
	return p, nil
}

// Settings returns the current settings.
func (p *Provider) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Subscribe registers fn to be called after each reload. The returned func unregisters it.
func (p *Provider) Subscribe(fn func(Settings)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Watch reloads settings whenever the config file changes. No-op without a file.
func (p *Provider) Watch() {
	if !p.hasFile {
		return
	}
	p.v.OnConfigChange(func(e fsnotify.Event) {
		if err := p.Reload(); err != nil {
			p.log.Warn().Err(err).Str("file", e.Name).Msg("config reload failed")
		}
	})
	p.v.WatchConfig()
}

// Reload re-reads the config file and notifies subscribers.
func (p *Provider) Reload() error {
	if p.hasFile {
		if err := p.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	s, err := p.decode()
	if err != nil {
		return err
	}

	p.apply(s)
	return nil
}

// Set overrides a single key in memory and notifies subscribers.
func (p *Provider) Set(key string, value any) error {
	p.v.Set(key, value)
	s, err := p.decode()
	if err != nil {
		return err
	}

	p.apply(s)
	return nil
}

// Save writes the current configuration to path, creating the directory.
func (p *Provider) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := p.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (p *Provider) apply(s Settings) {
	p.mu.Lock()
	p.current = s
	subs := make([]func(Settings), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (p *Provider) decode() (Settings, error) {
	var s Settings
	if err := p.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unable to decode config: %w", err)
	}
	l := s.Layout()
	s.ItemsPerRow, s.RowsPerPage = l.ItemsPerRow, l.RowsPerPage
	return s, nil
}

// DefaultDir returns ~/.config/newtab.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "newtab"), nil
}

// DefaultFilePath returns the default config path: ~/.config/newtab/config.json
func DefaultFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("itemsPerRow", pager.DefaultItemsPerRow)
	v.SetDefault("rowsPerPage", pager.DefaultRowsPerPage)
	v.SetDefault("defaultEngine", "google")
	v.SetDefault("logLevel", "info")

	v.SetDefault("storage.backend", "")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.addr", "")

	v.SetDefault("drag.openFolderDwell", 500*time.Millisecond)
	v.SetDefault("drag.mergeDwell", 400*time.Millisecond)
	v.SetDefault("drag.edgeMargin", 60.0)
	v.SetDefault("drag.autoPageDelay", 500*time.Millisecond)
	v.SetDefault("drag.pageButtonDelay", 250*time.Millisecond)
	v.SetDefault("drag.pageCooldown", 400*time.Millisecond)
	v.SetDefault("drag.exitCooldown", 800*time.Millisecond)
	v.SetDefault("drag.exitPadding", 20.0)
	v.SetDefault("drag.exitDelay", 600*time.Millisecond)

	v.SetDefault("wallpaper.source", "picsum")
	v.SetDefault("wallpaper.interval", 24*time.Hour)

	v.SetDefault("favicon.cacheDir", "")
	v.SetDefault("favicon.workers", 8)

	v.SetDefault("server.addr", "127.0.0.1:8787")
	v.SetDefault("server.allowedOrigins", []string{"*"})
}
