package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Keys used by the application.
const (
	KeyShortcuts         = "shortcuts"
	KeySearchEngine      = "searchEngine"
	KeyWallpaperSettings = "wallpaperSettings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Change describes a value written by someone other than this Store handle,
// e.g. another device or another process sharing the backend.
type Change struct {
	Key   string
	Value []byte // nil when the key was removed
}

// Store is a key-value store with change notification.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Subscribe streams external changes until ctx is cancelled. Writes made
	// through this handle are not echoed back.
	Subscribe(ctx context.Context) (<-chan Change, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string // json, sqlite
	DSN     string // postgres
	Addr    string // redis
	Logger  zerolog.Logger
}

// Open opens the backend named in opts. An empty backend prefers SQLite if
// the database file exists and falls back to the JSON file.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendJSON
		if sqlitePath, err := DefaultSQLitePath(); err == nil {
			if _, err := os.Stat(sqlitePath); err == nil {
				backend = BackendSQLite
				if opts.Path == "" {
					opts.Path = sqlitePath
				}
			}
		}
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStorage(), nil
	case BackendJSON:
		path := opts.Path
		if path == "" {
			p, err := DefaultJSONPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewJSONStorage(path, opts.Logger), nil
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := NewSQLiteStorage(path, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresStorage(ctx, opts.DSN, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendRedis:
		s, err := NewRedisStorage(ctx, opts.Addr, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

// DefaultDataDir returns ~/.config/newtab.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "newtab"), nil
}

// DefaultJSONPath returns the default JSON store path: ~/.config/newtab/storage.json
func DefaultJSONPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage.json"), nil
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/newtab/storage.db
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storage.db"), nil
}

// hub fans external changes out to subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[chan Change]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan Change]struct{})}
}

func (h *hub) subscribe(ctx context.Context) <-chan Change {
	ch := make(chan Change, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}()

	return ch
}

// publish never blocks; a subscriber that stops draining misses changes.
func (h *hub) publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
