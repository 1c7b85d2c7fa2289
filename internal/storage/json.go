package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// JSONStorage implements Store as one JSON object in a file, one property per key.
// Edits to the file by other processes (or a sync tool) are reported as changes.
type JSONStorage struct {
	path string
	log  zerolog.Logger

	mu     sync.Mutex
	cache  map[string][]byte // compacted values as last seen on disk
	loaded bool

	hub       *hub
	watchOnce sync.Once
	watchErr  error
	done      chan struct{}
	closeOnce sync.Once
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string, log zerolog.Logger) *JSONStorage {
	return &JSONStorage{
		path:  path,
		log:   log,
		cache: make(map[string][]byte),
		hub:   newHub(),
		done:  make(chan struct{}),
	}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *JSONStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	v, ok := s.cache[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(v), nil
}

// Set writes value under key and rewrites the file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Set(_ context.Context, key string, value []byte) error {
	compacted, err := compactJSON(value)
	if err != nil {
		return fmt.Errorf("storage: value for %q is not JSON: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.cache[key] = compacted
	return s.writeLocked()
}

// Subscribe starts watching the file and streams changes made by others.
func (s *JSONStorage) Subscribe(ctx context.Context) (<-chan Change, error) {
	s.watchOnce.Do(func() {
		s.watchErr = s.startWatch()
	})
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	return s.hub.subscribe(ctx), nil
}

// Close stops the watcher and releases subscribers.
func (s *JSONStorage) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.hub.close()
	})
	return nil
}

func (s *JSONStorage) loadLocked() error {
	if s.loaded {
		return nil
	}
	values, err := s.readFile()
	if err != nil {
		return err
	}
	s.cache = values
	s.loaded = true
	return nil
}

// readFile returns an empty map if the file doesn't exist.
func (s *JSONStorage) readFile() (map[string][]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string][]byte), nil
		}
		return nil, err
	}
	return s.parse(data)
}

func (s *JSONStorage) parse(data []byte) (map[string][]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string][]byte), nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", s.path, err)
	}

	values := make(map[string][]byte, len(raw))
	for k, v := range raw {
		c, err := compactJSON(v)
		if err != nil {
			return nil, err
		}
		values[k] = c
	}
	return values, nil
}

func (s *JSONStorage) writeLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	raw := make(map[string]json.RawMessage, len(s.cache))
	for k, v := range s.cache {
		raw[k] = v
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}

	// Readers watching the file only ever see a complete document.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONStorage) startWatch() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("storage: ensure dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storage: create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("storage: watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-s.done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				s.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(err).Str("path", s.path).Msg("storage watcher error")
			}
		}
	}()
	return nil
}

// reload diffs the file against the cache and publishes what changed.
func (s *JSONStorage) reload() {
	// Held across the read so a concurrent Set is not reported as external.
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		// Truncated mid-write; the next event carries the full file.
		s.mu.Unlock()
		return
	}
	values, err := s.parse(data)
	if err != nil {
		s.mu.Unlock()
		s.log.Debug().Err(err).Msg("storage reload skipped")
		return
	}

	var changes []Change
	for k, v := range values {
		if old, ok := s.cache[k]; !ok || !bytes.Equal(old, v) {
			changes = append(changes, Change{Key: k, Value: cloneBytes(v)})
		}
	}
	for k := range s.cache {
		if _, ok := values[k]; !ok {
			changes = append(changes, Change{Key: k})
		}
	}
	s.cache = values
	s.loaded = true
	s.mu.Unlock()

	for _, c := range changes {
		s.hub.publish(c)
	}
}

func compactJSON(v []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
