package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/storage"
)

func TestSQLiteStorage_SetAndGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storage.db")
	ctx := context.Background()

	s, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, storage.KeyShortcuts); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	for _, v := range []string{`[]`, `[{"name":"a","url":"https://a.dev"}]`} {
		if err := s.Set(ctx, storage.KeyShortcuts, []byte(v)); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		got, err := s.Get(ctx, storage.KeyShortcuts)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if string(got) != v {
			t.Errorf("expected %s, got %s", v, got)
		}
	}
}

func TestSQLiteStorage_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storage.db")
	ctx := context.Background()

	s1, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := s1.Set(ctx, storage.KeySearchEngine, []byte(`"baidu"`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	s1.Close()

	s2, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, storage.KeySearchEngine)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if string(got) != `"baidu"` {
		t.Errorf("expected \"baidu\", got %s", got)
	}
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "storage.db")

	s, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
	if s.Path() != dbPath {
		t.Errorf("expected path %q, got %q", dbPath, s.Path())
	}
}

func TestSQLiteStorage_ReportsWritesFromOtherHandles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storage.db")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer a.Close()
	b, err := storage.NewSQLiteStorage(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create second handle: %v", err)
	}
	defer b.Close()

	if err := a.Set(ctx, "k", []byte(`1`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	ch, err := a.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	if err := a.Set(ctx, "k", []byte(`2`)); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := b.Set(ctx, "other", []byte(`"x"`)); err != nil {
		t.Fatalf("failed to set from second handle: %v", err)
	}

	c := waitChange(t, ch, 5*time.Second)
	if c.Key != "other" || string(c.Value) != `"x"` {
		t.Errorf("unexpected change %+v", c)
	}
	expectQuiet(t, ch, 1500*time.Millisecond)
}
