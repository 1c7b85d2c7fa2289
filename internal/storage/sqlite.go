package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// sqlitePollInterval is how often the kv table is checked for writes from
// other processes.
const sqlitePollInterval = time.Second

// SQLiteStorage implements Store using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
	log  zerolog.Logger

	mu       sync.Mutex
	seen     map[string][]byte // last value written or observed per key
	revision int64             // highest revision observed

	hub       *hub
	pollOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string, log zerolog.Logger) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{
		db:   db,
		path: path,
		log:  log,
		seen: make(map[string][]byte),
		hub:  newHub(),
		done: make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the key-value table.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY NOT NULL,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds a monotonically increasing revision used for change polling.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE kv ADD COLUMN revision INTEGER NOT NULL DEFAULT 0;
		CREATE INDEX IF NOT EXISTS idx_kv_revision ON kv(revision);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// Get returns the value stored under key.
func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set upserts value under key inside a transaction.
func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var revision int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(revision), 0) + 1 FROM kv").Scan(&revision); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at, revision)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at,
			revision = excluded.revision
	`, key, value, time.Now().UTC().Format(time.RFC3339), revision)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.seen[key] = cloneBytes(value)
	return nil
}

// Subscribe starts polling for writes from other connections.
func (s *SQLiteStorage) Subscribe(ctx context.Context) (<-chan Change, error) {
	var err error
	s.pollOnce.Do(func() {
		err = s.prime()
		if err == nil {
			go s.poll()
		}
	})
	if err != nil {
		return nil, err
	}
	return s.hub.subscribe(ctx), nil
}

// Close stops polling and closes the database connection.
func (s *SQLiteStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.hub.close()
		err = s.db.Close()
	})
	return err
}

// prime records the current table state so only later writes are reported.
func (s *SQLiteStorage) prime() error {
	rows, err := s.db.Query("SELECT key, value, revision FROM kv")
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var key string
		var value []byte
		var revision int64
		if err := rows.Scan(&key, &value, &revision); err != nil {
			return err
		}
		s.seen[key] = value
		if revision > s.revision {
			s.revision = revision
		}
	}
	return rows.Err()
}

func (s *SQLiteStorage) poll() {
	ticker := time.NewTicker(sqlitePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.checkChanges(); err != nil {
				s.log.Warn().Err(err).Str("path", s.path).Msg("sqlite change poll failed")
			}
		}
	}
}

func (s *SQLiteStorage) checkChanges() error {
	s.mu.Lock()
	changes, err := s.scanLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, c := range changes {
		s.hub.publish(c)
	}
	return nil
}

// scanLocked reads rows newer than the last observed revision. Callers hold
// s.mu so Set cannot interleave and echo back as a change.
func (s *SQLiteStorage) scanLocked() ([]Change, error) {
	rows, err := s.db.Query("SELECT key, value, revision FROM kv WHERE revision > ? ORDER BY revision", s.revision)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var key string
		var value []byte
		var revision int64
		if err := rows.Scan(&key, &value, &revision); err != nil {
			return nil, err
		}
		if revision > s.revision {
			s.revision = revision
		}
		if old, ok := s.seen[key]; ok && bytes.Equal(old, value) {
			continue
		}
		s.seen[key] = value
		changes = append(changes, Change{Key: key, Value: cloneBytes(value)})
	}
	return changes, rows.Err()
}
