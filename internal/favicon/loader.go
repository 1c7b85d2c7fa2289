package favicon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"
)

// Status is the load state of one icon.
type Status int

const (
	StatusLoading Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// Result is a cached icon lookup.
type Result struct {
	Status      Status
	Data        []byte
	ContentType string
}

// minIconSize rejects placeholder responses.
const minIconSize = 100

const maxIconSize = 1 << 20

// LoaderParams configures a Loader.
type LoaderParams struct {
	Client *http.Client
	// CacheDir keeps loaded icons across runs. Empty caches in memory only.
	CacheDir string
	Logger   zerolog.Logger
}

// Loader fetches icons once and remembers the outcome, failures included.
type Loader struct {
	client *http.Client
	disk   *diskv.Diskv
	log    zerolog.Logger

	mu       sync.Mutex
	mem      map[string]Result
	inflight map[string]chan struct{}
}

// NewLoader creates a Loader.
func NewLoader(params LoaderParams) *Loader {
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	l := &Loader{
		client:   client,
		log:      params.Logger,
		mem:      make(map[string]Result),
		inflight: make(map[string]chan struct{}),
	}
	if params.CacheDir != "" {
		l.disk = diskv.New(diskv.Options{
			BasePath:          params.CacheDir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      4 << 20,
		})
	}
	return l
}

// Cached reports the known state of iconURL without fetching.
func (l *Loader) Cached(iconURL string) (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, loading := l.inflight[iconURL]; loading {
		return Result{Status: StatusLoading}, true
	}
	r, ok := l.mem[iconURL]
	return r, ok
}

// Load returns the icon at iconURL, fetching it on first use. Concurrent
// calls for the same URL share one request.
func (l *Loader) Load(ctx context.Context, iconURL string) Result {
	l.mu.Lock()
	if r, ok := l.mem[iconURL]; ok {
		l.mu.Unlock()
		return r
	}
	if wait, ok := l.inflight[iconURL]; ok {
		l.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return Result{Status: StatusLoading}
		}
		l.mu.Lock()
		r := l.mem[iconURL]
		l.mu.Unlock()
		return r
	}
	done := make(chan struct{})
	l.inflight[iconURL] = done
	l.mu.Unlock()

	r := l.load(ctx, iconURL)

	l.mu.Lock()
	delete(l.inflight, iconURL)
	// A cancelled caller leaves no verdict behind.
	if ctx.Err() == nil || r.Status == StatusLoaded {
		l.mem[iconURL] = r
	}
	l.mu.Unlock()
	close(done)
	return r
}

func (l *Loader) load(ctx context.Context, iconURL string) Result {
	key := cacheKey(iconURL)
	if l.disk != nil && l.disk.Has(key) {
		if data, err := l.disk.Read(key); err == nil {
			return Result{Status: StatusLoaded, Data: data, ContentType: http.DetectContentType(data)}
		}
	}

	r, err := l.fetch(ctx, iconURL)
	if err != nil {
		l.log.Debug().Err(err).Str("url", iconURL).Msg("favicon unavailable")
		return Result{Status: StatusFailed}
	}
	if l.disk != nil {
		if err := l.disk.Write(key, r.Data); err != nil {
			l.log.Warn().Err(err).Msg("failed to cache favicon")
		}
	}
	return r
}

func (l *Loader) fetch(ctx context.Context, iconURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("status %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return Result{}, fmt.Errorf("content type %q is not an image", ct)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconSize))
	if err != nil {
		return Result{}, err
	}
	if len(data) < minIconSize {
		return Result{}, fmt.Errorf("icon too small (%d bytes)", len(data))
	}
	return Result{Status: StatusLoaded, Data: data, ContentType: ct}, nil
}

func cacheKey(iconURL string) string {
	sum := sha256.Sum256([]byte(iconURL))
	return hex.EncodeToString(sum[:])
}

func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{key[:2]}, FileName: key}
}

func pathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}
