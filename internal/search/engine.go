package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/storage"
)

// Engine names a web search engine.
type Engine string

const (
	Google Engine = "google"
	Baidu  Engine = "baidu"
	Bing   Engine = "bing"
)

// DefaultEngine is used when neither settings nor the store name one.
const DefaultEngine = Google

var engines = map[Engine]struct {
	base        string
	placeholder string
}{
	Google: {base: "https://www.google.com/search?q=", placeholder: "搜索 Google 或输入网址"},
	Baidu:  {base: "https://www.baidu.com/s?wd=", placeholder: "搜索百度或输入网址"},
	Bing:   {base: "https://www.bing.com/search?q=", placeholder: "搜索 Bing 或输入网址"},
}

// ErrUnknownEngine is returned for engine names outside Engines.
var ErrUnknownEngine = errors.New("search: unknown engine")

// Engines lists the supported engines in display order.
func Engines() []Engine {
	return []Engine{Google, Baidu, Bing}
}

// ParseEngine validates an engine name.
func ParseEngine(s string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := engines[e]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
	return e, nil
}

// Placeholder is the search box hint for e.
func (e Engine) Placeholder() string {
	return engines[e].placeholder
}

// QueryURL builds the results URL for query on e.
func (e Engine) QueryURL(query string) string {
	base, ok := engines[e]
	if !ok {
		base = engines[DefaultEngine]
	}
	return base.base + url.QueryEscape(query)
}

var urlPattern = regexp.MustCompile(`(?i)^(https?://)?[\w\-]+(\.[\w\-]+)+[^\s]*$`)

// IsURL reports whether input looks like an address rather than a query.
func IsURL(input string) bool {
	return urlPattern.MatchString(input)
}

// Resolve turns search box input into the URL to open: addresses are opened
// directly (https:// added when missing), anything else is searched on e.
// Blank input resolves to nothing.
func Resolve(input string, e Engine) (string, bool) {
	q := strings.TrimSpace(input)
	if q == "" {
		return "", false
	}
	if IsURL(q) {
		if !strings.HasPrefix(q, "http://") && !strings.HasPrefix(q, "https://") {
			q = "https://" + q
		}
		return q, true
	}
	return e.QueryURL(q), true
}

// DispatcherParams configures a Dispatcher.
type DispatcherParams struct {
	// Store persists the chosen engine. Nil keeps it in memory.
	Store   storage.Store
	Default Engine
	Logger  zerolog.Logger
}

// Dispatcher holds the current engine and persists changes to it.
type Dispatcher struct {
	mu     sync.Mutex
	store  storage.Store
	engine Engine
	log    zerolog.Logger
}

// NewDispatcher restores the saved engine. On first use the default engine is
// taken and saved.
func NewDispatcher(ctx context.Context, params DispatcherParams) (*Dispatcher, error) {
	def := params.Default
	if _, ok := engines[def]; !ok {
		def = DefaultEngine
	}
	d := &Dispatcher{store: params.Store, engine: def, log: params.Logger}
	if d.store == nil {
		return d, nil
	}

	raw, err := d.store.Get(ctx, storage.KeySearchEngine)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return d, d.save(ctx, def)
	case err != nil:
		return nil, fmt.Errorf("load search engine: %w", err)
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		d.log.Warn().Err(err).Msg("ignoring unreadable search engine setting")
		return d, nil
	}
	if e, err := ParseEngine(name); err == nil {
		d.engine = e
	}
	return d, nil
}

// Engine returns the current engine.
func (d *Dispatcher) Engine() Engine {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine
}

// SetEngine switches and persists the current engine.
func (d *Dispatcher) SetEngine(ctx context.Context, e Engine) error {
	if _, ok := engines[e]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, e)
	}
	d.mu.Lock()
	d.engine = e
	d.mu.Unlock()
	return d.save(ctx, e)
}

// ApplyDefault follows a changed default engine from settings.
func (d *Dispatcher) ApplyDefault(ctx context.Context, e Engine) error {
	if e == "" || e == d.Engine() {
		return nil
	}
	return d.SetEngine(ctx, e)
}

// Resolve resolves input against the current engine.
func (d *Dispatcher) Resolve(input string) (string, bool) {
	return Resolve(input, d.Engine())
}

func (d *Dispatcher) save(ctx context.Context, e Engine) error {
	if d.store == nil {
		return nil
	}
	raw, err := json.Marshal(string(e))
	if err != nil {
		return err
	}
	if err := d.store.Set(ctx, storage.KeySearchEngine, raw); err != nil {
		return fmt.Errorf("save search engine: %w", err)
	}
	return nil
}
