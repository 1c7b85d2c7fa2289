package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/storage"
)

func TestIsURL(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{input: "example.com", want: true},
		{input: "https://example.com/path?q=1", want: true},
		{input: "http://sub.example.co.uk", want: true},
		{input: "news.ycombinator.com/item?id=1", want: true},
		{input: "golang", want: false},
		{input: "how to write go", want: false},
		{input: "example .com", want: false},
		{input: "ftp://example.com", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := search.IsURL(tc.input); got != tc.want {
				t.Errorf("IsURL(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		engine search.Engine
		want   string
		ok     bool
	}{
		{name: "blank", input: "   ", engine: search.Google},
		{name: "bare host", input: "example.com", engine: search.Google, want: "https://example.com", ok: true},
		{name: "http kept", input: "http://example.com", engine: search.Bing, want: "http://example.com", ok: true},
		{name: "google", input: "go maps", engine: search.Google, want: "https://www.google.com/search?q=go+maps", ok: true},
		{name: "baidu", input: "天气", engine: search.Baidu, want: "https://www.baidu.com/s?wd=%E5%A4%A9%E6%B0%94", ok: true},
		{name: "bing escapes", input: "a&b", engine: search.Bing, want: "https://www.bing.com/search?q=a%26b", ok: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := search.Resolve(tc.input, tc.engine)
			assert.Equal(t, ok, tc.ok)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestParseEngine(t *testing.T) {
	e, err := search.ParseEngine(" Bing ")
	assert.NilError(t, err)
	assert.Equal(t, e, search.Bing)
	assert.Equal(t, e.Placeholder(), "搜索 Bing 或输入网址")

	_, err = search.ParseEngine("yahoo")
	assert.Assert(t, errors.Is(err, search.ErrUnknownEngine))
}

func TestDispatcher_FirstUseSavesDefault(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	d, err := search.NewDispatcher(ctx, search.DispatcherParams{Store: store, Default: search.Baidu, Logger: zerolog.Nop()})
	assert.NilError(t, err)
	assert.Equal(t, d.Engine(), search.Baidu)

	raw, err := store.Get(ctx, storage.KeySearchEngine)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), `"baidu"`)
}

func TestDispatcher_RestoresSavedEngine(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	assert.NilError(t, store.Set(ctx, storage.KeySearchEngine, []byte(`"bing"`)))

	d, err := search.NewDispatcher(ctx, search.DispatcherParams{Store: store, Default: search.Google})
	assert.NilError(t, err)
	assert.Equal(t, d.Engine(), search.Bing)

	got, ok := d.Resolve("weather")
	assert.Assert(t, ok)
	assert.Equal(t, got, "https://www.bing.com/search?q=weather")
}

func TestDispatcher_SetAndApplyDefault(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	d, err := search.NewDispatcher(ctx, search.DispatcherParams{Store: store})
	assert.NilError(t, err)
	assert.Equal(t, d.Engine(), search.Google)

	assert.Assert(t, errors.Is(d.SetEngine(ctx, "yahoo"), search.ErrUnknownEngine))

	assert.NilError(t, d.ApplyDefault(ctx, search.Baidu))
	assert.Equal(t, d.Engine(), search.Baidu)

	raw, err := store.Get(ctx, storage.KeySearchEngine)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), `"baidu"`)
}
