package favicon_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/model"
)

func TestResolveIconURL(t *testing.T) {
	testCases := []struct {
		site string
		want string
		ok   bool
	}{
		{
			site: "https://github.com/nikbrunner?tab=repos",
			want: "https://t2.gstatic.com/faviconV2?client=SOCIAL&type=FAVICON&fallback_opts=TYPE,SIZE,URL&url=https%3A%2F%2Fgithub.com&size=64",
			ok:   true,
		},
		{
			site: "http://localhost:8080/x",
			want: "https://t2.gstatic.com/faviconV2?client=SOCIAL&type=FAVICON&fallback_opts=TYPE,SIZE,URL&url=http%3A%2F%2Flocalhost%3A8080&size=64",
			ok:   true,
		},
		{site: "github.com"},
		{site: ""},
		{site: "::nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.site, func(t *testing.T) {
			got, ok := favicon.ResolveIconURL(tc.site)
			assert.Equal(t, ok, tc.ok)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestInitials(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{name: "GitHub", want: "Gi"},
		{name: " a b ", want: "ab"},
		{name: "x", want: "X"},
		{name: "知乎", want: "知乎"},
		{name: "哔哩哔哩", want: "哔哩"},
		{name: "", want: ""},
	}
	for _, tc := range testCases {
		if got := favicon.Initials(tc.name); got != tc.want {
			t.Errorf("Initials(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

var png = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 200)...)

func iconServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		case "/tiny.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png[:50])
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write(bytes.Repeat([]byte("<p>"), 100))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	var hits atomic.Int32
	srv := iconServer(t, &hits)
	l := favicon.NewLoader(favicon.LoaderParams{Client: srv.Client()})
	ctx := context.Background()

	testCases := []struct {
		path string
		want favicon.Status
	}{
		{path: "/ok.png", want: favicon.StatusLoaded},
		{path: "/tiny.png", want: favicon.StatusFailed},
		{path: "/page", want: favicon.StatusFailed},
		{path: "/missing", want: favicon.StatusFailed},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			r := l.Load(ctx, srv.URL+tc.path)
			assert.Equal(t, r.Status, tc.want)

			cached, ok := l.Cached(srv.URL + tc.path)
			assert.Assert(t, ok)
			assert.Equal(t, cached.Status, tc.want)
		})
	}

	before := hits.Load()
	l.Load(ctx, srv.URL+"/ok.png")
	l.Load(ctx, srv.URL+"/missing")
	assert.Equal(t, hits.Load(), before, "outcomes are cached")
}

func TestLoader_DiskCache(t *testing.T) {
	var hits atomic.Int32
	srv := iconServer(t, &hits)
	dir := t.TempDir()
	ctx := context.Background()

	first := favicon.NewLoader(favicon.LoaderParams{Client: srv.Client(), CacheDir: dir})
	assert.Equal(t, first.Load(ctx, srv.URL+"/ok.png").Status, favicon.StatusLoaded)

	second := favicon.NewLoader(favicon.LoaderParams{Client: srv.Client(), CacheDir: dir})
	r := second.Load(ctx, srv.URL+"/ok.png")
	assert.Equal(t, r.Status, favicon.StatusLoaded)
	assert.Assert(t, bytes.Equal(r.Data, png))
	assert.Equal(t, r.ContentType, "image/png")
	assert.Equal(t, hits.Load(), int32(1))
}

func TestSites(t *testing.T) {
	items := model.Collection{
		{Name: "a", URL: "https://a.com/1"},
		{Name: "f", ID: model.FolderIDPrefix + "f", Children: []model.Link{
			{Name: "a2", URL: "https://a.com/2"},
			{Name: "b", URL: "https://b.com"},
		}},
		{Name: "bad", URL: "not a url"},
	}
	assert.Equal(t, len(favicon.Sites(items)), 2)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestPrefetch(t *testing.T) {
	var hits atomic.Int32
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		hits.Add(1)
		rec := httptest.NewRecorder()
		if r.URL.Query().Get("url") == "https://down.com" {
			http.NotFound(rec, r)
			return rec.Result(), nil
		}
		rec.Header().Set("Content-Type", "image/png")
		_, _ = rec.Write(png)
		return rec.Result(), nil
	})}
	l := favicon.NewLoader(favicon.LoaderParams{Client: client})

	items := model.Collection{
		{Name: "a", URL: "https://a.com"},
		{Name: "b", URL: "https://b.com"},
		{Name: "f", ID: model.FolderIDPrefix + "f", Children: []model.Link{
			{Name: "c", URL: "https://c.com"},
			{Name: "down", URL: "https://down.com/x"},
		}},
	}

	var calls atomic.Int32
	loaded := l.Prefetch(context.Background(), items, 2, func(completed, total int) {
		calls.Add(1)
		assert.Equal(t, total, 4)
	})
	assert.Equal(t, loaded, 3)
	assert.Equal(t, calls.Load(), int32(4))
	assert.Equal(t, hits.Load(), int32(4))

	assert.Equal(t, l.Prefetch(context.Background(), nil, 4, nil), 0)
}
