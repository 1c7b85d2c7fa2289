package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/grid/gridtest"
	"github.com/nikbrunner/newtab/internal/model"
	"github.com/nikbrunner/newtab/internal/pager"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/server"
	"github.com/nikbrunner/newtab/internal/storage"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	h     http.Handler
	grid  *grid.Controller
	clock *gridtest.Scheduler
	store *storage.MemoryStorage
}

func newFixture(t *testing.T, names ...string) fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	items := make(model.Collection, len(names))
	for i, n := range names {
		items[i] = model.Item{Name: n, URL: "https://" + n + ".com"}
	}
	assert.NilError(t, storage.SaveCollection(ctx, store, items))

	clock := gridtest.NewScheduler(now)
	c := grid.New(grid.Params{
		Store:     store,
		Layout:    pager.Layout{ItemsPerRow: 2, RowsPerPage: 2},
		Scheduler: clock,
		Logger:    zerolog.Nop(),
	})
	assert.NilError(t, c.Load(ctx))

	disp, err := search.NewDispatcher(ctx, search.DispatcherParams{Store: store, Logger: zerolog.Nop()})
	assert.NilError(t, err)

	pics := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/id/") {
			_, _ = w.Write([]byte("jpeg"))
			return
		}
		http.Redirect(w, r, "/id/7/1920/1080.jpg", http.StatusFound)
	}))
	t.Cleanup(pics.Close)

	wall, err := wallpaper.NewService(ctx, wallpaper.ServiceParams{
		Store:  store,
		Picsum: wallpaper.Picsum{Client: pics.Client(), BaseURL: pics.URL},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return now },
	})
	assert.NilError(t, err)

	icons := favicon.NewLoader(favicon.LoaderParams{
		Client: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			rec := httptest.NewRecorder()
			if r.URL.Query().Get("url") != "https://a.com" {
				http.NotFound(rec, r)
				return rec.Result(), nil
			}
			rec.Header().Set("Content-Type", "image/png")
			_, _ = rec.Write(make([]byte, 200))
			return rec.Result(), nil
		})},
		Logger: zerolog.Nop(),
	})

	srv := server.New(server.Params{
		Grid:      c,
		Search:    disp,
		Wallpaper: wall,
		Icons:     icons,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return now },
	})
	return fixture{h: srv.Handler(), grid: c, clock: clock, store: store}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

type state struct {
	Items []struct {
		Name     string `json:"name"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	} `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Drag       struct {
		State  string `json:"state"`
		Intent string `json:"intent"`
	} `json:"drag"`
	Folder struct {
		Open bool `json:"open"`
	} `json:"folder"`
}

// shape renders the items like "a,folder[b c]".
func (s state) shape() string {
	parts := make([]string, len(s.Items))
	for i, item := range s.Items {
		if item.Children == nil {
			parts[i] = item.Name
			continue
		}
		kids := make([]string, len(item.Children))
		for k, ch := range item.Children {
			kids[k] = ch.Name
		}
		parts[i] = fmt.Sprintf("%s[%s]", item.Name, strings.Join(kids, " "))
	}
	return strings.Join(parts, ",")
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) state {
	t.Helper()
	var s state
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return s
}

func TestState(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")

	rec := f.do(t, http.MethodGet, "/api/state", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	s := decodeState(t, rec)
	assert.Equal(t, s.shape(), "a,b,c,d")
	assert.Equal(t, s.TotalPages, 2, "the add slot spills onto a second page")
	assert.Equal(t, s.Drag.State, "idle")
}

func TestPaging(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")

	rec := f.do(t, http.MethodPost, "/api/pages/next", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, decodeState(t, rec).Page, 1)

	rec = f.do(t, http.MethodPost, "/api/pages/next", "")
	assert.Equal(t, rec.Code, http.StatusConflict)

	rec = f.do(t, http.MethodPost, "/api/pages/goto", `{"page":0}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, decodeState(t, rec).Page, 0)

	rec = f.do(t, http.MethodPut, "/api/pages/layout", `{"itemsPerRow":6,"rowsPerPage":4}`)
	assert.Equal(t, decodeState(t, rec).TotalPages, 1)
}

func TestShortcutMutations(t *testing.T) {
	f := newFixture(t, "a", "b", "c")

	rec := f.do(t, http.MethodPost, "/api/shortcuts/", `{"name":"new","url":"new.com"}`)
	assert.Equal(t, rec.Code, http.StatusCreated)
	assert.Equal(t, f.grid.Items()[3].URL, "https://new.com")

	rec = f.do(t, http.MethodPost, "/api/shortcuts/", `{"name":" ","url":"x.com"}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = f.do(t, http.MethodPost, "/api/shortcuts/move", `{"from":0,"to":2}`)
	assert.Equal(t, decodeState(t, rec).shape(), "b,c,a,new")

	rec = f.do(t, http.MethodPut, "/api/shortcuts/0", `{"name":"B","url":"https://b.org"}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, f.grid.Items()[0].URL, "https://b.org")

	rec = f.do(t, http.MethodDelete, "/api/shortcuts/3", "")
	assert.Equal(t, decodeState(t, rec).shape(), "B,c,a")

	rec = f.do(t, http.MethodDelete, "/api/shortcuts/9", "")
	assert.Equal(t, rec.Code, http.StatusConflict)

	rec = f.do(t, http.MethodDelete, "/api/shortcuts/x", "")
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = f.do(t, http.MethodPost, "/api/shortcuts/merge", `{"target":1,"source":2}`)
	assert.Equal(t, decodeState(t, rec).shape(), "B,新文件夹[c a]")

	rec = f.do(t, http.MethodPut, "/api/folders/1/name", `{"name":"Dev"}`)
	assert.Equal(t, decodeState(t, rec).shape(), "B,Dev[c a]")

	rec = f.do(t, http.MethodPost, "/api/folders/1/extract", `{"child":0}`)
	assert.Equal(t, decodeState(t, rec).shape(), "B,a,c", "a one-child folder collapses")

	rec = f.do(t, http.MethodPost, "/api/shortcuts/clear", "")
	assert.Equal(t, decodeState(t, rec).shape(), "")
}

func TestFindShortcuts(t *testing.T) {
	f := newFixture(t, "github", "gitlab", "news")

	rec := f.do(t, http.MethodGet, "/api/shortcuts/find?q=git", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	var out []struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
		Child int    `json:"child"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, len(out), 2)
	assert.Equal(t, out[0].Child, -1)
}

func TestDragMergeDwell(t *testing.T) {
	f := newFixture(t, "a", "b", "c")

	rec := f.do(t, http.MethodPost, "/api/drag/start", `{"index":0}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, decodeState(t, rec).Drag.State, "dragging")

	rec = f.do(t, http.MethodPost, "/api/drag/hover", `{"index":1}`)
	s := decodeState(t, rec)
	assert.Equal(t, s.Drag.State, "pending-dwell")
	assert.Equal(t, s.Drag.Intent, "merge")

	f.clock.Advance(400 * time.Millisecond)

	rec = f.do(t, http.MethodPost, "/api/drag/drop", "")
	assert.Equal(t, rec.Code, http.StatusConflict, "the dwell already merged")
	s = decodeState(t, rec)
	assert.Equal(t, s.shape(), "新文件夹[b a],c")
	assert.Assert(t, s.Folder.Open)

	rec = f.do(t, http.MethodPost, "/api/drag/start", `{}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestDragReorder(t *testing.T) {
	f := newFixture(t, "a", "b", "c")

	f.do(t, http.MethodPost, "/api/drag/start", `{"index":0}`)
	f.do(t, http.MethodPost, "/api/drag/hover", `{"index":2}`)
	rec := f.do(t, http.MethodPost, "/api/drag/drop", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, decodeState(t, rec).shape(), "b,c,a")
	assert.Equal(t, f.clock.Pending(), 0)
}

func TestFolderSession(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	f.do(t, http.MethodPost, "/api/shortcuts/merge", `{"target":0,"source":1}`)

	rec := f.do(t, http.MethodPost, "/api/folder/open", `{"index":0}`)
	assert.Assert(t, decodeState(t, rec).Folder.Open)

	rec = f.do(t, http.MethodPut, "/api/folder/name", `{"name":"Pair"}`)
	assert.Equal(t, decodeState(t, rec).shape(), "Pair[a b],c")

	rec = f.do(t, http.MethodDelete, "/api/folder/children/0", "")
	s := decodeState(t, rec)
	assert.Equal(t, s.shape(), "b,c,a")
	assert.Assert(t, !s.Folder.Open, "collapsing the folder closes it")

	rec = f.do(t, http.MethodPost, "/api/folder/close", "")
	assert.Equal(t, rec.Code, http.StatusConflict)
}

func TestImportExport(t *testing.T) {
	f := newFixture(t, "a")

	backup := `{"type":"simpleNewTab","version":"2.0","shortcuts":[{"name":"x","url":"https://x.com"},{"name":"a","url":"https://a.com"}]}`
	rec := f.do(t, http.MethodPost, "/api/import", backup)
	assert.Equal(t, rec.Code, http.StatusOK)
	var res struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Assert(t, res.Success)
	assert.Equal(t, res.Count, 1)

	rec = f.do(t, http.MethodPost, "/api/import", `{"nope":true}`)
	assert.Equal(t, rec.Code, http.StatusUnprocessableEntity)

	html := `<DL><p><DT><A HREF="https://y.com">y</A></DL><p>`
	rec = f.do(t, http.MethodPost, "/api/import/html", html)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, len(f.grid.Items()), 3)

	rec = f.do(t, http.MethodGet, "/api/export", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, rec.Header().Get("Content-Disposition"), `attachment; filename="shortcuts-backup-2026-03-14.json"`)
	var payload struct {
		Type      string            `json:"type"`
		Shortcuts []json.RawMessage `json:"shortcuts"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, payload.Type, "simpleNewTab")
	assert.Equal(t, len(payload.Shortcuts), 3)

	rec = f.do(t, http.MethodGet, "/api/export.html", "")
	assert.Assert(t, strings.Contains(rec.Body.String(), `<DT><A HREF="https://y.com">y</A>`))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/search/?q=go+generics", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, strings.TrimSpace(rec.Body.String()), `{"url":"https://www.google.com/search?q=go+generics"}`)

	rec = f.do(t, http.MethodPut, "/api/search/engine", `{"engine":"bing"}`)
	assert.Equal(t, rec.Code, http.StatusOK)

	rec = f.do(t, http.MethodGet, "/api/search/?q=example.com&redirect=1", "")
	assert.Equal(t, rec.Code, http.StatusFound)
	assert.Equal(t, rec.Header().Get("Location"), "https://example.com")

	rec = f.do(t, http.MethodPut, "/api/search/engine", `{"engine":"altavista"}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	raw, err := f.store.Get(context.Background(), storage.KeySearchEngine)
	assert.NilError(t, err)
	assert.Equal(t, string(raw), `"bing"`)
}

func TestWallpaper(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/wallpaper/", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	var view struct {
		Source        string `json:"source"`
		Interval      int64  `json:"interval"`
		IntervalLabel string `json:"intervalLabel"`
		Current       *struct {
			URL string `json:"url"`
		} `json:"current"`
	}
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, view.Source, "picsum")
	assert.Equal(t, view.IntervalLabel, "每24小时")
	assert.Assert(t, strings.HasSuffix(view.Current.URL, "/id/7/1920/1080.jpg"))

	rec = f.do(t, http.MethodPut, "/api/wallpaper/interval", `{"interval":3600000}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	rec = f.do(t, http.MethodPut, "/api/wallpaper/interval", `{"interval":5}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = f.do(t, http.MethodPut, "/api/wallpaper/source", `{"source":"none"}`)
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Assert(t, view.Current == nil)
}

func TestClock(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/clock", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(rec.Body.String(), `"time":"09:30"`))
}

func TestFavicon(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/favicon?url=https://a.com/path&name=Alpha", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, rec.Header().Get("Content-Type"), "image/png")
	assert.Equal(t, rec.Body.Len(), 200)

	rec = f.do(t, http.MethodGet, "/api/favicon?url=https://b.com&name=Beta", "")
	assert.Equal(t, rec.Code, http.StatusNotFound)
	assert.Equal(t, strings.TrimSpace(rec.Body.String()), `{"initials":"Be"}`)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	assert.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
}
