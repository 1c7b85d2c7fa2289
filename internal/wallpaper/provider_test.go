package wallpaper_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/newtab/internal/wallpaper"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestParseSource(t *testing.T) {
	testCases := []struct {
		in      string
		want    wallpaper.Source
		wantErr bool
	}{
		{in: "picsum", want: wallpaper.SourcePicsum},
		{in: " Bing ", want: wallpaper.SourceBing},
		{in: "none", want: wallpaper.SourceNone},
		{in: "unsplash", want: wallpaper.SourcePicsum},
		{in: "flickr", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := wallpaper.ParseSource(tc.in)
		if tc.wantErr {
			assert.Assert(t, err != nil, tc.in)
			continue
		}
		assert.NilError(t, err)
		assert.Equal(t, got, tc.want)
	}
}

func TestPicsum_SourceURL(t *testing.T) {
	p := wallpaper.Picsum{}
	assert.Equal(t, p.SourceURL(now), fmt.Sprintf("https://picsum.photos/1920/1080?random=%d", now.UnixMilli()))

	p = wallpaper.Picsum{BaseURL: "http://img.test", Width: 800, Height: 600}
	assert.Equal(t, p.SourceURL(now), fmt.Sprintf("http://img.test/800/600?random=%d", now.UnixMilli()))

	w := p.Unresolved(now)
	assert.Equal(t, w.URL, p.SourceURL(now))
	assert.Equal(t, w.Source, wallpaper.SourcePicsum)
}

func picsumServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/1920/1080", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/id/42/1920/1080.jpg", http.StatusFound)
	})
	mux.HandleFunc("/id/42/1920/1080.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPicsum_FetchFollowsRedirect(t *testing.T) {
	srv := picsumServer(t)
	p := wallpaper.Picsum{Client: srv.Client(), BaseURL: srv.URL}

	w, err := p.Fetch(context.Background(), now)
	assert.NilError(t, err)
	assert.Equal(t, w.URL, srv.URL+"/id/42/1920/1080.jpg")
	assert.Equal(t, w.Author, "Picsum Photos")
}

// bingServer answers like the image archive API; idx selects one of the images.
func bingServer(t *testing.T, images []string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := r.URL.Query().Get("idx")
		seen = append(seen, idx)
		var n int
		_, _ = fmt.Sscanf(idx, "%d", &n)
		if n >= len(images) {
			fmt.Fprint(w, `{"images":[]}`)
			return
		}
		fmt.Fprintf(w, `{"images":[{"url":%q,"copyright":"Lake (© Someone)","copyrightlink":"https://www.bing.com/search?q=lake"}]}`, images[n])
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestBing_Fetch(t *testing.T) {
	srv, seen := bingServer(t, []string{"/th?id=OHR.Today_1920x1080.jpg", "/th?id=OHR.Yesterday_1920x1080.jpg"})
	b := wallpaper.Bing{Client: srv.Client(), APIBase: srv.URL + "/HPImageArchive.aspx?format=js&n=1"}

	w, err := b.Fetch(context.Background(), 1)
	assert.NilError(t, err)
	assert.Equal(t, w.URL, "https://www.bing.com/th?id=OHR.Yesterday_1920x1080.jpg")
	assert.Equal(t, w.Source, wallpaper.SourceBing)
	assert.Equal(t, w.Author, "Lake (© Someone)")
	assert.DeepEqual(t, *seen, []string{"1"})

	_, err = b.Fetch(context.Background(), 5)
	assert.Assert(t, errors.Is(err, wallpaper.ErrNoImage))
}

func TestBing_FetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := wallpaper.Bing{Client: srv.Client(), APIBase: srv.URL + "/?format=js"}
	_, err := b.Fetch(context.Background(), 0)
	assert.ErrorContains(t, err, "status 503")
}
