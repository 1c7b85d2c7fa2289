package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikbrunner/newtab/internal/backup"
	"github.com/nikbrunner/newtab/internal/clock"
	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

// maxImportSize bounds uploaded backups.
const maxImportSize = 10 << 20

// --- Backup ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := backup.Marshal(s.grid.Export())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename(s.now())))
	_, _ = w.Write(data)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.html"`)
	_, _ = io.WriteString(w, backup.ExportHTML(s.grid.Items()))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	s.importResult(w, s.grid.ImportBackup(raw))
}

func (s *Server) handleImportHTML(w http.ResponseWriter, r *http.Request) {
	s.importResult(w, s.grid.ImportHTML(io.LimitReader(r.Body, maxImportSize)))
}

func (s *Server) importResult(w http.ResponseWriter, res backup.Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	s.log.Info().Bool("success", res.Success).Int("count", res.Count).Msg("import")
	writeJSON(w, status, res)
}

// --- Search ---

type engineView struct {
	Engine      search.Engine   `json:"engine"`
	Placeholder string          `json:"placeholder"`
	Available   []search.Engine `json:"available"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, http.StatusNotFound, "search is disabled")
		return
	}
	target, ok := s.search.Resolve(r.URL.Query().Get("q"))
	if !ok {
		writeError(w, http.StatusBadRequest, "empty query")
		return
	}
	if r.URL.Query().Get("redirect") != "" {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{target})
}

func (s *Server) handleGetEngine(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, http.StatusNotFound, "search is disabled")
		return
	}
	e := s.search.Engine()
	writeJSON(w, http.StatusOK, engineView{Engine: e, Placeholder: e.Placeholder(), Available: search.Engines()})
}

func (s *Server) handleSetEngine(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeError(w, http.StatusNotFound, "search is disabled")
		return
	}
	var req struct {
		Engine string `json:"engine"`
	}
	if !decode(w, r, &req) {
		return
	}
	e, err := search.ParseEngine(req.Engine)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.search.SetEngine(r.Context(), e); err != nil {
		s.log.Error().Err(err).Msg("failed to save search engine")
		writeError(w, http.StatusInternalServerError, "failed to save")
		return
	}
	s.handleGetEngine(w, r)
}

// --- Wallpaper ---

type wallpaperView struct {
	Source        wallpaper.Source     `json:"source"`
	Interval      int64                `json:"interval"`
	IntervalLabel string               `json:"intervalLabel"`
	Current       *wallpaper.Wallpaper `json:"current"`
}

func newWallpaperView(st wallpaper.Settings) wallpaperView {
	return wallpaperView{
		Source:        st.Source,
		Interval:      st.Interval.Milliseconds(),
		IntervalLabel: wallpaper.IntervalLabel(st.Interval),
		Current:       st.Current,
	}
}

func (s *Server) handleGetWallpaper(w http.ResponseWriter, r *http.Request) {
	if s.wallpaper == nil {
		writeError(w, http.StatusNotFound, "wallpaper is disabled")
		return
	}
	if _, err := s.wallpaper.Load(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("wallpaper load failed")
	}
	writeJSON(w, http.StatusOK, newWallpaperView(s.wallpaper.Settings()))
}

func (s *Server) handleRefreshWallpaper(w http.ResponseWriter, r *http.Request) {
	if s.wallpaper == nil {
		writeError(w, http.StatusNotFound, "wallpaper is disabled")
		return
	}
	if _, err := s.wallpaper.Refresh(r.Context(), true); err != nil {
		s.log.Warn().Err(err).Msg("wallpaper refresh failed")
	}
	writeJSON(w, http.StatusOK, newWallpaperView(s.wallpaper.Settings()))
}

func (s *Server) handleSetWallpaperSource(w http.ResponseWriter, r *http.Request) {
	if s.wallpaper == nil {
		writeError(w, http.StatusNotFound, "wallpaper is disabled")
		return
	}
	var req struct {
		Source string `json:"source"`
	}
	if !decode(w, r, &req) {
		return
	}
	src, err := wallpaper.ParseSource(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.wallpaper.SetSource(r.Context(), src); err != nil {
		s.log.Warn().Err(err).Msg("wallpaper source change failed")
	}
	writeJSON(w, http.StatusOK, newWallpaperView(s.wallpaper.Settings()))
}

func (s *Server) handleSetWallpaperInterval(w http.ResponseWriter, r *http.Request) {
	if s.wallpaper == nil {
		writeError(w, http.StatusNotFound, "wallpaper is disabled")
		return
	}
	var req struct {
		Interval int64 `json:"interval"` // milliseconds
	}
	if !decode(w, r, &req) {
		return
	}
	d := time.Duration(req.Interval) * time.Millisecond
	if !wallpaper.ValidInterval(d) {
		writeError(w, http.StatusBadRequest, "unsupported interval")
		return
	}
	if err := s.wallpaper.SetInterval(r.Context(), d); err != nil {
		s.log.Error().Err(err).Msg("failed to save wallpaper interval")
		writeError(w, http.StatusInternalServerError, "failed to save")
		return
	}
	writeJSON(w, http.StatusOK, newWallpaperView(s.wallpaper.Settings()))
}

// --- Clock and icons ---

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clock.At(s.now()))
}

// handleFavicon serves the cached icon for ?url=<site>. Sites without an icon
// get 404 with the fallback initials in the body.
func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("url")
	fallback := struct {
		Initials string `json:"initials"`
	}{favicon.Initials(r.URL.Query().Get("name"))}

	icon, ok := favicon.ResolveIconURL(site)
	if !ok || s.icons == nil {
		writeJSON(w, http.StatusNotFound, fallback)
		return
	}
	res := s.icons.Load(r.Context(), icon)
	if res.Status != favicon.StatusLoaded {
		writeJSON(w, http.StatusNotFound, fallback)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(res.Data)
}
