// Package server exposes the shortcut grid and its companions as a JSON API
// for a browser front-end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/nikbrunner/newtab/internal/favicon"
	"github.com/nikbrunner/newtab/internal/grid"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/wallpaper"
)

// Params wires a Server to its services. Search, Wallpaper and Icons are
// optional; their routes answer 404 when nil.
type Params struct {
	Grid           *grid.Controller
	Search         *search.Dispatcher
	Wallpaper      *wallpaper.Service
	Icons          *favicon.Loader
	AllowedOrigins []string
	Logger         zerolog.Logger
	Now            func() time.Time
}

// Server is the HTTP API.
type Server struct {
	grid      *grid.Controller
	search    *search.Dispatcher
	wallpaper *wallpaper.Service
	icons     *favicon.Loader
	log       zerolog.Logger
	now       func() time.Time
	router    chi.Router
}

// New builds the router.
func New(params Params) *Server {
	s := &Server{
		grid:      params.Grid,
		search:    params.Search,
		wallpaper: params.Wallpaper,
		icons:     params.Icons,
		log:       params.Logger,
		now:       params.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.setupRoutes(params.AllowedOrigins)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)

		r.Route("/pages", func(r chi.Router) {
			r.Post("/goto", s.handleGoToPage)
			r.Post("/next", s.handleNextPage)
			r.Post("/prev", s.handlePrevPage)
			r.Post("/wheel", s.handleWheel)
			r.Put("/layout", s.handleSetLayout)
		})

		r.Route("/shortcuts", func(r chi.Router) {
			r.Post("/", s.handleAddLink)
			r.Put("/{index}", s.handleEditLink)
			r.Delete("/{index}", s.handleDeleteItem)
			r.Post("/move", s.handleMove)
			r.Post("/merge", s.handleMerge)
			r.Post("/clear", s.handleClearAll)
			r.Post("/restore", s.handleRestoreDefaults)
			r.Get("/find", s.handleFindShortcuts)
		})

		r.Route("/folders/{index}", func(r chi.Router) {
			r.Put("/name", s.handleRenameFolder)
			r.Post("/add", s.handleAddToFolder)
			r.Post("/extract", s.handleExtract)
			r.Post("/move", s.handleMoveChild)
		})

		r.Route("/folder", func(r chi.Router) {
			r.Post("/open", s.handleOpenFolder)
			r.Post("/close", s.handleCloseFolder)
			r.Post("/manage", s.handleToggleManage)
			r.Put("/name", s.handleRenameOpenFolder)
			r.Delete("/children/{child}", s.handleRemoveChild)
			r.Put("/bounds", s.handleOverlayBounds)
		})

		r.Route("/drag", func(r chi.Router) {
			r.Post("/start", s.handleDragStart)
			r.Post("/hover", s.handleDragHover)
			r.Post("/leave", s.handleDragLeave)
			r.Post("/move", s.handlePointerMove)
			r.Post("/page-button", s.handlePageButton)
			r.Post("/drop", s.handleDrop)
			r.Post("/end", s.handleDragEnd)
			r.Put("/bounds", s.handleGridBounds)
		})

		r.Get("/export", s.handleExport)
		r.Get("/export.html", s.handleExportHTML)
		r.Post("/import", s.handleImport)
		r.Post("/import/html", s.handleImportHTML)

		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.handleSearch)
			r.Get("/engine", s.handleGetEngine)
			r.Put("/engine", s.handleSetEngine)
		})

		r.Route("/wallpaper", func(r chi.Router) {
			r.Get("/", s.handleGetWallpaper)
			r.Post("/refresh", s.handleRefreshWallpaper)
			r.Put("/source", s.handleSetWallpaperSource)
			r.Put("/interval", s.handleSetWallpaperInterval)
		})

		r.Get("/clock", s.handleClock)
		r.Get("/favicon", s.handleFavicon)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// intParam reads a numeric URL parameter, answering 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return n, true
}

// changed answers with the new state, or 409 when the operation was a no-op.
func (s *Server) changed(w http.ResponseWriter, ok bool) {
	if !ok {
		writeJSON(w, http.StatusConflict, newStateView(s.grid.Snapshot()))
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.grid.Snapshot()))
}
