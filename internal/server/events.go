package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nikbrunner/newtab/internal/grid"
)

var errStreamingUnsupported = errors.New("streaming unsupported")

// handleEvents streams a state event after every grid change (server-sent
// events). Slow clients miss intermediate states but always get the latest.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errStreamingUnsupported.Error())
		return
	}

	updates := make(chan grid.Snapshot, 1)
	unsubscribe := s.grid.Subscribe(func(snap grid.Snapshot) {
		// Runs under the controller lock; never block here.
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- snap:
			default:
			}
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(snap grid.Snapshot) bool {
		data, err := json.Marshal(newStateView(snap))
		if err != nil {
			s.log.Error().Err(err).Msg("encode state event")
			return false
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(s.grid.Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if !send(snap) {
				return
			}
		}
	}
}
