package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sweeney/relay-control/internal/relay"
)

// TriggerResponse is the body returned for an accepted trigger.
type TriggerResponse struct {
	Status          string  `json:"status"`
	Relay           int     `json:"relay"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"relays": s.ctl.Count(),
	})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "relay id must be an integer")
		return
	}

	duration, err := s.ctl.Dispatch(id, relay.SourceWeb)
	if err != nil {
		status := rejectionStatus(err)
		writeError(w, status, relay.ReasonCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TriggerResponse{
		Status:          "triggered",
		Relay:           id,
		DurationSeconds: duration.Seconds(),
	})
}

// rejectionStatus maps a dispatch rejection to its HTTP status code.
// Both busy rejections share 429; clients retry either the same way.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, relay.ErrUnknownRelay):
		return http.StatusNotFound
	case errors.Is(err, relay.ErrAlreadyActive), errors.Is(err, relay.ErrCapacityExhausted):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, formatStatus(s.tracker.Snapshot(), s.ctl.Status(), s.ctl.Active()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot(), s.ctl.Status())
}
