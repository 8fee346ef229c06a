// Package api implements the wavescan status API using chi.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wavescan/internal/journal"
)

// OutcomeItem is one classification outcome in an API response.
type OutcomeItem struct {
	Path        string    `json:"path"`
	Outcome     string    `json:"outcome"`
	Token       string    `json:"token,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutcomeListResponse wraps a list of recent outcomes.
type OutcomeListResponse struct {
	Outcomes []OutcomeItem `json:"outcomes"`
}

// NewRouter creates a chi router with the status routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(rec journal.Recorder, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/outcomes", outcomesHandler(rec))

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

func outcomesHandler(rec journal.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		entries, err := rec.Recent(limit)
		if err != nil {
			slog.Error("list outcomes failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}

		items := make([]OutcomeItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, OutcomeItem{
				Path:        e.Path,
				Outcome:     e.Outcome,
				Token:       e.Token,
				Destination: e.Destination,
				Checksum:    e.Checksum,
				Detail:      e.Detail,
				ProcessedAt: e.ProcessedAt,
			})
		}
		writeJSON(w, http.StatusOK, OutcomeListResponse{Outcomes: items})
	}
}
