package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
)

type sessionResponse struct {
	ID         string           `json:"id"`
	State      aggregator.State `json:"state"`
	Bookmarked []domain.User    `json:"bookmarked"`
}

// CreateSession opens a session and performs its first load.
func CreateSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := d.Sessions.Create()
		s.List.Start(r.Context())

		writeJSON(w, http.StatusCreated, sessionResponse{
			ID:         s.ID,
			State:      s.List.State(),
			Bookmarked: s.List.Bookmarked(),
		})
	}
}

func EndSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.End(chi.URLParam(r, "sid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
