package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/session"
	"github.com/MrSnakeDoc/userbrowser/internal/view/detail"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var se *domain.StorageError
	var ne *domain.NetworkError
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, detail.ErrNoUser),
		errors.Is(err, aggregator.ErrClosed):
		return http.StatusNotFound
	case errors.As(err, &se), errors.As(err, &ne):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sessionFrom(d deps.Deps, r *http.Request) (*session.Session, error) {
	return d.Sessions.Get(chi.URLParam(r, "sid"))
}
