package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/view/detail"
)

// OpenDetail shows a user from the list or the bookmarked view.
func OpenDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		u, ok := s.List.Lookup(chi.URLParam(r, "uid"))
		if !ok {
			writeError(w, domain.ErrUserNotFound)
			return
		}
		s.Detail.SetUser(u)
		writeJSON(w, http.StatusOK, u)
	}
}

func GetDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		u, ok := s.Detail.User()
		if !ok {
			writeError(w, detail.ErrNoUser)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func ToggleDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		u, err := s.Detail.ToggleBookmark(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// CloseDetail leaves the detail view; the list catches up with its bookmark changes.
func CloseDetail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Detail.Clear()
		s.List.ReturnFromDetail(r.Context())
		writeJSON(w, http.StatusOK, s.List.State())
	}
}
