package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/userbrowser/internal/aggregator"
	"github.com/MrSnakeDoc/userbrowser/internal/domain"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/view/list"
)

type toggleResponse struct {
	User  domain.User      `json:"user"`
	State aggregator.State `json:"state"`
}

// ListUsers returns the current list state.
func ListUsers(d deps.Deps) http.HandlerFunc {
	return listAction(d, nil)
}

// LoadMore fetches the next page.
func LoadMore(d deps.Deps) http.HandlerFunc {
	return listAction(d, (*list.Holder).LoadMore)
}

// Refresh reloads from page 1.
func Refresh(d deps.Deps) http.HandlerFunc {
	return listAction(d, (*list.Holder).Refresh)
}

// listAction runs op on the session's list and answers with the resulting state.
func listAction(d deps.Deps, op func(*list.Holder, context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		if op != nil {
			op(s.List, r.Context())
		}
		writeJSON(w, http.StatusOK, s.List.State())
	}
}

// ToggleUser toggles the bookmark of a listed user.
func ToggleUser(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}

		u, err := s.List.ToggleBookmark(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{User: u, State: s.List.State()})
	}
}

// Bookmarks returns the bookmarked view.
func Bookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.List.Bookmarked())
	}
}
