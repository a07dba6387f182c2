package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
)

const readyTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Backend string `json:"bookmark_backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports 503 while the bookmark backend does not answer.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true, Backend: d.Backend}

		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				resp.Ready = false
				resp.Error = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
