package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
)

type healthzResponse struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ActiveSessions int     `json:"active_sessions"`
	FeedMode       string  `json:"feed_mode,omitempty"`
	Backend        string  `json:"bookmark_backend,omitempty"`
	Version        string  `json:"version,omitempty"`
	Commit         string  `json:"commit,omitempty"`
	BuildDate      string  `json:"build_date,omitempty"`
	GoVersion      string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		active := 0
		if d.Sessions != nil {
			active = d.Sessions.Len()
		}
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:         "ok",
			UptimeSeconds:  d.Now().Sub(d.StartTime).Seconds(),
			ActiveSessions: active,
			FeedMode:       d.FeedMode,
			Backend:        d.Backend,
			Version:        d.Version,
			Commit:         d.Commit,
			BuildDate:      d.BuildDate,
			GoVersion:      d.GoVersion,
		})
	}
}
