package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/logger"
)

const defaultHeartbeat = 15 * time.Second

// Events streams list and bookmarked-view publications as server-sent events
// until the client leaves or the session ends.
func Events(d deps.Deps) http.HandlerFunc {
	heartbeat := d.EventHeartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFrom(d, r)
		if err != nil {
			writeError(w, err)
			return
		}

		rc := http.NewResponseController(w)
		// The stream outlives the server write timeout.
		_ = rc.SetWriteDeadline(time.Time{})

		states, cancelStates := s.List.Subscribe()
		defer cancelStates()
		marks, cancelMarks := s.List.SubscribeBookmarked()
		defer cancelMarks()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		_ = rc.Flush()

		log := d.Logger.With(logger.String("session_id", s.ID))
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			var err error
			select {
			case <-r.Context().Done():
				return
			case st, ok := <-states:
				if !ok {
					_ = writeEvent(w, "end", struct{}{})
					_ = rc.Flush()
					return
				}
				err = writeEvent(w, "state", st)
			case bm, ok := <-marks:
				if !ok {
					marks = nil
					continue
				}
				err = writeEvent(w, "bookmarks", bm)
			case <-ticker.C:
				_, err = io.WriteString(w, ": ping\n\n")
			}
			if err == nil {
				err = rc.Flush()
			}
			if err != nil {
				log.Debug("event stream closed", logger.Error(err))
				return
			}
		}
	}
}

func writeEvent(w io.Writer, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
