package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/deps"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/userbrowser/internal/httpserver/mw"
)

func init() { Register("sessions", registerSessions) }

func registerSessions(r chi.Router, d deps.Deps) {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Endpoints that may hit the remote feed share one budget per client.
	feedLimit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateBurst,
		RefillPerMin: d.RatePerMin,
		MaxEntries:   4096,
		Key:          func(r *http.Request) string { return mw.ClientIP(r, d.TrustProxy) },
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		// SSE stays open; no request timeout.
		r.Get("/{sid}/events", handlers.Events(d))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))

			r.With(feedLimit).Post("/", handlers.CreateSession(d))
			r.Delete("/{sid}", handlers.EndSession(d))

			r.Get("/{sid}/users", handlers.ListUsers(d))
			r.With(feedLimit).Post("/{sid}/users/more", handlers.LoadMore(d))
			r.With(feedLimit).Post("/{sid}/refresh", handlers.Refresh(d))
			r.Post("/{sid}/users/{uid}/bookmark", handlers.ToggleUser(d))
			r.Get("/{sid}/bookmarks", handlers.Bookmarks(d))

			r.Put("/{sid}/detail/{uid}", handlers.OpenDetail(d))
			r.Get("/{sid}/detail", handlers.GetDetail(d))
			r.Post("/{sid}/detail/bookmark", handlers.ToggleDetail(d))
			r.Delete("/{sid}/detail", handlers.CloseDetail(d))
		})
	})
}
